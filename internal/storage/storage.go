// Package storage defines the persistence interfaces for the boardroom
// viewer.
//
// The only persisted state is the envelope journal: an append-only record
// of every event the viewer received, kept for replay and debugging. Scene
// state itself is always rebuilt from the live stream and never stored.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/boardroomhq/boardroom/internal/event"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// JournalEntry is one received envelope with its journal position.
type JournalEntry struct {
	Seq           int64
	EventID       string
	EventType     string
	CorrelationID string
	ReceivedAt    time.Time
	Payload       []byte
}

// JournalStore persists received event envelopes.
type JournalStore interface {
	// AppendEnvelope records one received envelope.
	AppendEnvelope(ctx context.Context, env event.Envelope, receivedAt time.Time) error
	// ListRecent returns up to limit entries, newest first.
	ListRecent(ctx context.Context, limit int) ([]JournalEntry, error)
}
