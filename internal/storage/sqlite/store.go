// Package sqlite provides the SQLite-backed envelope journal.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/boardroomhq/boardroom/internal/event"
	"github.com/boardroomhq/boardroom/internal/platform/storage/sqlitemigrate"
	"github.com/boardroomhq/boardroom/internal/storage"
	"github.com/boardroomhq/boardroom/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

const defaultListLimit = 50

// Store persists the envelope journal in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the journal store at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendEnvelope records one received envelope.
func (s *Store) AppendEnvelope(ctx context.Context, env event.Envelope, receivedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(env.EventType) == "" {
		return fmt.Errorf("event type is required")
	}
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO journal (event_id, event_type, correlation_id, received_at, payload)
		 VALUES (?, ?, ?, ?, ?)`,
		env.EventID,
		env.EventType,
		env.CorrelationID,
		receivedAt.UTC().UnixMilli(),
		[]byte(env.Payload),
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// ListRecent returns up to limit journal entries, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]storage.JournalEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT seq, event_id, event_type, correlation_id, received_at, payload
		 FROM journal
		 ORDER BY seq DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []storage.JournalEntry
	for rows.Next() {
		var entry storage.JournalEntry
		var receivedAt int64
		if err := rows.Scan(
			&entry.Seq,
			&entry.EventID,
			&entry.EventType,
			&entry.CorrelationID,
			&receivedAt,
			&entry.Payload,
		); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entry.ReceivedAt = time.UnixMilli(receivedAt).UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}
	return entries, nil
}
