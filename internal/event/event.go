// Package event defines the envelope consumed from the meeting bus and the
// typed payload variants for each recognized event kind.
//
// Envelopes are validated once, at the transport boundary; handlers never
// see raw bytes. Routing keys are dot-delimited and matched by suffix, so
// a broker-specific prefix (exchange, tenant, meeting id) never reaches
// dispatch logic.
package event

import (
	"encoding/json"
	"strings"

	"github.com/boardroomhq/boardroom/internal/errors"
)

// Kind identifies a recognized event variant.
type Kind string

const (
	// KindMeetingCreated announces a new meeting and resets scene state.
	KindMeetingCreated Kind = "meeting.created"
	// KindMeetingStarted activates the meeting and seats its participants.
	KindMeetingStarted Kind = "meeting.started"
	// KindParticipantAdded seats a single late-announced participant.
	KindParticipantAdded Kind = "participant.added"
	// KindTurnCompleted reports a finished speaking turn.
	KindTurnCompleted Kind = "participant.turn.completed"
	// KindRoundCompleted reports a finished round with its novelty score.
	KindRoundCompleted Kind = "meeting.round_completed"
	// KindConverged reports that the meeting reached consensus.
	KindConverged Kind = "meeting.converged"
	// KindCompleted reports normal meeting completion.
	KindCompleted Kind = "meeting.completed"
	// KindFailed reports abnormal meeting termination.
	KindFailed Kind = "meeting.failed"
)

var kinds = []Kind{
	KindMeetingCreated,
	KindMeetingStarted,
	KindParticipantAdded,
	KindTurnCompleted,
	KindRoundCompleted,
	KindConverged,
	KindCompleted,
	KindFailed,
}

// KindOf resolves a routing key to a recognized kind by suffix match.
func KindOf(routingKey string) (Kind, bool) {
	routingKey = strings.TrimSpace(routingKey)
	for _, kind := range kinds {
		if routingKey == string(kind) || strings.HasSuffix(routingKey, "."+string(kind)) {
			return kind, true
		}
	}
	return "", false
}

// Source identifies the producer of an envelope.
type Source struct {
	Host string `json:"host"`
	Type string `json:"type"`
	App  string `json:"app"`
}

// Envelope is the validated wire record delivered by the transport layer.
// Payload stays raw until the dispatcher decodes it for a specific kind.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     string          `json:"timestamp"`
	Source        Source          `json:"source"`
	Payload       json.RawMessage `json:"payload"`
	CorrelationID string          `json:"correlation_id,omitempty"`
}

// Kind resolves the envelope's routing key.
func (e Envelope) Kind() (Kind, bool) {
	return KindOf(e.EventType)
}

// Parse validates raw bytes into an Envelope. The payload content is not
// interpreted here; only the envelope shape is checked.
func Parse(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, errors.Wrap(errors.CodeEventInvalidJSON, "decode event envelope", err)
	}
	if strings.TrimSpace(env.EventType) == "" {
		return Envelope{}, errors.New(errors.CodeEventEmptyType, "event type is required")
	}
	return env, nil
}

// Decode unmarshals an envelope payload into the typed variant for its
// kind. Fields absent from the payload stay nil so handlers can skip only
// the side effects that depend on them.
func Decode[T any](env Envelope) (T, error) {
	var payload T
	if len(env.Payload) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return payload, errors.Wrap(errors.CodeEventInvalidJSON, "decode "+env.EventType+" payload", err)
	}
	return payload, nil
}
