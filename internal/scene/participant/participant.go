package participant

import (
	"time"

	"github.com/boardroomhq/boardroom/internal/scene/visual"
)

// TurnKind labels the kind of turn a speaking participant holds. The value
// is carried verbatim from the event stream and treated as an opaque label;
// the constants below cover the known kinds.
type TurnKind string

const (
	// TurnKindNone indicates the participant holds no turn.
	TurnKindNone TurnKind = "none"
	// TurnKindTurn is the generic turn kind used when the stream does not
	// specify one.
	TurnKindTurn TurnKind = "turn"
	// TurnKindPrimary marks a scheduled primary contribution.
	TurnKindPrimary TurnKind = "primary"
	// TurnKindFollowUp marks a follow-up to an earlier contribution.
	TurnKindFollowUp TurnKind = "follow_up"
)

// Seat is the derived polar placement of a participant around the table.
// It is recomputed for every participant whenever membership changes.
type Seat struct {
	Angle  float64 `json:"angle"`
	Radius float64 `json:"radius"`
	Index  int     `json:"index"`
}

// Participant is one tracked meeting attendee.
type Participant struct {
	ID              string       `json:"id"`
	DisplayName     string       `json:"display_name"`
	Role            string       `json:"role"`
	JoinedAt        time.Time    `json:"joined_at"`
	VisualState     visual.State `json:"visual_state"`
	TurnKind        TurnKind     `json:"turn_kind"`
	IsSpeaking      bool         `json:"is_speaking"`
	LastActiveRound int          `json:"last_active_round"`
	Seat            Seat         `json:"seat"`
	Color           string       `json:"color"`
}
