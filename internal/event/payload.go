package event

import "encoding/json"

// MeetingCreatedPayload carries the initial meeting metadata.
type MeetingCreatedPayload struct {
	MeetingID string  `json:"meeting_id"`
	Topic     *string `json:"topic"`
	MaxRounds *int    `json:"max_rounds"`
}

// MeetingStartedPayload lists the participants selected for the meeting.
type MeetingStartedPayload struct {
	SelectedAgents []string `json:"selected_agents"`
}

// ParticipantAddedPayload announces one participant. Producers disagree on
// the field name for the role; both are accepted.
type ParticipantAddedPayload struct {
	AgentName *string `json:"agent_name"`
	Expertise string  `json:"expertise"`
	Role      string  `json:"role"`
}

// RoleLabel returns whichever role field the producer populated.
func (p ParticipantAddedPayload) RoleLabel() string {
	if p.Expertise != "" {
		return p.Expertise
	}
	return p.Role
}

// TurnCompletedPayload reports a finished speaking turn.
type TurnCompletedPayload struct {
	AgentName *string `json:"agent_name"`
	TurnType  *string `json:"turn_type"`
	RoundNum  *int    `json:"round_num"`
}

// RoundCompletedPayload reports a finished round.
type RoundCompletedPayload struct {
	RoundNum   *int     `json:"round_num"`
	AvgNovelty *float64 `json:"avg_novelty"`
}

// ConvergedPayload reports consensus.
type ConvergedPayload struct {
	RoundNum *int `json:"round_num"`
}

// CompletedPayload reports normal completion. Summary is passed through to
// presentation verbatim, with no transformation.
type CompletedPayload struct {
	TotalRounds *int            `json:"total_rounds"`
	Summary     json.RawMessage `json:"summary,omitempty"`
}

// FailedPayload reports abnormal termination.
type FailedPayload struct {
	ErrorMessage *string `json:"error_message"`
}
