package reconcile

// Status describes the meeting lifecycle phase.
type Status string

const (
	// StatusWaiting indicates the meeting is announced but not started.
	StatusWaiting Status = "waiting"
	// StatusActive indicates rounds are in progress.
	StatusActive Status = "active"
	// StatusConverged indicates the meeting reached consensus.
	StatusConverged Status = "converged"
	// StatusCompleted indicates the meeting finished normally.
	StatusCompleted Status = "completed"
	// StatusFailed indicates the meeting terminated abnormally.
	StatusFailed Status = "failed"
)

// Meeting is the small lifecycle value object owned by the reconciler. It
// is the only long-lived state the reconciler holds; entities and metrics
// live in their own components.
type Meeting struct {
	ID           string `json:"id"`
	Topic        string `json:"topic"`
	Status       Status `json:"status"`
	CurrentRound int    `json:"current_round"`
	MaxRounds    int    `json:"max_rounds"`
	ErrorMessage string `json:"error_message,omitempty"`
}
