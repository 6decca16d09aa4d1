package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Visual state errors
	CodeVisualInvalidState      Code = "VISUAL_INVALID_STATE"
	CodeVisualInvalidTransition Code = "VISUAL_INVALID_TRANSITION"

	// Participant errors
	CodeParticipantEmptyID Code = "PARTICIPANT_EMPTY_ID"

	// Metrics errors
	CodeMetricsInvalidWindow Code = "METRICS_INVALID_WINDOW"

	// Event errors
	CodeEventEmptyType    Code = "EVENT_EMPTY_TYPE"
	CodeEventUnknownKind  Code = "EVENT_UNKNOWN_KIND"
	CodeEventInvalidJSON  Code = "EVENT_INVALID_JSON"
	CodeEventMissingField Code = "EVENT_MISSING_FIELD"
	CodeEventInvalidField Code = "EVENT_INVALID_FIELD"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"

	// Bus errors
	CodeBusEmptyURL   Code = "BUS_EMPTY_URL"
	CodeBusNilHandler Code = "BUS_NIL_HANDLER"
)
