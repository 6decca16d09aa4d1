// Package visual validates participant visual-state transitions.
//
// The transition graph is deliberately asymmetric: a speaking participant
// must pass through idle or listening before thinking, and a thinking
// participant never moves straight to listening.
package visual

import "github.com/boardroomhq/boardroom/internal/errors"

// State describes how a participant is rendered in the scene.
type State string

const (
	// StateIdle indicates the participant is seated and inactive.
	StateIdle State = "idle"
	// StateSpeaking indicates the participant holds the active turn.
	StateSpeaking State = "speaking"
	// StateListening indicates the participant is attending to the speaker.
	StateListening State = "listening"
	// StateThinking indicates the participant is preparing a contribution.
	StateThinking State = "thinking"
)

// IsValid reports whether the state is one of the supported values.
func (s State) IsValid() bool {
	switch s {
	case StateIdle, StateSpeaking, StateListening, StateThinking:
		return true
	default:
		return false
	}
}

// allowed holds the directed transition edges.
var allowed = map[State][]State{
	StateIdle:      {StateSpeaking, StateListening, StateThinking},
	StateSpeaking:  {StateIdle, StateListening},
	StateListening: {StateSpeaking, StateIdle},
	StateThinking:  {StateSpeaking, StateIdle},
}

// CanTransition reports whether the edge from -> to exists.
func CanTransition(from, to State) bool {
	for _, next := range allowed[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition returns the target state when the edge from -> to exists.
// Otherwise it returns an error and the caller retains the current state.
func Transition(from, to State) (State, error) {
	if !from.IsValid() {
		return from, errors.WithMetadata(errors.CodeVisualInvalidState, "unknown visual state", map[string]string{
			"state": string(from),
		})
	}
	if !to.IsValid() {
		return from, errors.WithMetadata(errors.CodeVisualInvalidState, "unknown visual state", map[string]string{
			"state": string(to),
		})
	}
	if !CanTransition(from, to) {
		return from, errors.WithMetadata(errors.CodeVisualInvalidTransition, "visual state transition not allowed", map[string]string{
			"from": string(from),
			"to":   string(to),
		})
	}
	return to, nil
}
