package visual

import (
	"testing"

	"github.com/boardroomhq/boardroom/internal/errors"
)

func TestTransitionAdjacency(t *testing.T) {
	tests := []struct {
		from    State
		to      State
		allowed bool
	}{
		{StateIdle, StateSpeaking, true},
		{StateIdle, StateListening, true},
		{StateIdle, StateThinking, true},
		{StateIdle, StateIdle, false},

		{StateSpeaking, StateIdle, true},
		{StateSpeaking, StateListening, true},
		{StateSpeaking, StateThinking, false},
		{StateSpeaking, StateSpeaking, false},

		{StateListening, StateSpeaking, true},
		{StateListening, StateIdle, true},
		{StateListening, StateThinking, false},
		{StateListening, StateListening, false},

		{StateThinking, StateSpeaking, true},
		{StateThinking, StateIdle, true},
		{StateThinking, StateListening, false},
		{StateThinking, StateThinking, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			got, err := Transition(tt.from, tt.to)
			if tt.allowed {
				if err != nil {
					t.Fatalf("Transition(%s, %s) unexpected error: %v", tt.from, tt.to, err)
				}
				if got != tt.to {
					t.Errorf("Transition(%s, %s) = %s, want %s", tt.from, tt.to, got, tt.to)
				}
				return
			}
			if err == nil {
				t.Fatalf("Transition(%s, %s) expected rejection", tt.from, tt.to)
			}
			if !errors.IsCode(err, errors.CodeVisualInvalidTransition) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.CodeVisualInvalidTransition)
			}
			if got != tt.from {
				t.Errorf("rejected transition changed state to %s, want unchanged %s", got, tt.from)
			}
		})
	}
}

func TestTransitionUnknownState(t *testing.T) {
	got, err := Transition(State("dancing"), StateIdle)
	if err == nil {
		t.Fatal("expected error for unknown source state")
	}
	if !errors.IsCode(err, errors.CodeVisualInvalidState) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.CodeVisualInvalidState)
	}
	if got != State("dancing") {
		t.Errorf("state changed to %s on rejected transition", got)
	}
}

func TestIsValid(t *testing.T) {
	for _, s := range []State{StateIdle, StateSpeaking, StateListening, StateThinking} {
		if !s.IsValid() {
			t.Errorf("%s.IsValid() = false, want true", s)
		}
	}
	if State("").IsValid() {
		t.Error(`State("").IsValid() = true, want false`)
	}
}
