package tui

import (
	"encoding/json"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/boardroomhq/boardroom/internal/scene/metrics"
	"github.com/boardroomhq/boardroom/internal/scene/participant"
	"github.com/boardroomhq/boardroom/internal/scene/reconcile"
)

func apply(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("update returned %T, want Model", next)
	}
	return model
}

func emptyModel() Model {
	return NewModel(reconcile.Meeting{Status: reconcile.StatusWaiting}, nil, metrics.Reading{Novelty: 50})
}

func TestSceneMessagesTrackParticipants(t *testing.T) {
	m := emptyModel()

	a := participant.Participant{ID: "A", DisplayName: "Agent A"}
	m = apply(t, m, SceneMsg{Change: participant.Change{Type: participant.ChangeAdded, Participant: &a}})
	if len(m.participants) != 1 {
		t.Fatalf("participants = %d, want 1", len(m.participants))
	}

	b := participant.Participant{ID: "B", DisplayName: "Agent B"}
	all := []participant.Participant{a, b}
	m = apply(t, m, SceneMsg{Change: participant.Change{Type: participant.ChangePositionsChanged, Participants: all}})
	if len(m.participants) != 2 {
		t.Fatalf("participants = %d, want 2 after positions batch", len(m.participants))
	}

	m = apply(t, m, SceneMsg{Change: participant.Change{Type: participant.ChangeRemoved, Participant: &a}})
	if len(m.participants) != 1 || m.participants[0].ID != "B" {
		t.Errorf("participants = %+v, want [B]", m.participants)
	}

	m = apply(t, m, SceneMsg{Change: participant.Change{Type: participant.ChangeCleared}})
	if len(m.participants) != 0 {
		t.Errorf("participants = %d, want 0 after clear", len(m.participants))
	}
}

func TestSingleSpeakerInView(t *testing.T) {
	a := participant.Participant{ID: "A", DisplayName: "Agent A", IsSpeaking: true, TurnKind: participant.TurnKindTurn}
	b := participant.Participant{ID: "B", DisplayName: "Agent B"}
	m := NewModel(reconcile.Meeting{Status: reconcile.StatusActive}, []participant.Participant{a, b}, metrics.Reading{})

	// B takes the turn; the single-entity record must displace A locally.
	speaking := b
	speaking.IsSpeaking = true
	speaking.TurnKind = participant.TurnKindPrimary
	m = apply(t, m, SceneMsg{Change: participant.Change{Type: participant.ChangeStateChanged, Participant: &speaking}})

	speakers := 0
	for _, p := range m.participants {
		if p.IsSpeaking {
			speakers++
			if p.ID != "B" {
				t.Errorf("speaker = %s, want B", p.ID)
			}
		}
	}
	if speakers != 1 {
		t.Errorf("speakers = %d, want 1", speakers)
	}
}

func TestUpdateMessages(t *testing.T) {
	m := emptyModel()

	meeting := reconcile.Meeting{Topic: "Quarterly", Status: reconcile.StatusActive, CurrentRound: 2, MaxRounds: 5}
	m = apply(t, m, UpdateMsg{Update: reconcile.Update{Kind: reconcile.UpdateMeeting, Meeting: &meeting}})
	if m.meeting.Topic != "Quarterly" || m.meeting.CurrentRound != 2 {
		t.Errorf("meeting = %+v, want Quarterly round 2", m.meeting)
	}

	reading := metrics.Reading{Novelty: 40, Consensus: 60}
	m = apply(t, m, UpdateMsg{Update: reconcile.Update{Kind: reconcile.UpdateMetrics, Metrics: &reading}})
	if m.metrics.Consensus != 60 {
		t.Errorf("consensus = %v, want 60", m.metrics.Consensus)
	}

	m = apply(t, m, UpdateMsg{Update: reconcile.Update{Kind: reconcile.UpdateSummary, Summary: json.RawMessage(`"all agreed"`)}})
	if m.summary == "" {
		t.Error("summary not recorded")
	}
}

func TestViewRendersScene(t *testing.T) {
	a := participant.Participant{ID: "A", DisplayName: "Agent A", IsSpeaking: true, TurnKind: participant.TurnKindTurn, Role: "biology"}
	m := NewModel(
		reconcile.Meeting{Topic: "Synthesis", Status: reconcile.StatusActive, CurrentRound: 1, MaxRounds: 3},
		[]participant.Participant{a},
		metrics.Reading{Novelty: 70, Consensus: 30},
	)

	view := m.View()
	for _, want := range []string{"Synthesis", "active", "round 1/3", "Agent A", "biology", "novelty", "consensus"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewEmptyTable(t *testing.T) {
	view := emptyModel().View()
	if !strings.Contains(view, "the table is empty") {
		t.Error("empty view missing placeholder")
	}
}

func TestQuitKeys(t *testing.T) {
	m := emptyModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}
