// Package tui renders the scene in the terminal. The model is fed
// exclusively through bubbletea messages: registry change records and
// reconciler updates are forwarded into the program, so the model never
// reaches back into the scene components.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/boardroomhq/boardroom/internal/scene/metrics"
	"github.com/boardroomhq/boardroom/internal/scene/participant"
	"github.com/boardroomhq/boardroom/internal/scene/reconcile"
)

// SceneMsg wraps a registry change record for the message loop.
type SceneMsg struct {
	Change participant.Change
}

// UpdateMsg wraps a reconciler update for the message loop.
type UpdateMsg struct {
	Update reconcile.Update
}

// meterWidth is the bar width for the novelty/consensus meters.
const meterWidth = 30

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	statusStyles = map[reconcile.Status]lipgloss.Style{
		reconcile.StatusWaiting:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		reconcile.StatusActive:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		reconcile.StatusConverged: lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		reconcile.StatusCompleted: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		reconcile.StatusFailed:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
	speakerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	meterOnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Model is the bubbletea model for the scene viewer.
type Model struct {
	meeting      reconcile.Meeting
	participants []participant.Participant
	metrics      metrics.Reading
	summary      string
	width        int
}

// NewModel creates a model seeded with the given snapshot. The snapshot
// covers the window between component creation and program start.
func NewModel(meeting reconcile.Meeting, participants []participant.Participant, reading metrics.Reading) Model {
	return Model{
		meeting:      meeting,
		participants: participants,
		metrics:      reading,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		return m, nil
	case SceneMsg:
		return m.applyChange(msg.Change), nil
	case UpdateMsg:
		return m.applyUpdate(msg.Update), nil
	}
	return m, nil
}

func (m Model) applyChange(change participant.Change) Model {
	switch change.Type {
	case participant.ChangeAdded:
		if change.Participant != nil {
			m.participants = append(m.participants, *change.Participant)
		}
	case participant.ChangeRemoved:
		if change.Participant != nil {
			kept := m.participants[:0:0]
			for _, p := range m.participants {
				if p.ID != change.Participant.ID {
					kept = append(kept, p)
				}
			}
			m.participants = kept
		}
	case participant.ChangeStateChanged:
		if change.Participants != nil {
			m.participants = change.Participants
			break
		}
		if change.Participant != nil {
			updated := *change.Participant
			for i, p := range m.participants {
				if p.ID == updated.ID {
					m.participants[i] = updated
					continue
				}
				// A new speaker implies everyone else stopped speaking.
				if updated.IsSpeaking && p.IsSpeaking {
					p.IsSpeaking = false
					p.TurnKind = participant.TurnKindNone
					m.participants[i] = p
				}
			}
		}
	case participant.ChangePositionsChanged:
		m.participants = change.Participants
	case participant.ChangeCleared:
		m.participants = nil
		m.summary = ""
	}
	return m
}

func (m Model) applyUpdate(update reconcile.Update) Model {
	switch update.Kind {
	case reconcile.UpdateMeeting:
		if update.Meeting != nil {
			m.meeting = *update.Meeting
		}
	case reconcile.UpdateMetrics:
		if update.Metrics != nil {
			m.metrics = *update.Metrics
		}
	case reconcile.UpdateSummary:
		m.summary = strings.TrimSpace(string(update.Summary))
	}
	return m
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n\n")
	b.WriteString(m.tableView())
	b.WriteString("\n")
	b.WriteString(m.metersView())
	if m.summary != "" {
		b.WriteString("\n")
		b.WriteString(summaryStyle.Render("summary: " + m.summary))
		b.WriteString("\n")
	}
	if m.meeting.Status == reconcile.StatusFailed && m.meeting.ErrorMessage != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("error: " + m.meeting.ErrorMessage))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("q: quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) headerView() string {
	topic := m.meeting.Topic
	if topic == "" {
		topic = "(no meeting)"
	}
	status, ok := statusStyles[m.meeting.Status]
	if !ok {
		status = dimStyle
	}
	header := titleStyle.Render(topic) + "  " + status.Render(string(m.meeting.Status))
	if m.meeting.MaxRounds > 0 {
		header += dimStyle.Render(fmt.Sprintf("  round %d/%d", m.meeting.CurrentRound, m.meeting.MaxRounds))
	} else if m.meeting.CurrentRound > 0 {
		header += dimStyle.Render(fmt.Sprintf("  round %d", m.meeting.CurrentRound))
	}
	return header
}

func (m Model) tableView() string {
	if len(m.participants) == 0 {
		return dimStyle.Render("  the table is empty")
	}
	var b strings.Builder
	for _, p := range m.participants {
		marker := "  "
		name := p.DisplayName
		if p.IsSpeaking {
			marker = speakerStyle.Render("> ")
			name = speakerStyle.Render(name)
		}
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color)).Render("●")
		line := fmt.Sprintf("%s%s %-20s %s", marker, dot, name, dimStyle.Render(string(p.VisualState)))
		if p.IsSpeaking && p.TurnKind != participant.TurnKindNone {
			line += " " + dimStyle.Render("["+string(p.TurnKind)+"]")
		}
		if p.Role != "" {
			line += " " + dimStyle.Render(p.Role)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) metersView() string {
	return meterView("novelty  ", m.metrics.Novelty) + "\n" +
		meterView("consensus", m.metrics.Consensus) + "\n"
}

func meterView(label string, value float64) string {
	filled := int(value / 100 * meterWidth)
	if filled < 0 {
		filled = 0
	}
	if filled > meterWidth {
		filled = meterWidth
	}
	bar := meterOnStyle.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", meterWidth-filled))
	return fmt.Sprintf("%s %s %3.0f", dimStyle.Render(label), bar, value)
}
