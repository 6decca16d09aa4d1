package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/boardroomhq/boardroom/internal/scene/metrics"
	"github.com/boardroomhq/boardroom/internal/scene/participant"
	"github.com/boardroomhq/boardroom/internal/scene/reconcile"
)

// Run starts the terminal viewer over the scene components and blocks
// until the user quits or ctx is cancelled. Scene traffic is forwarded
// into the program's message loop; the model itself stays passive.
func Run(ctx context.Context, registry *participant.Registry, gauge *metrics.Gauge, reconciler *reconcile.Reconciler) error {
	model := NewModel(reconciler.Meeting(), registry.All(), gauge.Reading())
	program := tea.NewProgram(model, tea.WithAltScreen())

	unsubChanges := registry.Subscribe(func(change participant.Change) {
		program.Send(SceneMsg{Change: change})
	})
	defer unsubChanges()

	unsubUpdates := reconciler.Subscribe(func(update reconcile.Update) {
		program.Send(UpdateMsg{Update: update})
	})
	defer unsubUpdates()

	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	_, err := program.Run()
	return err
}
