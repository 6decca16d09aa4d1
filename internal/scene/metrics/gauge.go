// Package metrics derives the smoothed consensus indicator from per-round
// novelty samples.
//
// Consensus is never stored independently: it is always recomputed as
// 100 minus the arithmetic mean of the retained novelty history, clamped
// to [0,100]. The mean over a fixed window (rather than an exponential
// decay) keeps the value exactly reproducible from the literal samples.
package metrics

import (
	"sync"

	"github.com/boardroomhq/boardroom/internal/errors"
)

// DefaultHistoryWindow is the number of novelty samples retained. A larger
// window smooths harder at the cost of responsiveness.
const DefaultHistoryWindow = 10

const (
	// neutralNovelty is the post-reset novelty: "no signal yet".
	neutralNovelty = 50
	// neutralConsensus is the post-reset consensus. Deliberately not the
	// inverse of neutralNovelty: reset means "we don't know yet", not "we
	// know and it's moderate".
	neutralConsensus = 0
)

// Reading is the instantaneous pair returned after recording a sample.
// Any animated transition toward these targets belongs to presentation.
type Reading struct {
	Novelty   float64 `json:"novelty"`
	Consensus float64 `json:"consensus"`
}

// Gauge maintains the bounded novelty history and the derived consensus.
type Gauge struct {
	mu        sync.Mutex
	window    int
	history   []float64
	novelty   float64
	consensus float64
}

// NewGauge creates a gauge with the given history window. A window below 1
// falls back to DefaultHistoryWindow.
func NewGauge(window int) *Gauge {
	if window < 1 {
		window = DefaultHistoryWindow
	}
	return &Gauge{
		window:    window,
		novelty:   neutralNovelty,
		consensus: neutralConsensus,
	}
}

// RecordNovelty clamps value to [0,100], appends it to the history
// (evicting the oldest sample at capacity), and recomputes consensus from
// the retained samples.
func (g *Gauge) RecordNovelty(value float64) Reading {
	value = clamp(value)

	g.mu.Lock()
	defer g.mu.Unlock()

	g.novelty = value
	g.history = append(g.history, value)
	if len(g.history) > g.window {
		g.history = g.history[len(g.history)-g.window:]
	}

	var sum float64
	for _, sample := range g.history {
		sum += sample
	}
	g.consensus = clamp(100 - sum/float64(len(g.history)))

	return Reading{Novelty: g.novelty, Consensus: g.consensus}
}

// ForceConsensus overrides the derived consensus without touching the
// history. Used for the authoritative converged signal: the mean-based
// value must not fight it until the history is reset.
func (g *Gauge) ForceConsensus(value float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.consensus = clamp(value)
}

// Reset clears the history and returns both indicators to their neutral
// defaults.
func (g *Gauge) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.history = nil
	g.novelty = neutralNovelty
	g.consensus = neutralConsensus
}

// Consensus returns the current derived consensus.
func (g *Gauge) Consensus() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.consensus
}

// Novelty returns the most recently recorded novelty.
func (g *Gauge) Novelty() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.novelty
}

// Reading returns both indicators as one value.
func (g *Gauge) Reading() Reading {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Reading{Novelty: g.novelty, Consensus: g.consensus}
}

// History returns a copy of the retained novelty samples, oldest first.
func (g *Gauge) History() []float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	history := make([]float64, len(g.history))
	copy(history, g.history)
	return history
}

// SetWindow reconfigures the history window. Excess samples are evicted
// oldest-first on the next boundary check. A window below 1 is rejected.
func (g *Gauge) SetWindow(window int) error {
	if window < 1 {
		return errors.New(errors.CodeMetricsInvalidWindow, "history window must be at least 1")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.window = window
	if len(g.history) > g.window {
		g.history = g.history[len(g.history)-g.window:]
	}
	return nil
}

func clamp(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
