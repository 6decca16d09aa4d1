// Package reconcile maps incoming meeting events onto registry and metrics
// operations.
//
// The reconciler is the only component that interprets event payloads. It
// holds the meeting lifecycle value object, owns the turn-linger timer,
// and fans meeting/metrics updates out to presentation subscribers.
// Everything it does is recoverable: malformed payloads skip only the side
// effects that depended on the missing fields, unknown kinds are logged
// and dropped, and duplicate or out-of-order events are absorbed by the
// registry's idempotence rules.
package reconcile

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/boardroomhq/boardroom/internal/event"
	"github.com/boardroomhq/boardroom/internal/id"
	"github.com/boardroomhq/boardroom/internal/scene/metrics"
	"github.com/boardroomhq/boardroom/internal/scene/notify"
	"github.com/boardroomhq/boardroom/internal/scene/participant"
	"github.com/boardroomhq/boardroom/internal/storage"
)

// DefaultTurnLinger is how long a completed turn visually persists as
// speaking before the scheduled clear fires. Presentation tuning, not a
// contract.
const DefaultTurnLinger = 500 * time.Millisecond

// Options configures a Reconciler.
type Options struct {
	// Registry receives participant operations. Required.
	Registry *participant.Registry
	// Gauge receives novelty samples and consensus overrides. Required.
	Gauge *metrics.Gauge
	// Journal, when set, records every received envelope. Journal errors
	// are logged and never interrupt reconciliation.
	Journal storage.JournalStore
	// TurnLinger overrides DefaultTurnLinger.
	TurnLinger time.Duration
	// Clock supplies journal timestamps. Defaults to time.Now.
	Clock func() time.Time
}

// Reconciler dispatches event envelopes onto the scene components.
type Reconciler struct {
	registry *participant.Registry
	gauge    *metrics.Gauge
	journal  storage.JournalStore
	linger   time.Duration
	clock    func() time.Time
	updates  *notify.Broadcaster[Update]

	mu          sync.Mutex
	meeting     Meeting
	lingerTimer *time.Timer
	lingerGen   uint64
	closed      bool
}

// NewReconciler creates a reconciler over the given scene components.
func NewReconciler(opts Options) *Reconciler {
	linger := opts.TurnLinger
	if linger <= 0 {
		linger = DefaultTurnLinger
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Reconciler{
		registry: opts.Registry,
		gauge:    opts.Gauge,
		journal:  opts.Journal,
		linger:   linger,
		clock:    clock,
		updates:  notify.NewBroadcaster[Update](),
		meeting:  Meeting{Status: StatusWaiting},
	}
}

// Subscribe registers an update handler and returns its unsubscribe
// function.
func (r *Reconciler) Subscribe(handler func(Update)) func() {
	return r.updates.Subscribe(handler)
}

// Meeting returns a copy of the current meeting state.
func (r *Reconciler) Meeting() Meeting {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meeting
}

// Close cancels any outstanding linger timer. Further envelopes are
// dropped.
func (r *Reconciler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.cancelLingerLocked()
}

// Handle processes one envelope to completion. Events are expected in
// arrival order; Handle never reorders or deduplicates.
func (r *Reconciler) Handle(ctx context.Context, env event.Envelope) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	if r.journal != nil {
		if err := r.journal.AppendEnvelope(ctx, env, r.clock()); err != nil {
			log.Printf("reconcile: journal %s: %v", env.EventType, err)
		}
	}

	kind, ok := env.Kind()
	if !ok {
		log.Printf("reconcile: ignoring unknown event type %q", env.EventType)
		return
	}

	switch kind {
	case event.KindMeetingCreated:
		r.handleMeetingCreated(env)
	case event.KindMeetingStarted:
		r.handleMeetingStarted(env)
	case event.KindParticipantAdded:
		r.handleParticipantAdded(env)
	case event.KindTurnCompleted:
		r.handleTurnCompleted(env)
	case event.KindRoundCompleted:
		r.handleRoundCompleted(env)
	case event.KindConverged:
		r.handleConverged(env)
	case event.KindCompleted:
		r.handleCompleted(env)
	case event.KindFailed:
		r.handleFailed(env)
	}
}

func (r *Reconciler) handleMeetingCreated(env event.Envelope) {
	payload, err := event.Decode[event.MeetingCreatedPayload](env)
	if err != nil {
		log.Printf("reconcile: %v", err)
		return
	}

	meetingID := strings.TrimSpace(env.CorrelationID)
	if meetingID == "" {
		meetingID = strings.TrimSpace(payload.MeetingID)
	}
	if meetingID == "" {
		if generated, idErr := id.NewID(); idErr == nil {
			meetingID = generated
		}
	}

	meeting := Meeting{ID: meetingID, Status: StatusWaiting}
	if payload.Topic != nil {
		meeting.Topic = strings.TrimSpace(*payload.Topic)
	} else {
		log.Printf("reconcile: meeting.created without topic")
	}
	if payload.MaxRounds != nil {
		meeting.MaxRounds = *payload.MaxRounds
	} else {
		log.Printf("reconcile: meeting.created without max_rounds")
	}

	r.mu.Lock()
	r.cancelLingerLocked()
	r.meeting = meeting
	r.mu.Unlock()

	r.registry.ClearAll()
	r.gauge.Reset()
	reading := r.gauge.Reading()
	r.updates.Publish(Update{Kind: UpdateMeeting, Meeting: &meeting})
	r.updates.Publish(Update{Kind: UpdateMetrics, Metrics: &reading})
}

func (r *Reconciler) handleMeetingStarted(env event.Envelope) {
	payload, err := event.Decode[event.MeetingStartedPayload](env)
	if err != nil {
		log.Printf("reconcile: %v", err)
		return
	}

	if len(payload.SelectedAgents) == 0 {
		log.Printf("reconcile: meeting.started without selected_agents")
	}
	for _, name := range payload.SelectedAgents {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		r.registry.Add(name, name, "")
	}

	r.mu.Lock()
	r.meeting.Status = StatusActive
	r.meeting.CurrentRound = 1
	meeting := r.meeting
	r.mu.Unlock()

	r.updates.Publish(Update{Kind: UpdateMeeting, Meeting: &meeting})
}

func (r *Reconciler) handleParticipantAdded(env event.Envelope) {
	payload, err := event.Decode[event.ParticipantAddedPayload](env)
	if err != nil {
		log.Printf("reconcile: %v", err)
		return
	}
	if payload.AgentName == nil || strings.TrimSpace(*payload.AgentName) == "" {
		log.Printf("reconcile: participant.added without agent_name")
		return
	}
	name := strings.TrimSpace(*payload.AgentName)
	r.registry.Add(name, name, payload.RoleLabel())
}

func (r *Reconciler) handleTurnCompleted(env event.Envelope) {
	payload, err := event.Decode[event.TurnCompletedPayload](env)
	if err != nil {
		log.Printf("reconcile: %v", err)
		return
	}
	if payload.AgentName == nil || strings.TrimSpace(*payload.AgentName) == "" {
		log.Printf("reconcile: participant.turn.completed without agent_name")
		return
	}

	// The stream may omit turn_type; the generic kind carries no meaning
	// beyond "unspecified".
	turnKind := participant.TurnKindTurn
	if payload.TurnType != nil && strings.TrimSpace(*payload.TurnType) != "" {
		turnKind = participant.TurnKind(strings.TrimSpace(*payload.TurnType))
	}
	round := 0
	if payload.RoundNum != nil {
		round = *payload.RoundNum
	}

	r.registry.SetSpeaking(strings.TrimSpace(*payload.AgentName), turnKind, round)
	r.scheduleLingerClear()
}

func (r *Reconciler) handleRoundCompleted(env event.Envelope) {
	payload, err := event.Decode[event.RoundCompletedPayload](env)
	if err != nil {
		log.Printf("reconcile: %v", err)
		return
	}

	if payload.RoundNum != nil {
		r.mu.Lock()
		r.meeting.CurrentRound = *payload.RoundNum
		meeting := r.meeting
		r.mu.Unlock()
		r.updates.Publish(Update{Kind: UpdateMeeting, Meeting: &meeting})
	} else {
		log.Printf("reconcile: meeting.round_completed without round_num")
	}

	if payload.AvgNovelty != nil {
		reading := r.gauge.RecordNovelty(*payload.AvgNovelty)
		r.updates.Publish(Update{Kind: UpdateMetrics, Metrics: &reading})
	} else {
		log.Printf("reconcile: meeting.round_completed without avg_novelty")
	}
}

func (r *Reconciler) handleConverged(env event.Envelope) {
	payload, err := event.Decode[event.ConvergedPayload](env)
	if err != nil {
		log.Printf("reconcile: %v", err)
		return
	}

	r.mu.Lock()
	r.cancelLingerLocked()
	r.meeting.Status = StatusConverged
	if payload.RoundNum != nil {
		r.meeting.CurrentRound = *payload.RoundNum
	}
	meeting := r.meeting
	r.mu.Unlock()

	r.registry.SetSpeaking("", participant.TurnKindNone, 0)
	r.gauge.ForceConsensus(100)
	reading := r.gauge.Reading()

	r.updates.Publish(Update{Kind: UpdateMeeting, Meeting: &meeting})
	r.updates.Publish(Update{Kind: UpdateMetrics, Metrics: &reading})
}

func (r *Reconciler) handleCompleted(env event.Envelope) {
	payload, err := event.Decode[event.CompletedPayload](env)
	if err != nil {
		log.Printf("reconcile: %v", err)
		return
	}

	r.mu.Lock()
	r.cancelLingerLocked()
	r.meeting.Status = StatusCompleted
	if payload.TotalRounds != nil {
		r.meeting.CurrentRound = *payload.TotalRounds
	}
	meeting := r.meeting
	r.mu.Unlock()

	r.registry.SetSpeaking("", participant.TurnKindNone, 0)

	r.updates.Publish(Update{Kind: UpdateMeeting, Meeting: &meeting})
	if len(payload.Summary) > 0 {
		// Pass-through: the summary reaches presentation untransformed.
		r.updates.Publish(Update{Kind: UpdateSummary, Summary: payload.Summary})
	}
}

func (r *Reconciler) handleFailed(env event.Envelope) {
	payload, err := event.Decode[event.FailedPayload](env)
	if err != nil {
		log.Printf("reconcile: %v", err)
		return
	}

	r.mu.Lock()
	r.cancelLingerLocked()
	r.meeting.Status = StatusFailed
	if payload.ErrorMessage != nil {
		r.meeting.ErrorMessage = strings.TrimSpace(*payload.ErrorMessage)
	}
	meeting := r.meeting
	r.mu.Unlock()

	r.registry.SetSpeaking("", participant.TurnKindNone, 0)
	r.updates.Publish(Update{Kind: UpdateMeeting, Meeting: &meeting})
}

// scheduleLingerClear arms the turn-linger timer, replacing any timer
// already outstanding: a new turn must never be wiped by a stale clear.
// The generation counter closes the window where a stopped timer's
// callback has already fired and is waiting on the mutex.
func (r *Reconciler) scheduleLingerClear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.cancelLingerLocked()
	r.lingerGen++
	gen := r.lingerGen
	r.lingerTimer = time.AfterFunc(r.linger, func() {
		r.mu.Lock()
		if r.closed || gen != r.lingerGen {
			r.mu.Unlock()
			return
		}
		r.lingerTimer = nil
		r.mu.Unlock()
		r.registry.SetSpeaking("", participant.TurnKindNone, 0)
	})
}

// cancelLingerLocked stops the outstanding linger timer. Caller holds r.mu.
func (r *Reconciler) cancelLingerLocked() {
	r.lingerGen++
	if r.lingerTimer != nil {
		r.lingerTimer.Stop()
		r.lingerTimer = nil
	}
}
