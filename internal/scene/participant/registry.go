// Package participant owns the registry of meeting attendees and their
// visual state. The registry is the single writer of participant records:
// all mutation goes through its operations, and presentation layers only
// observe copies delivered through change records.
package participant

import (
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/boardroomhq/boardroom/internal/scene/notify"
	"github.com/boardroomhq/boardroom/internal/scene/visual"
)

// DefaultSeatRadius is the seat radius passed through to position data
// when none is configured. It has no effect on core logic.
const DefaultSeatRadius = 220

// palette cycles deterministic accent colors over join order.
var palette = []string{
	"#4f8df7",
	"#f2a541",
	"#5fbf77",
	"#d96a9b",
	"#8a6ff0",
	"#3fc1c9",
	"#e0644f",
	"#b8b04c",
}

// Options configures a Registry.
type Options struct {
	// SeatRadius is carried into derived seat positions. Defaults to
	// DefaultSeatRadius.
	SeatRadius float64
	// Clock supplies join timestamps. Defaults to time.Now.
	Clock func() time.Time
}

// Registry tracks participants in insertion order and derives their seat
// positions. Operations that mutate membership recompute every seat; the
// spec-level invariant is that seat indices are always the contiguous
// range 0..N-1 in insertion order.
type Registry struct {
	mu         sync.Mutex
	seatRadius float64
	clock      func() time.Time

	order      []string
	byID       map[string]*Participant
	colorIndex int

	changes *notify.Broadcaster[Change]
}

// NewRegistry creates an empty registry.
func NewRegistry(opts Options) *Registry {
	radius := opts.SeatRadius
	if radius <= 0 {
		radius = DefaultSeatRadius
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Registry{
		seatRadius: radius,
		clock:      clock,
		byID:       make(map[string]*Participant),
		changes:    notify.NewBroadcaster[Change](),
	}
}

// Subscribe registers a change handler and returns its unsubscribe
// function. Handlers run synchronously on the mutating call.
func (r *Registry) Subscribe(handler func(Change)) func() {
	return r.changes.Subscribe(handler)
}

// Add registers a participant. Adding an id that is already present is
// idempotent: the existing participant is returned unchanged and no
// notification fires. A new participant joins idle with no turn, triggers
// a full seat recomputation, and emits one added record followed by one
// batch positionsChanged record.
func (r *Registry) Add(id, displayName, role string) Participant {
	id = strings.TrimSpace(id)
	if id == "" {
		return Participant{}
	}

	r.mu.Lock()
	if existing, ok := r.byID[id]; ok {
		current := *existing
		r.mu.Unlock()
		return current
	}

	p := &Participant{
		ID:          id,
		DisplayName: strings.TrimSpace(displayName),
		Role:        strings.TrimSpace(role),
		JoinedAt:    r.clock().UTC(),
		VisualState: visual.StateIdle,
		TurnKind:    TurnKindNone,
		Color:       palette[r.colorIndex%len(palette)],
	}
	if p.DisplayName == "" {
		p.DisplayName = id
	}
	r.colorIndex++
	r.order = append(r.order, id)
	r.byID[id] = p
	r.recomputeSeats()

	added := *p
	all := r.snapshotAll()
	r.mu.Unlock()

	r.changes.Publish(Change{Type: ChangeAdded, Participant: &added})
	r.changes.Publish(Change{Type: ChangePositionsChanged, Participants: all})
	return added
}

// Remove deletes a participant. It reports false and has no effect when
// the id is unknown. Removal renumbers the remaining seats contiguously
// and emits removed followed by a batch positionsChanged record.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	p, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return false
	}

	removed := *p
	delete(r.byID, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.recomputeSeats()
	all := r.snapshotAll()
	r.mu.Unlock()

	r.changes.Publish(Change{Type: ChangeRemoved, Participant: &removed})
	r.changes.Publish(Change{Type: ChangePositionsChanged, Participants: all})
	return true
}

// SetSpeaking moves the active turn to the participant with the given id.
//
// A non-empty unknown id is a no-op: participants can legitimately arrive
// out of order relative to their announcement. An empty id clears the
// current speaker and settles every non-idle participant back to idle,
// emitting one batch stateChanged record. Otherwise the previous speaker
// (if any) is cleared, the target starts speaking with the given turn
// kind, and round (when > 0) advances the target's LastActiveRound; a
// single-scoped stateChanged record carries only the new speaker.
//
// At most one participant speaks at any time: the previous holder is
// cleared before the target is set, within the same critical section.
func (r *Registry) SetSpeaking(id string, kind TurnKind, round int) {
	r.mu.Lock()

	if id == "" {
		changed := r.settleAllIdle()
		if !changed {
			r.mu.Unlock()
			return
		}
		all := r.snapshotAll()
		r.mu.Unlock()
		r.changes.Publish(Change{Type: ChangeStateChanged, Participants: all})
		return
	}

	target, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return
	}

	if prev := r.speakingLocked(); prev != nil && prev.ID != id {
		r.clearSpeaker(prev)
	}

	target.IsSpeaking = true
	target.TurnKind = kind
	if round > target.LastActiveRound {
		target.LastActiveRound = round
	}
	if target.VisualState != visual.StateSpeaking {
		next, err := visual.Transition(target.VisualState, visual.StateSpeaking)
		if err != nil {
			log.Printf("registry: participant %s: %v", target.ID, err)
		} else {
			target.VisualState = next
		}
	}

	speaker := *target
	r.mu.Unlock()
	r.changes.Publish(Change{Type: ChangeStateChanged, Participant: &speaker})
}

// Get returns a copy of the participant with the given id.
func (r *Registry) Get(id string) (Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return Participant{}, false
	}
	return *p, true
}

// All returns copies of every participant in insertion order.
func (r *Registry) All() []Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotAll()
}

// Count returns the number of registered participants.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Speaking returns the current speaker, if any.
func (r *Registry) Speaking() (Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.speakingLocked(); p != nil {
		return *p, true
	}
	return Participant{}, false
}

// ClearAll empties the registry, resets the color cycle, and emits one
// cleared record. No positions record follows since nothing remains to
// position.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	r.order = nil
	r.byID = make(map[string]*Participant)
	r.colorIndex = 0
	r.mu.Unlock()
	r.changes.Publish(Change{Type: ChangeCleared})
}

// clearSpeaker releases p's turn and settles it toward listening, falling
// back to idle if the transition is rejected. Caller holds r.mu.
func (r *Registry) clearSpeaker(p *Participant) {
	p.IsSpeaking = false
	p.TurnKind = TurnKindNone
	next, err := visual.Transition(p.VisualState, visual.StateListening)
	if err != nil {
		log.Printf("registry: participant %s: %v", p.ID, err)
		next = visual.StateIdle
	}
	p.VisualState = next
}

// settleAllIdle clears the speaker and moves every non-idle participant to
// idle. It reports whether any participant changed. Caller holds r.mu.
func (r *Registry) settleAllIdle() bool {
	changed := false
	for _, id := range r.order {
		p := r.byID[id]
		if p.IsSpeaking {
			p.IsSpeaking = false
			p.TurnKind = TurnKindNone
			changed = true
		}
		if p.VisualState == visual.StateIdle {
			continue
		}
		next, err := visual.Transition(p.VisualState, visual.StateIdle)
		if err != nil {
			log.Printf("registry: participant %s: %v", p.ID, err)
			continue
		}
		p.VisualState = next
		changed = true
	}
	return changed
}

func (r *Registry) speakingLocked() *Participant {
	for _, id := range r.order {
		if p := r.byID[id]; p.IsSpeaking {
			return p
		}
	}
	return nil
}

// recomputeSeats reassigns every seat from scratch. The assignment is a
// pure function of insertion order and count; partial updates would let
// positions drift. Caller holds r.mu.
func (r *Registry) recomputeSeats() {
	n := len(r.order)
	for i, id := range r.order {
		p := r.byID[id]
		p.Seat = Seat{
			Angle:  2*math.Pi*float64(i)/float64(n) - math.Pi/2,
			Radius: r.seatRadius,
			Index:  i,
		}
	}
}

func (r *Registry) snapshotAll() []Participant {
	all := make([]Participant, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, *r.byID[id])
	}
	return all
}
