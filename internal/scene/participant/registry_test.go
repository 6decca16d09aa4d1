package participant

import (
	"math"
	"testing"
	"time"

	"github.com/boardroomhq/boardroom/internal/scene/visual"
)

func fixedClock() time.Time {
	return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
}

func newTestRegistry() *Registry {
	return NewRegistry(Options{Clock: fixedClock})
}

func TestAddIsIdempotent(t *testing.T) {
	r := newTestRegistry()

	var added int
	r.Subscribe(func(c Change) {
		if c.Type == ChangeAdded {
			added++
		}
	})

	first := r.Add("agent-1", "Ada", "analyst")
	second := r.Add("agent-1", "Different Name", "other")

	if r.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", r.Count())
	}
	if second != first {
		t.Errorf("duplicate add returned %+v, want existing %+v", second, first)
	}
	if added != 1 {
		t.Errorf("added notifications = %d, want 1", added)
	}
}

func TestAddDefaults(t *testing.T) {
	r := newTestRegistry()
	p := r.Add("agent-1", "Ada", "analyst")

	if p.VisualState != visual.StateIdle {
		t.Errorf("visual state = %s, want idle", p.VisualState)
	}
	if p.TurnKind != TurnKindNone {
		t.Errorf("turn kind = %s, want none", p.TurnKind)
	}
	if p.LastActiveRound != 0 {
		t.Errorf("last active round = %d, want 0", p.LastActiveRound)
	}
	if p.JoinedAt != fixedClock() {
		t.Errorf("joined at = %v, want fixed clock value", p.JoinedAt)
	}
	if p.Color == "" {
		t.Error("color not assigned")
	}
}

func TestAddEmptyID(t *testing.T) {
	r := newTestRegistry()
	p := r.Add("  ", "Ada", "analyst")
	if p.ID != "" {
		t.Errorf("empty id add returned %+v", p)
	}
	if r.Count() != 0 {
		t.Errorf("Count() = %d, want 0", r.Count())
	}
}

func TestSeatInvariant(t *testing.T) {
	r := newTestRegistry()
	ids := []string{"a", "b", "c", "d", "e"}
	for _, id := range ids {
		r.Add(id, id, "agent")
	}

	assertContiguousSeats := func(t *testing.T, want int) {
		t.Helper()
		all := r.All()
		if len(all) != want {
			t.Fatalf("participant count = %d, want %d", len(all), want)
		}
		for i, p := range all {
			if p.Seat.Index != i {
				t.Errorf("seat index for %s = %d, want %d", p.ID, p.Seat.Index, i)
			}
			wantAngle := 2*math.Pi*float64(i)/float64(want) - math.Pi/2
			if math.Abs(p.Seat.Angle-wantAngle) > 1e-12 {
				t.Errorf("seat angle for %s = %v, want %v", p.ID, p.Seat.Angle, wantAngle)
			}
			if p.Seat.Radius != DefaultSeatRadius {
				t.Errorf("seat radius for %s = %v, want %v", p.ID, p.Seat.Radius, DefaultSeatRadius)
			}
		}
	}

	assertContiguousSeats(t, 5)

	// Removing from the middle renumbers the remainder contiguously.
	if !r.Remove("c") {
		t.Fatal("Remove(c) = false, want true")
	}
	assertContiguousSeats(t, 4)
}

func TestRemoveUnknown(t *testing.T) {
	r := newTestRegistry()
	r.Add("a", "A", "agent")

	var notifications int
	r.Subscribe(func(Change) { notifications++ })

	if r.Remove("missing") {
		t.Error("Remove(missing) = true, want false")
	}
	if notifications != 0 {
		t.Errorf("notifications after unknown remove = %d, want 0", notifications)
	}
}

func TestSingleSpeakerInvariant(t *testing.T) {
	r := newTestRegistry()
	ids := []string{"a", "b", "c"}
	for _, id := range ids {
		r.Add(id, id, "agent")
	}

	sequence := []string{"a", "b", "b", "c", "a"}
	for _, id := range sequence {
		r.SetSpeaking(id, TurnKindTurn, 1)

		speakers := 0
		for _, p := range r.All() {
			if p.IsSpeaking {
				speakers++
			}
		}
		if speakers != 1 {
			t.Fatalf("after SetSpeaking(%s): %d speakers, want 1", id, speakers)
		}
		got, ok := r.Speaking()
		if !ok || got.ID != id {
			t.Fatalf("Speaking() = %v/%v, want %s", got.ID, ok, id)
		}
	}
}

func TestSetSpeakingDisplacesPreviousToListening(t *testing.T) {
	r := newTestRegistry()
	r.Add("a", "A", "agent")
	r.Add("b", "B", "agent")

	r.SetSpeaking("a", TurnKindPrimary, 1)
	r.SetSpeaking("b", TurnKindFollowUp, 1)

	prev, _ := r.Get("a")
	if prev.IsSpeaking {
		t.Error("displaced speaker still marked speaking")
	}
	if prev.TurnKind != TurnKindNone {
		t.Errorf("displaced speaker turn kind = %s, want none", prev.TurnKind)
	}
	if prev.VisualState != visual.StateListening {
		t.Errorf("displaced speaker state = %s, want listening", prev.VisualState)
	}
}

func TestSetSpeakingRoundIsMonotonic(t *testing.T) {
	r := newTestRegistry()
	r.Add("a", "A", "agent")

	r.SetSpeaking("a", TurnKindTurn, 3)
	r.SetSpeaking("", TurnKindNone, 0)
	r.SetSpeaking("a", TurnKindTurn, 2) // stale round must not regress

	p, _ := r.Get("a")
	if p.LastActiveRound != 3 {
		t.Errorf("last active round = %d, want 3", p.LastActiveRound)
	}
}

func TestSetSpeakingUnknownIDIsNoOp(t *testing.T) {
	r := newTestRegistry()
	r.Add("a", "A", "agent")
	r.SetSpeaking("a", TurnKindTurn, 1)

	var notifications int
	r.Subscribe(func(Change) { notifications++ })

	r.SetSpeaking("ghost", TurnKindTurn, 2)

	if notifications != 0 {
		t.Errorf("notifications after unknown speaker = %d, want 0", notifications)
	}
	speaker, ok := r.Speaking()
	if !ok || speaker.ID != "a" {
		t.Errorf("Speaking() = %v/%v, want a", speaker.ID, ok)
	}
}

func TestSetSpeakingClearAllShape(t *testing.T) {
	r := newTestRegistry()
	r.Add("a", "A", "agent")
	r.Add("b", "B", "agent")
	r.SetSpeaking("a", TurnKindTurn, 1)

	var changes []Change
	r.Subscribe(func(c Change) { changes = append(changes, c) })

	r.SetSpeaking("", TurnKindNone, 0)

	if len(changes) != 1 {
		t.Fatalf("clear emitted %d records, want 1 batch record", len(changes))
	}
	c := changes[0]
	if c.Type != ChangeStateChanged {
		t.Errorf("record type = %s, want stateChanged", c.Type)
	}
	if c.Participant != nil {
		t.Error("batch record must not carry a single entity")
	}
	if len(c.Participants) != 2 {
		t.Errorf("batch record carries %d entities, want 2", len(c.Participants))
	}
	for _, p := range c.Participants {
		if p.IsSpeaking {
			t.Errorf("participant %s still speaking after clear", p.ID)
		}
		if p.VisualState != visual.StateIdle {
			t.Errorf("participant %s state = %s, want idle", p.ID, p.VisualState)
		}
	}

	if _, ok := r.Speaking(); ok {
		t.Error("Speaking() reports a speaker after clear")
	}
}

func TestSetSpeakingSingleEntityShape(t *testing.T) {
	r := newTestRegistry()
	r.Add("a", "A", "agent")

	var changes []Change
	r.Subscribe(func(c Change) { changes = append(changes, c) })

	r.SetSpeaking("a", TurnKindTurn, 1)

	if len(changes) != 1 {
		t.Fatalf("set speaking emitted %d records, want 1", len(changes))
	}
	c := changes[0]
	if c.Type != ChangeStateChanged {
		t.Errorf("record type = %s, want stateChanged", c.Type)
	}
	if c.Participant == nil || c.Participant.ID != "a" {
		t.Fatal("single record must carry the new speaker")
	}
	if c.Participants != nil {
		t.Error("single record must not carry a batch")
	}
	if !c.Participant.IsSpeaking || c.Participant.TurnKind != TurnKindTurn || c.Participant.LastActiveRound != 1 {
		t.Errorf("speaker record = %+v, want speaking/turn/round 1", c.Participant)
	}
}

func TestClearAllResetsColorCycle(t *testing.T) {
	r := newTestRegistry()
	first := r.Add("a", "A", "agent")

	var cleared int
	r.Subscribe(func(c Change) {
		if c.Type == ChangeCleared {
			cleared++
		}
	})

	r.ClearAll()
	if r.Count() != 0 {
		t.Fatalf("Count() after ClearAll = %d, want 0", r.Count())
	}
	if cleared != 1 {
		t.Errorf("cleared notifications = %d, want 1", cleared)
	}

	again := r.Add("z", "Z", "agent")
	if again.Color != first.Color {
		t.Errorf("color after reset = %s, want cycle restart at %s", again.Color, first.Color)
	}
}

func TestAddNotificationOrder(t *testing.T) {
	r := newTestRegistry()

	var types []ChangeType
	r.Subscribe(func(c Change) { types = append(types, c.Type) })

	r.Add("a", "A", "agent")

	if len(types) != 2 || types[0] != ChangeAdded || types[1] != ChangePositionsChanged {
		t.Errorf("notification order = %v, want [added positionsChanged]", types)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	r := newTestRegistry()

	var calls int
	unsubscribe := r.Subscribe(func(Change) { calls++ })
	r.Add("a", "A", "agent")
	if calls == 0 {
		t.Fatal("subscriber not called")
	}

	before := calls
	unsubscribe()
	unsubscribe() // idempotent
	r.Add("b", "B", "agent")
	if calls != before {
		t.Errorf("calls after unsubscribe = %d, want %d", calls, before)
	}
}
