package notify

import "testing"

func TestSubscribeAndPublish(t *testing.T) {
	b := NewBroadcaster[int]()

	var first, second []int
	b.Subscribe(func(v int) { first = append(first, v) })
	b.Subscribe(func(v int) { second = append(second, v) })

	b.Publish(1)
	b.Publish(2)

	for name, got := range map[string][]int{"first": first, "second": second} {
		if len(got) != 2 || got[0] != 1 || got[1] != 2 {
			t.Errorf("%s subscriber received %v, want [1 2]", name, got)
		}
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	b := NewBroadcaster[int]()

	var got []int
	unsubscribe := b.Subscribe(func(v int) { got = append(got, v) })
	var kept []int
	b.Subscribe(func(v int) { kept = append(kept, v) })

	unsubscribe()
	unsubscribe() // second call must be safe and remove nothing else

	b.Publish(7)

	if len(got) != 0 {
		t.Errorf("unsubscribed handler received %v", got)
	}
	if len(kept) != 1 || kept[0] != 7 {
		t.Errorf("remaining handler received %v, want [7]", kept)
	}
	if b.Len() != 1 {
		t.Errorf("Len() = %d, want 1", b.Len())
	}
}

func TestUnsubscribeDuringPublish(t *testing.T) {
	b := NewBroadcaster[int]()

	var calls int
	var unsubscribe func()
	unsubscribe = b.Subscribe(func(v int) {
		calls++
		unsubscribe()
	})
	var otherCalls int
	b.Subscribe(func(v int) { otherCalls++ })

	b.Publish(1)
	b.Publish(2)

	if calls != 1 {
		t.Errorf("self-unsubscribing handler called %d times, want 1", calls)
	}
	if otherCalls != 2 {
		t.Errorf("other handler called %d times, want 2", otherCalls)
	}
}

func TestNilHandler(t *testing.T) {
	b := NewBroadcaster[int]()
	unsubscribe := b.Subscribe(nil)
	unsubscribe()
	b.Publish(1)
	if b.Len() != 0 {
		t.Errorf("Len() = %d, want 0", b.Len())
	}
}
