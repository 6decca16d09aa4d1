// Package notify provides a synchronous fan-out channel for scene changes.
//
// Subscribers receive each published value via a direct callback in
// subscription order. The subscriber list is snapshotted before iterating,
// so a handler may unsubscribe itself (or any other handler) while a
// publish is in flight.
package notify

import "sync"

type subscription[T any] struct {
	id      int
	handler func(T)
}

// Broadcaster fans values out to registered subscribers.
type Broadcaster[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   []subscription[T]
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{}
}

// Subscribe registers a handler and returns its unsubscribe function.
// The unsubscribe function removes exactly that handler and is safe to
// call more than once.
func (b *Broadcaster[T]) Subscribe(handler func(T)) func() {
	if handler == nil {
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription[T]{id: id, handler: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, sub := range b.subs {
			if sub.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers value to every subscriber registered at call time.
func (b *Broadcaster[T]) Publish(value T) {
	b.mu.Lock()
	snapshot := make([]subscription[T], len(b.subs))
	copy(snapshot, b.subs)
	b.mu.Unlock()

	for _, sub := range snapshot {
		sub.handler(value)
	}
}

// Len returns the number of active subscribers.
func (b *Broadcaster[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
