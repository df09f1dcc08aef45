package main

import "sync"

// Broadcaster fans values out to registered listeners. Dispatch is
// synchronous on the caller's goroutine with no delivery or ordering
// guarantee beyond call order; listeners must not block.
type Broadcaster[T any] struct {
	mu        sync.RWMutex
	listeners []broadcastListener[T]
	nextID    int
}

type broadcastListener[T any] struct {
	id int
	fn func(T)
}

// NewBroadcaster creates an empty broadcaster
func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{}
}

// AddListener registers a listener and returns an ID for later removal
func (b *Broadcaster[T]) AddListener(fn func(T)) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.listeners = append(b.listeners, broadcastListener[T]{id: b.nextID, fn: fn})
	return b.nextID
}

// RemoveListener deregisters the listener with the given ID
func (b *Broadcaster[T]) RemoveListener(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, l := range b.listeners {
		if l.id == id {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return
		}
	}
}

// ListenerCount returns the number of registered listeners
func (b *Broadcaster[T]) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// Broadcast delivers the value to every registered listener in registration
// order. Fire and forget: zero listeners is not an error.
func (b *Broadcaster[T]) Broadcast(value T) {
	b.mu.RLock()
	listeners := make([]broadcastListener[T], len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, l := range listeners {
		l.fn(value)
	}
}
