package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBroadcasterFanOut(t *testing.T) {
	b := NewBroadcaster[int]()

	var first, second []int
	b.AddListener(func(v int) { first = append(first, v) })
	b.AddListener(func(v int) { second = append(second, v) })

	b.Broadcast(1)
	b.Broadcast(2)

	assert.Equal(t, []int{1, 2}, first)
	assert.Equal(t, []int{1, 2}, second)
}

func TestBroadcasterZeroListeners(t *testing.T) {
	b := NewBroadcaster[string]()

	// Fire and forget: no listeners is not an error
	b.Broadcast("nobody home")
	assert.Equal(t, 0, b.ListenerCount())
}

func TestBroadcasterRemoveListener(t *testing.T) {
	b := NewBroadcaster[int]()

	var kept, removed []int
	b.AddListener(func(v int) { kept = append(kept, v) })
	id := b.AddListener(func(v int) { removed = append(removed, v) })

	b.Broadcast(1)
	b.RemoveListener(id)
	b.Broadcast(2)

	assert.Equal(t, []int{1, 2}, kept)
	assert.Equal(t, []int{1}, removed)
	assert.Equal(t, 1, b.ListenerCount())
}

func TestBroadcasterRemoveUnknownID(t *testing.T) {
	b := NewBroadcaster[int]()
	b.AddListener(func(int) {})

	b.RemoveListener(99)
	assert.Equal(t, 1, b.ListenerCount())
}
