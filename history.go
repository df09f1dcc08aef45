package main

import (
	"sync"
	"time"
)

const (
	// DefaultHistorySize is the event history depth used when nothing has
	// been persisted
	DefaultHistorySize = 200
	// MaxHistorySize caps the configurable event history depth
	MaxHistorySize = 2000
)

// TunerEventRecord is the stored form of a dispatched tuner event
type TunerEventRecord struct {
	Kind            string    `json:"kind"`
	TunerName       string    `json:"tuner,omitempty"`
	TargetFrequency int64     `json:"target_frequency,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// EventHistory keeps a bounded, clearable history of dispatched tuner
// events with per-kind enable/disable filters. Oldest entries are trimmed
// first. Disabled kinds are not recorded at all.
type EventHistory struct {
	mu       sync.Mutex
	size     int
	items    []TunerEventRecord
	disabled map[TunerEventKind]bool // All kinds enabled unless present
}

// NewEventHistory creates a history with the given size, clamped to
// [0, MaxHistorySize]
func NewEventHistory(size int) *EventHistory {
	h := &EventHistory{
		disabled: make(map[TunerEventKind]bool),
	}
	h.size = clampHistorySize(size)
	return h
}

func clampHistorySize(size int) int {
	if size < 0 {
		return 0
	}
	if size > MaxHistorySize {
		return MaxHistorySize
	}
	return size
}

// Record stores a dispatched event unless its kind is filtered out.
// Registered as a listener on the tuner event broadcaster.
func (h *EventHistory) Record(event TunerEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.disabled[event.Kind()] || h.size == 0 {
		return
	}

	record := TunerEventRecord{
		Kind:      event.Kind().String(),
		Timestamp: time.Now(),
	}
	if event.HasTuner() {
		record.TunerName = event.Tuner().Name()
	}
	if event.HasTargetFrequency() {
		record.TargetFrequency = event.TargetFrequency()
	}

	h.items = append(h.items, record)
	if len(h.items) > h.size {
		h.items = h.items[len(h.items)-h.size:]
	}
}

// Items returns a snapshot of the history, oldest first
func (h *EventHistory) Items() []TunerEventRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	snapshot := make([]TunerEventRecord, len(h.items))
	copy(snapshot, h.items)
	return snapshot
}

// Clear discards the entire history
func (h *EventHistory) Clear() {
	h.mu.Lock()
	h.items = nil
	h.mu.Unlock()
}

// Size returns the current history depth limit
func (h *EventHistory) Size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.size
}

// SetSize changes the history depth, clamped to [0, MaxHistorySize],
// trimming oldest entries immediately when shrinking. Returns the applied
// size.
func (h *EventHistory) SetSize(size int) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.size = clampHistorySize(size)
	if len(h.items) > h.size {
		h.items = h.items[len(h.items)-h.size:]
	}
	return h.size
}

// SetKindEnabled enables or disables recording of an event kind
func (h *EventHistory) SetKindEnabled(kind TunerEventKind, enabled bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if enabled {
		delete(h.disabled, kind)
	} else {
		h.disabled[kind] = true
	}
}

// KindEnabled reports whether events of the given kind are recorded
func (h *EventHistory) KindEnabled(kind TunerEventKind) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.disabled[kind]
}

// Filters returns the enabled state for every event kind, keyed by wire name
func (h *EventHistory) Filters() map[string]bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	filters := make(map[string]bool, len(tunerEventKindNames))
	for _, kind := range AllTunerEventKinds() {
		filters[kind.String()] = !h.disabled[kind]
	}
	return filters
}
