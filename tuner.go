package main

import (
	"fmt"
	"log"
	"sync"
)

// Tuner is a handle to an active receiver. Property reads go to the device at
// call time and can fail at any moment, typically while the device is being
// torn down by the discovery process.
type Tuner interface {
	// Name returns the tuner's display name/ID
	Name() string
	// CenterFrequency returns the current center frequency in Hz
	CenterFrequency() (int64, error)
	// SampleRate returns the current sample rate in Hz
	SampleRate() (int64, error)
}

// StaticTuner is a tuner handle backed by in-process state, seeded from
// configuration and retuned via the API. Reads fail once the tuner has been
// closed so that a removal mid-scan behaves like a real device teardown.
type StaticTuner struct {
	name   string
	mu     sync.RWMutex
	center int64
	rate   int64
	closed bool
}

// NewStaticTuner creates a tuner with the given initial center frequency and
// sample rate in Hz
func NewStaticTuner(name string, centerFrequency, sampleRate int64) *StaticTuner {
	return &StaticTuner{
		name:   name,
		center: centerFrequency,
		rate:   sampleRate,
	}
}

// Name returns the tuner name
func (t *StaticTuner) Name() string {
	return t.name
}

// CenterFrequency returns the current center frequency in Hz
func (t *StaticTuner) CenterFrequency() (int64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed {
		return 0, fmt.Errorf("tuner %s is closed", t.name)
	}
	return t.center, nil
}

// SampleRate returns the current sample rate in Hz
func (t *StaticTuner) SampleRate() (int64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed {
		return 0, fmt.Errorf("tuner %s is closed", t.name)
	}
	return t.rate, nil
}

// SetCenterFrequency retunes the tuner. Fails once the tuner is closed
func (t *StaticTuner) SetCenterFrequency(frequency int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("tuner %s is closed", t.name)
	}
	t.center = frequency
	return nil
}

// SetSampleRate changes the tuner sample rate. Fails once the tuner is closed
func (t *StaticTuner) SetSampleRate(rate int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("tuner %s is closed", t.name)
	}
	t.rate = rate
	return nil
}

// Close marks the tuner as torn down; all subsequent property reads fail
func (t *StaticTuner) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
}

func (t *StaticTuner) String() string {
	return t.name
}

// TunerModel is the registry of discovered tuners. It preserves discovery
// order (iteration order is an implementation detail, not a contract) and
// broadcasts TunerEvents to registered listeners.
type TunerModel struct {
	mu     sync.RWMutex
	tuners []Tuner

	events *Broadcaster[TunerEvent]
}

// NewTunerModel creates an empty tuner registry
func NewTunerModel() *TunerModel {
	return &TunerModel{
		events: NewBroadcaster[TunerEvent](),
	}
}

// AddTuner registers a tuner and announces the change to listeners
func (tm *TunerModel) AddTuner(tuner Tuner) {
	tm.mu.Lock()
	tm.tuners = append(tm.tuners, tuner)
	count := len(tm.tuners)
	tm.mu.Unlock()

	log.Printf("Tuners: added [%s] (%d total)", tuner.Name(), count)
	tm.Broadcast(NewTunerEvent(tuner, EventUpdateChannelCount))
}

// RemoveTuner deregisters the named tuner and announces the teardown.
// Returns false when no tuner with that name is registered.
func (tm *TunerModel) RemoveTuner(name string) bool {
	tm.mu.Lock()
	var removed Tuner
	for i, t := range tm.tuners {
		if t.Name() == name {
			removed = t
			tm.tuners = append(tm.tuners[:i], tm.tuners[i+1:]...)
			break
		}
	}
	count := len(tm.tuners)
	tm.mu.Unlock()

	if removed == nil {
		return false
	}

	if st, ok := removed.(*StaticTuner); ok {
		st.Close()
	}

	log.Printf("Tuners: removed [%s] (%d remaining)", name, count)
	tm.Broadcast(NewTunerEvent(removed, EventNotificationShuttingDown))
	return true
}

// Tuners returns a snapshot of the registered tuners in discovery order.
// Tuners removed after the snapshot is taken simply fail their property
// reads; callers are expected to skip them.
func (tm *TunerModel) Tuners() []Tuner {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	snapshot := make([]Tuner, len(tm.tuners))
	copy(snapshot, tm.tuners)
	return snapshot
}

// GetTuner returns the named tuner, or nil
func (tm *TunerModel) GetTuner(name string) Tuner {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	for _, t := range tm.tuners {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

// Count returns the number of registered tuners
func (tm *TunerModel) Count() int {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return len(tm.tuners)
}

// Broadcast delivers a tuner event to all registered listeners
func (tm *TunerModel) Broadcast(event TunerEvent) {
	tm.events.Broadcast(event)
}

// AddListener registers a tuner event listener and returns its removal ID
func (tm *TunerModel) AddListener(fn func(TunerEvent)) int {
	return tm.events.AddListener(fn)
}

// RemoveListener deregisters a tuner event listener
func (tm *TunerModel) RemoveListener(id int) {
	tm.events.RemoveListener(id)
}
