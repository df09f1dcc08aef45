package main

import (
	"sort"
	"sync"
	"time"
)

// ChannelState describes the decoder state of a monitored channel
type ChannelState int

const (
	StateIdle ChannelState = iota
	StateActive
	StateCall
	StateControl
	StateData
	StateEncrypted
	StateFade
	StateReset
	StateTeardown
)

var channelStateNames = map[ChannelState]string{
	StateIdle:      "idle",
	StateActive:    "active",
	StateCall:      "call",
	StateControl:   "control",
	StateData:      "data",
	StateEncrypted: "encrypted",
	StateFade:      "fade",
	StateReset:     "reset",
	StateTeardown:  "teardown",
}

func (s ChannelState) String() string {
	if name, ok := channelStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseChannelState resolves a state name back to its ChannelState
func ParseChannelState(name string) (ChannelState, bool) {
	for state, n := range channelStateNames {
		if n == name {
			return state, true
		}
	}
	return StateIdle, false
}

// ChannelMetadata is a snapshot of a decoding channel's live metadata
type ChannelMetadata struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Frequency   int64        `json:"frequency"` // Hz
	State       ChannelState `json:"-"`
	From        string       `json:"from,omitempty"`
	FromAlias   string       `json:"from_alias,omitempty"`
	TalkerAlias string       `json:"talker_alias,omitempty"`
	To          string       `json:"to,omitempty"`
	ToAlias     string       `json:"to_alias,omitempty"`
	LastUpdate  time.Time    `json:"last_update"`
}

// ChannelMetadataModel tracks live metadata for all decoding channels.
// Channels are added and removed by the processing layer while API and
// websocket consumers read snapshots, so all access is mutex guarded.
type ChannelMetadataModel struct {
	mu       sync.RWMutex
	channels map[int]ChannelMetadata
	order    []int // Insertion order for stable listings

	addListeners *Broadcaster[ChannelMetadata]
}

// NewChannelMetadataModel creates an empty channel metadata model
func NewChannelMetadataModel() *ChannelMetadataModel {
	return &ChannelMetadataModel{
		channels:     make(map[int]ChannelMetadata),
		addListeners: NewBroadcaster[ChannelMetadata](),
	}
}

// AddChannel registers channel metadata and notifies add listeners. An
// existing channel with the same ID is replaced in place without
// renotification.
func (cm *ChannelMetadataModel) AddChannel(metadata ChannelMetadata) {
	metadata.LastUpdate = time.Now()

	cm.mu.Lock()
	_, exists := cm.channels[metadata.ID]
	cm.channels[metadata.ID] = metadata
	if !exists {
		cm.order = append(cm.order, metadata.ID)
	}
	cm.mu.Unlock()

	if !exists {
		cm.addListeners.Broadcast(metadata)
	}
}

// UpdateState sets the decoder state for a channel. Returns false when the
// channel is not tracked.
func (cm *ChannelMetadataModel) UpdateState(id int, state ChannelState) bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	metadata, ok := cm.channels[id]
	if !ok {
		return false
	}

	metadata.State = state
	metadata.LastUpdate = time.Now()
	cm.channels[id] = metadata
	return true
}

// RemoveChannel drops a channel from the model. Returns false when the
// channel is not tracked.
func (cm *ChannelMetadataModel) RemoveChannel(id int) bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if _, ok := cm.channels[id]; !ok {
		return false
	}

	delete(cm.channels, id)
	for i, oid := range cm.order {
		if oid == id {
			cm.order = append(cm.order[:i], cm.order[i+1:]...)
			break
		}
	}
	return true
}

// GetChannel returns the metadata for a channel ID
func (cm *ChannelMetadataModel) GetChannel(id int) (ChannelMetadata, bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	metadata, ok := cm.channels[id]
	return metadata, ok
}

// Channels returns a snapshot of all channel metadata sorted by frequency
func (cm *ChannelMetadataModel) Channels() []ChannelMetadata {
	cm.mu.RLock()
	snapshot := make([]ChannelMetadata, 0, len(cm.channels))
	for _, id := range cm.order {
		snapshot = append(snapshot, cm.channels[id])
	}
	cm.mu.RUnlock()

	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].Frequency < snapshot[j].Frequency
	})
	return snapshot
}

// Count returns the number of tracked channels
func (cm *ChannelMetadataModel) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.channels)
}

// AddChannelAddListener registers a listener notified whenever a new channel
// is added to the model (used by consumers that track selection across
// channel restarts).
func (cm *ChannelMetadataModel) AddChannelAddListener(fn func(ChannelMetadata)) int {
	return cm.addListeners.AddListener(fn)
}
