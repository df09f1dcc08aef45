package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
)

// MonitorPreferences persists user-adjustable monitor state between runs:
// the event history depth and the per-kind history filter flags. Missing
// file or missing keys fall back to defaults (history size 200, all
// filters enabled).
type MonitorPreferences struct {
	mu   sync.Mutex
	path string
	data preferencesData
}

type preferencesData struct {
	EventHistorySize *int            `json:"event_history_size,omitempty"`
	EventFilters     map[string]bool `json:"event_filters,omitempty"`
}

// LoadMonitorPreferences reads preferences from the given file. A missing
// file is not an error; defaults apply until the first save.
func LoadMonitorPreferences(path string) (*MonitorPreferences, error) {
	p := &MonitorPreferences{path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, fmt.Errorf("failed to read preferences file: %w", err)
	}

	if err := json.Unmarshal(raw, &p.data); err != nil {
		// A corrupt preferences file should not prevent startup
		log.Printf("Warning: preferences file %s is invalid, using defaults: %v", path, err)
		p.data = preferencesData{}
	}

	return p, nil
}

// EventHistorySize returns the persisted history size, or DefaultHistorySize
// when nothing has been saved yet
func (p *MonitorPreferences) EventHistorySize() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.data.EventHistorySize == nil {
		return DefaultHistorySize
	}
	return clampHistorySize(*p.data.EventHistorySize)
}

// SetEventHistorySize persists a new history size
func (p *MonitorPreferences) SetEventHistorySize(size int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	size = clampHistorySize(size)
	p.data.EventHistorySize = &size
	p.saveLocked()
}

// FilterEnabled returns the persisted enabled state for an event kind
// filter, defaulting to enabled
func (p *MonitorPreferences) FilterEnabled(kind TunerEventKind) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.data.EventFilters == nil {
		return true
	}
	enabled, ok := p.data.EventFilters[kind.String()]
	if !ok {
		return true
	}
	return enabled
}

// SetFilterEnabled persists the enabled state for an event kind filter
func (p *MonitorPreferences) SetFilterEnabled(kind TunerEventKind, enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.data.EventFilters == nil {
		p.data.EventFilters = make(map[string]bool)
	}
	p.data.EventFilters[kind.String()] = enabled
	p.saveLocked()
}

// ApplyTo pushes the persisted state into an event history at startup. Only
// values actually saved are applied, so a fresh install keeps whatever the
// history was configured with.
func (p *MonitorPreferences) ApplyTo(history *EventHistory) {
	p.mu.Lock()
	size := p.data.EventHistorySize
	filters := make(map[string]bool, len(p.data.EventFilters))
	for name, enabled := range p.data.EventFilters {
		filters[name] = enabled
	}
	p.mu.Unlock()

	if size != nil {
		history.SetSize(clampHistorySize(*size))
	}
	for _, kind := range AllTunerEventKinds() {
		if enabled, ok := filters[kind.String()]; ok {
			history.SetKindEnabled(kind, enabled)
		}
	}
}

// saveLocked writes the preferences file via a temp file + rename so a crash
// mid-write never leaves a truncated file. Caller holds p.mu.
func (p *MonitorPreferences) saveLocked() {
	raw, err := json.MarshalIndent(p.data, "", "  ")
	if err != nil {
		log.Printf("Error marshaling preferences: %v", err)
		return
	}

	tmpPath := p.path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0644); err != nil {
		log.Printf("Error writing preferences file: %v", err)
		return
	}
	if err := os.Rename(tmpPath, p.path); err != nil {
		log.Printf("Error replacing preferences file: %v", err)
	}
}
