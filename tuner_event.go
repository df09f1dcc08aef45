package main

import "fmt"

// TunerEventKind identifies the tuner state change or display request an
// event carries.
type TunerEventKind int

const (
	EventUpdateChannelCount TunerEventKind = iota
	EventUpdateFrequency
	EventUpdateFrequencyError
	EventUpdateLockState
	EventUpdateMeasuredFrequencyError
	EventUpdateSampleRate
	EventNotificationErrorState
	EventNotificationShuttingDown
	EventRequestClearMainSpectralDisplay
	EventRequestEnableRSPSlaveDevice
	EventRequestMainSpectralDisplay
	EventRequestNewSpectralDisplay
)

// tunerEventKindNames maps event kinds to their wire/display names
var tunerEventKindNames = map[TunerEventKind]string{
	EventUpdateChannelCount:              "update_channel_count",
	EventUpdateFrequency:                 "update_frequency",
	EventUpdateFrequencyError:            "update_frequency_error",
	EventUpdateLockState:                 "update_lock_state",
	EventUpdateMeasuredFrequencyError:    "update_measured_frequency_error",
	EventUpdateSampleRate:                "update_sample_rate",
	EventNotificationErrorState:          "notification_error_state",
	EventNotificationShuttingDown:        "notification_shutting_down",
	EventRequestClearMainSpectralDisplay: "request_clear_main_spectral_display",
	EventRequestEnableRSPSlaveDevice:     "request_enable_rsp_slave_device",
	EventRequestMainSpectralDisplay:      "request_main_spectral_display",
	EventRequestNewSpectralDisplay:       "request_new_spectral_display",
}

// String returns the wire name for the event kind
func (k TunerEventKind) String() string {
	if name, ok := tunerEventKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown_kind_%d", int(k))
}

// AllTunerEventKinds returns every defined event kind in declaration order
func AllTunerEventKinds() []TunerEventKind {
	kinds := make([]TunerEventKind, 0, len(tunerEventKindNames))
	for k := EventUpdateChannelCount; k <= EventRequestNewSpectralDisplay; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// ParseTunerEventKind resolves a wire name back to its event kind
func ParseTunerEventKind(name string) (TunerEventKind, error) {
	for kind, n := range tunerEventKindNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown tuner event kind: %q", name)
}

// TunerEvent is a notification of a tuner state change or a display request.
// Values are immutable once constructed and carry no lifecycle beyond a
// single dispatch through the broadcaster.
type TunerEvent struct {
	tuner           Tuner
	kind            TunerEventKind
	targetFrequency int64
}

// NewTunerEvent creates an event with no target frequency
func NewTunerEvent(tuner Tuner, kind TunerEventKind) TunerEvent {
	return TunerEvent{tuner: tuner, kind: kind}
}

// NewTunerEventWithFrequency creates an event carrying a target frequency for
// zoom-to-channel support (0 = no target).
func NewTunerEventWithFrequency(tuner Tuner, kind TunerEventKind, targetFrequency int64) TunerEvent {
	return TunerEvent{tuner: tuner, kind: kind, targetFrequency: targetFrequency}
}

// Tuner returns the tuner the event relates to, or nil
func (e TunerEvent) Tuner() Tuner {
	return e.tuner
}

// Kind returns the event kind
func (e TunerEvent) Kind() TunerEventKind {
	return e.kind
}

// TargetFrequency returns the target frequency in Hz, or 0 if not specified
func (e TunerEvent) TargetFrequency() int64 {
	return e.targetFrequency
}

// HasTargetFrequency indicates whether a target frequency was specified.
// A zero target frequency always means "absent", never a literal 0 Hz.
func (e TunerEvent) HasTargetFrequency() bool {
	return e.targetFrequency > 0
}

// HasTuner indicates whether the event carries a tuner reference
func (e TunerEvent) HasTuner() bool {
	return e.tuner != nil
}

func (e TunerEvent) String() string {
	if e.HasTuner() {
		return fmt.Sprintf("Tuner Event [%s] for tuner [%s]", e.kind, e.tuner.Name())
	}
	return fmt.Sprintf("Tuner Event [%s] for tuner [No Tuner]", e.kind)
}
