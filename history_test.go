package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordEvents(h *EventHistory, count int) {
	tuner := NewStaticTuner("rtl0", 100_000_000, 2_000_000)
	for i := 0; i < count; i++ {
		h.Record(NewTunerEventWithFrequency(tuner, EventRequestMainSpectralDisplay, int64(i+1)))
	}
}

func TestEventHistoryRecordAndTrim(t *testing.T) {
	h := NewEventHistory(3)
	recordEvents(h, 5)

	items := h.Items()
	require.Len(t, items, 3)
	// Oldest trimmed first
	assert.Equal(t, int64(3), items[0].TargetFrequency)
	assert.Equal(t, int64(5), items[2].TargetFrequency)
	assert.Equal(t, "rtl0", items[0].TunerName)
}

func TestEventHistoryClear(t *testing.T) {
	h := NewEventHistory(10)
	recordEvents(h, 4)

	h.Clear()
	assert.Empty(t, h.Items())
	assert.Equal(t, 10, h.Size())
}

func TestEventHistorySizeClamp(t *testing.T) {
	tests := []struct {
		requested int
		applied   int
	}{
		{-5, 0},
		{0, 0},
		{200, 200},
		{MaxHistorySize, MaxHistorySize},
		{MaxHistorySize + 1, MaxHistorySize},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("size_%d", tt.requested), func(t *testing.T) {
			h := NewEventHistory(DefaultHistorySize)
			assert.Equal(t, tt.applied, h.SetSize(tt.requested))
			assert.Equal(t, tt.applied, h.Size())
		})
	}
}

func TestEventHistoryShrinkTrimsImmediately(t *testing.T) {
	h := NewEventHistory(10)
	recordEvents(h, 10)

	h.SetSize(4)
	items := h.Items()
	require.Len(t, items, 4)
	assert.Equal(t, int64(7), items[0].TargetFrequency)
}

func TestEventHistoryZeroSizeRecordsNothing(t *testing.T) {
	h := NewEventHistory(0)
	recordEvents(h, 3)
	assert.Empty(t, h.Items())
}

func TestEventHistoryKindFilters(t *testing.T) {
	h := NewEventHistory(10)
	tuner := NewStaticTuner("rtl0", 100_000_000, 2_000_000)

	assert.True(t, h.KindEnabled(EventUpdateFrequency))
	h.SetKindEnabled(EventUpdateFrequency, false)
	assert.False(t, h.KindEnabled(EventUpdateFrequency))

	h.Record(NewTunerEvent(tuner, EventUpdateFrequency))
	h.Record(NewTunerEvent(tuner, EventUpdateSampleRate))

	items := h.Items()
	require.Len(t, items, 1)
	assert.Equal(t, EventUpdateSampleRate.String(), items[0].Kind)

	h.SetKindEnabled(EventUpdateFrequency, true)
	h.Record(NewTunerEvent(tuner, EventUpdateFrequency))
	assert.Len(t, h.Items(), 2)
}

func TestEventHistoryFiltersSnapshot(t *testing.T) {
	h := NewEventHistory(10)
	h.SetKindEnabled(EventNotificationErrorState, false)

	filters := h.Filters()
	assert.Len(t, filters, len(AllTunerEventKinds()))
	assert.False(t, filters[EventNotificationErrorState.String()])
	assert.True(t, filters[EventUpdateFrequency.String()])
}
