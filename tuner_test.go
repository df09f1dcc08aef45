package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTunerModelAddRemove(t *testing.T) {
	tm := NewTunerModel()
	tm.AddTuner(NewStaticTuner("rtl0", 100_000_000, 2_000_000))
	tm.AddTuner(NewStaticTuner("rtl1", 460_000_000, 2_048_000))

	assert.Equal(t, 2, tm.Count())
	assert.NotNil(t, tm.GetTuner("rtl1"))
	assert.Nil(t, tm.GetTuner("rtl9"))

	assert.True(t, tm.RemoveTuner("rtl0"))
	assert.False(t, tm.RemoveTuner("rtl0"))
	assert.Equal(t, 1, tm.Count())
}

func TestTunerModelRemoveBroadcastsTeardown(t *testing.T) {
	tm := NewTunerModel()
	tm.AddTuner(NewStaticTuner("rtl0", 100_000_000, 2_000_000))

	var received []TunerEvent
	tm.AddListener(func(ev TunerEvent) {
		received = append(received, ev)
	})

	tm.RemoveTuner("rtl0")

	require.Len(t, received, 1)
	assert.Equal(t, EventNotificationShuttingDown, received[0].Kind())
	assert.Equal(t, "rtl0", received[0].Tuner().Name())
}

func TestTunerModelSnapshotOrder(t *testing.T) {
	tm := NewTunerModel()
	tm.AddTuner(NewStaticTuner("a", 1_000_000, 1_000))
	tm.AddTuner(NewStaticTuner("b", 2_000_000, 1_000))
	tm.AddTuner(NewStaticTuner("c", 3_000_000, 1_000))

	tuners := tm.Tuners()
	require.Len(t, tuners, 3)
	assert.Equal(t, "a", tuners[0].Name())
	assert.Equal(t, "b", tuners[1].Name())
	assert.Equal(t, "c", tuners[2].Name())
}

func TestStaticTunerReadsFailAfterClose(t *testing.T) {
	tuner := NewStaticTuner("rtl0", 100_000_000, 2_000_000)

	center, err := tuner.CenterFrequency()
	require.NoError(t, err)
	assert.Equal(t, int64(100_000_000), center)

	tuner.Close()

	_, err = tuner.CenterFrequency()
	assert.Error(t, err)
	_, err = tuner.SampleRate()
	assert.Error(t, err)
}

func TestStaticTunerRetune(t *testing.T) {
	tuner := NewStaticTuner("rtl0", 100_000_000, 2_000_000)
	require.NoError(t, tuner.SetCenterFrequency(101_000_000))
	require.NoError(t, tuner.SetSampleRate(2_400_000))

	center, err := tuner.CenterFrequency()
	require.NoError(t, err)
	assert.Equal(t, int64(101_000_000), center)

	rate, err := tuner.SampleRate()
	require.NoError(t, err)
	assert.Equal(t, int64(2_400_000), rate)
}

func TestStaticTunerRetuneAfterClose(t *testing.T) {
	tuner := NewStaticTuner("rtl0", 100_000_000, 2_000_000)
	tuner.Close()

	assert.Error(t, tuner.SetCenterFrequency(101_000_000))
	assert.Error(t, tuner.SetSampleRate(2_400_000))
}
