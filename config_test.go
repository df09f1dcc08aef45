package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "server: {}\n")

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", config.Server.Listen)
	assert.Equal(t, "preferences.json", config.Server.PreferencesFile)
	assert.Equal(t, 5, config.Server.FocusRateLimit)
	assert.Equal(t, DefaultHistorySize, config.History.Size)
	assert.Equal(t, "tunermon", config.MQTT.TopicPrefix)
	assert.Equal(t, 60, config.MQTT.MetricsInterval)
	assert.Equal(t, 60, config.VersionCheck.IntervalMinutes)
}

func TestLoadConfigTuners(t *testing.T) {
	path := writeConfig(t, `
server:
  listen: ":9090"
tuners:
  - name: airspy
    center_frequency: 100000000
    sample_rate: 2500000
  - name: rtl0
    center_frequency: 460000000
    sample_rate: 2048000
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", config.Server.Listen)
	require.Len(t, config.Tuners, 2)
	assert.Equal(t, "airspy", config.Tuners[0].Name)
	assert.Equal(t, int64(2_500_000), config.Tuners[0].SampleRate)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing tuner name", "tuners:\n  - center_frequency: 1000\n    sample_rate: 1000\n"},
		{"duplicate tuner name", "tuners:\n  - name: a\n    center_frequency: 1000\n    sample_rate: 1000\n  - name: a\n    center_frequency: 2000\n    sample_rate: 1000\n"},
		{"non-positive center", "tuners:\n  - name: a\n    center_frequency: 0\n    sample_rate: 1000\n"},
		{"non-positive sample rate", "tuners:\n  - name: a\n    center_frequency: 1000\n    sample_rate: -1\n"},
		{"non-positive channel frequency", "channels:\n  - id: 1\n    name: x\n    frequency: 0\n"},
		{"history size too large", "history:\n  size: 5000\n"},
		{"mqtt enabled without broker", "mqtt:\n  enabled: true\n"},
		{"geoip enabled without database", "geoip:\n  enabled: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not: valid\n")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}
