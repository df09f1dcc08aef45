package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Tuners       []TunerConfig      `yaml:"tuners"`
	Channels     []ChannelConfig    `yaml:"channels"`
	History      HistoryConfig      `yaml:"history"`
	Prometheus   PrometheusConfig   `yaml:"prometheus"`
	MQTT         MQTTConfig         `yaml:"mqtt"`
	GeoIP        GeoIPConfig        `yaml:"geoip"`
	VersionCheck VersionCheckConfig `yaml:"version_check"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Listen          string `yaml:"listen"`
	PreferencesFile string `yaml:"preferences_file"`
	FocusRateLimit  int    `yaml:"focus_rate_limit"` // Focus requests per second per IP (0 = unlimited)
}

// TunerConfig declares a tuner seeded into the registry at startup
type TunerConfig struct {
	Name            string `yaml:"name"`
	CenterFrequency int64  `yaml:"center_frequency"` // Hz
	SampleRate      int64  `yaml:"sample_rate"`      // Hz
}

// ChannelConfig declares channel metadata seeded into the model at startup
type ChannelConfig struct {
	ID        int    `yaml:"id"`
	Name      string `yaml:"name"`
	Frequency int64  `yaml:"frequency"` // Hz
}

// HistoryConfig contains event history settings
type HistoryConfig struct {
	Size int `yaml:"size"` // Initial history depth, overridden by saved preferences
}

// PrometheusConfig contains Prometheus metrics settings
type PrometheusConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MQTTConfig contains MQTT publishing settings
type MQTTConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Broker          string        `yaml:"broker"` // e.g. tcp://localhost:1883 or ssl://host:8883
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	TopicPrefix     string        `yaml:"topic_prefix"`
	MetricsInterval int           `yaml:"metrics_interval"` // Metric snapshot interval in seconds
	TLS             MQTTTLSConfig `yaml:"tls"`
}

// MQTTTLSConfig contains TLS settings for the MQTT connection
type MQTTTLSConfig struct {
	Enabled    bool   `yaml:"enabled"`
	CACert     string `yaml:"ca_cert"`
	ClientCert string `yaml:"client_cert"`
	ClientKey  string `yaml:"client_key"`
}

// GeoIPConfig contains optional GeoIP database settings
type GeoIPConfig struct {
	Enabled      bool   `yaml:"enabled"`
	DatabasePath string `yaml:"database_path"` // Path to GeoLite2-Country.mmdb
}

// VersionCheckConfig contains automatic version check settings
type VersionCheckConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalMinutes int  `yaml:"interval_minutes"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

// LoadConfig reads and validates the configuration file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.setDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults fills in defaults for unset values
func (c *Config) setDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.PreferencesFile == "" {
		c.Server.PreferencesFile = "preferences.json"
	}
	if c.Server.FocusRateLimit == 0 {
		c.Server.FocusRateLimit = 5
	}
	if c.History.Size == 0 {
		c.History.Size = DefaultHistorySize
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = "tunermon"
	}
	if c.MQTT.MetricsInterval == 0 {
		c.MQTT.MetricsInterval = 60
	}
	if c.VersionCheck.IntervalMinutes == 0 {
		c.VersionCheck.IntervalMinutes = 60
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	seen := make(map[string]bool)
	for i, t := range c.Tuners {
		if t.Name == "" {
			return fmt.Errorf("tuners[%d]: name is required", i)
		}
		if seen[t.Name] {
			return fmt.Errorf("tuners[%d]: duplicate tuner name %q", i, t.Name)
		}
		seen[t.Name] = true
		if t.CenterFrequency <= 0 {
			return fmt.Errorf("tuner %s: center_frequency must be positive", t.Name)
		}
		if t.SampleRate <= 0 {
			return fmt.Errorf("tuner %s: sample_rate must be positive", t.Name)
		}
	}

	for i, ch := range c.Channels {
		if ch.Frequency <= 0 {
			return fmt.Errorf("channels[%d]: frequency must be positive", i)
		}
	}

	if c.History.Size < 0 || c.History.Size > MaxHistorySize {
		return fmt.Errorf("history.size must be between 0 and %d", MaxHistorySize)
	}

	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
	}

	if c.GeoIP.Enabled && c.GeoIP.DatabasePath == "" {
		return fmt.Errorf("geoip.database_path is required when geoip is enabled")
	}

	return nil
}
