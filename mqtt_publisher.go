package main

import (
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// MQTTPublisher publishes tuner events and periodic metric snapshots to an
// MQTT broker
type MQTTPublisher struct {
	client mqtt.Client
	config *MQTTConfig

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// EventPayload is the MQTT message form of a tuner event
type EventPayload struct {
	Timestamp       int64  `json:"timestamp"`
	Kind            string `json:"kind"`
	Tuner           string `json:"tuner,omitempty"`
	TargetFrequency int64  `json:"target_frequency,omitempty"`
}

// MetricPayload is the MQTT message form of a metric snapshot
type MetricPayload struct {
	Timestamp int64              `json:"timestamp"`
	Metrics   map[string]float64 `json:"metrics"`
}

// generateClientID creates a random client ID for the MQTT connection
func generateClientID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "tunermon_" + hex.EncodeToString(bytes)
}

// loadTLSConfig loads TLS configuration from files
func loadTLSConfig(tlsConfig MQTTTLSConfig) (*tls.Config, error) {
	if !tlsConfig.Enabled {
		return nil, nil
	}

	config := &tls.Config{}

	if tlsConfig.CACert != "" {
		caCert, err := os.ReadFile(tlsConfig.CACert)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate")
		}
		config.RootCAs = caCertPool
	}

	if tlsConfig.ClientCert != "" && tlsConfig.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(tlsConfig.ClientCert, tlsConfig.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		config.Certificates = []tls.Certificate{cert}
	}

	return config, nil
}

// NewMQTTPublisher connects to the broker and starts the metric snapshot
// loop
func NewMQTTPublisher(config *MQTTConfig) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(generateClientID())

	if config.Username != "" {
		opts.SetUsername(config.Username)
	}
	if config.Password != "" {
		opts.SetPassword(config.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(10 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	if config.TLS.Enabled {
		tlsConfig, err := loadTLSConfig(config.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS config: %w", err)
		}
		opts.SetTLSConfig(tlsConfig)
	}

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.Println("MQTT: Connected to broker")
	})
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		log.Printf("MQTT: Connection lost: %v", err)
	})
	opts.SetReconnectingHandler(func(client mqtt.Client, opts *mqtt.ClientOptions) {
		log.Println("MQTT: Attempting to reconnect...")
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	log.Printf("MQTT: Successfully connected to broker: %s", config.Broker)

	p := &MQTTPublisher{
		client:   client,
		config:   config,
		stopChan: make(chan struct{}),
	}

	p.wg.Add(1)
	go p.metricsLoop()

	return p, nil
}

// PublishEvent publishes a tuner event to <prefix>/events/<kind>.
// Registered as a listener on the tuner event broadcaster; publication is
// asynchronous and best-effort.
func (p *MQTTPublisher) PublishEvent(event TunerEvent) {
	payload := EventPayload{
		Timestamp: time.Now().Unix(),
		Kind:      event.Kind().String(),
	}
	if event.HasTuner() {
		payload.Tuner = event.Tuner().Name()
	}
	if event.HasTargetFrequency() {
		payload.TargetFrequency = event.TargetFrequency()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("MQTT: Failed to marshal event payload: %v", err)
		return
	}

	topic := fmt.Sprintf("%s/events/%s", p.config.TopicPrefix, payload.Kind)
	p.client.Publish(topic, 0, false, data)
}

// metricsLoop publishes a metric snapshot at the configured interval
func (p *MQTTPublisher) metricsLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(time.Duration(p.config.MetricsInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.publishMetrics()
		case <-p.stopChan:
			return
		}
	}
}

// publishMetrics gathers the registered Prometheus collectors and publishes
// the tunermon families as a flat snapshot to <prefix>/metrics
func (p *MQTTPublisher) publishMetrics() {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		log.Printf("MQTT: Failed to gather metrics: %v", err)
		return
	}

	payload := MetricPayload{
		Timestamp: time.Now().Unix(),
		Metrics:   make(map[string]float64),
	}

	for _, family := range families {
		name := family.GetName()
		if !strings.HasPrefix(name, "tunermon_") {
			continue
		}

		for _, metric := range family.GetMetric() {
			key := name
			for _, label := range metric.GetLabel() {
				key += "_" + label.GetValue()
			}

			switch family.GetType() {
			case dto.MetricType_COUNTER:
				payload.Metrics[key] = metric.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				payload.Metrics[key] = metric.GetGauge().GetValue()
			}
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("MQTT: Failed to marshal metric payload: %v", err)
		return
	}

	topic := fmt.Sprintf("%s/metrics", p.config.TopicPrefix)
	p.client.Publish(topic, 0, false, data)
}

// Stop shuts down the metrics loop and disconnects from the broker
func (p *MQTTPublisher) Stop() {
	close(p.stopChan)
	p.wg.Wait()
	p.client.Disconnect(250)
	log.Println("MQTT: Disconnected")
}
