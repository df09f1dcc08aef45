package main

import (
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics holds all Prometheus metric collectors for tuner,
// channel and event activity plus basic system metrics
type PrometheusMetrics struct {
	// Resolver metrics (with 'result' label: hit/miss)
	tunerLookups *prometheus.CounterVec

	// Event metrics (with 'kind' label)
	eventsPublished *prometheus.CounterVec

	// Registry gauges
	activeTuners   prometheus.Gauge
	activeChannels prometheus.Gauge
	wsClients      prometheus.Gauge

	// System metrics
	uptime     prometheus.Gauge
	goroutines prometheus.Gauge
	memAlloc   prometheus.Gauge

	// Update loop control
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewPrometheusMetrics creates and registers all metric collectors
func NewPrometheusMetrics() *PrometheusMetrics {
	pm := &PrometheusMetrics{
		tunerLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tunermon_tuner_lookups_total",
			Help: "Frequency-to-tuner resolver lookups by result (hit/miss)",
		}, []string{"result"}),
		eventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tunermon_events_published_total",
			Help: "Tuner events broadcast by kind",
		}, []string{"kind"}),
		activeTuners: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tunermon_tuners",
			Help: "Number of registered tuners",
		}),
		activeChannels: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tunermon_channels",
			Help: "Number of tracked channels",
		}),
		wsClients: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tunermon_websocket_clients",
			Help: "Connected event websocket clients",
		}),
		uptime: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tunermon_uptime_seconds",
			Help: "Process uptime in seconds",
		}),
		goroutines: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tunermon_goroutines",
			Help: "Number of goroutines",
		}),
		memAlloc: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tunermon_memory_alloc_bytes",
			Help: "Heap bytes allocated and in use",
		}),
		stopChan: make(chan struct{}),
	}

	return pm
}

// RecordTunerLookup counts a resolver lookup by result ("hit" or "miss")
func (pm *PrometheusMetrics) RecordTunerLookup(result string) {
	pm.tunerLookups.WithLabelValues(result).Inc()
}

// RecordEvent counts a broadcast tuner event. Registered as a listener on
// the tuner event broadcaster.
func (pm *PrometheusMetrics) RecordEvent(event TunerEvent) {
	pm.eventsPublished.WithLabelValues(event.Kind().String()).Inc()
}

// SetWebsocketClients updates the connected websocket client gauge
func (pm *PrometheusMetrics) SetWebsocketClients(count int) {
	pm.wsClients.Set(float64(count))
}

// StartSystemMetrics begins the periodic system metrics update loop
func (pm *PrometheusMetrics) StartSystemMetrics(tuners *TunerModel, channels *ChannelMetadataModel) {
	pm.wg.Add(1)
	go func() {
		defer pm.wg.Done()

		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				pm.uptime.Set(time.Since(StartTime).Seconds())
				pm.goroutines.Set(float64(runtime.NumGoroutine()))

				var memStats runtime.MemStats
				runtime.ReadMemStats(&memStats)
				pm.memAlloc.Set(float64(memStats.Alloc))

				pm.activeTuners.Set(float64(tuners.Count()))
				pm.activeChannels.Set(float64(channels.Count()))
			case <-pm.stopChan:
				return
			}
		}
	}()
}

// Stop shuts down the system metrics loop
func (pm *PrometheusMetrics) Stop() {
	close(pm.stopChan)
	pm.wg.Wait()
}
