package main

import (
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global debug flag
var DebugMode bool

// Global start time for process uptime tracking
var StartTime time.Time

// getClientIP extracts the client IP, honoring X-Forwarded-For from
// reverse proxies
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First hop is the original client
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func main() {
	StartTime = time.Now()

	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	config, err := LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	DebugMode = *debug || config.Logging.Debug
	if DebugMode {
		log.Println("Debug logging enabled")
	}

	log.Printf("tunermon %s starting", Version)

	// Metrics first so downstream components can record into them
	var metrics *PrometheusMetrics
	if config.Prometheus.Enabled {
		metrics = NewPrometheusMetrics()
	}

	// Tuner registry, seeded from config
	tuners := NewTunerModel()
	for _, tc := range config.Tuners {
		tuners.AddTuner(NewStaticTuner(tc.Name, tc.CenterFrequency, tc.SampleRate))
	}

	// Channel metadata model, seeded from config
	channels := NewChannelMetadataModel()
	for _, cc := range config.Channels {
		channels.AddChannel(ChannelMetadata{
			ID:        cc.ID,
			Name:      cc.Name,
			Frequency: cc.Frequency,
			State:     StateIdle,
		})
	}

	// Newly tracked channels bump the channel count for connected displays
	channels.AddChannelAddListener(func(ChannelMetadata) {
		tuners.Broadcast(NewTunerEvent(nil, EventUpdateChannelCount))
	})

	// Preferences and event history
	prefs, err := LoadMonitorPreferences(config.Server.PreferencesFile)
	if err != nil {
		log.Fatalf("Failed to load preferences: %v", err)
	}
	history := NewEventHistory(config.History.Size)
	prefs.ApplyTo(history)
	tuners.AddListener(history.Record)

	if metrics != nil {
		tuners.AddListener(metrics.RecordEvent)
		metrics.StartSystemMetrics(tuners, channels)
		defer metrics.Stop()
	}

	// Spectral display focus routing
	router := NewSpectralDisplayRouter(tuners, metrics)

	// Websocket event stream
	wsHandler := NewEventWebSocketHandler(tuners, router, metrics)

	// Optional GeoIP for client stats
	var geoIP *GeoIPService
	if config.GeoIP.Enabled {
		geoIP, err = NewGeoIPService(config.GeoIP.DatabasePath)
		if err != nil {
			log.Printf("Warning: GeoIP disabled: %v", err)
		} else {
			defer geoIP.Close()
			log.Printf("GeoIP: database loaded from %s", config.GeoIP.DatabasePath)
		}
	}

	// Optional MQTT publishing of events and metric snapshots
	if config.MQTT.Enabled {
		publisher, err := NewMQTTPublisher(&config.MQTT)
		if err != nil {
			log.Printf("Warning: MQTT disabled: %v", err)
		} else {
			tuners.AddListener(publisher.PublishEvent)
			defer publisher.Stop()
		}
	}

	// Optional version checking
	var versionChecker *VersionChecker
	if config.VersionCheck.Enabled {
		versionChecker = NewVersionChecker(time.Duration(config.VersionCheck.IntervalMinutes) * time.Minute)
		versionChecker.Start()
		defer versionChecker.Stop()
	}

	// Per-IP rate limiting for public endpoints
	limiter := NewIPRateLimiterManager(config.Server.FocusRateLimit)
	defer limiter.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tuners", HandleTuners(tuners))
	mux.HandleFunc("/api/tuners/add", HandleTunerAdd(tuners))
	mux.HandleFunc("/api/tuners/retune", HandleTunerRetune(tuners))
	mux.HandleFunc("/api/tuners/remove", HandleTunerRemove(tuners))
	mux.HandleFunc("/api/channels", HandleChannels(channels))
	mux.HandleFunc("/api/channels/update", HandleChannelUpdate(channels))
	mux.HandleFunc("/api/channels/state", HandleChannelState(channels))
	mux.HandleFunc("/api/channels/remove", HandleChannelRemove(channels))
	mux.HandleFunc("/api/focus", HandleFocus(router, limiter))
	mux.HandleFunc("/api/history", HandleHistory(history))
	mux.HandleFunc("/api/history/clear", HandleHistoryClear(history))
	mux.HandleFunc("/api/history/size", HandleHistorySize(history, prefs))
	mux.HandleFunc("/api/history/filters", HandleHistoryFilters(history, prefs))
	mux.HandleFunc("/api/clients", HandleClients(wsHandler, geoIP, limiter))
	mux.HandleFunc("/ws/events", wsHandler.HandleWebSocket)
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/status.json", HandleStatus(tuners, channels, versionChecker))

	if config.Prometheus.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
		log.Println("Prometheus metrics enabled on /metrics")
	}

	server := &http.Server{
		Addr:    config.Server.Listen,
		Handler: mux,
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down server...")

		// Tell subscribers the monitor is going away before closing
		tuners.Broadcast(NewTunerEvent(nil, EventNotificationShuttingDown))

		if err := server.Close(); err != nil {
			log.Printf("Error closing server: %v", err)
		}
	}()

	log.Printf("Server listening on %s", config.Server.Listen)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped")
}
