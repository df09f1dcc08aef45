package main

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// StatusResponse is the /status.json payload
type StatusResponse struct {
	Version       string  `json:"version"`
	LatestVersion string  `json:"latest_version,omitempty"`
	UpdateAvail   bool    `json:"update_available"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Tuners        int     `json:"tuners"`
	Channels      int     `json:"channels"`
	Goroutines    int     `json:"goroutines"`

	CPUCores    int     `json:"cpu_cores,omitempty"`
	Load1Min    float64 `json:"load_1min,omitempty"`
	Load5Min    float64 `json:"load_5min,omitempty"`
	Load15Min   float64 `json:"load_15min,omitempty"`
	MemUsedPct  float64 `json:"mem_used_percent,omitempty"`
	MemTotalMB  uint64  `json:"mem_total_mb,omitempty"`
	HeapAllocMB uint64  `json:"heap_alloc_mb"`

	Timestamp time.Time `json:"timestamp"`
}

// HandleStatus returns process and system status
func HandleStatus(tuners *TunerModel, channels *ChannelMetadataModel, versionChecker *VersionChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		status := StatusResponse{
			Version:       Version,
			UptimeSeconds: time.Since(StartTime).Seconds(),
			Tuners:        tuners.Count(),
			Channels:      channels.Count(),
			Goroutines:    runtime.NumGoroutine(),
			HeapAllocMB:   memStats.Alloc / 1024 / 1024,
			Timestamp:     time.Now(),
		}

		if versionChecker != nil {
			status.LatestVersion = versionChecker.LatestVersion()
			status.UpdateAvail = versionChecker.UpdateAvailable()
		}

		// System stats are best-effort; unsupported platforms just omit them
		if info, err := cpu.Info(); err == nil {
			for _, ci := range info {
				status.CPUCores += int(ci.Cores)
			}
		}
		if avg, err := load.Avg(); err == nil {
			status.Load1Min = avg.Load1
			status.Load5Min = avg.Load5
			status.Load15Min = avg.Load15
		}
		if vm, err := mem.VirtualMemory(); err == nil {
			status.MemUsedPct = vm.UsedPercent
			status.MemTotalMB = vm.Total / 1024 / 1024
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	}
}

// handleHealth is a minimal liveness endpoint
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
