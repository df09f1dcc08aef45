package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// TunerInfo is the API form of a tuner and its occupied band
type TunerInfo struct {
	Name            string `json:"name"`
	CenterFrequency int64  `json:"center_frequency"` // Hz
	FrequencyMHz    string `json:"frequency_mhz"`    // Formatted for display
	SampleRate      int64  `json:"sample_rate"`      // Hz
	BandLow         int64  `json:"band_low"`         // Hz
	BandHigh        int64  `json:"band_high"`        // Hz
	Readable        bool   `json:"readable"`
}

// TunersResponse is the API response for the tuner listing
type TunersResponse struct {
	Tuners      []TunerInfo `json:"tuners"`
	TotalTuners int         `json:"total_tuners"`
	Timestamp   time.Time   `json:"timestamp"`
}

// TunerUpdateRequest is the request body for tuner add/retune/remove
// operations coming from the discovery layer
type TunerUpdateRequest struct {
	Name            string `json:"name"`
	CenterFrequency int64  `json:"center_frequency,omitempty"` // Hz
	SampleRate      int64  `json:"sample_rate,omitempty"`      // Hz
}

// HandleTuners returns all registered tuners with their current bands.
// Tuners whose properties cannot be read are listed as unreadable rather
// than omitted, matching the resolver's skip semantics.
func HandleTuners(tuners *TunerModel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		snapshot := tuners.Tuners()
		infos := make([]TunerInfo, 0, len(snapshot))

		for _, t := range snapshot {
			info := TunerInfo{Name: t.Name()}

			center, err := t.CenterFrequency()
			if err == nil {
				var rate int64
				rate, err = t.SampleRate()
				if err == nil {
					halfBand := rate / 2
					info.CenterFrequency = center
					info.FrequencyMHz = fmt.Sprintf("%.6f", float64(center)/1e6)
					info.SampleRate = rate
					info.BandLow = center - halfBand
					info.BandHigh = center + halfBand
					info.Readable = true
				}
			}

			infos = append(infos, info)
		}

		response := TunersResponse{
			Tuners:      infos,
			TotalTuners: len(infos),
			Timestamp:   time.Now(),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}

// HandleTunerAdd registers a tuner reported by the discovery layer
func HandleTunerAdd(tuners *TunerModel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req TunerUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Name == "" || req.CenterFrequency <= 0 || req.SampleRate <= 0 {
			http.Error(w, "name, center_frequency and sample_rate are required", http.StatusBadRequest)
			return
		}
		if tuners.GetTuner(req.Name) != nil {
			http.Error(w, "Tuner already registered", http.StatusConflict)
			return
		}

		tuners.AddTuner(NewStaticTuner(req.Name, req.CenterFrequency, req.SampleRate))
		log.Printf("Tuners: registered %s at %d Hz (%d Hz sample rate)", req.Name, req.CenterFrequency, req.SampleRate)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "ok", "name": req.Name})
	}
}

// HandleTunerRetune updates the center frequency (and optionally the sample
// rate) of a registered tuner, shifting the band it covers
func HandleTunerRetune(tuners *TunerModel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req TunerUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Name == "" || req.CenterFrequency <= 0 {
			http.Error(w, "name and center_frequency are required", http.StatusBadRequest)
			return
		}

		tuner := tuners.GetTuner(req.Name)
		if tuner == nil {
			http.Error(w, "Tuner not found", http.StatusNotFound)
			return
		}
		static, ok := tuner.(*StaticTuner)
		if !ok {
			http.Error(w, "Tuner is not retunable", http.StatusConflict)
			return
		}

		if err := static.SetCenterFrequency(req.CenterFrequency); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		if req.SampleRate > 0 {
			if err := static.SetSampleRate(req.SampleRate); err != nil {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
		}

		log.Printf("Tuners: retuned %s to %d Hz", req.Name, req.CenterFrequency)
		tuners.Broadcast(NewTunerEventWithFrequency(tuner, EventUpdateFrequency, req.CenterFrequency))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "ok", "name": req.Name})
	}
}

// HandleTunerRemove deregisters a tuner that went away
func HandleTunerRemove(tuners *TunerModel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req TunerUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}

		if !tuners.RemoveTuner(req.Name) {
			http.Error(w, "Tuner not found", http.StatusNotFound)
			return
		}
		log.Printf("Tuners: removed %s", req.Name)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "ok", "name": req.Name})
	}
}
