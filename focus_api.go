package main

import (
	"encoding/json"
	"errors"
	"net/http"
)

// FocusRequest is the request body for a spectral display focus request
type FocusRequest struct {
	Frequency int64 `json:"frequency"` // Hz
}

// FocusResponse reports the tuner that will serve the display
type FocusResponse struct {
	Tuner           string `json:"tuner"`
	TargetFrequency int64  `json:"target_frequency"` // Hz
}

// HandleFocus resolves the tuner serving the requested frequency and
// dispatches a spectral display focus event. Rate limited per client IP.
func HandleFocus(router *SpectralDisplayRouter, limiter *IPRateLimiterManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if limiter != nil && !limiter.Allow(getClientIP(r)) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "rate limit exceeded",
			})
			return
		}

		var req FocusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if req.Frequency <= 0 {
			http.Error(w, "frequency must be a positive value in Hz", http.StatusBadRequest)
			return
		}

		tuner, err := router.FocusDisplay(req.Frequency)
		if err != nil {
			if errors.Is(err, ErrNoTunerFound) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "no tuner serves the requested frequency",
				})
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(FocusResponse{
			Tuner:           tuner.Name(),
			TargetFrequency: req.Frequency,
		})
	}
}
