package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ChannelInfo is the API form of a channel's live metadata
type ChannelInfo struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Frequency       int64  `json:"frequency"`     // Hz
	FrequencyMHz    string `json:"frequency_mhz"` // Formatted for display
	State           string `json:"state"`
	From            string `json:"from,omitempty"`
	FromAlias       string `json:"from_alias,omitempty"`
	TalkerAlias     string `json:"talker_alias,omitempty"`
	To              string `json:"to,omitempty"`
	ToAlias         string `json:"to_alias,omitempty"`
	TimeSinceUpdate string `json:"time_since_update"`
}

// ChannelsResponse is the API response for all tracked channels
type ChannelsResponse struct {
	Channels      []ChannelInfo `json:"channels"`
	TotalChannels int           `json:"total_channels"`
	ActiveCount   int           `json:"active_count"`
	IdleCount     int           `json:"idle_count"`
	Timestamp     time.Time     `json:"timestamp"`
}

// HandleChannels returns all tracked channel metadata sorted by frequency
func HandleChannels(channels *ChannelMetadataModel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		snapshot := channels.Channels()
		infos := make([]ChannelInfo, 0, len(snapshot))
		activeCount := 0
		idleCount := 0

		for _, ch := range snapshot {
			if ch.State == StateIdle {
				idleCount++
			} else {
				activeCount++
			}

			timeSinceUpdate := "N/A"
			if !ch.LastUpdate.IsZero() {
				duration := time.Since(ch.LastUpdate)
				if duration < time.Hour {
					timeSinceUpdate = duration.Round(time.Second).String()
				} else {
					timeSinceUpdate = duration.Round(time.Minute).String()
				}
			}

			infos = append(infos, ChannelInfo{
				ID:              ch.ID,
				Name:            ch.Name,
				Frequency:       ch.Frequency,
				FrequencyMHz:    fmt.Sprintf("%.6f", float64(ch.Frequency)/1e6),
				State:           ch.State.String(),
				From:            ch.From,
				FromAlias:       ch.FromAlias,
				TalkerAlias:     ch.TalkerAlias,
				To:              ch.To,
				ToAlias:         ch.ToAlias,
				TimeSinceUpdate: timeSinceUpdate,
			})
		}

		response := ChannelsResponse{
			Channels:      infos,
			TotalChannels: len(infos),
			ActiveCount:   activeCount,
			IdleCount:     idleCount,
			Timestamp:     time.Now(),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}

// ChannelUpdateRequest is the request body for channel upsert/state/remove
// operations coming from the processing layer
type ChannelUpdateRequest struct {
	ID          int    `json:"id"`
	Name        string `json:"name,omitempty"`
	Frequency   int64  `json:"frequency,omitempty"` // Hz
	State       string `json:"state,omitempty"`
	From        string `json:"from,omitempty"`
	FromAlias   string `json:"from_alias,omitempty"`
	TalkerAlias string `json:"talker_alias,omitempty"`
	To          string `json:"to,omitempty"`
	ToAlias     string `json:"to_alias,omitempty"`
}

// HandleChannelUpdate upserts a channel's metadata
func HandleChannelUpdate(channels *ChannelMetadataModel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req ChannelUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.ID <= 0 || req.Name == "" || req.Frequency <= 0 {
			http.Error(w, "id, name and frequency are required", http.StatusBadRequest)
			return
		}

		state := StateIdle
		if req.State != "" {
			var ok bool
			if state, ok = ParseChannelState(req.State); !ok {
				http.Error(w, fmt.Sprintf("Unknown channel state: %s", req.State), http.StatusBadRequest)
				return
			}
		}

		channels.AddChannel(ChannelMetadata{
			ID:          req.ID,
			Name:        req.Name,
			Frequency:   req.Frequency,
			State:       state,
			From:        req.From,
			FromAlias:   req.FromAlias,
			TalkerAlias: req.TalkerAlias,
			To:          req.To,
			ToAlias:     req.ToAlias,
		})

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "ok", "id": req.ID})
	}
}

// HandleChannelState updates the decoder state of an existing channel
func HandleChannelState(channels *ChannelMetadataModel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req ChannelUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		state, ok := ParseChannelState(req.State)
		if !ok {
			http.Error(w, fmt.Sprintf("Unknown channel state: %s", req.State), http.StatusBadRequest)
			return
		}
		if !channels.UpdateState(req.ID, state) {
			http.Error(w, "Channel not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "ok", "id": req.ID})
	}
}

// HandleChannelRemove drops a channel that stopped being monitored
func HandleChannelRemove(channels *ChannelMetadataModel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req ChannelUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if !channels.RemoveChannel(req.ID) {
			http.Error(w, "Channel not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "ok", "id": req.ID})
	}
}
