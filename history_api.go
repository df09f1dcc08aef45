package main

import (
	"encoding/json"
	"net/http"
	"time"
)

// HistoryResponse is the API response for the event history
type HistoryResponse struct {
	Events    []TunerEventRecord `json:"events"`
	Count     int                `json:"count"`
	Size      int                `json:"size"`
	Filters   map[string]bool    `json:"filters"`
	Timestamp time.Time          `json:"timestamp"`
}

// HistorySizeRequest sets the history depth
type HistorySizeRequest struct {
	Size int `json:"size"`
}

// HistoryFiltersRequest enables/disables recording per event kind,
// keyed by wire name. Kinds not present are left unchanged.
type HistoryFiltersRequest struct {
	Filters map[string]bool `json:"filters"`
}

// HandleHistory returns the recorded event history with its current
// settings
func HandleHistory(history *EventHistory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		items := history.Items()
		response := HistoryResponse{
			Events:    items,
			Count:     len(items),
			Size:      history.Size(),
			Filters:   history.Filters(),
			Timestamp: time.Now(),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}

// HandleHistoryClear clears the event history
func HandleHistoryClear(history *EventHistory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		history.Clear()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "cleared"})
	}
}

// HandleHistorySize changes the history depth and persists it
func HandleHistorySize(history *EventHistory, prefs *MonitorPreferences) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req HistorySizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		applied := history.SetSize(req.Size)
		prefs.SetEventHistorySize(applied)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"size": applied})
	}
}

// HandleHistoryFilters updates per-kind recording filters and persists them
func HandleHistoryFilters(history *EventHistory, prefs *MonitorPreferences) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req HistoryFiltersRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		for name, enabled := range req.Filters {
			kind, err := ParseTunerEventKind(name)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			history.SetKindEnabled(kind, enabled)
			prefs.SetFilterEnabled(kind, enabled)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"filters": history.Filters()})
	}
}
