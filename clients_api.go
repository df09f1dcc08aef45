package main

import (
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/ua-parser/uap-go/uaparser"
)

// uaParser is shared across requests; NewFromSaved uses the library's
// embedded regex definitions
var uaParser = uaparser.NewFromSaved()

// ClientInfo is the API form of a connected websocket client
type ClientInfo struct {
	SessionID   string    `json:"session_id"`
	Country     string    `json:"country,omitempty"`
	Browser     string    `json:"browser,omitempty"`
	OS          string    `json:"os,omitempty"`
	ConnectedAt time.Time `json:"connected_at"`
	Duration    string    `json:"duration"`
}

// ClientsResponse is the API response for connected clients
type ClientsResponse struct {
	Clients      []ClientInfo `json:"clients"`
	TotalClients int          `json:"total_clients"`
	Timestamp    time.Time    `json:"timestamp"`
}

// HandleClients returns the connected event websocket clients with browser
// family and (when GeoIP is configured) country. Client IPs themselves are
// never exposed.
func HandleClients(wsHandler *EventWebSocketHandler, geoIP *GeoIPService, limiter *IPRateLimiterManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
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

		clients := wsHandler.Clients()
		infos := make([]ClientInfo, 0, len(clients))

		for _, c := range clients {
			info := ClientInfo{
				SessionID:   c.SessionID,
				ConnectedAt: c.ConnectedAt,
				Duration:    time.Since(c.ConnectedAt).Round(time.Second).String(),
			}

			if c.UserAgent != "" {
				ua := uaParser.Parse(c.UserAgent)
				if ua.UserAgent.Family != "Other" {
					info.Browser = ua.UserAgent.Family
				}
				if ua.Os.Family != "Other" {
					info.OS = ua.Os.Family
				}
			}

			if geoIP != nil {
				info.Country = geoIP.CountryCode(c.IP)
			}

			infos = append(infos, info)
		}

		sort.Slice(infos, func(i, j int) bool {
			return infos[i].ConnectedAt.Before(infos[j].ConnectedAt)
		})

		response := ClientsResponse{
			Clients:      infos,
			TotalClients: len(infos),
			Timestamp:    time.Now(),
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Printf("Clients API: encode error: %v", err)
		}
	}
}
