package main

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
	wsSendBuffer   = 64
)

// EventWebSocketHandler streams tuner events to connected clients and
// accepts spectral display focus requests from them
type EventWebSocketHandler struct {
	tuners  *TunerModel
	router  *SpectralDisplayRouter
	metrics *PrometheusMetrics

	clients   map[*eventClient]struct{}
	clientsMu sync.RWMutex

	upgrader websocket.Upgrader
}

// eventClient is a single connected websocket consumer
type eventClient struct {
	SessionID   string
	IP          string
	UserAgent   string
	ConnectedAt time.Time

	conn *websocket.Conn
	send chan eventServerMessage
	once sync.Once
}

// eventServerMessage is the wire form of a forwarded tuner event or error
type eventServerMessage struct {
	Type            string `json:"type"`
	Kind            string `json:"kind,omitempty"`
	Tuner           string `json:"tuner,omitempty"`
	TargetFrequency int64  `json:"target_frequency,omitempty"`
	Timestamp       int64  `json:"timestamp,omitempty"` // Unix milliseconds
	SessionID       string `json:"session_id,omitempty"`
	Error           string `json:"error,omitempty"`
}

// eventClientMessage is a message from the client
type eventClientMessage struct {
	Type      string `json:"type"`
	Frequency int64  `json:"frequency,omitempty"`
}

// NewEventWebSocketHandler creates the handler and subscribes it to the
// tuner event broadcaster
func NewEventWebSocketHandler(tuners *TunerModel, router *SpectralDisplayRouter, metrics *PrometheusMetrics) *EventWebSocketHandler {
	h := &EventWebSocketHandler{
		tuners:  tuners,
		router:  router,
		metrics: metrics,
		clients: make(map[*eventClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	tuners.AddListener(h.broadcastEvent)
	return h
}

// HandleWebSocket upgrades the connection and runs the client pumps
func (h *EventWebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Events WebSocket: upgrade failed: %v", err)
		return
	}

	client := &eventClient{
		SessionID:   uuid.New().String(),
		IP:          getClientIP(r),
		UserAgent:   r.Header.Get("User-Agent"),
		ConnectedAt: time.Now(),
		conn:        conn,
		send:        make(chan eventServerMessage, wsSendBuffer),
	}

	h.clientsMu.Lock()
	h.clients[client] = struct{}{}
	count := len(h.clients)
	h.clientsMu.Unlock()

	if h.metrics != nil {
		h.metrics.SetWebsocketClients(count)
	}

	log.Printf("Events WebSocket: client connected session=%s ip=%s (%d total)", client.SessionID, client.IP, count)

	// Greet with the session ID so the client can correlate /api/clients
	client.send <- eventServerMessage{Type: "connected", SessionID: client.SessionID}

	go h.writePump(client)
	h.readPump(client)
}

// broadcastEvent forwards a tuner event to every connected client,
// dropping it for clients whose send buffer is full
func (h *EventWebSocketHandler) broadcastEvent(event TunerEvent) {
	msg := eventServerMessage{
		Type:      "tuner_event",
		Kind:      event.Kind().String(),
		Timestamp: time.Now().UnixMilli(),
	}
	if event.HasTuner() {
		msg.Tuner = event.Tuner().Name()
	}
	if event.HasTargetFrequency() {
		msg.TargetFrequency = event.TargetFrequency()
	}

	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			if DebugMode {
				log.Printf("Events WebSocket: dropping event for slow client session=%s", client.SessionID)
			}
		}
	}
}

// readPump handles incoming client messages until the connection closes
func (h *EventWebSocketHandler) readPump(client *eventClient) {
	defer h.removeClient(client)

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Events WebSocket: read error session=%s: %v", client.SessionID, err)
			}
			return
		}

		var msg eventClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			client.trySend(eventServerMessage{Type: "error", Error: "invalid message"})
			continue
		}

		switch msg.Type {
		case "focus":
			if msg.Frequency <= 0 {
				client.trySend(eventServerMessage{Type: "error", Error: "frequency must be positive"})
				continue
			}
			if _, err := h.router.FocusDisplay(msg.Frequency); err != nil {
				client.trySend(eventServerMessage{Type: "error", Error: err.Error()})
			}
		case "ping":
			client.trySend(eventServerMessage{Type: "pong", Timestamp: time.Now().UnixMilli()})
		default:
			client.trySend(eventServerMessage{Type: "error", Error: "unknown message type"})
		}
	}
}

// writePump serializes all writes to the connection and sends keepalives
func (h *EventWebSocketHandler) writePump(client *eventClient) {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.send:
			if !ok {
				return
			}
			client.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := client.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// trySend queues a message without blocking
func (c *eventClient) trySend(msg eventServerMessage) {
	select {
	case c.send <- msg:
	default:
	}
}

// removeClient drops a client and closes its send channel exactly once
func (h *EventWebSocketHandler) removeClient(client *eventClient) {
	client.once.Do(func() {
		h.clientsMu.Lock()
		delete(h.clients, client)
		count := len(h.clients)
		h.clientsMu.Unlock()

		close(client.send)
		client.conn.Close()

		if h.metrics != nil {
			h.metrics.SetWebsocketClients(count)
		}

		log.Printf("Events WebSocket: client disconnected session=%s (%d remaining)", client.SessionID, count)
	})
}

// Clients returns a snapshot of connected clients
func (h *EventWebSocketHandler) Clients() []*eventClient {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	snapshot := make([]*eventClient, 0, len(h.clients))
	for client := range h.clients {
		snapshot = append(snapshot, client)
	}
	return snapshot
}
