package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/aura/internal/gesture"
)

// DefaultBroadcastInterval pushes one gesture state per 60 Hz tick.
const DefaultBroadcastInterval = time.Second / 60

// writeWait bounds a single websocket write so a stalled client cannot hold
// up the other connections.
const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// StateSource publishes the latest gesture state.
type StateSource interface {
	State() gesture.State
}

type gestureMessage struct {
	gesture.State
	Timestamp int64 `json:"timestamp"`
}

// GestureHandler broadcasts the interpreted gesture state via WebSocket.
type GestureHandler struct {
	source   StateSource
	interval time.Duration

	clients map[*websocket.Conn]bool
	mu      sync.RWMutex

	stop     chan struct{}
	stopOnce sync.Once
}

// NewGestureHandler creates a GestureHandler polling source every interval.
// A non-positive interval uses DefaultBroadcastInterval.
func NewGestureHandler(source StateSource, interval time.Duration) *GestureHandler {
	if interval <= 0 {
		interval = DefaultBroadcastInterval
	}
	h := &GestureHandler{
		source:   source,
		interval: interval,
		clients:  make(map[*websocket.Conn]bool),
		stop:     make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *GestureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *GestureHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the broadcast loop. Open connections are closed by their
// handlers when the server shuts down.
func (h *GestureHandler) Close() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// broadcast sends the gesture state to all connected clients.
func (h *GestureHandler) broadcast() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
		}

		if h.Clients() == 0 {
			continue
		}

		msg, err := json.Marshal(gestureMessage{
			State:     h.source.State(),
			Timestamp: time.Now().UnixMilli(),
		})
		if err != nil {
			continue
		}

		h.mu.RLock()
		for conn := range h.clients {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.TextMessage, msg)
		}
		h.mu.RUnlock()
	}
}
