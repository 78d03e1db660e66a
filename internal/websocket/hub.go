// Package websocket broadcasts pipeline progress events to connected
// report clients.
package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"trendcli/internal/infrastructure"
	"trendcli/internal/pipeline"
)

// Message type constants.
const (
	TypeConnection = "connection"
	TypeProgress   = "pipeline:progress"
)

// Envelope is the wire format of hub messages.
type Envelope struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub maintains the set of active clients and broadcasts pipeline
// progress to them. Broadcasts never block the pipeline: a client whose
// send buffer is full is dropped.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]bool
	logger  *slog.Logger

	upgrader websocket.Upgrader
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// NewHub creates a hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Hub{
		clients: make(map[*client]bool),
		logger:  infrastructure.WithComponent(logger, "websocket.hub"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// ServeHTTP upgrades the request and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "websocket upgrade failed",
			slog.String("error", err.Error()))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 64), done: make(chan struct{})}
	h.mu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.InfoContext(r.Context(), "websocket client connected",
		slog.Int("clients", total))

	h.send(c, Envelope{Type: TypeConnection, Timestamp: time.Now()})

	go c.writePump(h)
	go c.readPump(h)
}

// BroadcastProgress implements pipeline.Broadcaster.
func (h *Hub) BroadcastProgress(event pipeline.ProgressEvent) {
	payload, err := json.Marshal(Envelope{
		Type:      TypeProgress,
		Data:      event,
		Timestamp: time.Now(),
	})
	if err != nil {
		h.logger.Error("failed to marshal progress event",
			slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- payload:
		default:
			h.drop(c)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) send(c *client, env Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
		h.drop(c)
	}
}

// drop unregisters the client and signals its writePump. The send
// channel is never closed: a broadcast that snapshotted the client
// before removal may still send into it, and a send on a closed channel
// would panic the broadcasting pipeline goroutine.
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.done)
	}
	h.mu.Unlock()
}

func (c *client) writePump(h *Hub) {
	defer c.conn.Close()
	for {
		select {
		case payload := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.drop(c)
				return
			}
		case <-c.done:
			return
		}
	}
}

// readPump consumes control frames and detects disconnects; the report
// API is broadcast-only, so inbound payloads are discarded.
func (c *client) readPump(h *Hub) {
	defer func() {
		h.drop(c)
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
