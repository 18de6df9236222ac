// Package serve runs a local preview server: decks are compiled in memory on
// every request and open browser tabs reload over a websocket whenever a
// source file changes.
package serve

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// local preview only, cross-origin pages are not a concern
	CheckOrigin: func(*http.Request) bool { return true },
}

// Hub tracks connected preview tabs and pushes reload notifications to them.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		log:     log.Named("ws"),
	}
}

// Handle upgrades one HTTP connection and keeps it registered until the
// client goes away. Incoming messages are drained and ignored.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Unable to upgrade connection", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Debug("Preview client connected", zap.Int("clients", n))

	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Reload notifies every connected tab. Connections that fail to accept the
// message are dropped.
func (h *Hub) Reload() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, []byte("reload")); err != nil {
			h.drop(c)
		}
	}
	h.log.Debug("Reload broadcast", zap.Int("clients", len(conns)))
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.Close()
	}
	h.clients = make(map[*websocket.Conn]struct{})
}
