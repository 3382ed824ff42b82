// Package stream broadcasts factory and ledger events to websocket clients.
package stream

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/launchforge/tokenfactory/monitoring"
)

// Hub fans events out to every connected websocket client. Writes are
// serialized per connection: gorilla/websocket allows only one concurrent
// writer, and sinks on different ledgers can broadcast at the same time.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*websocket.Conn]*sync.Mutex
	upgrader websocket.Upgrader
	metrics  *monitoring.Metrics
	log      *logrus.Entry
}

func NewHub(logger *logrus.Logger) *Hub {
	if logger == nil {
		logger = logrus.New()
	}
	return &Hub{
		clients: make(map[*websocket.Conn]*sync.Mutex),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: logger.WithField("component", "stream"),
	}
}

// SetMetrics attaches the client-count gauge.
func (h *Hub) SetMetrics(m *monitoring.Metrics) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.metrics = m
}

// HandleWS upgrades an HTTP request and registers the client. The
// connection is read-drained so close frames are noticed.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	count := len(h.clients)
	if h.metrics != nil {
		h.metrics.StreamClients.Set(float64(count))
	}
	h.mu.Unlock()

	h.log.WithField("clients", count).Info("Stream client connected")

	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) remove(conn *websocket.Conn) {
	conn.Close()

	h.mu.Lock()
	delete(h.clients, conn)
	count := len(h.clients)
	if h.metrics != nil {
		h.metrics.StreamClients.Set(float64(count))
	}
	h.mu.Unlock()

	h.log.WithField("clients", count).Info("Stream client disconnected")
}

// Broadcast sends an event to every connected client. Dead connections are
// dropped.
func (h *Hub) Broadcast(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.WithError(err).Error("Failed to marshal stream event")
		return
	}

	type target struct {
		conn *websocket.Conn
		wmu  *sync.Mutex
	}

	h.mu.RLock()
	targets := make([]target, 0, len(h.clients))
	for conn, wmu := range h.clients {
		targets = append(targets, target{conn: conn, wmu: wmu})
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.wmu.Lock()
		err := c.conn.WriteMessage(websocket.TextMessage, data)
		c.wmu.Unlock()
		if err != nil {
			h.remove(c.conn)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.clients = make(map[*websocket.Conn]*sync.Mutex)
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}
