package ws

import (
	"encoding/json"
	"sync"

	"tasklists/internal/domain"
	"tasklists/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	wsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connections",
		Help: "Open websocket connections",
	})
	wsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ws_dropped_clients_total",
		Help: "Clients disconnected because their send buffer was full",
	})
)

func init() {
	prometheus.MustRegister(wsConnections)
	prometheus.MustRegister(wsDropped)
}

// Hub fans events out to the live connections of each user. A user may
// hold several connections (tabs, devices); events never cross users.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64]map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	wsConnections.Inc()
	logger.Debug("ws client registered", "user_id", c.UserID, "connections", len(set))
}

// Unregister removes c and closes its send channel. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	close(c.Send)
	wsConnections.Dec()
}

// Publish queues ev for every connection of userID and returns how many
// accepted it. Clients whose buffer is full are dropped.
func (h *Hub) Publish(userID int64, ev domain.Event) int {
	msg, err := json.Marshal(ev)
	if err != nil {
		logger.Error("ws marshal event", "type", ev.Type, "error", err)
		return 0
	}

	var slow []*Client
	delivered := 0

	h.mu.RLock()
	for c := range h.clients[userID] {
		select {
		case c.Send <- msg:
			delivered++
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	if len(slow) > 0 {
		h.mu.Lock()
		for _, c := range slow {
			h.removeLocked(c)
			wsDropped.Inc()
			logger.Warn("ws client dropped: send buffer full", "user_id", userID)
		}
		h.mu.Unlock()
	}
	return delivered
}

// Connections returns the number of live connections for userID.
func (h *Hub) Connections(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close disconnects everyone; used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for c := range set {
			h.removeLocked(c)
		}
	}
}
