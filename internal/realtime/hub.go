package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"kanban_board/internal/domain"
	"kanban_board/internal/logger"
)

// Hub tracks the open connections of every user on this instance.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	activeConnections.Inc()
	logger.Debug("realtime client registered", "user_id", c.UserID, "connections", len(set))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked drops c and closes its send channel. Safe to call twice.
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
	close(c.send)
	activeConnections.Dec()
}

// Connections returns how many sockets the user has open here.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Deliver writes an auth event to every local connection of the user.
// SIGNED_OUT also closes those connections after the frame is queued.
func (h *Hub) Deliver(userID string, event domain.AuthEvent) int {
	msg, err := json.Marshal(Message{Type: MsgAuth, Event: event, UserID: userID})
	if err != nil {
		logger.Error("marshal realtime message", "error", err)
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.clients[userID]
	delivered := 0
	for c := range set {
		select {
		case c.send <- msg:
			delivered++
		default:
			logger.Warn("realtime client too slow, dropping", "user_id", userID)
			h.removeLocked(c)
		}
	}
	if event == domain.EventSignedOut {
		for c := range h.clients[userID] {
			h.removeLocked(c)
		}
	}
	eventsDelivered.WithLabelValues(string(event)).Add(float64(delivered))
	return delivered
}

// Publish satisfies service.Publisher for single-instance deployments.
func (h *Hub) Publish(_ context.Context, userID string, event domain.AuthEvent) error {
	h.Deliver(userID, event)
	return nil
}

// CloseAll disconnects everybody. Used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for c := range set {
			h.removeLocked(c)
		}
	}
}
