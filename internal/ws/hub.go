package ws

import (
	"sync"
)

// Hub tracks the live websocket clients of this process so they can be
// closed together on shutdown.
type Hub struct {
	clients map[string]*Client
	mu      sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// Add registers a client under its socket id.
func (h *Hub) Add(id string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[id] = client
}

// Remove forgets a client.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}

// Len returns the number of live clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll asks every client to close with a going-away frame.
func (h *Hub) CloseAll() int {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		client.Close()
	}
	return len(clients)
}
