package chat

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"room-chat-service/internal/models"
)

// Registry tracks live connections by socket id.
type Registry struct {
	conns       map[string]*Connection
	maxUsername int
	mu          sync.RWMutex
}

// NewRegistry creates an empty registry. maxUsername bounds username length
// in characters; zero disables the bound.
func NewRegistry(maxUsername int) *Registry {
	return &Registry{
		conns:       make(map[string]*Connection),
		maxUsername: maxUsername,
	}
}

// Register creates a connection with no username and no room.
func (r *Registry) Register(id, ip string, sink Sink) (*Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[id]; ok {
		return nil, fmt.Errorf("register %s: %w", id, ErrDuplicateConnection)
	}
	conn := newConnection(id, ip, sink)
	r.conns[id] = conn
	return conn, nil
}

// SetUsername binds name to the connection exactly once.
func (r *Registry) SetUsername(id, name string) (*Connection, error) {
	conn, ok := r.Get(id)
	if !ok {
		return nil, ErrConnectionLost
	}
	name, err := r.validateUsername(name)
	if err != nil {
		return conn, err
	}
	if err := conn.setUsername(name); err != nil {
		return conn, err
	}
	return conn, nil
}

// Unregister removes the connection and returns the room it was last in.
func (r *Registry) Unregister(id string) (*Room, bool) {
	r.mu.Lock()
	conn, ok := r.conns[id]
	delete(r.conns, id)
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	room := conn.markClosed()
	return room, room != nil
}

// Get looks up a live connection.
func (r *Registry) Get(id string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[id]
	return conn, ok
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Snapshot lists live connections ordered by connect time.
func (r *Registry) Snapshot() []models.ConnectionSummary {
	r.mu.RLock()
	conns := make([]*Connection, 0, len(r.conns))
	for _, conn := range r.conns {
		conns = append(conns, conn)
	}
	r.mu.RUnlock()

	out := make([]models.ConnectionSummary, 0, len(conns))
	for _, conn := range conns {
		out = append(out, conn.summary())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ConnectedAt.Equal(out[j].ConnectedAt) {
			return out[i].SocketID < out[j].SocketID
		}
		return out[i].ConnectedAt.Before(out[j].ConnectedAt)
	})
	return out
}

func (r *Registry) validateUsername(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if r.maxUsername > 0 && utf8.RuneCountInString(name) > r.maxUsername {
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidName, r.maxUsername)
	}
	if !utf8.ValidString(name) {
		return "", fmt.Errorf("%w: not valid utf-8", ErrInvalidName)
	}
	for _, ch := range name {
		if unicode.IsControl(ch) {
			return "", fmt.Errorf("%w: contains control characters", ErrInvalidName)
		}
	}
	return name, nil
}
