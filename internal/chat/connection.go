package chat

import (
	"sync"
	"time"

	"room-chat-service/internal/models"
	"room-chat-service/internal/observability"
)

// Sink receives the events addressed to one connection. Deliver must not
// block; it reports false when the event could not be queued.
type Sink interface {
	Deliver(event models.Event) bool
}

// State is the lifecycle position of a connection.
type State int

const (
	StateAnonymous State = iota
	StateIdentified
	StateInRoom
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateIdentified:
		return "identified"
	case StateInRoom:
		return "in_room"
	case StateTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Connection is a single client session. The room reference is weak: a
// connection never owns the room it is in.
type Connection struct {
	ID          string
	IP          string
	ConnectedAt time.Time

	sink Sink

	mu             sync.Mutex
	username       string
	room           *Room
	pending        *string
	viewing        bool
	hasNewMessages bool
	closed         bool
}

func newConnection(id, ip string, sink Sink) *Connection {
	return &Connection{
		ID:          id,
		IP:          ip,
		ConnectedAt: time.Now(),
		sink:        sink,
		viewing:     true,
	}
}

// Username returns the bound username or an empty string.
func (c *Connection) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

// Room returns the room the connection is currently in, if any.
func (c *Connection) Room() *Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

// State reports where the connection is in its lifecycle.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.closed:
		return StateTerminal
	case c.username == "":
		return StateAnonymous
	case c.room == nil:
		return StateIdentified
	default:
		return StateInRoom
	}
}

// HasNewMessages reports whether a message arrived while the client was not
// viewing its room.
func (c *Connection) HasNewMessages() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasNewMessages
}

// ChatHistory returns the history of the connection's current room.
func (c *Connection) ChatHistory() []models.Message {
	room := c.Room()
	if room == nil {
		return nil
	}
	return room.History()
}

func (c *Connection) setUsername(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnectionLost
	}
	if c.username != "" {
		return ErrAlreadySet
	}
	c.username = name
	return nil
}

func (c *Connection) setRoom(room *Room) {
	c.mu.Lock()
	c.room = room
	c.mu.Unlock()
}

func (c *Connection) setPending(roomID string) {
	c.mu.Lock()
	c.pending = &roomID
	c.mu.Unlock()
}

func (c *Connection) takePending() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return "", false
	}
	roomID := *c.pending
	c.pending = nil
	return roomID, true
}

func (c *Connection) setViewing(active bool) {
	c.mu.Lock()
	c.viewing = active
	if active {
		c.hasNewMessages = false
	}
	c.mu.Unlock()
}

func (c *Connection) markClosed() *Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.pending = nil
	return c.room
}

func (c *Connection) deliver(event models.Event) bool {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed || c.sink == nil {
		return false
	}
	if !c.sink.Deliver(event) {
		observability.IncDeliveryDropped(event.Type)
		return false
	}
	return true
}

// receive delivers a room message and flags it unread when the client is
// looking elsewhere.
func (c *Connection) receive(event models.Event) bool {
	c.mu.Lock()
	if !c.viewing {
		c.hasNewMessages = true
	}
	c.mu.Unlock()
	return c.deliver(event)
}

func (c *Connection) summary() models.ConnectionSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := models.ConnectionSummary{
		SocketID:       c.ID,
		Username:       c.username,
		HasNewMessages: c.hasNewMessages,
		ConnectedAt:    c.ConnectedAt,
	}
	if c.room != nil {
		id := c.room.ID
		s.RoomID = &id
	}
	return s
}
