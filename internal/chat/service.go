package chat

import (
	"context"
	"log"
	"time"

	"room-chat-service/internal/models"
)

// Config tunes the chat core.
type Config struct {
	EchoToSender      bool
	MaxUsernameLength int
	MaxMessageLength  int
	RoomIdleTTL       time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		EchoToSender:      false,
		MaxUsernameLength: 32,
		MaxMessageLength:  4096,
		RoomIdleTTL:       30 * time.Minute,
	}
}

// Service drives the per-connection state machine
// anonymous -> identified -> in room -> identified -> terminal.
type Service struct {
	registry *Registry
	rooms    *Manager
	presence *Presence
	relay    *Relay
}

// NewService wires the registry, room manager, presence and relay.
func NewService(cfg Config) *Service {
	presence := &Presence{}
	return &Service{
		registry: NewRegistry(cfg.MaxUsernameLength),
		rooms:    NewManager(presence, cfg.RoomIdleTTL),
		presence: presence,
		relay:    NewRelay(cfg.EchoToSender, cfg.MaxMessageLength),
	}
}

// Registry exposes the connection registry for read paths.
func (s *Service) Registry() *Registry { return s.registry }

// Rooms exposes the room manager for read paths.
func (s *Service) Rooms() *Manager { return s.rooms }

// Connect registers a new connection and acknowledges the handshake.
func (s *Service) Connect(id, ip string, sink Sink) (*Connection, error) {
	conn, err := s.registry.Register(id, ip, sink)
	if err != nil {
		return nil, err
	}
	conn.deliver(models.Event{Type: models.EventConnect, Data: models.ConnectData{SocketID: id}})
	return conn, nil
}

// SetUsername binds the username, acknowledges it with loggedin and completes
// a join requested before identification.
func (s *Service) SetUsername(id, name string) error {
	conn, err := s.registry.SetUsername(id, name)
	if err != nil {
		return err
	}
	username := conn.Username()
	conn.deliver(models.Event{Type: models.EventLoggedIn, Data: models.LoggedInData{Username: username}})
	log.Printf("username bound socket_id=%s username=%q", id, username)

	if roomID, ok := conn.takePending(); ok {
		if _, _, err := s.rooms.Join(conn, roomID); err != nil {
			return err
		}
	}
	return nil
}

// Join admits the connection to a room. An empty roomID selects the default
// room. Before a username is bound the request is remembered and completed
// by SetUsername.
func (s *Service) Join(id, roomID string) error {
	conn, ok := s.registry.Get(id)
	if !ok {
		return ErrConnectionLost
	}
	if conn.Username() == "" {
		conn.setPending(roomID)
		return nil
	}
	_, _, err := s.rooms.Join(conn, roomID)
	return err
}

// Leave removes the connection from its current room.
func (s *Service) Leave(id string) error {
	conn, ok := s.registry.Get(id)
	if !ok {
		return ErrConnectionLost
	}
	if conn.Username() == "" {
		return ErrNotLoggedIn
	}
	if _, ok := s.rooms.Leave(conn); !ok {
		return ErrNotInRoom
	}
	return nil
}

// Send relays body to the connection's room. When roomID is given it must
// name the room the connection is in.
func (s *Service) Send(id, body string, roomID *string) (models.Message, error) {
	conn, ok := s.registry.Get(id)
	if !ok {
		return models.Message{}, ErrConnectionLost
	}
	if roomID != nil && conn.Username() != "" {
		room := conn.Room()
		if room == nil || !sameRoom(room, *roomID) {
			return models.Message{}, ErrNotInRoom
		}
	}
	return s.relay.Send(conn, body)
}

// SetViewing records whether the client is looking at its room; becoming
// active clears the unread flag.
func (s *Service) SetViewing(id string, active bool) error {
	conn, ok := s.registry.Get(id)
	if !ok {
		return ErrConnectionLost
	}
	conn.setViewing(active)
	return nil
}

// Disconnect unregisters the connection and removes it from its room. The
// remaining members only see a presence update.
func (s *Service) Disconnect(id string) {
	conn, ok := s.registry.Get(id)
	if !ok {
		return
	}
	if _, inRoom := s.registry.Unregister(id); inRoom {
		s.rooms.Leave(conn)
	}
}

// RunJanitor sweeps idle private rooms until ctx is done.
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration) {
	s.rooms.RunJanitor(ctx, interval)
}

func sameRoom(room *Room, roomID string) bool {
	if room.Private {
		return room.ID == roomID
	}
	return roomID == "" || roomID == DefaultRoomID
}
