package chat

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"room-chat-service/internal/models"
	"room-chat-service/internal/observability"
)

// DefaultRoomID names the shared public room.
const DefaultRoomID = "public"

// Manager owns the set of rooms. The default room always exists; private
// rooms are created on first reference and swept once they have been empty
// for longer than the idle TTL.
type Manager struct {
	rooms    map[string]*Room
	def      *Room
	presence *Presence
	idleTTL  time.Duration
	now      func() time.Time
	mu       sync.RWMutex
}

// NewManager creates a manager holding only the default room.
func NewManager(presence *Presence, idleTTL time.Duration) *Manager {
	now := time.Now
	def := newRoom(DefaultRoomID, false, now())
	m := &Manager{
		rooms:    map[string]*Room{roomKey(DefaultRoomID, false): def},
		def:      def,
		presence: presence,
		idleTTL:  idleTTL,
		now:      now,
	}
	observability.SetRoomsActive(1)
	return m
}

func roomKey(id string, private bool) string {
	if private {
		return "private:" + id
	}
	return id
}

// Default returns the shared public room.
func (m *Manager) Default() *Room {
	return m.def
}

// Lookup returns an existing room without creating it.
func (m *Manager) Lookup(roomID string, private bool) (*Room, bool) {
	if !private {
		return m.def, roomID == "" || roomID == DefaultRoomID
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[roomKey(roomID, true)]
	return room, ok
}

func (m *Manager) getOrCreate(roomID string) *Room {
	if roomID == "" {
		return m.def
	}
	key := roomKey(roomID, true)

	m.mu.RLock()
	room, ok := m.rooms[key]
	m.mu.RUnlock()
	if ok {
		return room
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if room, ok := m.rooms[key]; ok {
		return room
	}
	room = newRoom(roomID, true, m.now())
	m.rooms[key] = room
	observability.SetRoomsActive(len(m.rooms))
	log.Printf("room created room_id=%s", roomID)
	return room
}

// Join moves conn into the room identified by roomID, where an empty id
// selects the default room. The joiner receives the joined and history
// events before the presence broadcast, all under the room lock, so no
// message can fall between the history snapshot and live delivery.
func (m *Manager) Join(conn *Connection, roomID string) (*Room, []models.Message, error) {
	if conn.Username() == "" {
		return nil, nil, ErrNotLoggedIn
	}

	for {
		target := m.getOrCreate(roomID)
		current := conn.Room()
		if current == target {
			return target, target.History(), nil
		}
		if current != nil {
			m.Leave(conn)
		}

		target.mu.Lock()
		if target.removed {
			// swept between lookup and lock
			target.mu.Unlock()
			continue
		}
		target.addLocked(conn)
		conn.setRoom(target)
		history := target.historyLocked()
		conn.deliver(models.Event{
			Type: models.EventJoined,
			Data: models.JoinedData{RoomID: target.ID, Private: target.Private},
		})
		conn.deliver(models.Event{
			Type: models.EventHistory,
			Data: models.HistoryData{RoomID: target.ID, Messages: history},
		})
		m.presence.announceLocked(target)
		target.mu.Unlock()

		observability.IncRoomEvent(roomKind(target), "join")
		return target, history, nil
	}
}

// Leave removes conn from its current room and rebroadcasts presence to the
// remaining members.
func (m *Manager) Leave(conn *Connection) (*Room, bool) {
	room := conn.Room()
	if room == nil {
		return nil, false
	}
	room.mu.Lock()
	removed := room.removeLocked(conn, m.now())
	conn.setRoom(nil)
	if removed && len(room.members) > 0 {
		m.presence.announceLocked(room)
	}
	room.mu.Unlock()

	if removed {
		observability.IncRoomEvent(roomKind(room), "leave")
	}
	return room, removed
}

// Sweep removes private rooms that have been empty for at least the idle
// TTL and returns how many were removed.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, room := range m.rooms {
		if room == m.def {
			continue
		}
		room.mu.Lock()
		if room.idleLocked(now, m.idleTTL) {
			room.removed = true
			delete(m.rooms, key)
			removed++
		}
		room.mu.Unlock()
	}
	if removed > 0 {
		observability.SetRoomsActive(len(m.rooms))
	}
	return removed
}

// RunJanitor sweeps idle rooms every interval until ctx is cancelled.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(m.now()); n > 0 {
				log.Printf("room janitor swept rooms=%d", n)
			}
		}
	}
}

// Rooms lists all rooms, the default room first and private rooms by id.
func (m *Manager) Rooms() []models.RoomSummary {
	m.mu.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		rooms = append(rooms, room)
	}
	m.mu.RUnlock()

	out := make([]models.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, room.Summary())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Private != out[j].Private {
			return !out[i].Private
		}
		return out[i].RoomID < out[j].RoomID
	})
	return out
}

// Len returns the number of rooms, the default room included.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
