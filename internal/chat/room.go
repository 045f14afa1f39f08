package chat

import (
	"sync"
	"time"

	"room-chat-service/internal/models"
)

// Room groups connections that share message delivery and chat history.
// Membership and history are guarded by mu; operations on different rooms
// never contend.
type Room struct {
	ID        string
	Private   bool
	CreatedAt time.Time

	mu         sync.Mutex
	members    []*Connection
	history    []models.Message
	emptySince time.Time
	removed    bool
}

func newRoom(id string, private bool, now time.Time) *Room {
	return &Room{
		ID:         id,
		Private:    private,
		CreatedAt:  now,
		emptySince: now,
	}
}

// History returns a copy of the room's chat history in append order.
func (r *Room) History() []models.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.historyLocked()
}

// Members returns the usernames of current members in join order.
func (r *Room) Members() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usernamesLocked()
}

// Len returns the number of current members.
func (r *Room) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Summary returns the read-only view of the room.
func (r *Room) Summary() models.RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return models.RoomSummary{
		RoomID:    r.ID,
		Private:   r.Private,
		Members:   len(r.members),
		Messages:  len(r.history),
		CreatedAt: r.CreatedAt,
	}
}

func (r *Room) historyLocked() []models.Message {
	out := make([]models.Message, len(r.history))
	copy(out, r.history)
	return out
}

func (r *Room) usernamesLocked() []string {
	names := make([]string, 0, len(r.members))
	for _, m := range r.members {
		names = append(names, m.Username())
	}
	return names
}

func (r *Room) indexLocked(conn *Connection) int {
	for i, m := range r.members {
		if m == conn {
			return i
		}
	}
	return -1
}

func (r *Room) addLocked(conn *Connection) bool {
	if r.indexLocked(conn) >= 0 {
		return false
	}
	r.members = append(r.members, conn)
	r.emptySince = time.Time{}
	return true
}

func (r *Room) removeLocked(conn *Connection, now time.Time) bool {
	i := r.indexLocked(conn)
	if i < 0 {
		return false
	}
	r.members = append(r.members[:i], r.members[i+1:]...)
	if len(r.members) == 0 {
		r.emptySince = now
	}
	return true
}

func (r *Room) appendLocked(msg models.Message) models.Message {
	msg.Seq = len(r.history) + 1
	msg.RoomID = r.ID
	r.history = append(r.history, msg)
	return msg
}

func (r *Room) idleLocked(now time.Time, ttl time.Duration) bool {
	return len(r.members) == 0 && !r.emptySince.IsZero() && now.Sub(r.emptySince) >= ttl
}
