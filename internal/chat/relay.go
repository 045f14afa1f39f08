package chat

import (
	"fmt"
	"strings"
	"time"

	"room-chat-service/internal/models"
	"room-chat-service/internal/observability"
)

// Relay appends messages to room history and fans them out to members.
type Relay struct {
	echoToSender bool
	maxLength    int
	now          func() time.Time
}

// NewRelay builds a relay. When echoToSender is set the sender receives its
// own message back; maxLength bounds the body in bytes, zero disables it.
func NewRelay(echoToSender bool, maxLength int) *Relay {
	return &Relay{echoToSender: echoToSender, maxLength: maxLength, now: time.Now}
}

// Send appends body to the sender's room and delivers it to the other
// members. A member that cannot take the message is skipped; the send still
// succeeds.
func (r *Relay) Send(conn *Connection, body string) (models.Message, error) {
	username := conn.Username()
	if username == "" {
		return models.Message{}, ErrNotLoggedIn
	}
	room := conn.Room()
	if room == nil {
		return models.Message{}, ErrNotInRoom
	}
	if strings.TrimSpace(body) == "" {
		return models.Message{}, ErrEmptyMessage
	}
	if r.maxLength > 0 && len(body) > r.maxLength {
		return models.Message{}, fmt.Errorf("%w: %d bytes, limit %d", ErrMessageTooLong, len(body), r.maxLength)
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.indexLocked(conn) < 0 {
		return models.Message{}, ErrNotInRoom
	}

	msg := room.appendLocked(models.Message{
		Username:  username,
		Body:      body,
		Timestamp: r.now().UTC(),
	})
	event := models.Event{Type: models.EventMessage, Data: msg}
	delivered := 0
	for _, member := range room.members {
		if member == conn && !r.echoToSender {
			continue
		}
		if member.receive(event) {
			delivered++
		}
	}

	observability.IncMessagesRelayed(roomKind(room))
	observability.ObserveFanout(delivered)
	return msg, nil
}
