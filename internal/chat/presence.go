package chat

import (
	"room-chat-service/internal/models"
	"room-chat-service/internal/observability"
)

// Presence sends the member list of a room to all of its members.
type Presence struct{}

// Announce broadcasts the current member list of room.
func (p *Presence) Announce(room *Room) {
	room.mu.Lock()
	defer room.mu.Unlock()
	p.announceLocked(room)
}

// announceLocked runs under the room lock so that every member, the joiner
// included, observes membership changes in the same order.
func (p *Presence) announceLocked(room *Room) {
	event := models.Event{
		Type: models.EventPresence,
		Data: models.PresenceData{RoomID: room.ID, Members: room.usernamesLocked()},
	}
	for _, member := range room.members {
		member.deliver(event)
	}
	observability.IncPresenceBroadcast(roomKind(room))
}

func roomKind(room *Room) string {
	if room.Private {
		return "private"
	}
	return "public"
}
