package chat

import (
	"sync"

	"room-chat-service/internal/models"
)

type recordingSink struct {
	mu     sync.Mutex
	events []models.Event
	full   bool
}

func (s *recordingSink) Deliver(event models.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full {
		return false
	}
	s.events = append(s.events, event)
	return true
}

func (s *recordingSink) ofType(eventType string) []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Event
	for _, ev := range s.events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

func (s *recordingSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Type)
	}
	return out
}

func (s *recordingSink) lastPresence() []string {
	events := s.ofType(models.EventPresence)
	if len(events) == 0 {
		return nil
	}
	return events[len(events)-1].Data.(models.PresenceData).Members
}

func (s *recordingSink) messages() []models.Message {
	events := s.ofType(models.EventMessage)
	out := make([]models.Message, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Data.(models.Message))
	}
	return out
}

var _ Sink = (*recordingSink)(nil)
