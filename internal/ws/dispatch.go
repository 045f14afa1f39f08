package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"room-chat-service/internal/chat"
	"room-chat-service/internal/models"
	"room-chat-service/internal/observability"
)

var errBadRequest = errors.New("malformed event")

// dispatch decodes one client frame and applies it. Errors go back to this
// client only.
func (h *Handler) dispatch(client *Client, data []byte) {
	var in models.InboundEvent
	if err := json.Unmarshal(data, &in); err != nil || in.Type == "" {
		h.reject(client, "", errBadRequest)
		return
	}
	observability.IncWSEvent("in", in.Type)

	id := client.info.SocketID
	var err error
	switch in.Type {
	case models.EventSetUsername:
		var p models.SetUsernamePayload
		if err = decode(in.Data, &p); err == nil {
			err = h.setUsername(client, p.Username)
		}
	case models.EventJoin:
		var p models.JoinPayload
		if err = decode(in.Data, &p); err == nil {
			roomID := ""
			if p.RoomID != nil {
				roomID = *p.RoomID
			}
			if err = h.service.Join(id, roomID); err == nil {
				h.recordRoom(id)
			}
		}
	case models.EventLeave:
		if err = h.service.Leave(id); err == nil {
			h.recordRoom(id)
		}
	case models.EventMessage:
		var p models.MessagePayload
		if err = decode(in.Data, &p); err == nil {
			_, err = h.service.Send(id, p.Body, p.RoomID)
		}
	case models.EventViewing:
		var p models.ViewingPayload
		if err = decode(in.Data, &p); err == nil {
			err = h.service.SetViewing(id, p.Active)
		}
	default:
		err = errBadRequest
	}

	if err != nil {
		h.reject(client, in.Type, err)
	}
}

func (h *Handler) setUsername(client *Client, name string) error {
	id := client.info.SocketID
	if err := h.service.SetUsername(id, name); err != nil {
		if errors.Is(err, chat.ErrInvalidName) || errors.Is(err, chat.ErrAlreadySet) {
			h.audit.Emit(context.Background(), "ERROR", "username rejected: "+chat.ErrorCode(err), client.info.RequestID, id, nil)
		}
		return err
	}

	conn, ok := h.service.Registry().Get(id)
	if !ok {
		return chat.ErrConnectionLost
	}
	username := conn.Username()
	h.audit.Emit(context.Background(), "INFO", "username bound", client.info.RequestID, id, &username)
	h.recordSession(func(ctx context.Context) error {
		return h.sessions.BindUsername(ctx, id, username)
	})
	h.recordRoom(id)
	return nil
}

func (h *Handler) recordRoom(id string) {
	conn, ok := h.service.Registry().Get(id)
	if !ok {
		return
	}
	var roomID *string
	if room := conn.Room(); room != nil {
		roomID = &room.ID
	}
	h.recordSession(func(ctx context.Context) error {
		return h.sessions.SetRoom(ctx, id, roomID)
	})
}

func (h *Handler) reject(client *Client, eventType string, err error) {
	code := chat.ErrorCode(err)
	log.Printf("websocket request rejected socket_id=%s event=%s code=%s err=%v", client.info.SocketID, eventType, code, err)
	client.Deliver(models.Event{
		Type: models.EventError,
		Data: models.ErrorData{Code: code, Message: err.Error()},
	})
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errBadRequest
	}
	return nil
}
