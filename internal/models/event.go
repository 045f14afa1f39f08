package models

import "encoding/json"

// Inbound event types sent by clients.
const (
	EventSetUsername = "setUsername"
	EventJoin        = "join"
	EventLeave       = "leave"
	EventMessage     = "message"
	EventViewing     = "viewing"
)

// Outbound event types sent by the server.
const (
	EventConnect  = "connect"
	EventLoggedIn = "loggedin"
	EventJoined   = "joined"
	EventHistory  = "history"
	EventPresence = "presence"
	EventError    = "error"
)

// InboundEvent is the envelope of every client frame.
type InboundEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Event is the envelope of every server frame.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type SetUsernamePayload struct {
	Username string `json:"username"`
}

type JoinPayload struct {
	RoomID *string `json:"roomId,omitempty"`
}

type MessagePayload struct {
	Body   string  `json:"body"`
	RoomID *string `json:"roomId,omitempty"`
}

type ViewingPayload struct {
	Active bool `json:"active"`
}

type ConnectData struct {
	SocketID string `json:"socketId"`
}

type LoggedInData struct {
	Username string `json:"username"`
}

type JoinedData struct {
	RoomID  string `json:"roomId"`
	Private bool   `json:"private"`
}

type HistoryData struct {
	RoomID   string    `json:"roomId"`
	Messages []Message `json:"messages"`
}

type PresenceData struct {
	RoomID  string   `json:"roomId"`
	Members []string `json:"members"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
