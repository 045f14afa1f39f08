package models

import "time"

// Message is a single chat history entry of a room.
type Message struct {
	Seq       int       `json:"seq"`
	RoomID    string    `json:"roomId"`
	Username  string    `json:"username"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomSummary is the read-only view of a room used by the HTTP surface.
type RoomSummary struct {
	RoomID    string    `json:"room_id"`
	Private   bool      `json:"private"`
	Members   int       `json:"members"`
	Messages  int       `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}

// ConnectionSummary describes a live connection for debug endpoints.
type ConnectionSummary struct {
	SocketID       string    `json:"socket_id"`
	Username       string    `json:"username,omitempty"`
	RoomID         *string   `json:"room_id,omitempty"`
	HasNewMessages bool      `json:"has_new_messages"`
	ConnectedAt    time.Time `json:"connected_at"`
}

// Session is a connection lifecycle record kept by the session log.
type Session struct {
	ID             int        `db:"id" json:"id"`
	SocketID       string     `db:"socket_id" json:"socket_id"`
	Username       *string    `db:"username" json:"username,omitempty"`
	RoomID         *string    `db:"room_id" json:"room_id,omitempty"`
	IP             string     `db:"ip" json:"ip"`
	ConnectedAt    time.Time  `db:"connected_at" json:"connected_at"`
	DisconnectedAt *time.Time `db:"disconnected_at" json:"disconnected_at,omitempty"`
	CloseReason    *string    `db:"close_reason" json:"close_reason,omitempty"`
}
