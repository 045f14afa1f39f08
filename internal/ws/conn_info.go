package ws

import "time"

type ConnInfo struct {
	SocketID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
