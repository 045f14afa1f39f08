package observability

const WSRoutingKey = "ws_events.rooms"

type EventEnvelope struct {
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	Payload   interface{} `json:"payload"`
}

// WSEvent describes one websocket lifecycle step for downstream consumers.
type WSEvent struct {
	Event      string `json:"event"`
	SocketID   string `json:"socket_id"`
	RoomID     string `json:"room_id,omitempty"`
	Username   string `json:"username,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	Reason     string `json:"reason"`
	IP         string `json:"ip"`
}

func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
