package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"room-chat-service/internal/chat"
	"room-chat-service/internal/observability"
	"room-chat-service/internal/repositories"
	"room-chat-service/internal/telemetry"
)

const sessionTimeout = 2 * time.Second

// Handler upgrades HTTP requests to chat websockets.
type Handler struct {
	service  *chat.Service
	hub      *Hub
	sessions repositories.SessionRepository
	audit    *telemetry.AuditEmitter
	cfg      Config
}

// NewHandler constructs a Handler. sessions and audit may be nil.
func NewHandler(service *chat.Service, hub *Hub, sessions repositories.SessionRepository, audit *telemetry.AuditEmitter, cfg Config) *Handler {
	if sessions == nil {
		sessions = repositories.NopSessionRepo{}
	}
	return &Handler{service: service, hub: hub, sessions: sessions, audit: audit, cfg: cfg}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandlePublic serves GET /ws: the connection asks for the default room.
func (h *Handler) HandlePublic(c *gin.Context) {
	h.handle(c, "")
}

// HandlePrivate serves GET /ws/private/:room_id.
func (h *Handler) HandlePrivate(c *gin.Context) {
	roomID := c.Param("room_id")
	if roomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}
	h.handle(c, roomID)
}

func (h *Handler) handle(c *gin.Context, roomID string) {
	ctx, span := otel.Tracer("room-chat-service/ws").Start(c.Request.Context(), "ws.handshake", trace.WithSpanKind(trace.SpanKindServer))
	span.SetAttributes(attribute.String("chat.room_id", roomID))
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		SocketID:    newSocketID(),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	client := newClient(conn, info, h.cfg)
	go client.writePump()

	if _, err := h.service.Connect(info.SocketID, info.IP, client); err != nil {
		client.Close()
		return
	}
	h.hub.Add(info.SocketID, client)
	h.recordSession(func(ctx context.Context) error {
		return h.sessions.OpenSession(ctx, info.SocketID, info.IP, info.ConnectedAt)
	})

	observability.IncWSActive()
	observability.IncWSEvent("lifecycle", "ws_connect")
	h.publish(info, "ws_connect", roomID, "", "")

	// the room in the URL is joined as soon as a username is bound
	_ = h.service.Join(info.SocketID, roomID)

	go func() {
		var closeReason string
		defer func() {
			username := ""
			if conn, ok := h.service.Registry().Get(info.SocketID); ok {
				username = conn.Username()
			}
			h.service.Disconnect(info.SocketID)
			h.hub.Remove(info.SocketID)
			client.Close()
			h.recordSession(func(ctx context.Context) error {
				return h.sessions.CloseSession(ctx, info.SocketID, closeReason)
			})
			observability.DecWSActive()
			observability.IncWSEvent("lifecycle", "ws_disconnect")
			h.publish(info, "ws_disconnect", "", username, closeReason)
		}()
		closeReason = client.readLoop(func(data []byte) {
			h.dispatch(client, data)
		})
	}()
}

func (h *Handler) publish(info ConnInfo, event, roomID, username, reason string) {
	_ = observability.PublishEvent(context.Background(), observability.WSRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload: observability.WSEvent{
			Event:      event,
			SocketID:   info.SocketID,
			RoomID:     roomID,
			Username:   username,
			DurationMS: time.Since(info.ConnectedAt).Milliseconds(),
			Reason:     reason,
			IP:         info.IP,
		},
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}

func (h *Handler) recordSession(fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), sessionTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		observability.IncWSEvent("lifecycle", "session_log_error")
	}
}
