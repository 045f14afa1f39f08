package observability

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_http_requests_total",
			Help: "Total number of HTTP requests processed by the chat service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	grpcServerHandledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grpc_server_handled_total",
			Help: "Total number of gRPC requests handled by the server.",
		},
		[]string{"grpc_service", "grpc_method", "grpc_code"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_ws_events_total",
			Help: "Total number of websocket events.",
		},
		[]string{"direction", "event"},
	)
	roomsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_rooms_active",
			Help: "Number of rooms held in memory, the default room included.",
		},
	)
	roomEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_room_events_total",
			Help: "Total number of room joins and leaves.",
		},
		[]string{"kind", "event"},
	)
	messagesRelayedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_relayed_total",
			Help: "Total number of messages accepted by the relay.",
		},
		[]string{"kind"},
	)
	messageFanout = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_message_fanout",
			Help:    "Number of members a relayed message was delivered to.",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		},
	)
	presenceBroadcastsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_presence_broadcasts_total",
			Help: "Total number of presence broadcasts.",
		},
		[]string{"kind"},
	)
	deliveriesDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_deliveries_dropped_total",
			Help: "Total number of events that could not be queued for a connection.",
		},
		[]string{"event"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		grpcServerHandledTotal,
		wsActiveConnections,
		wsEventsTotal,
		roomsActive,
		roomEventsTotal,
		messagesRelayedTotal,
		messageFanout,
		presenceBroadcastsTotal,
		deliveriesDroppedTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func GRPCServerMetricsUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		statusInfo := status.Convert(err)
		service, method := splitFullMethod(info.FullMethod)
		grpcServerHandledTotal.WithLabelValues(service, method, statusInfo.Code().String()).Inc()
		return resp, err
	}
}

func splitFullMethod(fullMethod string) (string, string) {
	parts := strings.Split(fullMethod, "/")
	if len(parts) < 3 {
		return "unknown", "unknown"
	}
	return parts[1], parts[2]
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}

// IncWSEvent counts a websocket event; direction is "in", "out" or "lifecycle".
func IncWSEvent(direction, event string) {
	wsEventsTotal.WithLabelValues(direction, event).Inc()
}

func SetRoomsActive(n int) {
	roomsActive.Set(float64(n))
}

func IncRoomEvent(kind, event string) {
	roomEventsTotal.WithLabelValues(kind, event).Inc()
}

func IncMessagesRelayed(kind string) {
	messagesRelayedTotal.WithLabelValues(kind).Inc()
}

func ObserveFanout(delivered int) {
	messageFanout.Observe(float64(delivered))
}

func IncPresenceBroadcast(kind string) {
	presenceBroadcastsTotal.WithLabelValues(kind).Inc()
}

func IncDeliveryDropped(event string) {
	deliveriesDroppedTotal.WithLabelValues(event).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
