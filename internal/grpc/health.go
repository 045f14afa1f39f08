package grpc

import (
	"context"
	"net"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"room-chat-service/internal/observability"
)

// ChatServiceName is the health-check service name reported for the chat core.
const ChatServiceName = "roomchat.Chat"

// HealthServer is the admin gRPC endpoint answering grpc.health.v1 checks.
type HealthServer struct {
	server *grpc.Server
	health *health.Server
}

// NewHealthServer builds the server; it reports NOT_SERVING until SetServing.
func NewHealthServer() *HealthServer {
	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(observability.GRPCServerMetricsUnaryInterceptor()),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(server, hs)

	s := &HealthServer{server: server, health: hs}
	s.SetServing(false)
	return s
}

// Serve accepts connections on lis until Stop.
func (s *HealthServer) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

// SetServing flips the overall and chat service status.
func (s *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ChatServiceName, status)
}

// Stop reports NOT_SERVING and drains in-flight calls, forcing the stop when
// ctx expires first.
func (s *HealthServer) Stop(ctx context.Context) error {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		return ctx.Err()
	}
}
