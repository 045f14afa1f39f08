package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"room-chat-service/internal/chat"
	"room-chat-service/internal/config"
	"room-chat-service/internal/db"
	grpcserver "room-chat-service/internal/grpc"
	"room-chat-service/internal/handlers"
	"room-chat-service/internal/middleware"
	"room-chat-service/internal/observability"
	"room-chat-service/internal/rabbitmq"
	"room-chat-service/internal/repositories"
	"room-chat-service/internal/telemetry"
	"room-chat-service/internal/ws"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.ServiceName, cfg.Environment, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	log.Printf("event publisher mode=%s reason=%q", rabbitmq.PublisherMode(publisher), rabbitmq.PublisherNoopReason(publisher))
	observability.SetPublisher(publisher)
	audit := telemetry.NewAuditEmitter(publisher, cfg.AuditRoutingKey, cfg.ServiceName, cfg.Environment)

	var database *sqlx.DB
	var sessions repositories.SessionRepository = repositories.NopSessionRepo{}
	if cfg.DatabaseDSN != "" {
		database, err = db.Connect(cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("failed to connect to db: %v", err)
		}
		sessions = repositories.NewSessionRepo(database)
	} else {
		log.Printf("session log disabled: empty DB_DSN")
	}

	service := chat.NewService(cfg.Chat)
	hub := ws.NewHub()

	wsHandler := ws.NewHandler(service, hub, sessions, audit, cfg.WS)
	roomHandler := handlers.NewRoomHandler(service)
	sessionHandler := handlers.NewSessionHandler(sessions)

	router := gin.Default()

	// middlewares
	router.Use(middleware.RequestID())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/ws", wsHandler.HandlePublic)
	router.GET("/ws/private/:room_id", wsHandler.HandlePrivate)

	router.GET("/rooms", roomHandler.ListRooms)
	router.GET("/rooms/public/messages", roomHandler.GetPublicMessages)
	router.GET("/rooms/private/:room_id/messages", roomHandler.GetPrivateMessages)
	router.GET("/sessions", sessionHandler.ListSessions)

	router.GET("/healthz", roomHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterDebugRoutes(router, service, audit, cfg.DebugRoutes)

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	go service.RunJanitor(janitorCtx, cfg.RoomSweepInterval)

	grpcServer := grpcserver.NewHealthServer()
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("failed to listen on %s: %v", cfg.GRPCAddr, err)
	}
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Printf("grpc server error: %v", err)
		}
	}()

	httpServer := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()
	grpcServer.SetServing(true)
	log.Printf("room chat service listening http=:%s grpc=%s echo_to_sender=%t", cfg.Port, cfg.GRPCAddr, cfg.Chat.EchoToSender)

	wait := gfshutdown.GracefulShutdown(ctx, cfg.ShutdownTimeout, map[string]gfshutdown.Operation{
		"grpc": grpcServer.Stop,
		"http": func(ctx context.Context) error {
			closed := hub.CloseAll()
			log.Printf("closing websockets count=%d", closed)
			return httpServer.Shutdown(ctx)
		},
		"janitor": func(ctx context.Context) error {
			stopJanitor()
			return nil
		},
		"tracer": shutdownTracer,
		"amqp": func(ctx context.Context) error {
			return publisher.Close()
		},
		"db": func(ctx context.Context) error {
			if database == nil {
				return nil
			}
			return database.Close()
		},
	})

	exitCode := <-wait
	log.Printf("room chat service exited code=%d", exitCode)
	os.Exit(exitCode)
}
