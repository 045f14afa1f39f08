package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"room-chat-service/internal/chat"
	"room-chat-service/internal/ws"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port              string
	GRPCAddr          string
	DatabaseDSN       string
	AMQPURL           string
	AMQPExchange      string
	AuditRoutingKey   string
	OTLPEndpoint      string
	ServiceName       string
	Environment       string
	DebugRoutes       bool
	RoomSweepInterval time.Duration
	ShutdownTimeout   time.Duration

	Chat chat.Config
	WS   ws.Config
}

// Load reads the configuration, falling back to defaults for unset or
// malformed values.
func Load() Config {
	chatCfg := chat.DefaultConfig()
	wsCfg := ws.DefaultConfig()

	return Config{
		Port:              getEnv("PORT", "8083"),
		GRPCAddr:          getEnv("GRPC_ADDR", ":9093"),
		DatabaseDSN:       getEnv("DB_DSN", ""),
		AMQPURL:           getEnv("AMQP_URL", ""),
		AMQPExchange:      getEnv("AMQP_EXCHANGE", "chat.events"),
		AuditRoutingKey:   getEnv("AUDIT_ROUTING_KEY", "audit.chat"),
		OTLPEndpoint:      getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:       getEnv("SERVICE_NAME", "room-chat-service"),
		Environment:       getEnv("ENVIRONMENT", "local"),
		DebugRoutes:       getEnvBool("DEBUG_ROUTES", false),
		RoomSweepInterval: getEnvDuration("ROOM_SWEEP_INTERVAL", time.Minute),
		ShutdownTimeout:   getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Chat: chat.Config{
			EchoToSender:      getEnvBool("CHAT_ECHO_SENDER", chatCfg.EchoToSender),
			MaxUsernameLength: getEnvInt("CHAT_MAX_USERNAME", chatCfg.MaxUsernameLength),
			MaxMessageLength:  getEnvInt("CHAT_MAX_MESSAGE", chatCfg.MaxMessageLength),
			RoomIdleTTL:       getEnvDuration("ROOM_IDLE_TTL", chatCfg.RoomIdleTTL),
		},
		WS: ws.Config{
			SendBuffer:   getEnvInt("WS_SEND_BUFFER", wsCfg.SendBuffer),
			WriteWait:    wsCfg.WriteWait,
			PongWait:     wsCfg.PongWait,
			PingPeriod:   wsCfg.PingPeriod,
			MaxFrameSize: wsCfg.MaxFrameSize,
		},
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
		log.Printf("invalid int value for %s: %q, using default: %d", key, val, fallback)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
		log.Printf("invalid bool value for %s: %q, using default: %t", key, val, fallback)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		log.Printf("invalid duration value for %s: %q, using default: %s", key, val, fallback)
	}
	return fallback
}
