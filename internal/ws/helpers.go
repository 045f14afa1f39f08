package ws

import (
	"time"

	"github.com/google/uuid"
)

func newSocketID() string {
	return uuid.NewString()
}

// Config controls per-connection transport limits.
type Config struct {
	SendBuffer   int
	WriteWait    time.Duration
	PongWait     time.Duration
	PingPeriod   time.Duration
	MaxFrameSize int64
}

// DefaultConfig returns the production transport limits.
func DefaultConfig() Config {
	return Config{
		SendBuffer:   256,
		WriteWait:    10 * time.Second,
		PongWait:     60 * time.Second,
		PingPeriod:   54 * time.Second,
		MaxFrameSize: 64 * 1024,
	}
}
