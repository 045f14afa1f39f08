package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "CHAT_ECHO_SENDER", "ROOM_IDLE_TTL", "WS_SEND_BUFFER", "DB_DSN"} {
		t.Setenv(key, "")
	}
	t.Setenv("PORT", "8083")

	cfg := Load()

	assert.Equal(t, "8083", cfg.Port)
	assert.False(t, cfg.Chat.EchoToSender)
	assert.Equal(t, 32, cfg.Chat.MaxUsernameLength)
	assert.Equal(t, 30*time.Minute, cfg.Chat.RoomIdleTTL)
	assert.Equal(t, 256, cfg.WS.SendBuffer)
	assert.Empty(t, cfg.DatabaseDSN)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CHAT_ECHO_SENDER", "true")
	t.Setenv("CHAT_MAX_MESSAGE", "128")
	t.Setenv("ROOM_IDLE_TTL", "5s")
	t.Setenv("WS_SEND_BUFFER", "not-a-number")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.Chat.EchoToSender)
	assert.Equal(t, 128, cfg.Chat.MaxMessageLength)
	assert.Equal(t, 5*time.Second, cfg.Chat.RoomIdleTTL)
	assert.Equal(t, 256, cfg.WS.SendBuffer)
}
