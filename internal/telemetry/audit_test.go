package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	routingKey string
	event      any
	err        error
}

func (p *capturePublisher) Publish(_ context.Context, routingKey string, event any, _ map[string]string) error {
	p.routingKey = routingKey
	p.event = event
	return p.err
}

func TestEmitBuildsEnvelope(t *testing.T) {
	pub := &capturePublisher{}
	emitter := NewAuditEmitter(pub, "audit.chat", "room-chat-service", "test")
	username := "alice"

	emitter.Emit(context.Background(), "INFO", "username bound", "req-1", "sock-1", &username)

	assert.Equal(t, "audit.chat", pub.routingKey)
	envelope, ok := pub.event.(AuditEnvelope)
	require.True(t, ok)
	assert.Equal(t, 1, envelope.SchemaVersion)
	assert.Equal(t, "audit_log", envelope.EventType)
	assert.Equal(t, "req-1", envelope.RequestID)
	assert.Equal(t, "sock-1", envelope.SocketID)
	require.NotNil(t, envelope.Username)
	assert.Equal(t, "alice", *envelope.Username)
	assert.Equal(t, "INFO", envelope.Payload.Level)
}

func TestEmitIgnoresPublishErrorsAndNilEmitter(t *testing.T) {
	pub := &capturePublisher{err: errors.New("broker down")}
	emitter := NewAuditEmitter(pub, "audit.chat", "room-chat-service", "test")

	assert.NotPanics(t, func() {
		emitter.Emit(context.Background(), "ERROR", "username rejected", "", "sock-1", nil)
	})

	var nilEmitter *AuditEmitter
	assert.NotPanics(t, func() {
		nilEmitter.Emit(context.Background(), "INFO", "noop", "", "", nil)
	})
}
