package observability

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failingPublisher struct{ calls int }

func (p *failingPublisher) Publish(context.Context, string, any, map[string]string) error {
	p.calls++
	return errors.New("closed channel")
}

func TestBuildHeadersSkipsEmptyValues(t *testing.T) {
	assert.Empty(t, BuildHeaders("", ""))
	assert.Equal(t, map[string]string{"x-request-id": "r1", "trace_id": "t1"}, BuildHeaders("r1", "t1"))
}

func TestPublishEventWithoutPublisher(t *testing.T) {
	SetPublisher(nil)
	assert.NoError(t, PublishEvent(context.Background(), WSRoutingKey, EventEnvelope{}, nil))
}

func TestPublishEventReturnsPublisherError(t *testing.T) {
	pub := &failingPublisher{}
	SetPublisher(pub)
	defer SetPublisher(nil)

	assert.Error(t, PublishEvent(context.Background(), WSRoutingKey, EventEnvelope{}, nil))
	assert.Equal(t, 1, pub.calls)
}

func TestIPFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/ws", nil)
	req.RemoteAddr = "10.0.0.7:51234"
	assert.Equal(t, "10.0.0.7", IPFromRequest(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", IPFromRequest(req))
}
