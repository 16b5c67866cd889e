package observability

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	return m.Called(ctx, routingKey, event).Error(0)
}

func TestPublishEventCountsFailures(t *testing.T) {
	t.Cleanup(func() { SetPublisher(nil) })

	assert.NoError(t, PublishEvent(context.Background(), "ws_events.sessions", EventEnvelope{}))

	p := new(publisherMock)
	p.On("Publish", mock.Anything, "ws_events.sessions", mock.Anything).Return(assert.AnError).Once()
	SetPublisher(p)

	before := testutil.ToFloat64(amqpPublishErrorsTotal)
	assert.ErrorIs(t, PublishEvent(context.Background(), "ws_events.sessions", EventEnvelope{EventName: "ws_connect"}), assert.AnError)
	assert.Equal(t, before+1, testutil.ToFloat64(amqpPublishErrorsTotal))
	p.AssertExpectations(t)
}

func TestIPFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/ws", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", IPFromRequest(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", IPFromRequest(req))
}

func TestDomainMetrics(t *testing.T) {
	SetOnline(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(sessionsOnline))

	before := testutil.ToFloat64(messagesTotal.WithLabelValues("group"))
	IncMessage("group")
	assert.Equal(t, before+1, testutil.ToFloat64(messagesTotal.WithLabelValues("group")))
}
