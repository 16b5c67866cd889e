package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger/internal/mocks"
)

func TestAuditEmitterPublishesEnvelope(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := NewAuditEmitter(publisher, "audit.moderation", "messenger", "test")
	emitter.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	var published AuditEnvelope
	publisher.On("Publish", mock.Anything, "audit.moderation", mock.AnythingOfType("telemetry.AuditEnvelope")).
		Run(func(args mock.Arguments) { published = args.Get(2).(AuditEnvelope) }).
		Return(nil).Once()

	target := "123456"
	emitter.Emit(context.Background(), "info", "User alice banned", "req-1", &target)

	publisher.AssertExpectations(t)
	require.NotNil(t, published.UserID)
	assert.Equal(t, "123456", *published.UserID)
	assert.Equal(t, "audit_log", published.EventType)
	assert.Equal(t, "messenger", published.Service)
	assert.Equal(t, "2024-05-01T12:00:00Z", published.OccurredAt)
	assert.Equal(t, "User alice banned", published.Payload.Text)
}

func TestAuditEmitterSwallowsPublishErrors(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError).Once()

	NewAuditEmitter(publisher, "audit.moderation", "messenger", "test").Emit(context.Background(), "info", "x", "", nil)
	publisher.AssertExpectations(t)
}

func TestNilAuditEmitterIsNoop(t *testing.T) {
	var emitter *AuditEmitter
	emitter.Emit(context.Background(), "info", "ignored", "", nil)
}

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), "", "messenger", "test")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
