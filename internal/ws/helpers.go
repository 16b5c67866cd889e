package ws

import (
	"context"
	"time"

	"github.com/google/uuid"

	"messenger/internal/observability"
	"messenger/internal/rabbitmq"
)

const (
	wsKind       = "client"
	wsRoutingKey = rabbitmq.RoutingKeySessions
)

func newConnID() string {
	return uuid.NewString()
}

func publishWSEvent(ctx context.Context, info ConnInfo, event, reason string) {
	observability.IncWSEvent(wsKind, event)
	_ = observability.PublishEvent(ctx, wsRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		RequestID: info.RequestID,
		TraceID:   info.TraceID,
		Payload: map[string]interface{}{
			"ws": map[string]interface{}{
				"kind":        wsKind,
				"event":       event,
				"conn_id":     info.ConnID,
				"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
				"reason":      reason,
			},
			"identity": map[string]interface{}{
				"ip": info.IP,
			},
		},
	})
}
