package rabbitmq

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"messenger/internal/observability"
	"messenger/internal/telemetry"
)

// Routing keys on the messenger exchange.
const (
	RoutingKeyModeration = "audit.moderation"
	RoutingKeySessions   = "ws_events.sessions"
)

// Publisher publishes audit and session events.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// NewPublisher builds a RabbitMQ publisher or a noop publisher when AMQP is disabled.
func NewPublisher(amqpURL, exchange string) Publisher {
	if amqpURL == "" {
		log.Printf("rabbitmq disabled, using noop: empty amqp url")
		return noopPublisher{reason: "empty amqp url"}
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		log.Printf("rabbitmq disabled, using noop: %v", err)
		return noopPublisher{reason: err.Error()}
	}

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq disabled, using noop: %v", err)
		_ = conn.Close()
		return noopPublisher{reason: err.Error()}
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		log.Printf("rabbitmq disabled, using noop: %v", err)
		_ = ch.Close()
		_ = conn.Close()
		return noopPublisher{reason: err.Error()}
	}

	log.Printf("rabbitmq connected exchange=%s", exchange)
	return &amqpPublisher{conn: conn, ch: ch, exchange: exchange}
}

type amqpPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func (p *amqpPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	msg, err := publishing(event, time.Now())
	if err != nil {
		return err
	}
	if routingKey == "" {
		routingKey = RoutingKeyFor(event)
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg)
	if err != nil {
		log.Printf("rabbitmq publish failed routing_key=%s: %v", routingKey, err)
	}
	return err
}

// RoutingKeyFor picks the routing key for an envelope published without one.
func RoutingKeyFor(event any) string {
	switch event.(type) {
	case telemetry.AuditEnvelope, *telemetry.AuditEnvelope:
		return RoutingKeyModeration
	case observability.EventEnvelope, *observability.EventEnvelope:
		return RoutingKeySessions
	default:
		return "events.unknown"
	}
}

// publishing builds the AMQP message for event. Envelope metadata is copied into
// the message properties so consumers can route on it without decoding the body.
func publishing(event any, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    now,
		Body:         body,
	}

	switch envelope := event.(type) {
	case *telemetry.AuditEnvelope:
		if envelope != nil {
			event = *envelope
		}
	case *observability.EventEnvelope:
		if envelope != nil {
			event = *envelope
		}
	}
	switch envelope := event.(type) {
	case telemetry.AuditEnvelope:
		msg.Type = envelope.EventType
		msg.MessageId = envelope.RequestID
		msg.AppId = envelope.Service
		msg.Headers = amqp.Table{"environment": envelope.Environment, "level": envelope.Payload.Level}
		if envelope.UserID != nil {
			msg.Headers["user_id"] = *envelope.UserID
		}
	case observability.EventEnvelope:
		msg.Type = envelope.EventType
		msg.MessageId = envelope.RequestID
		msg.CorrelationId = envelope.TraceID
		msg.Headers = amqp.Table{"event_name": envelope.EventName}
	}
	return msg, nil
}

func (p *amqpPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

type noopPublisher struct {
	reason string
}

func (noopPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	switch envelope := event.(type) {
	case telemetry.AuditEnvelope:
		log.Printf("rabbitmq noop publish routing_key=%s event_type=%s service=%s request_id=%s", routingKey, envelope.EventType, envelope.Service, envelope.RequestID)
	case *telemetry.AuditEnvelope:
		log.Printf("rabbitmq noop publish routing_key=%s event_type=%s service=%s request_id=%s", routingKey, envelope.EventType, envelope.Service, envelope.RequestID)
	case observability.EventEnvelope:
		log.Printf("rabbitmq noop publish routing_key=%s event_type=%s event_name=%s request_id=%s", routingKey, envelope.EventType, envelope.EventName, envelope.RequestID)
	default:
		log.Printf("rabbitmq noop publish routing_key=%s", routingKey)
	}
	return nil
}

func (noopPublisher) Close() error {
	return nil
}

// PublisherMode reports the publisher mode for logging.
func PublisherMode(p Publisher) string {
	switch p.(type) {
	case *amqpPublisher:
		return "amqp"
	case noopPublisher:
		return "noop"
	case *noopPublisher:
		return "noop"
	default:
		return "unknown"
	}
}

func PublisherNoopReason(p Publisher) string {
	switch publisher := p.(type) {
	case noopPublisher:
		return publisher.reason
	case *noopPublisher:
		return publisher.reason
	default:
		return ""
	}
}
