package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/wisatahub/platform-gateway/internal/core/domain"
	"github.com/wisatahub/platform-gateway/internal/core/port"
	"github.com/wisatahub/platform-gateway/internal/infra/config"
)

const schemaVersion = "1.0"

const accessDecisionEventType = "gateway.access.decided"

// EventPublisher implements port.DecisionPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed decision publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

// PublishAccessDecision publishes gateway.access.decided events. The send is
// asynchronous; delivery errors surface on the producer error channel only.
func (p *EventPublisher) PublishAccessDecision(ctx context.Context, event domain.AccessDecisionEvent) error {
	payload := struct {
		UserID     string    `json:"user_id,omitempty"`
		Path       string    `json:"path"`
		Decision   string    `json:"decision"`
		Location   string    `json:"location,omitempty"`
		Role       string    `json:"role,omitempty"`
		RoleSource string    `json:"role_source,omitempty"`
		BranchID   string    `json:"branch_id,omitempty"`
		DecidedAt  time.Time `json:"decided_at"`
	}{
		UserID:     event.UserID,
		Path:       event.Path,
		Decision:   string(event.Decision),
		Location:   event.Location,
		Role:       event.Role.String(),
		RoleSource: string(event.RoleSource),
		BranchID:   event.BranchID,
		DecidedAt:  event.DecidedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, accessDecisionEventType, event.UserID, event.DecidedAt, payload)
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ port.DecisionPublisher = (*EventPublisher)(nil)
