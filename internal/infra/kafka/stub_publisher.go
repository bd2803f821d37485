package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/wisatahub/platform-gateway/internal/core/domain"
	"github.com/wisatahub/platform-gateway/internal/core/port"
)

// StubPublisher logs decisions instead of sending them to Kafka. Used when
// no brokers are configured.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly decision publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

// PublishAccessDecision logs gateway.access.decided events.
func (p *StubPublisher) PublishAccessDecision(_ context.Context, event domain.AccessDecisionEvent) error {
	p.logger.Debug("stub event published",
		zap.String("event_type", accessDecisionEventType),
		zap.String("user_id", event.UserID),
		zap.String("path", event.Path),
		zap.String("decision", string(event.Decision)),
		zap.String("role", event.Role.String()),
		zap.String("branch_id", event.BranchID),
	)
	return nil
}

var _ port.DecisionPublisher = (*StubPublisher)(nil)
