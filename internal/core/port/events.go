package port

import (
	"context"

	"github.com/wisatahub/platform-gateway/internal/core/domain"
)

// DecisionPublisher emits advisory access-decision audit events. Callers
// swallow publication errors; a failing sink must never affect a request.
type DecisionPublisher interface {
	PublishAccessDecision(ctx context.Context, event domain.AccessDecisionEvent) error
}
