package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wisatahub/platform-gateway/internal/infra/config"
)

// Provider represents a telemetry provider handle.
type Provider struct {
	decisionCounter *prometheus.CounterVec
}

// Attach configures telemetry collectors and returns a provider handle.
func Attach(_ context.Context, cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	decisions := promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gateway",
		Name:      "access_decisions_total",
		Help:      "Total number of gateway access decisions partitioned by kind.",
	}, []string{"decision"})

	return &Provider{
		decisionCounter: decisions,
	}, nil
}

// RecordDecision increments the counter for the decision kind.
func (p *Provider) RecordDecision(kind string) {
	if p == nil || p.decisionCounter == nil {
		return
	}
	p.decisionCounter.WithLabelValues(kind).Inc()
}
