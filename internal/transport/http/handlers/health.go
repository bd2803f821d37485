package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const readinessProbeTimeout = 2 * time.Second

// ReadinessCheck probes a single dependency.
type ReadinessCheck func(ctx context.Context) error

// HealthOption customises the health handler.
type HealthOption func(*HealthHandler)

// WithReadinessCheck registers a named dependency probe for /readyz.
func WithReadinessCheck(name string, check ReadinessCheck) HealthOption {
	return func(h *HealthHandler) {
		if name == "" || check == nil {
			return
		}
		h.checks[name] = check
	}
}

// HealthHandler exposes liveness and readiness information.
type HealthHandler struct {
	startedAt time.Time
	checks    map[string]ReadinessCheck
}

// NewHealthHandler builds a new health handler instance.
func NewHealthHandler(opts ...HealthOption) *HealthHandler {
	h := &HealthHandler{
		startedAt: time.Now().UTC(),
		checks:    make(map[string]ReadinessCheck),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Status reports liveness.
func (h *HealthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		StartedAt: h.startedAt,
	})
}

// Readiness probes registered dependencies and reports per-check outcomes.
func (h *HealthHandler) Readiness(c *gin.Context) {
	results := make(map[string]string, len(h.checks))
	healthy := true

	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessProbeTimeout)
		err := check(ctx)
		cancel()

		if err != nil {
			healthy = false
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}

	status := http.StatusOK
	payload := ReadinessResponse{Status: "ready", Checks: results}
	if !healthy {
		status = http.StatusServiceUnavailable
		payload.Status = "degraded"
	}

	c.JSON(status, payload)
}
