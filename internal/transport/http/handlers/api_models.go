package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wisatahub/platform-gateway/internal/transport/http/middleware"
)

// ErrorResponse is the uniform error payload for API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse builds an error payload carrying the request trace id.
func NewErrorResponse(c *gin.Context, message string) ErrorResponse {
	return ErrorResponse{
		Error:   message,
		TraceID: middleware.GetTraceID(c),
	}
}

// HealthResponse reports liveness information.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports the outcome of each dependency probe.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// SessionResponse is the introspection payload for the current session.
// Roles lists every active assignment the caller could switch to.
type SessionResponse struct {
	UserID        string   `json:"user_id"`
	SessionID     string   `json:"session_id,omitempty"`
	Role          string   `json:"role,omitempty"`
	Roles         []string `json:"roles,omitempty"`
	RoleSource    string   `json:"role_source"`
	BranchID      string   `json:"branch_id,omitempty"`
	ConsentSigned bool     `json:"consent_signed"`
}

// RoleSwitchRequest asks to change the session's active role.
type RoleSwitchRequest struct {
	Role string `json:"role" binding:"required"`
}

// RoleSwitchResponse confirms the new active role and where it lands.
type RoleSwitchResponse struct {
	Role     string `json:"role"`
	HomePath string `json:"home_path"`
}
