package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wisatahub/platform-gateway/internal/core/domain"
	"github.com/wisatahub/platform-gateway/internal/core/port"
	"github.com/wisatahub/platform-gateway/internal/repository"
	"github.com/wisatahub/platform-gateway/internal/transport/http/middleware"
	"github.com/wisatahub/platform-gateway/internal/usecase"
)

// SessionIssuer signs fresh session tokens with a new active-role hint and
// wraps them in cookies.
type SessionIssuer interface {
	Reissue(identity *domain.Identity, activeRole domain.Role) (string, error)
	Cookie(token string) *http.Cookie
}

// SessionHandler exposes session introspection and the server-side role
// switch. The switch is the only writer of the active-role hint claim.
type SessionHandler struct {
	resolver    *usecase.RoleResolver
	profiles    port.ProfileRepository
	assignments port.RoleAssignmentRepository
	issuer      SessionIssuer
	logger      *zap.Logger
}

// NewSessionHandler constructs a session handler.
func NewSessionHandler(resolver *usecase.RoleResolver, profiles port.ProfileRepository, assignments port.RoleAssignmentRepository, issuer SessionIssuer, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{
		resolver:    resolver,
		profiles:    profiles,
		assignments: assignments,
		issuer:      issuer,
		logger:      logger,
	}
}

// Introspect reports the caller's resolved role, the active assignments
// available for switching, tenant, and consent state.
func (h *SessionHandler) Introspect(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	ctx := c.Request.Context()

	res, err := h.resolver.Resolve(ctx, identity)
	if err != nil {
		h.logger.Warn("session introspection failed to resolve role",
			zap.String("user_id", identity.UserID),
			zap.Error(err),
		)
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "role store unavailable"))
		return
	}

	assignments, err := h.assignments.ListActive(ctx, identity.UserID)
	if err != nil {
		h.logger.Warn("session introspection failed to list assignments",
			zap.String("user_id", identity.UserID),
			zap.Error(err),
		)
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "role store unavailable"))
		return
	}

	var profile *domain.UserProfile
	if h.profiles != nil {
		profile, err = h.profiles.GetByID(ctx, identity.UserID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "profile store unavailable"))
			return
		}
	}

	res = usecase.ApplyLegacyFallback(res, profile)

	roles := make([]string, 0, len(assignments))
	for _, assignment := range assignments {
		roles = append(roles, assignment.Role.String())
	}

	response := SessionResponse{
		UserID:     identity.UserID,
		SessionID:  identity.SessionID,
		Roles:      roles,
		RoleSource: string(res.Source),
		BranchID:   identity.BranchID,
	}
	if res.Role != domain.RoleNone {
		response.Role = res.Role.String()
	}
	if profile != nil {
		response.ConsentSigned = profile.ConsentSigned
		if profile.BranchID != nil && *profile.BranchID != "" {
			response.BranchID = *profile.BranchID
		}
	}

	c.JSON(http.StatusOK, response)
}

// SwitchRole changes the session's active role after verifying the target is
// one of the caller's live active assignments, then re-issues the cookie.
func (h *SessionHandler) SwitchRole(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req RoleSwitchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "role is required"))
		return
	}

	role, ok := domain.ParseRole(strings.TrimSpace(req.Role))
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown role"))
		return
	}

	held, err := h.assignments.HasActiveRole(c.Request.Context(), identity.UserID, role)
	if err != nil {
		h.logger.Warn("role switch verification failed",
			zap.String("user_id", identity.UserID),
			zap.String("role", role.String()),
			zap.Error(err),
		)
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "role store unavailable"))
		return
	}
	if !held {
		c.JSON(http.StatusForbidden, NewErrorResponse(c, "role not assigned"))
		return
	}

	token, err := h.issuer.Reissue(identity, role)
	if err != nil {
		h.logger.Error("failed to re-issue session for role switch",
			zap.String("user_id", identity.UserID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to update session"))
		return
	}

	http.SetCookie(c.Writer, h.issuer.Cookie(token))

	c.JSON(http.StatusOK, RoleSwitchResponse{
		Role:     role.String(),
		HomePath: role.HomePath(),
	})
}
