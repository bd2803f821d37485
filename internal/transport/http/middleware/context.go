package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wisatahub/platform-gateway/internal/core/domain"
)

const (
	// TraceIDHeader is the HTTP header name for trace ID.
	TraceIDHeader = "X-Trace-ID"
	// BranchIDHeader carries the resolved tenant id to downstream handlers.
	BranchIDHeader = "X-Branch-ID"
	// TraceIDKey is the context key for trace ID.
	TraceIDKey = "trace_id"
	// IdentityKey is the context key for the authenticated identity.
	IdentityKey = "identity"
	// ResolvedRoleKey is the context key for the resolved active role.
	ResolvedRoleKey = "resolved_role"
	// BranchIDKey is the context key for the resolved tenant id.
	BranchIDKey = "branch_id"
	// LocaleKey is the context key for the request locale.
	LocaleKey = "locale"
)

// RequestContext holds request-scoped information.
type RequestContext struct {
	TraceID   string
	UserID    string
	IP        string
	UserAgent string
}

// EnrichContext adds trace ID and request context to each request.
func EnrichContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)

		reqCtx := &RequestContext{
			TraceID:   traceID,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		c.Set("request_context", reqCtx)

		c.Next()
	}
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(c *gin.Context) string {
	if traceID, exists := c.Get(TraceIDKey); exists {
		if id, ok := traceID.(string); ok {
			return id
		}
	}
	return ""
}

// GetRequestContext retrieves the full request context.
func GetRequestContext(c *gin.Context) *RequestContext {
	if ctx, exists := c.Get("request_context"); exists {
		if reqCtx, ok := ctx.(*RequestContext); ok {
			return reqCtx
		}
	}
	return &RequestContext{}
}

// InjectTenant attaches the resolved branch id to the forwarded request so
// downstream handlers read it instead of re-deriving it. No-op when empty;
// no authorization semantics of its own.
func InjectTenant(c *gin.Context, branchID string) {
	if branchID == "" {
		return
	}
	c.Set(BranchIDKey, branchID)
	c.Request.Header.Set(BranchIDHeader, branchID)
	c.Header(BranchIDHeader, branchID)
}

// SetIdentity stores the authenticated identity on the request context.
func SetIdentity(c *gin.Context, identity *domain.Identity) {
	if identity == nil {
		return
	}
	c.Set(IdentityKey, identity)
	if reqCtx := GetRequestContext(c); reqCtx != nil {
		reqCtx.UserID = identity.UserID
	}
}

// GetIdentity retrieves the authenticated identity, nil for anonymous callers.
func GetIdentity(c *gin.Context) *domain.Identity {
	if val, exists := c.Get(IdentityKey); exists {
		if identity, ok := val.(*domain.Identity); ok {
			return identity
		}
	}
	return nil
}

// SetResolvedRole stores the resolved active role for downstream handlers.
func SetResolvedRole(c *gin.Context, role domain.Role) {
	if role == domain.RoleNone {
		return
	}
	c.Set(ResolvedRoleKey, role)
}

// GetResolvedRole retrieves the resolved active role, RoleNone when absent.
func GetResolvedRole(c *gin.Context) domain.Role {
	if val, exists := c.Get(ResolvedRoleKey); exists {
		if role, ok := val.(domain.Role); ok {
			return role
		}
	}
	return domain.RoleNone
}

// GetBranchID retrieves the resolved tenant id, empty when absent.
func GetBranchID(c *gin.Context) string {
	if val, exists := c.Get(BranchIDKey); exists {
		if branch, ok := val.(string); ok {
			return branch
		}
	}
	return ""
}

// GetLocale retrieves the request locale, empty when the path bypassed the
// locale rewrite.
func GetLocale(c *gin.Context) string {
	if val, exists := c.Get(LocaleKey); exists {
		if locale, ok := val.(string); ok {
			return locale
		}
	}
	return ""
}
