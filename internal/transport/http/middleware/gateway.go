package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wisatahub/platform-gateway/internal/core/domain"
)

// SessionSource reads the caller identity from the request and wraps rotated
// tokens into response cookies.
type SessionSource interface {
	Read(ctx context.Context, req *http.Request) (*domain.Identity, string)
	Cookie(token string) *http.Cookie
}

// AccessEvaluator produces the access decision for a locale-neutral path.
type AccessEvaluator interface {
	Evaluate(ctx context.Context, path string, identity *domain.Identity) domain.Decision
}

// DecisionRecorder observes decision outcomes (metrics).
type DecisionRecorder interface {
	RecordDecision(kind string)
}

// Gateway enforces the access decision for every page request: it reads the
// session, evaluates the route policy on the locale-stripped path, applies a
// rotated session cookie at most once, and either forwards the request with
// identity/role/tenant attached or issues the decided redirect.
func Gateway(sessions SessionSource, evaluator AccessEvaluator, recorder DecisionRecorder, defaultLocale string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultLocale == "" {
		defaultLocale = "id"
	}

	return func(c *gin.Context) {
		if IsBypassPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		ctx := c.Request.Context()

		identity, rotated := sessions.Read(ctx, c.Request)
		if rotated != "" {
			http.SetCookie(c.Writer, sessions.Cookie(rotated))
		}

		policyPath := GetPolicyPath(c)
		decision := evaluator.Evaluate(ctx, policyPath, identity)

		if recorder != nil {
			recorder.RecordDecision(string(decision.Kind))
		}

		if decision.Kind == domain.DecisionAllow {
			SetIdentity(c, identity)
			SetResolvedRole(c, decision.Role)
			InjectTenant(c, decision.BranchID)
			c.Next()
			return
		}

		locale := GetLocale(c)
		if locale == "" {
			locale = defaultLocale
		}

		target := "/" + locale + decision.Location
		logger.Debug("gateway redirect",
			zap.String("path", policyPath),
			zap.String("kind", string(decision.Kind)),
			zap.String("target", target),
		)

		c.Redirect(http.StatusFound, target)
		c.Abort()
	}
}
