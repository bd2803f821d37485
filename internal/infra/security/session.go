package security

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/wisatahub/platform-gateway/internal/core/domain"
	"github.com/wisatahub/platform-gateway/internal/core/port"
	"github.com/wisatahub/platform-gateway/internal/infra/config"
)

// SessionReader extracts the authenticated identity from the request's
// session cookie and transparently rotates near-expiry tokens.
//
// Anonymous is a valid, expected outcome: a missing, malformed, expired, or
// revoked token yields a nil identity and never an error. Revocation-store
// failures also read as anonymous — the gateway fails closed, never open.
type SessionReader struct {
	manager     *JWTManager
	revocations port.SessionRevocationStore
	cfg         config.SessionSettings
	logger      *zap.Logger
	now         func() time.Time
}

// NewSessionReader constructs a SessionReader.
func NewSessionReader(manager *JWTManager, revocations port.SessionRevocationStore, cfg config.SessionSettings, logger *zap.Logger) *SessionReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionReader{
		manager:     manager,
		revocations: revocations,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock injects a custom clock (testing).
func (r *SessionReader) WithClock(now func() time.Time) *SessionReader {
	if now != nil {
		r.now = now
	}
	return r
}

// Read returns the caller's identity, or nil for an anonymous caller, plus a
// rotated token when the current one sits inside the refresh window. The
// caller applies the rotated token to the response exactly once per request.
func (r *SessionReader) Read(ctx context.Context, req *http.Request) (*domain.Identity, string) {
	cookie, err := req.Cookie(r.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ""
	}

	claims, err := r.manager.ParseSessionToken(cookie.Value)
	if err != nil {
		if !errors.Is(err, ErrTokenExpired) {
			r.logger.Debug("rejecting session token", zap.Error(err))
		}
		return nil, ""
	}

	identity := claims.Identity()
	if identity == nil {
		return nil, ""
	}

	if r.revocations != nil && identity.SessionID != "" {
		revoked, err := r.revocations.IsRevoked(ctx, identity.SessionID)
		if err != nil {
			r.logger.Warn("session revocation check failed, treating session as anonymous",
				zap.String("session_id", identity.SessionID),
				zap.Error(err),
			)
			return nil, ""
		}
		if revoked {
			return nil, ""
		}
	}

	rotated := r.maybeRotate(claims)

	return identity, rotated
}

// Reissue signs a fresh token for the identity with the supplied active-role
// hint. This is the only writer of the hint claim.
func (r *SessionReader) Reissue(identity *domain.Identity, activeRole domain.Role) (string, error) {
	claims, err := NewSessionClaims(SessionClaimsOptions{
		UserID:     identity.UserID,
		SessionID:  identity.SessionID,
		Role:       identity.Role,
		ActiveRole: activeRole,
		BranchID:   identity.BranchID,
		Issuer:     r.cfg.Issuer,
		TTL:        r.cfg.TokenTTL,
		IssuedAt:   r.now(),
	})
	if err != nil {
		return "", err
	}

	return r.manager.SignSessionToken(claims)
}

// Cookie wraps a signed token in the configured session cookie.
func (r *SessionReader) Cookie(token string) *http.Cookie {
	maxAge := int(r.cfg.TokenTTL / time.Second)
	if maxAge <= 0 {
		maxAge = int(defaultSessionTTL / time.Second)
	}
	return &http.Cookie{
		Name:     r.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   r.cfg.CookieDomain,
		MaxAge:   maxAge,
		Secure:   r.cfg.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// maybeRotate re-signs the claims with a fresh expiry when the token is
// inside the refresh window. Signing failures are advisory: the current
// token is still valid, so the request proceeds without rotation.
func (r *SessionReader) maybeRotate(claims *SessionClaims) string {
	window := r.cfg.RefreshWindow
	if window <= 0 || claims.ExpiresAt == nil {
		return ""
	}

	if claims.ExpiresAt.Time.Sub(r.now()) > window {
		return ""
	}

	fresh, err := NewSessionClaims(SessionClaimsOptions{
		UserID:     claims.Subject,
		SessionID:  claims.SessionID,
		Role:       domain.Role(claims.Role),
		ActiveRole: domain.Role(claims.ActiveRole),
		BranchID:   claims.BranchID,
		Issuer:     r.cfg.Issuer,
		TTL:        r.cfg.TokenTTL,
		IssuedAt:   r.now(),
	})
	if err != nil {
		r.logger.Warn("failed to build rotated session claims", zap.Error(err))
		return ""
	}

	signed, err := r.manager.SignSessionToken(fresh)
	if err != nil {
		r.logger.Warn("failed to rotate session token", zap.Error(err))
		return ""
	}

	return signed
}
