package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"

	"github.com/wisatahub/platform-gateway/internal/core/domain"
)

var (
	// ErrTokenInvalid indicates the token failed signature or structural checks.
	ErrTokenInvalid = errors.New("jwt: invalid session token")
	// ErrTokenExpired indicates the token is past its expiry.
	ErrTokenExpired = errors.New("jwt: session token expired")
)

// SessionClaims is the session token payload written by the identity
// provider at login. The gateway reads every field as a hint; only the
// subject (user id) is authoritative.
type SessionClaims struct {
	// Role is the single role snapshot stamped at login time.
	Role string `json:"role,omitempty"`
	// ActiveRole is the last role the user explicitly switched to. Written
	// only by the server-side role-switch action.
	ActiveRole string `json:"arole,omitempty"`
	// BranchID is the tenant partition snapshot.
	BranchID string `json:"bid,omitempty"`
	// SessionID identifies the provider session for revocation checks.
	SessionID string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// Identity maps the claims onto the gateway's identity model. Unparseable
// role strings degrade to RoleNone rather than failing the request.
func (c *SessionClaims) Identity() *domain.Identity {
	if c == nil || c.Subject == "" {
		return nil
	}

	identity := &domain.Identity{
		UserID:    c.Subject,
		SessionID: c.SessionID,
		BranchID:  c.BranchID,
	}
	if role, ok := domain.ParseRole(c.Role); ok {
		identity.Role = role
	}
	if hint, ok := domain.ParseRole(c.ActiveRole); ok {
		identity.ActiveRoleHint = hint
	}

	return identity
}

// SessionClaimsOptions configures creation of session claims during rotation
// or role switching.
type SessionClaimsOptions struct {
	UserID     string
	SessionID  string
	Role       domain.Role
	ActiveRole domain.Role
	BranchID   string
	Issuer     string
	TTL        time.Duration
	IssuedAt   time.Time
}

const defaultSessionTTL = 12 * time.Hour

// NewSessionClaims constructs standardized session claims.
func NewSessionClaims(opts SessionClaimsOptions) (*SessionClaims, error) {
	userID := strings.TrimSpace(opts.UserID)
	if userID == "" {
		return nil, fmt.Errorf("jwt: user id is required")
	}
	issuer := strings.TrimSpace(opts.Issuer)
	if issuer == "" {
		return nil, fmt.Errorf("jwt: issuer is required")
	}

	now := opts.IssuedAt
	if now.IsZero() {
		now = time.Now().UTC()
	} else {
		now = now.UTC()
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	return &SessionClaims{
		Role:       opts.Role.String(),
		ActiveRole: opts.ActiveRole.String(),
		BranchID:   strings.TrimSpace(opts.BranchID),
		SessionID:  strings.TrimSpace(opts.SessionID),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}, nil
}

// JWTManager verifies and re-signs session tokens against the key provider.
type JWTManager struct {
	keyProvider KeyProvider
	kid         string
}

// NewJWTManager constructs a JWTManager signing with the supplied kid.
func NewJWTManager(provider KeyProvider, kid string) *JWTManager {
	return &JWTManager{keyProvider: provider, kid: strings.TrimSpace(kid)}
}

// ParseSessionToken validates signature and expiry and returns the claims.
func (m *JWTManager) ParseSessionToken(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", ErrTokenInvalid, t.Header["alg"])
		}
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			kid = m.kid
		}
		return m.keyProvider.GetVerificationKey(kid)
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// SignSessionToken signs the claims with the active signing key.
func (m *JWTManager) SignSessionToken(claims *SessionClaims) (string, error) {
	if claims == nil {
		return "", fmt.Errorf("jwt: session claims required")
	}

	signingKey, err := m.keyProvider.GetSigningKey()
	if err != nil {
		return "", fmt.Errorf("jwt: get signing key: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = m.kid

	signed, err := token.SignedString(signingKey)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}

	return signed, nil
}
