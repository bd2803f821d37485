package security

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wisatahub/platform-gateway/internal/core/domain"
	"github.com/wisatahub/platform-gateway/internal/infra/config"
)

type stubRevocationStore struct {
	revoked map[string]bool
	err     error
}

func (s *stubRevocationStore) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.revoked[sessionID], nil
}

func testKeyProvider(t *testing.T) *StaticKeyProvider {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	return &StaticKeyProvider{Kid: "v1", Key: key}
}

func testSessionSettings() config.SessionSettings {
	return config.SessionSettings{
		SigningKeyID:  "v1",
		Issuer:        "wisatahub-id",
		CookieName:    "wh_session",
		TokenTTL:      12 * time.Hour,
		RefreshWindow: 30 * time.Minute,
	}
}

func signedToken(t *testing.T, manager *JWTManager, opts SessionClaimsOptions) string {
	t.Helper()
	claims, err := NewSessionClaims(opts)
	if err != nil {
		t.Fatalf("build claims: %v", err)
	}
	token, err := manager.SignSessionToken(claims)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func requestWithCookie(name, value string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/id/home", nil)
	if value != "" {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	return req
}

func TestSessionReaderReadsValidToken(t *testing.T) {
	manager := NewJWTManager(testKeyProvider(t), "v1")
	reader := NewSessionReader(manager, &stubRevocationStore{}, testSessionSettings(), nil)

	token := signedToken(t, manager, SessionClaimsOptions{
		UserID:     "user-1",
		SessionID:  "sess-1",
		Role:       domain.RoleTraveler,
		ActiveRole: domain.RoleGuide,
		BranchID:   "branch-7",
		Issuer:     "wisatahub-id",
		TTL:        12 * time.Hour,
	})

	identity, rotated := reader.Read(context.Background(), requestWithCookie("wh_session", token))
	if identity == nil {
		t.Fatal("expected identity for a valid token")
	}
	if identity.UserID != "user-1" || identity.SessionID != "sess-1" {
		t.Fatalf("identity mismatch: %+v", identity)
	}
	if identity.Role != domain.RoleTraveler || identity.ActiveRoleHint != domain.RoleGuide {
		t.Fatalf("role claims not mapped: %+v", identity)
	}
	if identity.BranchID != "branch-7" {
		t.Fatalf("branch claim not mapped: %+v", identity)
	}
	if rotated != "" {
		t.Fatal("fresh token should not rotate")
	}
}

func TestSessionReaderAnonymousOutcomes(t *testing.T) {
	manager := NewJWTManager(testKeyProvider(t), "v1")
	cfg := testSessionSettings()

	t.Run("missing cookie", func(t *testing.T) {
		reader := NewSessionReader(manager, &stubRevocationStore{}, cfg, nil)
		identity, rotated := reader.Read(context.Background(), requestWithCookie("wh_session", ""))
		if identity != nil || rotated != "" {
			t.Fatal("missing cookie must read as anonymous")
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		reader := NewSessionReader(manager, &stubRevocationStore{}, cfg, nil)
		identity, _ := reader.Read(context.Background(), requestWithCookie("wh_session", "not-a-jwt"))
		if identity != nil {
			t.Fatal("malformed token must read as anonymous")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		reader := NewSessionReader(manager, &stubRevocationStore{}, cfg, nil)
		token := signedToken(t, manager, SessionClaimsOptions{
			UserID:   "user-1",
			Issuer:   "wisatahub-id",
			TTL:      time.Minute,
			IssuedAt: time.Now().Add(-2 * time.Hour),
		})
		identity, _ := reader.Read(context.Background(), requestWithCookie("wh_session", token))
		if identity != nil {
			t.Fatal("expired token must read as anonymous")
		}
	})

	t.Run("token signed by unknown key", func(t *testing.T) {
		otherManager := NewJWTManager(testKeyProvider(t), "v1")
		reader := NewSessionReader(manager, &stubRevocationStore{}, cfg, nil)
		token := signedToken(t, otherManager, SessionClaimsOptions{
			UserID: "user-1",
			Issuer: "wisatahub-id",
		})
		identity, _ := reader.Read(context.Background(), requestWithCookie("wh_session", token))
		if identity != nil {
			t.Fatal("foreign signature must read as anonymous")
		}
	})

	t.Run("revoked session", func(t *testing.T) {
		store := &stubRevocationStore{revoked: map[string]bool{"sess-1": true}}
		reader := NewSessionReader(manager, store, cfg, nil)
		token := signedToken(t, manager, SessionClaimsOptions{
			UserID:    "user-1",
			SessionID: "sess-1",
			Issuer:    "wisatahub-id",
		})
		identity, _ := reader.Read(context.Background(), requestWithCookie("wh_session", token))
		if identity != nil {
			t.Fatal("revoked session must read as anonymous")
		}
	})

	t.Run("revocation store failure fails closed", func(t *testing.T) {
		store := &stubRevocationStore{err: errors.New("redis down")}
		reader := NewSessionReader(manager, store, cfg, nil)
		token := signedToken(t, manager, SessionClaimsOptions{
			UserID:    "user-1",
			SessionID: "sess-1",
			Issuer:    "wisatahub-id",
		})
		identity, _ := reader.Read(context.Background(), requestWithCookie("wh_session", token))
		if identity != nil {
			t.Fatal("revocation lookup failure must read as anonymous")
		}
	})
}

func TestSessionReaderRotatesNearExpiry(t *testing.T) {
	manager := NewJWTManager(testKeyProvider(t), "v1")
	reader := NewSessionReader(manager, &stubRevocationStore{}, testSessionSettings(), nil)

	// Issued so that only 10 minutes of the 12h TTL remain, inside the 30m window.
	token := signedToken(t, manager, SessionClaimsOptions{
		UserID:     "user-1",
		SessionID:  "sess-1",
		Role:       domain.RoleTraveler,
		ActiveRole: domain.RoleMitra,
		BranchID:   "branch-7",
		Issuer:     "wisatahub-id",
		TTL:        12 * time.Hour,
		IssuedAt:   time.Now().Add(-12*time.Hour + 10*time.Minute),
	})

	identity, rotated := reader.Read(context.Background(), requestWithCookie("wh_session", token))
	if identity == nil {
		t.Fatal("near-expiry token is still valid")
	}
	if rotated == "" {
		t.Fatal("expected a rotated token inside the refresh window")
	}

	claims, err := manager.ParseSessionToken(rotated)
	if err != nil {
		t.Fatalf("rotated token does not parse: %v", err)
	}
	if claims.Subject != "user-1" || claims.SessionID != "sess-1" {
		t.Fatalf("rotation lost identity claims: %+v", claims)
	}
	if claims.ActiveRole != domain.RoleMitra.String() || claims.BranchID != "branch-7" {
		t.Fatalf("rotation lost hint or branch claims: %+v", claims)
	}
	if claims.ExpiresAt.Time.Sub(time.Now()) < 11*time.Hour {
		t.Fatalf("rotated expiry not refreshed: %v", claims.ExpiresAt.Time)
	}
}

func TestReissueWritesActiveRoleHint(t *testing.T) {
	manager := NewJWTManager(testKeyProvider(t), "v1")
	reader := NewSessionReader(manager, &stubRevocationStore{}, testSessionSettings(), nil)

	identity := &domain.Identity{
		UserID:    "user-1",
		SessionID: "sess-1",
		Role:      domain.RoleTraveler,
		BranchID:  "branch-7",
	}

	token, err := reader.Reissue(identity, domain.RoleMitra)
	if err != nil {
		t.Fatalf("Reissue returned error: %v", err)
	}

	claims, err := manager.ParseSessionToken(token)
	if err != nil {
		t.Fatalf("reissued token does not parse: %v", err)
	}
	if claims.ActiveRole != domain.RoleMitra.String() {
		t.Fatalf("active role hint not written: %q", claims.ActiveRole)
	}
	if claims.Role != domain.RoleTraveler.String() {
		t.Fatalf("login role snapshot changed: %q", claims.Role)
	}
}

func TestSessionClaimsIdentityDegradesUnknownRoles(t *testing.T) {
	claims := &SessionClaims{
		Role:       "superuser",
		ActiveRole: "villain",
		SessionID:  "sess-1",
	}
	claims.Subject = "user-1"

	identity := claims.Identity()
	if identity == nil {
		t.Fatal("subject present, identity expected")
	}
	if identity.Role != domain.RoleNone || identity.ActiveRoleHint != domain.RoleNone {
		t.Fatalf("unknown roles must degrade to none: %+v", identity)
	}
}

func TestSessionReaderCookie(t *testing.T) {
	manager := NewJWTManager(testKeyProvider(t), "v1")
	cfg := testSessionSettings()
	cfg.CookieSecure = true
	reader := NewSessionReader(manager, nil, cfg, nil)

	cookie := reader.Cookie("token-value")
	if cookie.Name != "wh_session" || cookie.Value != "token-value" {
		t.Fatalf("unexpected cookie: %+v", cookie)
	}
	if !cookie.HttpOnly || !cookie.Secure {
		t.Fatalf("cookie must be http-only and secure: %+v", cookie)
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("cookie must be SameSite=Lax: %+v", cookie)
	}
	if cookie.MaxAge != int(cfg.TokenTTL/time.Second) {
		t.Fatalf("cookie max-age mismatch: %d", cookie.MaxAge)
	}
}
