package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/wisatahub/platform-gateway/internal/core/domain"
	"github.com/wisatahub/platform-gateway/internal/repository"
	"github.com/wisatahub/platform-gateway/internal/transport/http/middleware"
	"github.com/wisatahub/platform-gateway/internal/usecase"
)

type stubAssignments struct {
	hasActive    map[domain.Role]bool
	hasActiveErr error
	candidate    *domain.RoleAssignment
	active       []domain.RoleAssignment
	listErr      error
}

func (s *stubAssignments) ListActive(context.Context, string) ([]domain.RoleAssignment, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.active, nil
}

func (s *stubAssignments) HasActiveRole(_ context.Context, _ string, role domain.Role) (bool, error) {
	if s.hasActiveErr != nil {
		return false, s.hasActiveErr
	}
	return s.hasActive[role], nil
}

func (s *stubAssignments) ResolveCandidate(context.Context, string) (*domain.RoleAssignment, error) {
	if s.candidate == nil {
		return nil, repository.ErrNotFound
	}
	return s.candidate, nil
}

type stubProfiles struct {
	profile *domain.UserProfile
	err     error
}

func (s *stubProfiles) GetByID(context.Context, string) (*domain.UserProfile, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.profile == nil {
		return nil, repository.ErrNotFound
	}
	return s.profile, nil
}

type stubIssuer struct {
	token    string
	err      error
	gotRole  domain.Role
	gotUser  string
	reissued int
}

func (s *stubIssuer) Reissue(identity *domain.Identity, activeRole domain.Role) (string, error) {
	s.reissued++
	s.gotUser = identity.UserID
	s.gotRole = activeRole
	if s.err != nil {
		return "", s.err
	}
	return s.token, nil
}

func (s *stubIssuer) Cookie(token string) *http.Cookie {
	return &http.Cookie{Name: "wh_session", Value: token, Path: "/"}
}

func sessionTestRouter(handler *SessionHandler, identity *domain.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	attach := func(c *gin.Context) {
		if identity != nil {
			middleware.SetIdentity(c, identity)
		}
		c.Next()
	}
	r.GET("/api/session", attach, handler.Introspect)
	r.POST("/api/session/role", attach, handler.SwitchRole)
	return r
}

func TestIntrospectReportsResolvedState(t *testing.T) {
	branch := "branch-7"
	guide := domain.RoleAssignment{
		UserID:    "user-1",
		Role:      domain.RoleGuide,
		Status:    domain.AssignmentStatusActive,
		IsPrimary: true,
	}
	mitra := domain.RoleAssignment{
		UserID: "user-1",
		Role:   domain.RoleMitra,
		Status: domain.AssignmentStatusActive,
	}
	assignments := &stubAssignments{
		candidate: &guide,
		active:    []domain.RoleAssignment{guide, mitra},
	}
	profiles := &stubProfiles{profile: &domain.UserProfile{
		ID:            "user-1",
		BranchID:      &branch,
		ConsentSigned: true,
	}}

	handler := NewSessionHandler(usecase.NewRoleResolver(assignments, nil), profiles, assignments, &stubIssuer{}, nil)
	r := sessionTestRouter(handler, &domain.Identity{UserID: "user-1", SessionID: "sess-1"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/session", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp SessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.UserID != "user-1" || resp.Role != "guide" || resp.RoleSource != "primary" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp.BranchID != "branch-7" || !resp.ConsentSigned {
		t.Fatalf("profile state missing: %+v", resp)
	}
	if len(resp.Roles) != 2 || resp.Roles[0] != "guide" || resp.Roles[1] != "mitra" {
		t.Fatalf("switchable roles not listed: %v", resp.Roles)
	}
}

func TestIntrospectStoreFailure(t *testing.T) {
	assignments := &stubAssignments{listErr: errors.New("connection refused")}
	handler := NewSessionHandler(usecase.NewRoleResolver(assignments, nil), &stubProfiles{}, assignments, &stubIssuer{}, nil)
	r := sessionTestRouter(handler, &domain.Identity{UserID: "user-1"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/session", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestIntrospectRequiresIdentity(t *testing.T) {
	assignments := &stubAssignments{}
	handler := NewSessionHandler(usecase.NewRoleResolver(assignments, nil), &stubProfiles{}, assignments, &stubIssuer{}, nil)
	r := sessionTestRouter(handler, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/session", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestSwitchRoleReissuesCookie(t *testing.T) {
	assignments := &stubAssignments{hasActive: map[domain.Role]bool{domain.RoleMitra: true}}
	issuer := &stubIssuer{token: "fresh-token"}
	handler := NewSessionHandler(usecase.NewRoleResolver(assignments, nil), &stubProfiles{}, assignments, issuer, nil)
	r := sessionTestRouter(handler, &domain.Identity{UserID: "user-1", SessionID: "sess-1"})

	body := strings.NewReader(`{"role":"mitra"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/session/role", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if issuer.reissued != 1 || issuer.gotRole != domain.RoleMitra || issuer.gotUser != "user-1" {
		t.Fatalf("reissue not invoked correctly: %+v", issuer)
	}

	var resp RoleSwitchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Role != "mitra" || resp.HomePath != "/mitra/home" {
		t.Fatalf("unexpected payload: %+v", resp)
	}

	found := false
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "wh_session" && cookie.Value == "fresh-token" {
			found = true
		}
	}
	if !found {
		t.Fatal("fresh session cookie not set")
	}
}

func TestSwitchRoleRejectsUnheldRole(t *testing.T) {
	assignments := &stubAssignments{hasActive: map[domain.Role]bool{}}
	issuer := &stubIssuer{token: "fresh-token"}
	handler := NewSessionHandler(usecase.NewRoleResolver(assignments, nil), &stubProfiles{}, assignments, issuer, nil)
	r := sessionTestRouter(handler, &domain.Identity{UserID: "user-1"})

	body := strings.NewReader(`{"role":"admin"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/session/role", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if issuer.reissued != 0 {
		t.Fatal("unheld role must not be reissued")
	}
}

func TestSwitchRoleRejectsUnknownRole(t *testing.T) {
	assignments := &stubAssignments{}
	handler := NewSessionHandler(usecase.NewRoleResolver(assignments, nil), &stubProfiles{}, assignments, &stubIssuer{}, nil)
	r := sessionTestRouter(handler, &domain.Identity{UserID: "user-1"})

	for _, payload := range []string{`{"role":"superuser"}`, `{}`, `not-json`} {
		req := httptest.NewRequest(http.MethodPost, "/api/session/role", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("payload %q: status = %d, want 400", payload, w.Code)
		}
	}
}

func TestSwitchRoleStoreFailure(t *testing.T) {
	assignments := &stubAssignments{hasActiveErr: errors.New("connection refused")}
	handler := NewSessionHandler(usecase.NewRoleResolver(assignments, nil), &stubProfiles{}, assignments, &stubIssuer{}, nil)
	r := sessionTestRouter(handler, &domain.Identity{UserID: "user-1"})

	body := strings.NewReader(`{"role":"mitra"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/session/role", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}
