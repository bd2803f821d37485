package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wisatahub/platform-gateway/internal/core/domain"
	"github.com/wisatahub/platform-gateway/internal/repository"
)

type stubAssignmentRepository struct {
	hasActive    map[domain.Role]bool
	hasActiveErr error
	candidate    *domain.RoleAssignment
	candidateErr error

	hasActiveCalls int
	candidateCalls int
}

func (r *stubAssignmentRepository) ListActive(context.Context, string) ([]domain.RoleAssignment, error) {
	return nil, errors.New("unexpected call: ListActive")
}

func (r *stubAssignmentRepository) HasActiveRole(_ context.Context, _ string, role domain.Role) (bool, error) {
	r.hasActiveCalls++
	if r.hasActiveErr != nil {
		return false, r.hasActiveErr
	}
	return r.hasActive[role], nil
}

func (r *stubAssignmentRepository) ResolveCandidate(context.Context, string) (*domain.RoleAssignment, error) {
	r.candidateCalls++
	if r.candidateErr != nil {
		return nil, r.candidateErr
	}
	if r.candidate == nil {
		return nil, repository.ErrNotFound
	}
	return r.candidate, nil
}

func identityWithHint(hint domain.Role) *domain.Identity {
	return &domain.Identity{
		UserID:         "user-1",
		SessionID:      "sess-1",
		Role:           domain.RoleTraveler,
		ActiveRoleHint: hint,
	}
}

func TestResolveTrustsInternalHintWithoutStoreRead(t *testing.T) {
	repo := &stubAssignmentRepository{}
	resolver := NewRoleResolver(repo, nil)

	res, err := resolver.Resolve(context.Background(), identityWithHint(domain.RoleAdmin))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Role != domain.RoleAdmin || res.Source != domain.SourceTrustedHint {
		t.Fatalf("got %+v, want admin via trusted_hint", res)
	}
	if repo.hasActiveCalls != 0 || repo.candidateCalls != 0 {
		t.Fatalf("internal hint must not touch the store, got %d/%d calls", repo.hasActiveCalls, repo.candidateCalls)
	}
}

func TestResolveVerifiesExternalHint(t *testing.T) {
	repo := &stubAssignmentRepository{hasActive: map[domain.Role]bool{domain.RoleGuide: true}}
	resolver := NewRoleResolver(repo, nil)

	res, err := resolver.Resolve(context.Background(), identityWithHint(domain.RoleGuide))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Role != domain.RoleGuide || res.Source != domain.SourceHint {
		t.Fatalf("got %+v, want guide via hint", res)
	}
	if repo.candidateCalls != 0 {
		t.Fatal("verified hint should short-circuit before the candidate query")
	}
}

func TestResolveStaleHintFallsThroughToCandidate(t *testing.T) {
	repo := &stubAssignmentRepository{
		hasActive: map[domain.Role]bool{},
		candidate: &domain.RoleAssignment{
			UserID:    "user-1",
			Role:      domain.RoleMitra,
			Status:    domain.AssignmentStatusActive,
			IsPrimary: true,
			CreatedAt: time.Now(),
		},
	}
	resolver := NewRoleResolver(repo, nil)

	res, err := resolver.Resolve(context.Background(), identityWithHint(domain.RoleGuide))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Role != domain.RoleMitra || res.Source != domain.SourcePrimary {
		t.Fatalf("got %+v, want mitra via primary", res)
	}
	if repo.hasActiveCalls != 1 {
		t.Fatalf("hint should be verified exactly once, got %d", repo.hasActiveCalls)
	}
}

func TestResolvePrefersPrimaryOverEarliest(t *testing.T) {
	cases := []struct {
		name       string
		candidate  *domain.RoleAssignment
		wantRole   domain.Role
		wantSource domain.ResolutionSource
	}{
		{
			name: "primary assignment",
			candidate: &domain.RoleAssignment{
				Role:      domain.RoleCorporate,
				Status:    domain.AssignmentStatusActive,
				IsPrimary: true,
			},
			wantRole:   domain.RoleCorporate,
			wantSource: domain.SourcePrimary,
		},
		{
			name: "oldest active assignment",
			candidate: &domain.RoleAssignment{
				Role:   domain.RoleTraveler,
				Status: domain.AssignmentStatusActive,
			},
			wantRole:   domain.RoleTraveler,
			wantSource: domain.SourceEarliest,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &stubAssignmentRepository{candidate: tc.candidate}
			resolver := NewRoleResolver(repo, nil)

			res, err := resolver.Resolve(context.Background(), identityWithHint(domain.RoleNone))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Role != tc.wantRole || res.Source != tc.wantSource {
				t.Fatalf("got %+v, want %s via %s", res, tc.wantRole, tc.wantSource)
			}
		})
	}
}

func TestResolveNoAssignmentsIsNotAnError(t *testing.T) {
	repo := &stubAssignmentRepository{}
	resolver := NewRoleResolver(repo, nil)

	res, err := resolver.Resolve(context.Background(), identityWithHint(domain.RoleNone))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Role != domain.RoleNone || res.Source != domain.SourceNone {
		t.Fatalf("got %+v, want none", res)
	}
}

func TestResolveStoreErrorSurfaces(t *testing.T) {
	storeErr := errors.New("connection refused")

	t.Run("hint verification", func(t *testing.T) {
		repo := &stubAssignmentRepository{hasActiveErr: storeErr}
		resolver := NewRoleResolver(repo, nil)

		_, err := resolver.Resolve(context.Background(), identityWithHint(domain.RoleGuide))
		if !errors.Is(err, storeErr) {
			t.Fatalf("expected wrapped store error, got %v", err)
		}
	})

	t.Run("candidate query", func(t *testing.T) {
		repo := &stubAssignmentRepository{candidateErr: storeErr}
		resolver := NewRoleResolver(repo, nil)

		_, err := resolver.Resolve(context.Background(), identityWithHint(domain.RoleNone))
		if !errors.Is(err, storeErr) {
			t.Fatalf("expected wrapped store error, got %v", err)
		}
	})
}

func TestResolveAnonymousIdentity(t *testing.T) {
	resolver := NewRoleResolver(&stubAssignmentRepository{}, nil)

	for _, identity := range []*domain.Identity{nil, {}} {
		res, err := resolver.Resolve(context.Background(), identity)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Source != domain.SourceNone {
			t.Fatalf("anonymous identity should resolve to none, got %+v", res)
		}
	}
}

func TestApplyLegacyFallback(t *testing.T) {
	legacy := domain.RoleGuide
	invalid := domain.Role("superuser")

	cases := []struct {
		name    string
		res     Resolution
		profile *domain.UserProfile
		want    Resolution
	}{
		{
			name:    "fills in when assignments produced nothing",
			res:     Resolution{Role: domain.RoleNone, Source: domain.SourceNone},
			profile: &domain.UserProfile{ID: "user-1", LegacyRole: &legacy},
			want:    Resolution{Role: domain.RoleGuide, Source: domain.SourceLegacy},
		},
		{
			name:    "never overrides an assignment tier",
			res:     Resolution{Role: domain.RoleMitra, Source: domain.SourcePrimary},
			profile: &domain.UserProfile{ID: "user-1", LegacyRole: &legacy},
			want:    Resolution{Role: domain.RoleMitra, Source: domain.SourcePrimary},
		},
		{
			name: "nil profile stays unresolved",
			res:  Resolution{Role: domain.RoleNone, Source: domain.SourceNone},
			want: Resolution{Role: domain.RoleNone, Source: domain.SourceNone},
		},
		{
			name:    "profile without legacy role stays unresolved",
			res:     Resolution{Role: domain.RoleNone, Source: domain.SourceNone},
			profile: &domain.UserProfile{ID: "user-1"},
			want:    Resolution{Role: domain.RoleNone, Source: domain.SourceNone},
		},
		{
			name:    "unknown legacy value is ignored",
			res:     Resolution{Role: domain.RoleNone, Source: domain.SourceNone},
			profile: &domain.UserProfile{ID: "user-1", LegacyRole: &invalid},
			want:    Resolution{Role: domain.RoleNone, Source: domain.SourceNone},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ApplyLegacyFallback(tc.res, tc.profile); got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}
