package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/wisatahub/platform-gateway/internal/core/domain"
	"github.com/wisatahub/platform-gateway/internal/core/port"
	"github.com/wisatahub/platform-gateway/internal/repository"
)

// Resolution is the outcome of the active-role priority chain. A RoleNone
// role with SourceNone means the user has no role; it is not an error and
// callers treat it as unauthenticated-equivalent for authorization.
type Resolution struct {
	Role   domain.Role
	Source domain.ResolutionSource
}

// RoleResolver determines the single role governing a request.
//
// Priority order, short-circuiting on first success:
//  1. session hint, re-verified against live assignments
//  2. primary active assignment
//  3. oldest-created active assignment
//  4. legacy profile role (applied by the caller, see ApplyLegacyFallback)
//
// Tiers 2 and 3 collapse into one ResolveCandidate query. A hint naming an
// internal role is trusted without a store read: the hint is written only by
// the server-side role-switch action and cannot be escalated client-side.
type RoleResolver struct {
	assignments port.RoleAssignmentRepository
	logger      *zap.Logger
}

// NewRoleResolver constructs a RoleResolver.
func NewRoleResolver(assignments port.RoleAssignmentRepository, logger *zap.Logger) *RoleResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleResolver{assignments: assignments, logger: logger}
}

// Resolve walks the assignment-backed tiers of the priority chain. A non-nil
// error means the role store could not answer; every caller must route that
// into the fail-closed path rather than defaulting to an allow.
func (r *RoleResolver) Resolve(ctx context.Context, identity *domain.Identity) (Resolution, error) {
	none := Resolution{Role: domain.RoleNone, Source: domain.SourceNone}

	if identity == nil || identity.UserID == "" {
		return none, nil
	}

	if hint := identity.ActiveRoleHint; hint.Valid() {
		if hint.IsInternal() {
			return Resolution{Role: hint, Source: domain.SourceTrustedHint}, nil
		}

		ok, err := r.assignments.HasActiveRole(ctx, identity.UserID, hint)
		if err != nil {
			return none, fmt.Errorf("verify role hint: %w", err)
		}
		if ok {
			return Resolution{Role: hint, Source: domain.SourceHint}, nil
		}
		// Stale or revoked hint: fall through to the assignment tiers.
		r.logger.Debug("discarding unverified role hint",
			zap.String("user_id", identity.UserID),
			zap.String("hint", hint.String()),
		)
	}

	candidate, err := r.assignments.ResolveCandidate(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return none, nil
		}
		return none, fmt.Errorf("resolve role candidate: %w", err)
	}

	source := domain.SourceEarliest
	if candidate.IsPrimary {
		source = domain.SourcePrimary
	}

	return Resolution{Role: candidate.Role, Source: source}, nil
}

// ApplyLegacyFallback fills in the pre-migration profile role when the
// assignment tiers produced nothing. The profile is fetched by the caller in
// parallel with Resolve, so the fallback is applied after both complete.
func ApplyLegacyFallback(res Resolution, profile *domain.UserProfile) Resolution {
	if res.Source != domain.SourceNone {
		return res
	}
	if profile == nil || profile.LegacyRole == nil {
		return res
	}
	if !profile.LegacyRole.Valid() {
		return res
	}
	return Resolution{Role: *profile.LegacyRole, Source: domain.SourceLegacy}
}
