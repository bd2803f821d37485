package port

import (
	"context"

	"github.com/wisatahub/platform-gateway/internal/core/domain"
)

// RoleAssignmentRepository exposes read access to persisted role assignments.
type RoleAssignmentRepository interface {
	// ListActive returns every assignment with status=active for the user,
	// ordered primary-first then created-ascending.
	ListActive(ctx context.Context, userID string) ([]domain.RoleAssignment, error)

	// HasActiveRole reports whether the user holds an active assignment for
	// the given role. Used to re-verify session hints.
	HasActiveRole(ctx context.Context, userID string, role domain.Role) (bool, error)

	// ResolveCandidate returns the single assignment that governs resolution:
	// the primary active assignment when one exists, otherwise the
	// oldest-created active assignment. Returns repository.ErrNotFound when
	// the user has no active assignments.
	ResolveCandidate(ctx context.Context, userID string) (*domain.RoleAssignment, error)
}
