package port

import (
	"context"

	"github.com/wisatahub/platform-gateway/internal/core/domain"
)

// ProfileRepository exposes read access to user profile rows.
type ProfileRepository interface {
	// GetByID returns the profile for the user, or repository.ErrNotFound.
	GetByID(ctx context.Context, userID string) (*domain.UserProfile, error)
}
