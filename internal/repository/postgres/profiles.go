package postgres

import (
	"context"
	"database/sql"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/wisatahub/platform-gateway/internal/core/domain"
	"github.com/wisatahub/platform-gateway/internal/core/port"
	"github.com/wisatahub/platform-gateway/internal/repository"
)

// ProfileRepository reads user profile rows from PostgreSQL.
type ProfileRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewProfileRepository constructs a PostgreSQL-backed profile repository.
func NewProfileRepository(exec pgExecutor) *ProfileRepository {
	return &ProfileRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByID returns the profile row for the user.
func (r *ProfileRepository) GetByID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	stmt, args, err := r.builder.
		Select("id", "role", "branch_id", "consent_signed", "consent_signed_at").
		From("travel.user_profiles").
		Where(squirrel.Eq{"id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select profile sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var (
		profile         domain.UserProfile
		legacyRole      sql.NullString
		branchID        sql.NullString
		consentSignedAt sql.NullTime
	)

	if err := row.Scan(
		&profile.ID,
		&legacyRole,
		&branchID,
		&profile.ConsentSigned,
		&consentSignedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	if legacyRole.Valid && legacyRole.String != "" {
		role := domain.Role(legacyRole.String)
		profile.LegacyRole = &role
	}
	if branchID.Valid && branchID.String != "" {
		profile.BranchID = &branchID.String
	}
	if consentSignedAt.Valid {
		signedAt := consentSignedAt.Time.UTC()
		profile.ConsentSignedAt = &signedAt
	}

	return &profile, nil
}

var _ port.ProfileRepository = (*ProfileRepository)(nil)
