package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/wisatahub/platform-gateway/internal/core/domain"
	"github.com/wisatahub/platform-gateway/internal/core/port"
	"github.com/wisatahub/platform-gateway/internal/repository"
)

// RoleAssignmentRepository implements role-assignment reads against PostgreSQL.
type RoleAssignmentRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewRoleAssignmentRepository constructs a repository backed by any executor
// that satisfies pgExecutor (pool, connection, or transaction).
func NewRoleAssignmentRepository(exec pgExecutor) *RoleAssignmentRepository {
	return &RoleAssignmentRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListActive returns every active assignment for the user, primary first,
// then oldest-created first.
func (r *RoleAssignmentRepository) ListActive(ctx context.Context, userID string) ([]domain.RoleAssignment, error) {
	stmt, args, err := r.builder.
		Select("id", "user_id", "role", "status", "is_primary", "created_at").
		From("travel.role_assignments").
		Where(squirrel.Eq{"user_id": userID, "status": domain.AssignmentStatusActive}).
		OrderBy("is_primary DESC", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list active assignments sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query active assignments: %w", err)
	}
	defer rows.Close()

	assignments := make([]domain.RoleAssignment, 0)
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, assignment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}

	return assignments, nil
}

// HasActiveRole reports whether the user holds an active assignment for the role.
func (r *RoleAssignmentRepository) HasActiveRole(ctx context.Context, userID string, role domain.Role) (bool, error) {
	stmt, args, err := r.builder.
		Select("1").
		From("travel.role_assignments").
		Where(squirrel.Eq{
			"user_id": userID,
			"role":    role,
			"status":  domain.AssignmentStatusActive,
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build has active role sql: %w", err)
	}

	var one int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("query has active role: %w", err)
	}

	return true, nil
}

// ResolveCandidate collapses the primary-then-earliest priority tiers into a
// single deterministic query: ORDER BY is_primary DESC, created_at ASC LIMIT 1.
func (r *RoleAssignmentRepository) ResolveCandidate(ctx context.Context, userID string) (*domain.RoleAssignment, error) {
	stmt, args, err := r.builder.
		Select("id", "user_id", "role", "status", "is_primary", "created_at").
		From("travel.role_assignments").
		Where(squirrel.Eq{"user_id": userID, "status": domain.AssignmentStatusActive}).
		OrderBy("is_primary DESC", "created_at ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build resolve candidate sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)
	assignment, err := scanAssignment(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan candidate assignment: %w", err)
	}

	return &assignment, nil
}

func scanAssignment(row pgx.Row) (domain.RoleAssignment, error) {
	var (
		assignment domain.RoleAssignment
		role       string
		status     string
	)
	if err := row.Scan(
		&assignment.ID,
		&assignment.UserID,
		&role,
		&status,
		&assignment.IsPrimary,
		&assignment.CreatedAt,
	); err != nil {
		return domain.RoleAssignment{}, err
	}

	assignment.Role = domain.Role(role)
	assignment.Status = domain.AssignmentStatus(status)
	return assignment, nil
}

var _ port.RoleAssignmentRepository = (*RoleAssignmentRepository)(nil)
