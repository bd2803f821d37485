package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/wisatahub/platform-gateway/internal/core/domain"
	"github.com/wisatahub/platform-gateway/internal/repository"
)

const assignmentColumnsRegex = `SELECT id, user_id, role, status, is_primary, created_at FROM travel\.role_assignments WHERE status = \$1 AND user_id = \$2 ORDER BY is_primary DESC, created_at ASC`

func TestRoleAssignmentRepository_ResolveCandidate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRoleAssignmentRepository(mock)
	createdAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"id", "user_id", "role", "status", "is_primary", "created_at"}).
		AddRow("assign-1", "user-1", "guide", "active", true, createdAt)

	mock.ExpectQuery(assignmentColumnsRegex + ` LIMIT 1`).
		WithArgs(domain.AssignmentStatusActive, "user-1").
		WillReturnRows(rows)

	assignment, err := repo.ResolveCandidate(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ResolveCandidate returned error: %v", err)
	}
	if assignment.Role != domain.RoleGuide || !assignment.IsPrimary {
		t.Fatalf("unexpected assignment: %+v", assignment)
	}
	if !assignment.CreatedAt.Equal(createdAt) {
		t.Fatalf("created_at mismatch: %v", assignment.CreatedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRoleAssignmentRepository_ResolveCandidate_NoRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRoleAssignmentRepository(mock)

	mock.ExpectQuery(assignmentColumnsRegex + ` LIMIT 1`).
		WithArgs(domain.AssignmentStatusActive, "user-1").
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.ResolveCandidate(context.Background(), "user-1")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRoleAssignmentRepository_ListActive(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRoleAssignmentRepository(mock)
	base := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"id", "user_id", "role", "status", "is_primary", "created_at"}).
		AddRow("assign-1", "user-1", "mitra", "active", true, base).
		AddRow("assign-2", "user-1", "traveler", "active", false, base.Add(time.Hour))

	mock.ExpectQuery(assignmentColumnsRegex).
		WithArgs(domain.AssignmentStatusActive, "user-1").
		WillReturnRows(rows)

	assignments, err := repo.ListActive(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListActive returned error: %v", err)
	}
	if len(assignments) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(assignments))
	}
	if assignments[0].Role != domain.RoleMitra || !assignments[0].IsPrimary {
		t.Fatalf("primary assignment not first: %+v", assignments[0])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRoleAssignmentRepository_HasActiveRole(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRoleAssignmentRepository(mock)
	queryRegex := `SELECT 1 FROM travel\.role_assignments WHERE role = \$1 AND status = \$2 AND user_id = \$3 LIMIT 1`

	mock.ExpectQuery(queryRegex).
		WithArgs(domain.RoleGuide, domain.AssignmentStatusActive, "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))

	held, err := repo.HasActiveRole(context.Background(), "user-1", domain.RoleGuide)
	if err != nil {
		t.Fatalf("HasActiveRole returned error: %v", err)
	}
	if !held {
		t.Fatal("expected role to be held")
	}

	mock.ExpectQuery(queryRegex).
		WithArgs(domain.RoleAdmin, domain.AssignmentStatusActive, "user-1").
		WillReturnError(pgx.ErrNoRows)

	held, err = repo.HasActiveRole(context.Background(), "user-1", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("HasActiveRole returned error: %v", err)
	}
	if held {
		t.Fatal("expected role to be absent")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
