package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Assignments *RoleAssignmentRepository
	Profiles    *ProfileRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Assignments: NewRoleAssignmentRepository(pool),
		Profiles:    NewProfileRepository(pool),
	}
}
