package domain

import "time"

// AccessDecisionEvent is the advisory audit record emitted after each
// gateway evaluation. Publication must never block or fail a request.
type AccessDecisionEvent struct {
	EventID    string
	UserID     string
	Path       string
	Decision   DecisionKind
	Location   string
	Role       Role
	RoleSource ResolutionSource
	BranchID   string
	DecidedAt  time.Time
}
