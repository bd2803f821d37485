package domain

import "time"

// Identity is the authenticated principal extracted from the identity
// provider's session token. The role and branch fields are login-time
// snapshots stamped into the token; they may be stale and are treated as
// hints, never as authorization sources.
type Identity struct {
	UserID    string
	SessionID string
	// Role is the single role cached at login time (fast path only).
	Role Role
	// ActiveRoleHint is the role the user last explicitly switched to.
	// It is written exclusively by the server-side role-switch action.
	ActiveRoleHint Role
	// BranchID is the tenant partition cached at login time.
	BranchID string
}

// UserProfile mirrors the persisted user profile row. The gateway reads it
// for the legacy single-role fallback, the consent flag, and the branch id.
type UserProfile struct {
	ID string
	// LegacyRole is the pre-migration single role field. Nil once the user
	// has been moved onto the multi-role assignment model.
	LegacyRole *Role
	BranchID   *string
	// ConsentSigned records the mandatory legal acknowledgment.
	ConsentSigned   bool
	ConsentSignedAt *time.Time
}
