package domain

import (
	"strings"
	"time"
)

// Role enumerates the closed set of role kinds a user can operate as.
type Role string

const (
	// RoleTraveler is the default customer persona.
	RoleTraveler Role = "traveler"
	// RoleGuide is the tour-guide vertical persona.
	RoleGuide Role = "guide"
	// RoleMitra is the partner (mitra) vertical persona.
	RoleMitra Role = "mitra"
	// RoleCorporate is the corporate-account vertical persona.
	RoleCorporate Role = "corporate"
	// RoleStaff is an internal operations role.
	RoleStaff Role = "staff"
	// RoleAdmin is an internal administrative role.
	RoleAdmin Role = "admin"
	// RoleOwner is the top administrative role and the consent-gate bootstrap exemption.
	RoleOwner Role = "owner"
)

// RoleNone is the zero value meaning no role could be resolved.
const RoleNone Role = ""

// allRoles is the full enumeration; extend here when a new role kind is added.
var allRoles = []Role{
	RoleTraveler,
	RoleGuide,
	RoleMitra,
	RoleCorporate,
	RoleStaff,
	RoleAdmin,
	RoleOwner,
}

// internalRoles is the fixed elevated set permitted into the console area.
// Membership cannot be granted through any client-writable field.
var internalRoles = map[Role]struct{}{
	RoleStaff: {},
	RoleAdmin: {},
	RoleOwner: {},
}

// ParseRole normalises textual input into a known role kind.
func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range allRoles {
		if role == known {
			return role, true
		}
	}
	return RoleNone, false
}

// Roles returns the complete enumeration in declaration order.
func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

// Valid reports whether the role is part of the enumeration.
func (r Role) Valid() bool {
	_, ok := internalRoles[r]
	if ok {
		return true
	}
	switch r {
	case RoleTraveler, RoleGuide, RoleMitra, RoleCorporate:
		return true
	}
	return false
}

// IsInternal reports whether the role belongs to the elevated console set.
func (r Role) IsInternal() bool {
	_, ok := internalRoles[r]
	return ok
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// AssignmentStatus enumerates role-assignment states. Assignments are never
// hard-deleted; revocation flips the status to inactive.
type AssignmentStatus string

const (
	AssignmentStatusActive   AssignmentStatus = "active"
	AssignmentStatusInactive AssignmentStatus = "inactive"
)

// RoleAssignment relates a user to a role they may operate as. At most one
// active assignment per user carries the primary flag.
type RoleAssignment struct {
	ID        string
	UserID    string
	Role      Role
	Status    AssignmentStatus
	IsPrimary bool
	CreatedAt time.Time
}

// IsActive reports whether the assignment currently grants its role.
func (a RoleAssignment) IsActive() bool {
	return a.Status == AssignmentStatusActive
}
