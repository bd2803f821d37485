package domain

import (
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		input string
		want  Role
		ok    bool
	}{
		{"traveler", RoleTraveler, true},
		{"guide", RoleGuide, true},
		{"mitra", RoleMitra, true},
		{"corporate", RoleCorporate, true},
		{"staff", RoleStaff, true},
		{"admin", RoleAdmin, true},
		{"owner", RoleOwner, true},
		{"  Owner  ", RoleOwner, true},
		{"GUIDE", RoleGuide, true},
		{"", RoleNone, false},
		{"superuser", RoleNone, false},
		{"guide ", RoleGuide, true},
		{"partner", RoleNone, false},
	}

	for _, tc := range cases {
		got, ok := ParseRole(tc.input)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseRole(%q) = (%q, %v), want (%q, %v)", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRoleValidCoversEnumeration(t *testing.T) {
	for _, role := range Roles() {
		if !role.Valid() {
			t.Errorf("role %q should be valid", role)
		}
	}

	if RoleNone.Valid() {
		t.Error("RoleNone must not be valid")
	}
	if Role("superuser").Valid() {
		t.Error("unknown role must not be valid")
	}
}

func TestRoleIsInternal(t *testing.T) {
	internal := map[Role]bool{
		RoleStaff: true,
		RoleAdmin: true,
		RoleOwner: true,
	}

	for _, role := range Roles() {
		if got := role.IsInternal(); got != internal[role] {
			t.Errorf("role %q IsInternal = %v, want %v", role, got, internal[role])
		}
	}

	if RoleNone.IsInternal() {
		t.Error("RoleNone must not be internal")
	}
}

func TestRoleAssignmentIsActive(t *testing.T) {
	active := RoleAssignment{
		ID:        "a1",
		UserID:    "u1",
		Role:      RoleGuide,
		Status:    AssignmentStatusActive,
		CreatedAt: time.Now(),
	}
	if !active.IsActive() {
		t.Error("active assignment should report active")
	}

	inactive := active
	inactive.Status = AssignmentStatusInactive
	if inactive.IsActive() {
		t.Error("inactive assignment should not report active")
	}
}
