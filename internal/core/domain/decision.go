package domain

// DecisionKind enumerates the terminal outcomes of a gateway evaluation.
type DecisionKind string

const (
	// DecisionAllow lets the request through to its handler.
	DecisionAllow DecisionKind = "allow"
	// DecisionRedirectLogin sends an anonymous caller to the login page.
	DecisionRedirectLogin DecisionKind = "redirect_login"
	// DecisionRedirectConsent sends an unconsented caller to the legal signing page.
	DecisionRedirectConsent DecisionKind = "redirect_consent"
	// DecisionRedirectRoleHome sends the caller to the area matching their role.
	DecisionRedirectRoleHome DecisionKind = "redirect_role_home"
)

// Decision is the per-request outcome produced by the gateway orchestrator.
type Decision struct {
	Kind DecisionKind
	// Location is the locale-relative redirect target, empty for Allow.
	Location string
	// Role is the resolved active role, RoleNone when unresolved.
	Role Role
	// RoleSource records which resolution tier produced the role.
	RoleSource ResolutionSource
	// BranchID is the resolved tenant partition, empty when absent.
	BranchID string
}

// ResolutionSource identifies the priority tier that yielded the active role.
type ResolutionSource string

const (
	// SourceTrustedHint means the session hint named an internal role and was
	// trusted without a store round trip.
	SourceTrustedHint ResolutionSource = "trusted_hint"
	// SourceHint means the session hint was verified against live assignments.
	SourceHint ResolutionSource = "hint"
	// SourcePrimary means the primary active assignment was used.
	SourcePrimary ResolutionSource = "primary"
	// SourceEarliest means the oldest-created active assignment was used.
	SourceEarliest ResolutionSource = "earliest"
	// SourceLegacy means the pre-migration profile role field was used.
	SourceLegacy ResolutionSource = "legacy"
	// SourceNone means no tier yielded a role.
	SourceNone ResolutionSource = "none"
)
