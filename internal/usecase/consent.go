package usecase

import (
	"strings"

	"github.com/wisatahub/platform-gateway/internal/core/domain"
)

// consentExemptPrefixes are the paths reachable before the legal agreement
// is signed: auth entry/exit points and the signing page itself.
var consentExemptPrefixes = []string{
	"/login",
	"/register",
	"/logout",
	"/legal/sign",
	"/legal",
}

// ConsentGate decides whether the mandatory legal acknowledgment blocks a
// request. Pure decision logic; no side effects.
type ConsentGate struct{}

// NewConsentGate constructs a ConsentGate.
func NewConsentGate() ConsentGate {
	return ConsentGate{}
}

// Exempt reports whether the path may be visited before consent is signed.
func (ConsentGate) Exempt(path string) bool {
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		path = "/"
	}
	for _, prefix := range consentExemptPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// Satisfied reports whether the consent requirement is met. The owner role
// bypasses the gate unconditionally so the top administrative role can never
// lock itself out via its own consent flag.
func (ConsentGate) Satisfied(profile *domain.UserProfile, role domain.Role) bool {
	if role == domain.RoleOwner {
		return true
	}
	return profile != nil && profile.ConsentSigned
}
