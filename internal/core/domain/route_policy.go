package domain

import "strings"

// PathClass enumerates the access tiers of the route policy matrix.
type PathClass string

const (
	// PathPublic is reachable with or without authentication.
	PathPublic PathClass = "public"
	// PathProtected requires authentication and, when AllowedRoles is
	// non-empty, an active role from that set.
	PathProtected PathClass = "protected"
	// PathInternal requires one of the fixed internal roles regardless of tenant.
	PathInternal PathClass = "internal"
)

// Classification is the outcome of matching a path against the policy matrix.
type Classification struct {
	Class PathClass
	// AllowedRoles restricts Protected paths; empty means any authenticated role.
	AllowedRoles []Role
	// ConsentExempt marks paths reachable before the legal agreement is signed.
	ConsentExempt bool
	// Vertical names the persona a path belongs to, RoleNone for shared paths.
	Vertical Role
}

// routeRule is one static matrix entry. Matching is prefix-based on path
// segments; more specific prefixes win.
type routeRule struct {
	prefix        string
	class         PathClass
	roles         []Role
	consentExempt bool
	vertical      Role
}

// routeMatrix is defined in code and loaded once at process start; it is
// never mutated at runtime. Order is irrelevant: the longest matching prefix
// is selected.
var routeMatrix = []routeRule{
	{prefix: "/login", class: PathPublic, consentExempt: true},
	{prefix: "/register", class: PathPublic, consentExempt: true},
	{prefix: "/logout", class: PathPublic, consentExempt: true},
	{prefix: "/legal/sign", class: PathPublic, consentExempt: true},
	{prefix: "/legal", class: PathPublic, consentExempt: true},

	{prefix: "/guide", class: PathPublic, vertical: RoleGuide},
	{prefix: "/guide/apply", class: PathPublic, vertical: RoleGuide},
	{prefix: "/guide/home", class: PathProtected, roles: []Role{RoleGuide}, vertical: RoleGuide},

	{prefix: "/mitra", class: PathPublic, vertical: RoleMitra},
	{prefix: "/mitra/apply", class: PathPublic, vertical: RoleMitra},
	{prefix: "/mitra/home", class: PathProtected, roles: []Role{RoleMitra}, vertical: RoleMitra},

	{prefix: "/corporate", class: PathPublic, vertical: RoleCorporate},
	{prefix: "/corporate/apply", class: PathPublic, vertical: RoleCorporate},
	{prefix: "/corporate/home", class: PathProtected, roles: []Role{RoleCorporate}, vertical: RoleCorporate},

	{prefix: "/home", class: PathProtected},
	{prefix: "/trips", class: PathProtected},

	{prefix: "/console", class: PathInternal, roles: []Role{RoleStaff, RoleAdmin, RoleOwner}},
}

// Classify maps a locale-stripped path onto its access tier. Unknown paths
// default to Protected for any authenticated role, never to Public.
func Classify(path string) Classification {
	path = normalizePath(path)

	if path == "/" {
		return Classification{Class: PathPublic}
	}

	var matched *routeRule
	for i := range routeMatrix {
		rule := &routeMatrix[i]
		if !prefixMatches(path, rule.prefix) {
			continue
		}
		if matched == nil || len(rule.prefix) > len(matched.prefix) {
			matched = rule
		}
	}

	if matched == nil {
		return Classification{Class: PathProtected}
	}

	return Classification{
		Class:         matched.class,
		AllowedRoles:  matched.roles,
		ConsentExempt: matched.consentExempt,
		Vertical:      matched.vertical,
	}
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	if path == "" {
		return "/"
	}
	return path
}

// prefixMatches reports whether path equals prefix or sits below it as a
// path segment ("/guide" matches "/guide/trips" but not "/guidebook").
func prefixMatches(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

// HomePath returns the authenticated dashboard for a role. The switch is
// total over the role enumeration; adding a role kind without a home page
// shows up here.
func (r Role) HomePath() string {
	switch r {
	case RoleGuide:
		return "/guide/home"
	case RoleMitra:
		return "/mitra/home"
	case RoleCorporate:
		return "/corporate/home"
	case RoleStaff, RoleAdmin, RoleOwner:
		return "/console"
	case RoleTraveler:
		return "/home"
	}
	return "/home"
}

// LandingPath returns the public landing page for a role's vertical.
// Non-vertical roles land on the shared root page.
func (r Role) LandingPath() string {
	switch r {
	case RoleGuide:
		return "/guide"
	case RoleMitra:
		return "/mitra"
	case RoleCorporate:
		return "/corporate"
	case RoleTraveler, RoleStaff, RoleAdmin, RoleOwner:
		return "/"
	}
	return "/"
}

// DefaultHomePath is the fallback authenticated landing page.
const DefaultHomePath = "/home"
