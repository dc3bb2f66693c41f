package auth

import "strings"

// Role is the closed set of roles the platform knows about. Values are
// canonical; anything arriving from the outside goes through NormalizeRole.
type Role string

const (
	// RoleClient is a regular customer placing orders
	RoleClient Role = "client"
	// RoleColaborador is the restricted staff role, limited to a fixed
	// set of routes regardless of per-route allow lists
	RoleColaborador Role = "colaborador"
	// RoleLeader runs a single event or venue
	RoleLeader Role = "leader"
	// RoleManager manages events, menus and orders across venues
	RoleManager Role = "manager"
	// RoleAdmin has full administrative access
	RoleAdmin Role = "admin"
)

// legacyRoleNames maps the spellings found in older records and external
// payloads (mixed casing, Portuguese variants) to canonical roles.
var legacyRoleNames = map[string]Role{
	"client":        RoleClient,
	"cliente":       RoleClient,
	"customer":      RoleClient,
	"colaborador":   RoleColaborador,
	"collaborator":  RoleColaborador,
	"employee":      RoleColaborador,
	"funcionario":   RoleColaborador,
	"leader":        RoleLeader,
	"lider":         RoleLeader,
	"manager":       RoleManager,
	"gerente":       RoleManager,
	"admin":         RoleAdmin,
	"administrator": RoleAdmin,
	"administrador": RoleAdmin,
}

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleColaborador, RoleLeader, RoleManager, RoleAdmin:
		return true
	default:
		return false
	}
}

// OwnershipExempt reports whether the role bypasses resource ownership
// checks entirely.
func (r Role) OwnershipExempt() bool {
	return r == RoleAdmin || r == RoleManager
}

// IsAtLeast checks if this role meets the minimum required level
func (r Role) IsAtLeast(minRole Role) bool {
	roleHierarchy := map[Role]int{
		RoleClient:      0,
		RoleColaborador: 1,
		RoleLeader:      2,
		RoleManager:     3,
		RoleAdmin:       4,
	}

	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// String returns the canonical representation.
func (r Role) String() string {
	return string(r)
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []Role {
	return []Role{
		RoleClient,
		RoleColaborador,
		RoleLeader,
		RoleManager,
		RoleAdmin,
	}
}

// NormalizeRole parses an external role string into a canonical Role.
// It accepts legacy spellings and is case insensitive.
func NormalizeRole(roleStr string) (Role, bool) {
	role, ok := legacyRoleNames[strings.ToLower(strings.TrimSpace(roleStr))]
	return role, ok
}

// ParseRole safely parses a string into a Role type without legacy
// mapping; use NormalizeRole at external boundaries.
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, role.IsValid()
}

// RoleAllowed reports whether role is included in the allow list. An empty
// list allows any valid role.
func RoleAllowed(role Role, allowed ...Role) bool {
	if len(allowed) == 0 {
		return role.IsValid()
	}
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}
