package domain

import "strings"

type Role string

const (
	RolePatient   Role = "patient"
	RoleDoctor    Role = "doctor"
	RoleAssistant Role = "assistant"
	RoleAdmin     Role = "admin"
)

// AllRoles lists every role the portal knows, in display order.
var AllRoles = []Role{RolePatient, RoleDoctor, RoleAssistant, RoleAdmin}

func IsValidRole(r string) bool {
	switch Role(r) {
	case RolePatient, RoleDoctor, RoleAssistant, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole normalises case and whitespace. Unknown values are returned as-is so that
// callers fail closed on them instead of silently mapping to a known role.
func ParseRole(s string) Role {
	return Role(strings.ToLower(strings.TrimSpace(s)))
}

// HomePath is where a freshly logged-in user lands.
func (r Role) HomePath() string {
	if !IsValidRole(string(r)) {
		return "/"
	}
	return "/" + string(r) + "/dashboard"
}
