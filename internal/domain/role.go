package domain

import "strings" // Case-insensitive role parsing

// Role is the closed set of account roles
type Role string

const (
	RoleUser    Role = "User"    // Listener account
	RoleCreator Role = "Creator" // May publish and own episodes
)

// ParseRole normalizes a role name from the outside world. Comparison is case-insensitive.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return RoleUser, true
	case "creator":
		return RoleCreator, true
	}
	return "", false
}

// String returns the canonical role name
func (r Role) String() string { return string(r) }
