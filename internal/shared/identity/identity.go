// Package identity defines the caller identity shared by every feature.
package identity

import "fmt"

// Role is the closed set of account roles.
type Role string

const (
	// RoleAdmin can read and mutate every survey entry and manage users.
	RoleAdmin Role = "admin"
	// RoleUser is a field agent that only sees its own entries.
	RoleUser Role = "user"
)

// ParseRole converts a raw string (token claim, request body) into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// IsAdmin reports whether the role is RoleAdmin.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Caller is the authenticated identity attached to an incoming operation.
// It is trusted as-is; verification happens in the JWT middleware.
type Caller struct {
	ID   string
	Role Role
}
