// internal/auth/role.go
package auth

import "strings"

// Role is the closed set of caller roles the credit service recognizes.
type Role string

const (
	// RoleAdmin may operate on any account and use the administrative
	// listing and manual-transaction endpoints.
	RoleAdmin Role = "admin"
	// RoleUser is an end user; access is limited to their own account.
	RoleUser Role = "user"
	// RoleService is a trusted internal caller (payment/settlement
	// service); the only role allowed to add credit.
	RoleService Role = "service"
)

// ParseRole parses a case-insensitive role string. Unknown roles are
// rejected rather than carried around as raw strings.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(s)) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleUser:
		return RoleUser, true
	case RoleService:
		return RoleService, true
	default:
		return "", false
	}
}

// Identity is the authenticated caller attached to each request by the
// auth middleware. The credit service never issues identities itself.
type Identity struct {
	UserID int64
	Role   Role
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
