package users

import (
	"slices"
	"strings"
)

// Role names as issued by the backend.
const (
	RoleAdmin = "ADMIN" // Back-office administrator
	RoleAgent = "AGENT" // Sales agent, assigns devices and subscriptions
	RoleUser  = "USER"  // End user / subscriber
)

// User is the authenticated profile returned by the backend. It is treated as
// immutable for the life of a session and replaced wholesale on next login.
type User struct {
	ID       int64    `json:"id"`                 // Backend user ID
	Username string   `json:"username,omitempty"` // Login name
	Email    string   `json:"email,omitempty"`    // Contact email
	Roles    []string `json:"roles"`              // Roles as returned by the backend, e.g. ROLE_ADMIN
}

// HasRole reports whether any of the user's roles contains role as a
// substring. Matching is case-sensitive containment, not equality: "ADMIN"
// matches both "ADMIN" and "ROLE_ADMIN" (and also "SUPER_ADMIN_LITE").
func (u *User) HasRole(role string) bool {
	if u == nil || role == "" {
		return false
	}
	for _, r := range u.Roles {
		if strings.Contains(r, role) {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the user holds at least one of roles.
func (u *User) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = slices.Clone(u.Roles)
	return &c
}

// Equal reports whether two profiles hold the same values.
func (u *User) Equal(other *User) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.ID == other.ID &&
		u.Username == other.Username &&
		u.Email == other.Email &&
		slices.Equal(u.Roles, other.Roles)
}
