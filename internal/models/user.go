// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"
)

// Role is the closed set of roles a user can hold.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole validates a role name. Empty input maps to RoleUser.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case "", RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", NewValidationError("Invalid role " + raw)
	}
}

// User represents an authenticated author of the application.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// RequireRole is the single authorization check used by services.
// A nil user is reported as not authenticated.
func RequireRole(u *User, role Role) error {
	if u == nil {
		return NewNotAuthenticatedError()
	}
	if role == RoleAdmin && !u.IsAdmin() {
		return NewUnauthorizedError("Admin role required")
	}
	return nil
}

// RosterEntry is a user as kept in the users table. The password hash is
// stored there but never serialized to API clients.
type RosterEntry struct {
	User
	PasswordHash string `json:"password_hash,omitempty"`
}
