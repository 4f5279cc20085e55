package domain

import "time"

// Role enumerates the closed set of account roles.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleAuthor  Role = "AUTHOR"
	RoleAdmin   Role = "ADMIN"
)

// ValidRole reports whether the value is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleStudent, RoleAuthor, RoleAdmin:
		return true
	}
	return false
}

// User is the domain model for an account. PasswordHash is read only by the
// credential verifier and never serialized outward.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
