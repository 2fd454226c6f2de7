// Package model defines the data structures used throughout the application.
package model

import "time"

// DefaultRole is granted to every user that is created without explicit roles.
const DefaultRole = "ROLE_USER"

// User is a local account that owns programmers.
//
// Password holds the bcrypt hash, never the plaintext. It is tagged json:"-"
// so a user can be written to a response without leaking the hash.
type User struct {
	ID        string    `json:"id"        db:"id"`
	Username  string    `json:"username"  db:"username"`
	Email     string    `json:"email"     db:"email"`
	Password  string    `json:"-"         db:"password"`
	Roles     []string  `json:"roles"     db:"roles"` // stored comma-separated
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// HasRole reports whether the user was granted role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
