// Package domain contains the core business entities for Lancaster Identity.
// These are pure Go structs with no external dependencies, representing
// the fundamental concepts of the user account system.
package domain

import (
	"time"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (auto-generated).
	ID int64 `json:"id"`

	// Name is the display name of the user.
	// Constraints: 1-45 characters.
	Name string `json:"name"`

	// Email is the unique email address for the user.
	// Constraints: valid email syntax, at most 45 characters.
	Email string `json:"email"`

	// Username is an optional unique handle for the user.
	// Constraints: at most 25 characters. Empty means no handle is set.
	Username string `json:"username,omitempty"`

	// PasswordHash is the bcrypt hash of the user's password.
	// This should never be exposed in API responses.
	PasswordHash string `json:"-"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new User with default values.
func NewUser(name, email, username, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		Name:         name,
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// HasUsername reports whether the user has a handle set.
func (u *User) HasUsername() bool {
	return u.Username != ""
}
