package domain

import (
	"time"
)

// Session represents an authenticated browser session for a user.
// Sessions are identified by an opaque random token carried in a cookie.
type Session struct {
	// Token is the opaque session identifier.
	Token string `json:"token"`

	// UserID is the ID of the user this session belongs to.
	UserID int64 `json:"user_id"`

	// CreatedAt is the timestamp when the session was established.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is the timestamp after which the session is no longer valid.
	ExpiresAt time.Time `json:"expires_at"`

	// IPAddress is the remote address the session was established from.
	IPAddress string `json:"ip_address,omitempty"`

	// UserAgent is the client user agent at login time.
	UserAgent string `json:"user_agent,omitempty"`
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
