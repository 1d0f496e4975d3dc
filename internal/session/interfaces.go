// Package session provides session token storage abstractions.
// Sessions can be stored in Redis for multi-node deployments or in
// process memory for single-node and test setups.
package session

import (
	"context"

	"github.com/prn-tf/lancaster-identity/internal/domain"
)

// Store defines the interface for session persistence.
type Store interface {
	// Create stores a new session. The session expires at its ExpiresAt.
	Create(ctx context.Context, sess *domain.Session) error

	// Get retrieves a live session by token.
	// Returns domain.ErrSessionNotFound if the token is unknown or expired.
	Get(ctx context.Context, token string) (*domain.Session, error)

	// Delete removes a session by token. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteByUser removes all sessions belonging to a user.
	DeleteByUser(ctx context.Context, userID int64) error
}
