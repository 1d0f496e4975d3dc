package session

import (
	"context"
	"sync"
	"time"

	"github.com/prn-tf/lancaster-identity/internal/domain"
)

// MemoryStore implements Store using an in-process map.
// Suitable for single-node deployments and tests. Expired sessions are
// removed lazily on access.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.Session),
	}
}

// Create stores a new session.
func (s *MemoryStore) Create(ctx context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *sess
	s.sessions[sess.Token] = &copied
	return nil
}

// Get retrieves a live session by token.
func (s *MemoryStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	if sess.IsExpired(time.Now().UTC()) {
		delete(s.sessions, token)
		return nil, domain.ErrSessionNotFound
	}

	copied := *sess
	return &copied, nil
}

// Delete removes a session by token.
func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

// DeleteByUser removes all sessions belonging to a user.
func (s *MemoryStore) DeleteByUser(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, token)
		}
	}
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
