package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/prn-tf/lancaster-identity/internal/domain"
)

const (
	sessionKeyPrefix  = "session:"
	userSessionPrefix = "user_sessions:"
)

// RedisStore implements Store using Redis.
// Sessions are stored as JSON values with a TTL matching their expiry,
// plus a per-user set so all of a user's sessions can be revoked at once.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis-backed session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Create stores a new session.
func (s *RedisStore) Create(ctx context.Context, sess *domain.Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+sess.Token, data, ttl)
	userKey := userSessionPrefix + strconv.FormatInt(sess.UserID, 10)
	pipe.SAdd(ctx, userKey, sess.Token)
	pipe.Expire(ctx, userKey, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Get retrieves a live session by token.
func (s *RedisStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	sess := &domain.Session{}
	if err := json.Unmarshal(data, sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if sess.IsExpired(time.Now().UTC()) {
		_ = s.remove(ctx, token, sess.UserID)
		return nil, domain.ErrSessionNotFound
	}

	return sess, nil
}

// Delete removes a session by token. Deleting an unknown token is a no-op.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	data, err := s.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("failed to get session: %w", err)
	}

	sess := &domain.Session{}
	if err := json.Unmarshal(data, sess); err != nil {
		return fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return s.remove(ctx, token, sess.UserID)
}

func (s *RedisStore) remove(ctx context.Context, token string, userID int64) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+token)
	pipe.SRem(ctx, userSessionPrefix+strconv.FormatInt(userID, 10), token)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteByUser removes all sessions belonging to a user.
func (s *RedisStore) DeleteByUser(ctx context.Context, userID int64) error {
	userKey := userSessionPrefix + strconv.FormatInt(userID, 10)

	tokens, err := s.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("failed to list user sessions: %w", err)
	}

	pipe := s.client.TxPipeline()
	for _, token := range tokens {
		pipe.Del(ctx, sessionKeyPrefix+token)
	}
	pipe.Del(ctx, userKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
