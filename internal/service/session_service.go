package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/lancaster-identity/internal/domain"
	"github.com/prn-tf/lancaster-identity/internal/repository"
	"github.com/prn-tf/lancaster-identity/internal/session"
)

// SessionService handles credential verification and session lifecycle.
type SessionService struct {
	userRepo repository.UserRepository
	store    session.Store
	ttl      time.Duration
	logger   zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(userRepo repository.UserRepository, store session.Store, ttl time.Duration, logger zerolog.Logger) *SessionService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionService{
		userRepo: userRepo,
		store:    store,
		ttl:      ttl,
		logger:   logger.With().Str("service", "session").Logger(),
	}
}

// LoginInput contains the credentials and client metadata for a login.
type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

// LoginOutput contains the result of a successful login.
type LoginOutput struct {
	User    *domain.User
	Session *domain.Session
}

// Login verifies credentials and establishes a session.
// An unknown email yields domain.ErrUserNotFound; a wrong password
// yields domain.ErrInvalidCredentials and no session is created.
func (s *SessionService) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Debug().Str("email", input.Email).Msg("login attempt for unknown email")
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("email", input.Email).Msg("failed to get user for login")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.logger.Debug().Str("email", input.Email).Msg("invalid password during login")
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	sess := &domain.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
	}

	if err := s.store.Create(ctx, sess); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to store session")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("email", user.Email).
		Msg("user logged in")

	return &LoginOutput{User: user, Session: sess}, nil
}

// Logout terminates the session for the given token.
// Logging out with an unknown or empty token is a no-op, not an error.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.store.Delete(ctx, token); err != nil {
		s.logger.Error().Err(err).Msg("failed to delete session")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	s.logger.Info().Msg("user logged out")
	return nil
}

// CurrentUser resolves the session token to its user.
// Returns domain.ErrSessionNotFound for unknown or expired tokens.
func (s *SessionService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}

	sess, err := s.store.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		s.logger.Error().Err(err).Msg("failed to get session")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	user, err := s.userRepo.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// The account was deleted out from under the session.
			_ = s.store.Delete(ctx, token)
			return nil, domain.ErrSessionNotFound
		}
		s.logger.Error().Err(err).Int64("user_id", sess.UserID).Msg("failed to get session user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return user, nil
}
