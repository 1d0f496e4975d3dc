package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/lancaster-identity/internal/domain"
	"github.com/prn-tf/lancaster-identity/internal/repository"
	"github.com/prn-tf/lancaster-identity/internal/session"
)

// UserService handles user account lifecycle operations.
type UserService struct {
	userRepo repository.UserRepository
	sessions session.Store
	logger   zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, sessions session.Store, logger zerolog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		sessions: sessions,
		logger:   logger.With().Str("service", "user").Logger(),
	}
}

// CreateUserInput contains the data needed to create a new user.
type CreateUserInput struct {
	Name     string `validate:"required,max=45"`
	Email    string `validate:"required,email,max=45"`
	Username string `validate:"omitempty,max=25"`
	Password string `validate:"required,min=8"`
}

// UpdateUserInput contains a partial set of fields to merge into an
// existing user. Nil fields are left unchanged. The password is not
// updatable through this operation.
type UpdateUserInput struct {
	Name     *string `validate:"omitempty,max=45"`
	Email    *string `validate:"omitempty,email,max=45"`
	Username *string `validate:"omitempty,max=25"`
}

// List returns all user accounts. An empty result is not an error.
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

// Create creates a new user account.
// Validation violations are aggregated; uniqueness is checked for
// username first, then email. The database unique indexes remain the
// authoritative guard against concurrent creates.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	// Fast-path uniqueness checks for friendly conflict messages.
	// Skipped for username when no handle was supplied.
	if input.Username != "" {
		exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
		if err != nil {
			s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to check username existence")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		if exists {
			return nil, &ConflictError{Field: "username", Value: input.Username}
		}
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		s.logger.Error().Err(err).Str("email", input.Email).Msg("failed to check email existence")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if exists {
		return nil, &ConflictError{Field: "e-mail", Value: input.Email}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: failed to hash password", ErrInternalError)
	}

	user := domain.NewUser(input.Name, input.Email, input.Username, string(passwordHash))

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			// Lost the race against a concurrent create; the unique
			// index caught it. The email message is the closest match.
			return nil, &ConflictError{Field: "e-mail", Value: input.Email}
		}
		s.logger.Error().Err(err).Str("email", input.Email).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("email", user.Email).
		Msg("user created")

	return user, nil
}

// Update merges the provided fields into an existing user and persists.
// Fields omitted from the input are left unchanged.
func (s *UserService) Update(ctx context.Context, id int64, input UpdateUserInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Int64("user_id", id).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := validateInput(input); err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Username != nil {
		user.Username = *input.Username
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, &ConflictError{Field: "e-mail", Value: user.Email}
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Int64("user_id", id).Msg("failed to update user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user updated")
	return user, nil
}

// Delete removes a user account. The deleted user is returned so the
// caller can report which account was removed. All sessions belonging
// to the user are revoked.
func (s *UserService) Delete(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Int64("user_id", id).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Int64("user_id", id).Msg("failed to delete user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := s.sessions.DeleteByUser(ctx, id); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", id).Msg("failed to revoke sessions of deleted user")
	}

	s.logger.Info().Int64("user_id", id).Str("name", user.Name).Msg("user deleted")
	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Int64("user_id", id).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return user, nil
}
