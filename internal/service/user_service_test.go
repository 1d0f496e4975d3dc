package service

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/lancaster-identity/internal/domain"
	"github.com/prn-tf/lancaster-identity/internal/session"
)

func newTestUserService() (*UserService, *MockUserRepository, *session.MemoryStore) {
	repo := NewMockUserRepository()
	store := session.NewMemoryStore()
	svc := NewUserService(repo, store, zerolog.Nop())
	return svc, repo, store
}

func validCreateInput() CreateUserInput {
	return CreateUserInput{
		Name:     "Ana",
		Email:    "ana@x.com",
		Username: "ana",
		Password: "secret123",
	}
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("valid input creates user with hashed password", func(t *testing.T) {
		svc, _, _ := newTestUserService()

		user, err := svc.Create(ctx, validCreateInput())
		require.NoError(t, err)

		assert.NotZero(t, user.ID)
		assert.Equal(t, "Ana", user.Name)
		assert.Equal(t, "ana@x.com", user.Email)
		assert.Equal(t, "ana", user.Username)
		assert.NotEqual(t, "secret123", user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
	})

	t.Run("username is optional", func(t *testing.T) {
		svc, _, _ := newTestUserService()

		input := validCreateInput()
		input.Username = ""
		user, err := svc.Create(ctx, input)
		require.NoError(t, err)
		assert.False(t, user.HasUsername())
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		svc, _, _ := newTestUserService()

		_, err := svc.Create(ctx, validCreateInput())
		require.NoError(t, err)

		input := validCreateInput()
		input.Username = "other"
		_, err = svc.Create(ctx, input)
		require.Error(t, err)

		ce, ok := IsConflictError(err)
		require.True(t, ok)
		assert.Equal(t, "User with e-mail: ana@x.com, already exists", ce.Error())
	})

	t.Run("duplicate username reported before duplicate email", func(t *testing.T) {
		svc, _, _ := newTestUserService()

		_, err := svc.Create(ctx, validCreateInput())
		require.NoError(t, err)

		// Both username and email collide; the username conflict wins.
		_, err = svc.Create(ctx, validCreateInput())
		require.Error(t, err)

		ce, ok := IsConflictError(err)
		require.True(t, ok)
		assert.Equal(t, "User with username: ana, already exists", ce.Error())
	})

	t.Run("duplicate username with distinct email conflicts", func(t *testing.T) {
		svc, _, _ := newTestUserService()

		_, err := svc.Create(ctx, validCreateInput())
		require.NoError(t, err)

		input := validCreateInput()
		input.Email = "other@x.com"
		_, err = svc.Create(ctx, input)
		require.Error(t, err)

		ce, ok := IsConflictError(err)
		require.True(t, ok)
		assert.Equal(t, "username", ce.Field)
	})

	t.Run("all validation violations are aggregated", func(t *testing.T) {
		svc, _, _ := newTestUserService()

		_, err := svc.Create(ctx, CreateUserInput{
			Name:     strings.Repeat("a", 46),
			Email:    "not-an-email",
			Username: "ok",
			Password: "short",
		})
		require.Error(t, err)

		ve, ok := IsValidationError(err)
		require.True(t, ok)

		fields := make([]string, 0, len(ve.Fields))
		for _, f := range ve.Fields {
			fields = append(fields, f.Field)
		}
		assert.ElementsMatch(t, []string{"name", "email", "password"}, fields)
	})

	t.Run("missing required fields are reported", func(t *testing.T) {
		svc, _, _ := newTestUserService()

		_, err := svc.Create(ctx, CreateUserInput{})
		require.Error(t, err)

		ve, ok := IsValidationError(err)
		require.True(t, ok)
		fields := make([]string, 0, len(ve.Fields))
		for _, f := range ve.Fields {
			fields = append(fields, f.Field)
		}
		assert.ElementsMatch(t, []string{"name", "email", "password"}, fields)
	})

	t.Run("username over 25 characters is rejected", func(t *testing.T) {
		svc, _, _ := newTestUserService()

		input := validCreateInput()
		input.Username = strings.Repeat("u", 26)
		_, err := svc.Create(ctx, input)
		require.Error(t, err)

		ve, ok := IsValidationError(err)
		require.True(t, ok)
		require.Len(t, ve.Fields, 1)
		assert.Equal(t, "username", ve.Fields[0].Field)
	})

	t.Run("validation runs before uniqueness checks", func(t *testing.T) {
		svc, _, _ := newTestUserService()

		_, err := svc.Create(ctx, validCreateInput())
		require.NoError(t, err)

		// Duplicate email but invalid password: validation error wins.
		input := validCreateInput()
		input.Password = "short"
		_, err = svc.Create(ctx, input)
		require.Error(t, err)

		_, ok := IsValidationError(err)
		assert.True(t, ok)
	})
}

func TestUserService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store returns empty slice", func(t *testing.T) {
		svc, _, _ := newTestUserService()

		users, err := svc.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)
	})

	t.Run("returns all users", func(t *testing.T) {
		svc, _, _ := newTestUserService()

		_, err := svc.Create(ctx, validCreateInput())
		require.NoError(t, err)

		input := validCreateInput()
		input.Email = "bob@x.com"
		input.Username = "bob"
		_, err = svc.Create(ctx, input)
		require.NoError(t, err)

		users, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()

	strPtr := func(s string) *string { return &s }

	t.Run("unknown id is not found", func(t *testing.T) {
		svc, _, _ := newTestUserService()

		_, err := svc.Update(ctx, 999, UpdateUserInput{Name: strPtr("New")})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("partial update leaves other fields unchanged", func(t *testing.T) {
		svc, _, _ := newTestUserService()

		created, err := svc.Create(ctx, validCreateInput())
		require.NoError(t, err)

		updated, err := svc.Update(ctx, created.ID, UpdateUserInput{Name: strPtr("Anabela")})
		require.NoError(t, err)

		assert.Equal(t, "Anabela", updated.Name)
		assert.Equal(t, created.Email, updated.Email)
		assert.Equal(t, created.Username, updated.Username)
		assert.Equal(t, created.PasswordHash, updated.PasswordHash)
	})

	t.Run("invalid field is rejected without mutation", func(t *testing.T) {
		svc, repo, _ := newTestUserService()

		created, err := svc.Create(ctx, validCreateInput())
		require.NoError(t, err)

		_, err = svc.Update(ctx, created.ID, UpdateUserInput{Email: strPtr("not-an-email")})
		require.Error(t, err)

		_, ok := IsValidationError(err)
		assert.True(t, ok)

		stored, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "ana@x.com", stored.Email)
	})

	t.Run("all fields can be updated together", func(t *testing.T) {
		svc, _, _ := newTestUserService()

		created, err := svc.Create(ctx, validCreateInput())
		require.NoError(t, err)

		updated, err := svc.Update(ctx, created.ID, UpdateUserInput{
			Name:     strPtr("Bob"),
			Email:    strPtr("bob@x.com"),
			Username: strPtr("bob"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Bob", updated.Name)
		assert.Equal(t, "bob@x.com", updated.Email)
		assert.Equal(t, "bob", updated.Username)
	})
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown id is not found", func(t *testing.T) {
		svc, _, _ := newTestUserService()

		_, err := svc.Delete(ctx, 999)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("deleted user is gone", func(t *testing.T) {
		svc, repo, _ := newTestUserService()

		created, err := svc.Create(ctx, validCreateInput())
		require.NoError(t, err)

		deleted, err := svc.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Name, deleted.Name)

		_, err = repo.GetByID(ctx, created.ID)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("deleting a user revokes their sessions", func(t *testing.T) {
		svc, repo, store := newTestUserService()

		created, err := svc.Create(ctx, validCreateInput())
		require.NoError(t, err)

		sessionSvc := NewSessionService(repo, store, 0, zerolog.Nop())
		output, err := sessionSvc.Login(ctx, LoginInput{Email: "ana@x.com", Password: "secret123"})
		require.NoError(t, err)

		_, err = svc.Delete(ctx, created.ID)
		require.NoError(t, err)

		_, err = store.Get(ctx, output.Session.Token)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}
