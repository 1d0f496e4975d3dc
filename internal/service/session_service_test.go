package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/lancaster-identity/internal/domain"
	"github.com/prn-tf/lancaster-identity/internal/session"
)

func newTestSessionService(t *testing.T) (*SessionService, *session.MemoryStore) {
	t.Helper()
	repo := NewMockUserRepository()
	store := session.NewMemoryStore()

	userSvc := NewUserService(repo, store, zerolog.Nop())
	_, err := userSvc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	return NewSessionService(repo, store, time.Hour, zerolog.Nop()), store
}

func TestSessionService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email is not found", func(t *testing.T) {
		svc, _ := newTestSessionService(t)

		_, err := svc.Login(ctx, LoginInput{Email: "nobody@x.com", Password: "secret123"})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("wrong password is invalid credentials", func(t *testing.T) {
		svc, _ := newTestSessionService(t)

		output, err := svc.Login(ctx, LoginInput{Email: "ana@x.com", Password: "wrongpass"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		assert.Nil(t, output)
	})

	t.Run("correct credentials establish a session", func(t *testing.T) {
		svc, store := newTestSessionService(t)

		output, err := svc.Login(ctx, LoginInput{
			Email:     "ana@x.com",
			Password:  "secret123",
			IPAddress: "127.0.0.1:1234",
			UserAgent: "test-agent",
		})
		require.NoError(t, err)

		assert.Equal(t, "ana@x.com", output.User.Email)
		assert.NotEmpty(t, output.Session.Token)
		assert.Equal(t, output.User.ID, output.Session.UserID)
		assert.Equal(t, "test-agent", output.Session.UserAgent)

		stored, err := store.Get(ctx, output.Session.Token)
		require.NoError(t, err)
		assert.Equal(t, output.User.ID, stored.UserID)
	})
}

func TestSessionService_CurrentUser(t *testing.T) {
	ctx := context.Background()

	t.Run("empty token is unauthenticated", func(t *testing.T) {
		svc, _ := newTestSessionService(t)

		_, err := svc.CurrentUser(ctx, "")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("unknown token is unauthenticated", func(t *testing.T) {
		svc, _ := newTestSessionService(t)

		_, err := svc.CurrentUser(ctx, "no-such-token")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("valid session resolves to its user", func(t *testing.T) {
		svc, _ := newTestSessionService(t)

		output, err := svc.Login(ctx, LoginInput{Email: "ana@x.com", Password: "secret123"})
		require.NoError(t, err)

		user, err := svc.CurrentUser(ctx, output.Session.Token)
		require.NoError(t, err)
		assert.Equal(t, output.User.ID, user.ID)
		assert.Equal(t, "ana@x.com", user.Email)
	})

	t.Run("expired session is unauthenticated", func(t *testing.T) {
		repo := NewMockUserRepository()
		store := session.NewMemoryStore()
		userSvc := NewUserService(repo, store, zerolog.Nop())
		_, err := userSvc.Create(ctx, validCreateInput())
		require.NoError(t, err)

		svc := NewSessionService(repo, store, time.Millisecond, zerolog.Nop())
		output, err := svc.Login(ctx, LoginInput{Email: "ana@x.com", Password: "secret123"})
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)

		_, err = svc.CurrentUser(ctx, output.Session.Token)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

func TestSessionService_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("logout invalidates the session", func(t *testing.T) {
		svc, _ := newTestSessionService(t)

		output, err := svc.Login(ctx, LoginInput{Email: "ana@x.com", Password: "secret123"})
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, output.Session.Token))

		_, err = svc.CurrentUser(ctx, output.Session.Token)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("logout without a session is a no-op", func(t *testing.T) {
		svc, _ := newTestSessionService(t)

		assert.NoError(t, svc.Logout(ctx, ""))
		assert.NoError(t, svc.Logout(ctx, "no-such-token"))
	})
}
