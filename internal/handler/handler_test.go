package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/lancaster-identity/internal/domain"
	"github.com/prn-tf/lancaster-identity/internal/service"
	"github.com/prn-tf/lancaster-identity/internal/session"
)

// memUserRepository is an in-memory repository.UserRepository for handler tests.
type memUserRepository struct {
	users  map[int64]*domain.User
	nextID int64
}

func newMemUserRepository() *memUserRepository {
	return &memUserRepository{users: make(map[int64]*domain.User), nextID: 1}
}

func (m *memUserRepository) Create(ctx context.Context, user *domain.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.ErrUserAlreadyExists
		}
		if user.HasUsername() && u.Username == user.Username {
			return domain.ErrUserAlreadyExists
		}
	}
	user.ID = m.nextID
	m.nextID++
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUserRepository) Update(ctx context.Context, user *domain.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memUserRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	for id := int64(1); id < m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			copied := *u
			users = append(users, &copied)
		}
	}
	return users, nil
}

func (m *memUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// newTestServer builds an httptest server over the full router.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	repo := newMemUserRepository()
	store := session.NewMemoryStore()
	logger := zerolog.Nop()

	userService := service.NewUserService(repo, store, logger)
	sessionService := service.NewSessionService(repo, store, time.Hour, logger)

	router := NewRouter(RouterConfig{
		UserHandler: NewUserHandler(userService, logger),
		AuthHandler: NewAuthHandler(sessionService, time.Hour, logger),
		Logger:      logger,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

// doJSON issues a request with a JSON body and decodes the JSON response.
func doJSON(t *testing.T, client *http.Client, method, url string, body interface{}, out interface{}) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// createUserPayload is the standard valid create payload used in tests.
func createUserPayload() map[string]string {
	return map[string]string{
		"name":     "Ana",
		"email":    "ana@x.com",
		"username": "ana",
		"password": "secret123",
	}
}
