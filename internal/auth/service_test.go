package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/buildflow/buildflow/internal/shared"
)

type memoryRepository struct {
	byEmail map[string]*User
	byID    map[uuid.UUID]*User
}

func newMemoryRepository(users ...*User) *memoryRepository {
	repo := &memoryRepository{byEmail: map[string]*User{}, byID: map[uuid.UUID]*User{}}
	for _, u := range users {
		repo.byEmail[u.Email] = u
		repo.byID[u.ID] = u
	}
	return repo
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memoryRepository) FindByID(_ context.Context, id uuid.UUID) (*User, error) {
	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func testUser(t *testing.T, password string, active bool) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &User{
		ID:           uuid.New(),
		Email:        "engineer@buildflow.test",
		Name:         "Site Engineer",
		Role:         "ENGINEER",
		IsActive:     active,
		PasswordHash: string(hash),
	}
}

func TestLoginSuccess(t *testing.T) {
	user := testUser(t, "hunter2", true)
	tokens := NewTokenIssuer("test-secret", time.Hour)
	service := NewService(newMemoryRepository(user), tokens)

	token, got, err := service.Login(context.Background(), user.Email, "hunter2")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	identity, err := tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, identity.ID)
	require.Equal(t, "ENGINEER", identity.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	user := testUser(t, "hunter2", true)
	service := NewService(newMemoryRepository(user), NewTokenIssuer("test-secret", time.Hour))

	_, _, err := service.Login(context.Background(), user.Email, "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	service := NewService(newMemoryRepository(), NewTokenIssuer("test-secret", time.Hour))

	_, _, err := service.Login(context.Background(), "nobody@buildflow.test", "hunter2")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginInactiveUser(t *testing.T) {
	user := testUser(t, "hunter2", false)
	service := NewService(newMemoryRepository(user), NewTokenIssuer("test-secret", time.Hour))

	_, _, err := service.Login(context.Background(), user.Email, "hunter2")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestMeAnonymousReturnsNil(t *testing.T) {
	service := NewService(newMemoryRepository(), NewTokenIssuer("test-secret", time.Hour))

	user, err := service.Me(context.Background(), nil)
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestMeDeletedUserReturnsNil(t *testing.T) {
	service := NewService(newMemoryRepository(), NewTokenIssuer("test-secret", time.Hour))

	user, err := service.Me(context.Background(), &shared.Identity{ID: uuid.New()})
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestRequireAuthBlocksAnonymous(t *testing.T) {
	mw := Middleware{Tokens: NewTokenIssuer("test-secret", time.Hour)}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	mw.RequireAuth(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticatePopulatesIdentity(t *testing.T) {
	user := testUser(t, "hunter2", true)
	tokens := NewTokenIssuer("test-secret", time.Hour)
	token, err := tokens.Issue(user)
	require.NoError(t, err)

	mw := Middleware{Tokens: tokens}
	var seen *shared.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = shared.IdentityFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	mw.Authenticate(next).ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, seen)
	require.Equal(t, user.ID, seen.ID)
}

func TestRequireRoleForbidsOtherRoles(t *testing.T) {
	user := testUser(t, "hunter2", true)
	tokens := NewTokenIssuer("test-secret", time.Hour)
	token, err := tokens.Issue(user)
	require.NoError(t, err)

	mw := Middleware{Tokens: tokens}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := mw.Authenticate(mw.RequireRole("ADMIN")(next))

	req := httptest.NewRequest(http.MethodDelete, "/users/abc", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}
