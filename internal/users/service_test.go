package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/buildflow/buildflow/internal/platform/httpx"
	"github.com/buildflow/buildflow/internal/shared"
)

type memoryRepository struct {
	users  map[uuid.UUID]*User
	hashes map[uuid.UUID]string
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{users: map[uuid.UUID]*User{}, hashes: map[uuid.UUID]string{}}
}

func (r *memoryRepository) Create(_ context.Context, input CreateUserInput) (*User, error) {
	for _, u := range r.users {
		if u.Email == input.Email {
			return nil, httpx.ErrDuplicate
		}
	}
	u := &User{
		ID:        uuid.New(),
		Email:     input.Email,
		Name:      input.Name,
		Role:      input.Role,
		Phone:     input.Phone,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	r.users[u.ID] = u
	r.hashes[u.ID] = input.PasswordHash
	return u, nil
}

func (r *memoryRepository) Get(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (r *memoryRepository) List(_ context.Context) ([]User, error) {
	var out []User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *memoryRepository) Update(_ context.Context, id uuid.UUID, input UpdateUserInput) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if input.Name != nil {
		u.Name = *input.Name
	}
	if input.Role != nil {
		u.Role = *input.Role
	}
	if input.IsActive != nil {
		u.IsActive = *input.IsActive
	}
	return u, nil
}

func TestCreateHashesPasswordAndDefaultsRole(t *testing.T) {
	repo := newMemoryRepository()
	service := NewService(repo)

	u, err := service.Create(context.Background(), "engineer@buildflow.test", "hunter2", "Site Engineer", "", "")
	require.NoError(t, err)
	require.Equal(t, RoleEngineer, u.Role)
	require.True(t, u.IsActive)

	hash := repo.hashes[u.ID]
	require.NotEqual(t, "hunter2", hash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2")))
}

func TestCreateValidation(t *testing.T) {
	service := NewService(newMemoryRepository())

	_, err := service.Create(context.Background(), "", "hunter2", "Name", "", "")
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = service.Create(context.Background(), "a@b.test", "short", "Name", "", "")
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = service.Create(context.Background(), "a@b.test", "hunter2", "", "", "")
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = service.Create(context.Background(), "a@b.test", "hunter2", "Name", "SUPERUSER", "")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateDuplicateEmail(t *testing.T) {
	service := NewService(newMemoryRepository())

	_, err := service.Create(context.Background(), "a@b.test", "hunter2", "First", RoleAdmin, "")
	require.NoError(t, err)

	_, err = service.Create(context.Background(), "a@b.test", "hunter2", "Second", RoleAdmin, "")
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestUpdateRejectsUnknownRole(t *testing.T) {
	service := NewService(newMemoryRepository())

	role := "SUPERUSER"
	_, err := service.Update(context.Background(), uuid.New(), UpdateUserInput{Role: &role})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDeactivateUser(t *testing.T) {
	repo := newMemoryRepository()
	service := NewService(repo)

	u, err := service.Create(context.Background(), "a@b.test", "hunter2", "Name", RoleViewer, "")
	require.NoError(t, err)

	inactive := false
	updated, err := service.Update(context.Background(), u.ID, UpdateUserInput{IsActive: &inactive})
	require.NoError(t, err)
	require.False(t, updated.IsActive)
}
