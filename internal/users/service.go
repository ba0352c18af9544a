package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/buildflow/buildflow/internal/platform/httpx"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	Create(ctx context.Context, input CreateUserInput) (*User, error)
	Get(ctx context.Context, id uuid.UUID) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*User, error)
}

// Service handles user management rules.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func validRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleEngineer, RoleViewer:
		return true
	}
	return false
}

// Create hashes the password and stores the account. Role defaults to ENGINEER.
func (s *Service) Create(ctx context.Context, email, password, name, role, phone string) (*User, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email required", httpx.ErrValidation)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", httpx.ErrValidation)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name required", httpx.ErrValidation)
	}
	if role == "" {
		role = RoleEngineer
	}
	if !validRole(role) {
		return nil, fmt.Errorf("%w: unknown role", httpx.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, CreateUserInput{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		Phone:        phone,
	})
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.Get(ctx, id)
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*User, error) {
	if input.Role != nil && !validRole(*input.Role) {
		return nil, fmt.Errorf("%w: unknown role", httpx.ErrValidation)
	}
	return s.repo.Update(ctx, id, input)
}
