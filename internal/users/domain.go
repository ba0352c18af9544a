package users

import (
	"time"

	"github.com/google/uuid"
)

// Roles assignable to a user account.
const (
	RoleAdmin    = "ADMIN"
	RoleManager  = "MANAGER"
	RoleEngineer = "ENGINEER"
	RoleViewer   = "VIEWER"
)

// User model.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Phone     string    `json:"phone,omitempty"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateUserInput for creating users.
type CreateUserInput struct {
	Email        string
	PasswordHash string
	Name         string
	Role         string
	Phone        string
}

// UpdateUserInput applies partial updates; nil fields are left untouched.
type UpdateUserInput struct {
	Name     *string
	Role     *string
	Phone    *string
	IsActive *bool
}
