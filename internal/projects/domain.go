package projects

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Project statuses are free-form in the schema; "active" is the default.
const StatusActive = "active"

// Project model.
type Project struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Code        string           `json:"code"`
	Description string           `json:"description,omitempty"`
	Location    string           `json:"location,omitempty"`
	StartDate   *time.Time       `json:"startDate,omitempty"`
	EndDate     *time.Time       `json:"endDate,omitempty"`
	Budget      *decimal.Decimal `json:"budget,omitempty"`
	Status      string           `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// CreateProjectInput for creating projects.
type CreateProjectInput struct {
	Name        string
	Code        string
	Description string
	Location    string
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      *decimal.Decimal
}

// UpdateProjectInput applies partial updates; nil fields are left untouched.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Location    *string
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      *decimal.Decimal
	Status      *string
}

// ListProjectsRequest filters project listings.
type ListProjectsRequest struct {
	Search  string
	Status  string
	Page    int
	PerPage int
}
