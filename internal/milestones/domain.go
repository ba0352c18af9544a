package milestones

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Milestone statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Milestone model.
type Milestone struct {
	ID          uuid.UUID        `json:"id"`
	ProjectID   uuid.UUID        `json:"projectId"`
	ContractID  *uuid.UUID       `json:"contractId,omitempty"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	DueDate     *time.Time       `json:"dueDate,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Percentage  *decimal.Decimal `json:"percentage,omitempty"`
	Status      string           `json:"status"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// CreateMilestoneInput for creating milestones.
type CreateMilestoneInput struct {
	ProjectID   uuid.UUID
	ContractID  *uuid.UUID
	Name        string
	Description string
	DueDate     *time.Time
	Amount      *decimal.Decimal
	Percentage  *decimal.Decimal
}

// UpdateMilestoneInput applies partial updates; nil fields are left untouched.
type UpdateMilestoneInput struct {
	Name        *string
	Description *string
	DueDate     *time.Time
	Amount      *decimal.Decimal
	Percentage  *decimal.Decimal
	Status      *string
	CompletedAt *time.Time
}

// ListMilestonesRequest filters milestone listings.
type ListMilestonesRequest struct {
	ProjectID  *uuid.UUID
	ContractID *uuid.UUID
}
