package contracts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Contract model. Status is free-form; "active" is the default.
type Contract struct {
	ID          uuid.UUID       `json:"id"`
	ProjectID   uuid.UUID       `json:"projectId"`
	VendorID    uuid.UUID       `json:"vendorId"`
	ContractNo  string          `json:"contractNo"`
	Title       string          `json:"title"`
	Value       decimal.Decimal `json:"value"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     *time.Time      `json:"endDate,omitempty"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CreateContractInput for creating contracts.
type CreateContractInput struct {
	ProjectID   uuid.UUID
	VendorID    uuid.UUID
	ContractNo  string
	Title       string
	Value       decimal.Decimal
	StartDate   time.Time
	EndDate     *time.Time
	Description string
}

// UpdateContractInput applies partial updates; nil fields are left untouched.
type UpdateContractInput struct {
	Title       *string
	Value       *decimal.Decimal
	StartDate   *time.Time
	EndDate     *time.Time
	Description *string
	Status      *string
}

// ListContractsRequest filters contract listings.
type ListContractsRequest struct {
	ProjectID *uuid.UUID
	VendorID  *uuid.UUID
}
