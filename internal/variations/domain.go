package variations

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variation statuses.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Variation is a change order against a contract. Approval stamps the acting
// user and timestamp.
type Variation struct {
	ID           uuid.UUID       `json:"id"`
	ContractID   uuid.UUID       `json:"contractId"`
	VariationNo  string          `json:"variationNo"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	ApprovedByID *uuid.UUID      `json:"approvedById,omitempty"`
	ApprovedAt   *time.Time      `json:"approvedAt,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// CreateVariationInput for raising variations.
type CreateVariationInput struct {
	ContractID  uuid.UUID
	VariationNo string
	Title       string
	Description string
	Amount      decimal.Decimal
}

// ListVariationsRequest filters variation listings.
type ListVariationsRequest struct {
	ContractID *uuid.UUID
	Status     string
}
