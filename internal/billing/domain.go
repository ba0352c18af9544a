package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RA bill statuses. Transitions only move forward; see CanTransition.
const (
	StatusDraft       = "DRAFT"
	StatusSubmitted   = "SUBMITTED"
	StatusUnderReview = "UNDER_REVIEW"
	StatusApproved    = "APPROVED"
	StatusRejected    = "REJECTED"
	StatusPaid        = "PAID"
)

// Payment statuses.
const (
	PaymentPending  = "PENDING"
	PaymentCleared  = "CLEARED"
	PaymentRejected = "REJECTED"
)

// billTransitions is the single source of truth for legal status moves.
var billTransitions = map[string][]string{
	StatusDraft:       {StatusSubmitted},
	StatusSubmitted:   {StatusUnderReview, StatusRejected},
	StatusUnderReview: {StatusApproved, StatusRejected},
	StatusApproved:    {StatusPaid},
	StatusRejected:    {},
	StatusPaid:        {},
}

// ValidStatus reports whether s is a known bill status.
func ValidStatus(s string) bool {
	_, ok := billTransitions[s]
	return ok
}

// CanTransition reports whether a bill may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range billTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// RABill is a running account bill raised against a contract. Total is always
// the sum of its item amounts, recomputed whenever items change.
type RABill struct {
	ID         uuid.UUID       `json:"id"`
	ProjectID  uuid.UUID       `json:"projectId"`
	ContractID uuid.UUID       `json:"contractId"`
	BillNo     string          `json:"billNo"`
	Title      string          `json:"title,omitempty"`
	PeriodFrom *time.Time      `json:"periodFrom,omitempty"`
	PeriodTo   *time.Time      `json:"periodTo,omitempty"`
	Status     string          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	Notes      string          `json:"notes,omitempty"`
	Items      []BillItem      `json:"items,omitempty"`
	Payments   []Payment       `json:"payments,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// BillItem is a line on an RA bill. Amount = Quantity * Rate, fixed at insert.
type BillItem struct {
	ID          uuid.UUID        `json:"id"`
	BillID      uuid.UUID        `json:"billId"`
	BoqRef      string           `json:"boqRef,omitempty"`
	Description string           `json:"description"`
	Unit        string           `json:"unit,omitempty"`
	Quantity    decimal.Decimal  `json:"quantity"`
	Rate        decimal.Decimal  `json:"rate"`
	Amount      decimal.Decimal  `json:"amount"`
	PreviousQty *decimal.Decimal `json:"previousQty,omitempty"`
	CurrentQty  *decimal.Decimal `json:"currentQty,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// Payment records money moved out. Usually tied to an RA bill, but advances
// and retention releases have no bill, so the link is optional.
type Payment struct {
	ID        uuid.UUID       `json:"id"`
	BillID    *uuid.UUID      `json:"billId,omitempty"`
	PaymentNo string          `json:"paymentNo"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method,omitempty"`
	Reference string          `json:"reference,omitempty"`
	Status    string          `json:"status"`
	Notes     string          `json:"notes,omitempty"`
	PaidAt    *time.Time      `json:"paidAt,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// CreateBillInput for opening a new draft bill.
type CreateBillInput struct {
	ProjectID  uuid.UUID
	ContractID uuid.UUID
	BillNo     string
	Title      string
	PeriodFrom *time.Time
	PeriodTo   *time.Time
	Notes      string
}

// UpdateBillInput applies partial updates to a draft bill; nil fields are
// left untouched. Status changes go through Transition, never here.
type UpdateBillInput struct {
	BillNo     *string
	Title      *string
	PeriodFrom *time.Time
	PeriodTo   *time.Time
	Notes      *string
}

// NewItemInput describes one line to append to a bill.
type NewItemInput struct {
	BoqRef      string
	Description string
	Unit        string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	PreviousQty *decimal.Decimal
	CurrentQty  *decimal.Decimal
}

// CreatePaymentInput for recording a payment, optionally against a bill.
type CreatePaymentInput struct {
	BillID    *uuid.UUID
	PaymentNo string
	Amount    decimal.Decimal
	Method    string
	Reference string
	Notes     string
	PaidAt    *time.Time
}

// ListBillsRequest filters bill listings.
type ListBillsRequest struct {
	ProjectID  *uuid.UUID
	ContractID *uuid.UUID
	Status     string
}
