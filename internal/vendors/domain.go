package vendors

import (
	"time"

	"github.com/google/uuid"
)

// Vendor model. Type is one of contractor/supplier/consultant.
type Vendor struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Code          string    `json:"code,omitempty"`
	Type          string    `json:"type"`
	ContactPerson string    `json:"contactPerson,omitempty"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	TaxID         string    `json:"taxId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CreateVendorInput for creating vendors.
type CreateVendorInput struct {
	Name          string
	Code          string
	Type          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	TaxID         string
}

// UpdateVendorInput applies partial updates; nil fields are left untouched.
type UpdateVendorInput struct {
	Name          *string
	Type          *string
	ContactPerson *string
	Email         *string
	Phone         *string
	Address       *string
	TaxID         *string
}

// ListVendorsRequest filters vendor listings.
type ListVendorsRequest struct {
	Search string
	Type   string
}
