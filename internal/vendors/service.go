package vendors

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/buildflow/buildflow/internal/platform/httpx"
)

// RepositoryPort defines data access methods for vendors.
type RepositoryPort interface {
	Create(ctx context.Context, input CreateVendorInput) (*Vendor, error)
	Get(ctx context.Context, id uuid.UUID) (*Vendor, error)
	List(ctx context.Context, req ListVendorsRequest) ([]Vendor, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateVendorInput) (*Vendor, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service handles vendor business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create stores a new vendor.
func (s *Service) Create(ctx context.Context, input CreateVendorInput) (*Vendor, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: vendor name required", httpx.ErrValidation)
	}
	if input.Type == "" {
		return nil, fmt.Errorf("%w: vendor type required", httpx.ErrValidation)
	}
	return s.repo.Create(ctx, input)
}

// Get returns a vendor by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Vendor, error) {
	return s.repo.Get(ctx, id)
}

// List returns filtered vendors.
func (s *Service) List(ctx context.Context, req ListVendorsRequest) ([]Vendor, error) {
	return s.repo.List(ctx, req)
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateVendorInput) (*Vendor, error) {
	return s.repo.Update(ctx, id, input)
}

// Delete removes a vendor.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
