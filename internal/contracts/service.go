package contracts

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/buildflow/buildflow/internal/platform/httpx"
)

// RepositoryPort defines data access methods for contracts.
type RepositoryPort interface {
	Create(ctx context.Context, input CreateContractInput) (*Contract, error)
	Get(ctx context.Context, id uuid.UUID) (*Contract, error)
	List(ctx context.Context, req ListContractsRequest) ([]Contract, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateContractInput) (*Contract, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service handles contract business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create stores a new contract.
func (s *Service) Create(ctx context.Context, input CreateContractInput) (*Contract, error) {
	if input.ProjectID == uuid.Nil {
		return nil, fmt.Errorf("%w: project ID required", httpx.ErrValidation)
	}
	if input.VendorID == uuid.Nil {
		return nil, fmt.Errorf("%w: vendor ID required", httpx.ErrValidation)
	}
	if input.ContractNo == "" {
		return nil, fmt.Errorf("%w: contract number required", httpx.ErrValidation)
	}
	if input.Title == "" {
		return nil, fmt.Errorf("%w: contract title required", httpx.ErrValidation)
	}
	if input.Value.IsNegative() {
		return nil, fmt.Errorf("%w: contract value must not be negative", httpx.ErrValidation)
	}
	if input.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: start date required", httpx.ErrValidation)
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return nil, fmt.Errorf("%w: end date before start date", httpx.ErrValidation)
	}
	return s.repo.Create(ctx, input)
}

// Get returns a contract by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Contract, error) {
	return s.repo.Get(ctx, id)
}

// List returns filtered contracts.
func (s *Service) List(ctx context.Context, req ListContractsRequest) ([]Contract, error) {
	return s.repo.List(ctx, req)
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateContractInput) (*Contract, error) {
	if input.Value != nil && input.Value.IsNegative() {
		return nil, fmt.Errorf("%w: contract value must not be negative", httpx.ErrValidation)
	}
	return s.repo.Update(ctx, id, input)
}

// Delete removes a contract.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
