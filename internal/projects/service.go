package projects

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/buildflow/buildflow/internal/platform/httpx"
	"github.com/buildflow/buildflow/internal/shared"
)

// RepositoryPort defines data access methods for projects.
type RepositoryPort interface {
	Create(ctx context.Context, input CreateProjectInput) (*Project, error)
	Get(ctx context.Context, id uuid.UUID) (*Project, error)
	List(ctx context.Context, req ListProjectsRequest, limit, offset int) ([]Project, int, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProjectInput) (*Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service handles project business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create stores a new project.
func (s *Service) Create(ctx context.Context, input CreateProjectInput) (*Project, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: project name required", httpx.ErrValidation)
	}
	if input.Code == "" {
		return nil, fmt.Errorf("%w: project code required", httpx.ErrValidation)
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, fmt.Errorf("%w: end date before start date", httpx.ErrValidation)
	}
	return s.repo.Create(ctx, input)
}

// Get returns a project by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Project, error) {
	return s.repo.Get(ctx, id)
}

// List returns one page of filtered projects with pagination metadata.
func (s *Service) List(ctx context.Context, req ListProjectsRequest) ([]Project, shared.Pagination, error) {
	page := shared.NewPagination(req.Page, req.PerPage, 0)
	list, total, err := s.repo.List(ctx, req, page.PerPage, page.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(req.Page, req.PerPage, total), nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateProjectInput) (*Project, error) {
	return s.repo.Update(ctx, id, input)
}

// Delete removes a project.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
