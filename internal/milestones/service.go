package milestones

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/buildflow/buildflow/internal/platform/httpx"
)

var hundred = decimal.NewFromInt(100)

// RepositoryPort defines data access methods for milestones.
type RepositoryPort interface {
	Create(ctx context.Context, input CreateMilestoneInput) (*Milestone, error)
	Get(ctx context.Context, id uuid.UUID) (*Milestone, error)
	List(ctx context.Context, req ListMilestonesRequest) ([]Milestone, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateMilestoneInput) (*Milestone, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service handles milestone business logic.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create stores a new milestone.
func (s *Service) Create(ctx context.Context, input CreateMilestoneInput) (*Milestone, error) {
	if input.ProjectID == uuid.Nil {
		return nil, fmt.Errorf("%w: project ID required", httpx.ErrValidation)
	}
	if input.Name == "" {
		return nil, fmt.Errorf("%w: milestone name required", httpx.ErrValidation)
	}
	if input.Percentage != nil && (input.Percentage.IsNegative() || input.Percentage.GreaterThan(hundred)) {
		return nil, fmt.Errorf("%w: percentage must be between 0 and 100", httpx.ErrValidation)
	}
	return s.repo.Create(ctx, input)
}

// Get returns a milestone by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Milestone, error) {
	return s.repo.Get(ctx, id)
}

// List returns filtered milestones.
func (s *Service) List(ctx context.Context, req ListMilestonesRequest) ([]Milestone, error) {
	return s.repo.List(ctx, req)
}

// Update applies a partial update. Moving a milestone to completed stamps
// completedAt unless the caller supplied one.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateMilestoneInput) (*Milestone, error) {
	if input.Status != nil {
		switch *input.Status {
		case StatusPending, StatusCompleted:
		default:
			return nil, fmt.Errorf("%w: unknown milestone status", httpx.ErrValidation)
		}
		if *input.Status == StatusCompleted && input.CompletedAt == nil {
			now := s.now()
			input.CompletedAt = &now
		}
	}
	return s.repo.Update(ctx, id, input)
}

// Delete removes a milestone.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
