package variations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/buildflow/buildflow/internal/platform/httpx"
	"github.com/buildflow/buildflow/internal/shared"
)

// errAlreadyDecided rejects a second decision on the same variation.
var errAlreadyDecided = fmt.Errorf("%w: variation already decided", httpx.ErrValidation)

// RepositoryPort defines data access methods for variations.
type RepositoryPort interface {
	Create(ctx context.Context, input CreateVariationInput) (*Variation, error)
	Get(ctx context.Context, id uuid.UUID) (*Variation, error)
	List(ctx context.Context, req ListVariationsRequest) ([]Variation, error)
	Decide(ctx context.Context, id uuid.UUID, status string, actorID uuid.UUID, at time.Time) (*Variation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service handles variation business logic.
type Service struct {
	logger   *slog.Logger
	repo     RepositoryPort
	audit    *shared.AuditLogger
	approval *shared.ApprovalRecorder
	now      func() time.Time
}

// NewService builds Service instance.
func NewService(logger *slog.Logger, repo RepositoryPort, audit *shared.AuditLogger, approval *shared.ApprovalRecorder) *Service {
	return &Service{logger: logger, repo: repo, audit: audit, approval: approval, now: time.Now}
}

// Create raises a pending variation against a contract.
func (s *Service) Create(ctx context.Context, input CreateVariationInput) (*Variation, error) {
	if input.ContractID == uuid.Nil {
		return nil, fmt.Errorf("%w: contract ID required", httpx.ErrValidation)
	}
	if input.VariationNo == "" {
		return nil, fmt.Errorf("%w: variation number required", httpx.ErrValidation)
	}
	if input.Title == "" {
		return nil, fmt.Errorf("%w: variation title required", httpx.ErrValidation)
	}
	return s.repo.Create(ctx, input)
}

// Get returns a variation by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Variation, error) {
	return s.repo.Get(ctx, id)
}

// List returns filtered variations.
func (s *Service) List(ctx context.Context, req ListVariationsRequest) ([]Variation, error) {
	return s.repo.List(ctx, req)
}

// Decide approves or rejects a pending variation. Approval stamps the acting
// user and the decision time on the record.
func (s *Service) Decide(ctx context.Context, identity *shared.Identity, id uuid.UUID, status string) (*Variation, error) {
	if identity == nil {
		return nil, shared.ErrAuthRequired
	}
	if status != StatusApproved && status != StatusRejected {
		return nil, fmt.Errorf("%w: decision must be APPROVED or REJECTED", httpx.ErrValidation)
	}
	variation, err := s.repo.Decide(ctx, id, status, identity.ID, s.now())
	if err != nil {
		return nil, err
	}

	action := shared.ApprovalApprove
	if status == StatusRejected {
		action = shared.ApprovalReject
	}
	if err := s.approval.Record(ctx, shared.ApprovalLog{
		Module:  "variation",
		RefID:   id,
		ActorID: identity.ID,
		Action:  action,
	}); err != nil {
		s.logger.Warn("record variation approval", slog.Any("error", err))
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  identity.ID,
		Action:   "variation.decide",
		Entity:   "variation",
		EntityID: id.String(),
		Meta:     map[string]any{"status": status},
	}); err != nil {
		s.logger.Warn("record variation audit", slog.Any("error", err))
	}
	return variation, nil
}

// Delete removes a pending variation.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// History returns the approval trail for a variation.
func (s *Service) History(ctx context.Context, id uuid.UUID) ([]shared.ApprovalLog, error) {
	return s.approval.List(ctx, "variation", id)
}
