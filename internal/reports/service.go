package reports

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/buildflow/buildflow/internal/platform/httpx"
	"github.com/buildflow/buildflow/internal/platform/storage"
	"github.com/buildflow/buildflow/internal/shared"
)

// RepositoryPort defines data access methods for daily reports.
type RepositoryPort interface {
	Create(ctx context.Context, input CreateReportInput) (*DailyReport, error)
	Get(ctx context.Context, id uuid.UUID) (*DailyReport, error)
	List(ctx context.Context, req ListReportsRequest) ([]DailyReport, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateReportInput) (*DailyReport, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddPhoto(ctx context.Context, reportID uuid.UUID, objectKey, caption string) (*ReportPhoto, error)
	ListPhotos(ctx context.Context, reportID uuid.UUID) ([]ReportPhoto, error)
}

// ObjectStore abstracts the photo blob storage.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

var _ ObjectStore = (*storage.Client)(nil)

// Service handles daily report business logic.
type Service struct {
	repo  RepositoryPort
	store ObjectStore
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, store ObjectStore) *Service {
	return &Service{repo: repo, store: store}
}

// Create records a daily report authored by the authenticated user.
func (s *Service) Create(ctx context.Context, identity *shared.Identity, input CreateReportInput) (*DailyReport, error) {
	if identity == nil {
		return nil, shared.ErrAuthRequired
	}
	if input.ProjectID == uuid.Nil {
		return nil, fmt.Errorf("%w: project ID required", httpx.ErrValidation)
	}
	if input.ReportDate.IsZero() {
		return nil, fmt.Errorf("%w: report date required", httpx.ErrValidation)
	}
	if input.WorkforceNo != nil && *input.WorkforceNo < 0 {
		return nil, fmt.Errorf("%w: workforce must not be negative", httpx.ErrValidation)
	}
	input.CreatedByID = identity.ID
	return s.repo.Create(ctx, input)
}

// Get returns a report with photos.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*DailyReport, error) {
	return s.repo.Get(ctx, id)
}

// List returns filtered reports.
func (s *Service) List(ctx context.Context, req ListReportsRequest) ([]DailyReport, error) {
	return s.repo.List(ctx, req)
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateReportInput) (*DailyReport, error) {
	if input.WorkforceNo != nil && *input.WorkforceNo < 0 {
		return nil, fmt.Errorf("%w: workforce must not be negative", httpx.ErrValidation)
	}
	return s.repo.Update(ctx, id, input)
}

// Delete removes a report.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// AttachPhoto uploads the image to object storage under a fresh key and
// records the attachment on the report.
func (s *Service) AttachPhoto(ctx context.Context, reportID uuid.UUID, filename, contentType, caption string, data []byte) (*ReportPhoto, error) {
	if _, err := s.repo.Get(ctx, reportID); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("reports/%s/%s%s", reportID, uuid.New(), path.Ext(filename))
	if _, err := s.store.Upload(ctx, key, data, contentType); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrStorage, err)
	}
	return s.repo.AddPhoto(ctx, reportID, key, caption)
}

// PhotoURL returns a short lived download URL for a photo object.
func (s *Service) PhotoURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	url, err := s.store.PresignedURL(ctx, key, expiry)
	if err != nil {
		return "", fmt.Errorf("%w: %v", httpx.ErrStorage, err)
	}
	return url, nil
}
