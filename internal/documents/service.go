package documents

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/buildflow/buildflow/internal/platform/cache"
	"github.com/buildflow/buildflow/internal/platform/httpx"
	"github.com/buildflow/buildflow/internal/platform/storage"
	"github.com/buildflow/buildflow/internal/shared"
)

// RepositoryPort defines data access methods for document metadata.
type RepositoryPort interface {
	Create(ctx context.Context, d Document) (*Document, error)
	Get(ctx context.Context, id uuid.UUID) (*Document, error)
	List(ctx context.Context, req ListDocumentsRequest) ([]Document, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateDocumentInput) (*Document, error)
	Delete(ctx context.Context, id uuid.UUID) (*Document, error)
}

// ObjectStore abstracts the document blob storage.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Remove(ctx context.Context, key string) error
}

var _ ObjectStore = (*storage.Client)(nil)

// UploadInput carries a file and its metadata.
type UploadInput struct {
	ProjectID   uuid.UUID
	Name        string
	Category    string
	ContentType string
	Data        []byte
}

func validCategory(c string) bool {
	switch c {
	case CategoryDrawing, CategoryContract, CategoryReport, CategoryInvoice, CategoryOther:
		return true
	}
	return false
}

// Service handles document upload, listing and download URLs. Presigned URLs
// are cached for slightly less than their storage-side expiry so a cached URL
// is never handed out after it stops working.
type Service struct {
	logger       *slog.Logger
	repo         RepositoryPort
	store        ObjectStore
	urls         *cache.KV
	signedURLTTL time.Duration
}

// NewService builds Service instance.
func NewService(logger *slog.Logger, repo RepositoryPort, store ObjectStore, urls *cache.KV, signedURLTTL time.Duration) *Service {
	if signedURLTTL <= 0 {
		signedURLTTL = time.Hour
	}
	return &Service{logger: logger, repo: repo, store: store, urls: urls, signedURLTTL: signedURLTTL}
}

// Upload stores the payload in object storage and records its metadata.
func (s *Service) Upload(ctx context.Context, identity *shared.Identity, input UploadInput) (*Document, error) {
	if identity == nil {
		return nil, shared.ErrAuthRequired
	}
	if input.ProjectID == uuid.Nil {
		return nil, fmt.Errorf("%w: project ID required", httpx.ErrValidation)
	}
	if input.Name == "" {
		return nil, fmt.Errorf("%w: document name required", httpx.ErrValidation)
	}
	if len(input.Data) == 0 {
		return nil, fmt.Errorf("%w: empty file", httpx.ErrValidation)
	}
	if input.Category == "" {
		input.Category = CategoryOther
	}
	if !validCategory(input.Category) {
		return nil, fmt.Errorf("%w: unknown document category", httpx.ErrValidation)
	}

	key := fmt.Sprintf("documents/%s/%s%s", input.ProjectID, uuid.New(), path.Ext(input.Name))
	if _, err := s.store.Upload(ctx, key, input.Data, input.ContentType); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrStorage, err)
	}
	doc, err := s.repo.Create(ctx, Document{
		ProjectID:    input.ProjectID,
		Name:         input.Name,
		Category:     input.Category,
		ObjectKey:    key,
		ContentType:  input.ContentType,
		SizeBytes:    int64(len(input.Data)),
		UploadedByID: identity.ID,
	})
	if err != nil {
		// Metadata failed; don't leave the blob orphaned.
		if rmErr := s.store.Remove(ctx, key); rmErr != nil {
			s.logger.Warn("cleanup orphaned object", slog.String("key", key), slog.Any("error", rmErr))
		}
		return nil, err
	}
	return doc, nil
}

// Get returns document metadata.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Document, error) {
	return s.repo.Get(ctx, id)
}

// List returns filtered documents.
func (s *Service) List(ctx context.Context, req ListDocumentsRequest) ([]Document, error) {
	if req.Category != "" && !validCategory(req.Category) {
		return nil, fmt.Errorf("%w: unknown document category", httpx.ErrValidation)
	}
	return s.repo.List(ctx, req)
}

// Update renames or recategorizes a document. The stored object is untouched.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateDocumentInput) (*Document, error) {
	if input.Name != nil && *input.Name == "" {
		return nil, fmt.Errorf("%w: document name required", httpx.ErrValidation)
	}
	if input.Category != nil && !validCategory(*input.Category) {
		return nil, fmt.Errorf("%w: unknown document category", httpx.ErrValidation)
	}
	return s.repo.Update(ctx, id, input)
}

// DownloadURL returns a presigned URL for the document, serving from cache
// when a still-valid URL exists.
func (s *Service) DownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	cacheKey := "url:" + doc.ID.String()
	if url, ok, err := s.urls.Get(ctx, cacheKey); err == nil && ok {
		return url, nil
	} else if err != nil {
		s.logger.Warn("url cache get", slog.Any("error", err))
	}
	url, err := s.store.PresignedURL(ctx, doc.ObjectKey, s.signedURLTTL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", httpx.ErrStorage, err)
	}
	if err := s.urls.Set(ctx, cacheKey, url, s.signedURLTTL-time.Minute); err != nil {
		s.logger.Warn("url cache set", slog.Any("error", err))
	}
	return url, nil
}

// Delete removes the metadata row, the cached URL, and the stored object.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if err := s.urls.Delete(ctx, "url:"+doc.ID.String()); err != nil {
		s.logger.Warn("url cache delete", slog.Any("error", err))
	}
	if err := s.store.Remove(ctx, doc.ObjectKey); err != nil {
		s.logger.Warn("remove stored object", slog.String("key", doc.ObjectKey), slog.Any("error", err))
	}
	return nil
}
