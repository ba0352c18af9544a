package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/buildflow/buildflow/internal/platform/httpx"
	"github.com/buildflow/buildflow/internal/shared"
)

// Listings are capped so a noisy account cannot pull unbounded history.
const maxListLimit = 50

// RepositoryPort defines data access methods for notifications.
type RepositoryPort interface {
	Create(ctx context.Context, input NewNotificationInput) (*Notification, error)
	ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) (*Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	Exists(ctx context.Context, userID uuid.UUID, kind string, refID uuid.UUID) (bool, error)
}

// Service handles notification business logic. Users only ever see their own
// notifications; the recipient always comes from the authenticated identity.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Notify raises a notification for a user. Called by other services and jobs.
func (s *Service) Notify(ctx context.Context, input NewNotificationInput) (*Notification, error) {
	if input.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: user ID required", httpx.ErrValidation)
	}
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title required", httpx.ErrValidation)
	}
	if input.Kind == "" {
		input.Kind = KindInfo
	}
	return s.repo.Create(ctx, input)
}

// NotifyOnce raises a notification unless one of the same kind already
// references the entity for the user.
func (s *Service) NotifyOnce(ctx context.Context, input NewNotificationInput) (*Notification, error) {
	if input.RefID != nil {
		exists, err := s.repo.Exists(ctx, input.UserID, input.Kind, *input.RefID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, nil
		}
	}
	return s.Notify(ctx, input)
}

// List returns the caller's notifications.
func (s *Service) List(ctx context.Context, identity *shared.Identity, unreadOnly bool) ([]Notification, error) {
	if identity == nil {
		return nil, shared.ErrAuthRequired
	}
	return s.repo.ListForUser(ctx, identity.ID, unreadOnly, maxListLimit)
}

// MarkRead marks one of the caller's notifications as read.
func (s *Service) MarkRead(ctx context.Context, identity *shared.Identity, id uuid.UUID) (*Notification, error) {
	if identity == nil {
		return nil, shared.ErrAuthRequired
	}
	return s.repo.MarkRead(ctx, identity.ID, id)
}

// MarkAllRead marks every unread notification of the caller as read.
func (s *Service) MarkAllRead(ctx context.Context, identity *shared.Identity) (int64, error) {
	if identity == nil {
		return 0, shared.ErrAuthRequired
	}
	return s.repo.MarkAllRead(ctx, identity.ID)
}

// UnreadCount returns the caller's unread notification count.
func (s *Service) UnreadCount(ctx context.Context, identity *shared.Identity) (int64, error) {
	if identity == nil {
		return 0, shared.ErrAuthRequired
	}
	return s.repo.CountUnread(ctx, identity.ID)
}
