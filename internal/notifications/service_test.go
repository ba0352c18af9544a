package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/buildflow/buildflow/internal/platform/httpx"
	"github.com/buildflow/buildflow/internal/shared"
)

type memoryRepository struct {
	notifications []*Notification
}

func (r *memoryRepository) Create(_ context.Context, input NewNotificationInput) (*Notification, error) {
	n := &Notification{
		ID:        uuid.New(),
		UserID:    input.UserID,
		Kind:      input.Kind,
		Title:     input.Title,
		Body:      input.Body,
		RefEntity: input.RefEntity,
		RefID:     input.RefID,
		CreatedAt: time.Now(),
	}
	r.notifications = append(r.notifications, n)
	return n, nil
}

func (r *memoryRepository) ListForUser(_ context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]Notification, error) {
	var out []Notification
	for _, n := range r.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.ReadAt != nil {
			continue
		}
		out = append(out, *n)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memoryRepository) MarkRead(_ context.Context, userID, id uuid.UUID) (*Notification, error) {
	for _, n := range r.notifications {
		if n.ID == id && n.UserID == userID {
			now := time.Now()
			n.ReadAt = &now
			return n, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryRepository) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	now := time.Now()
	for _, n := range r.notifications {
		if n.UserID == userID && n.ReadAt == nil {
			n.ReadAt = &now
			count++
		}
	}
	return count, nil
}

func (r *memoryRepository) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (r *memoryRepository) Exists(_ context.Context, userID uuid.UUID, kind string, refID uuid.UUID) (bool, error) {
	for _, n := range r.notifications {
		if n.UserID == userID && n.Kind == kind && n.RefID != nil && *n.RefID == refID {
			return true, nil
		}
	}
	return false, nil
}

func TestNotifyDefaultsKind(t *testing.T) {
	service := NewService(&memoryRepository{})

	n, err := service.Notify(context.Background(), NewNotificationInput{UserID: uuid.New(), Title: "Welcome"})
	require.NoError(t, err)
	require.Equal(t, KindInfo, n.Kind)
}

func TestNotifyValidation(t *testing.T) {
	service := NewService(&memoryRepository{})

	_, err := service.Notify(context.Background(), NewNotificationInput{Title: "No recipient"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = service.Notify(context.Background(), NewNotificationInput{UserID: uuid.New()})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestNotifyOnceDeduplicates(t *testing.T) {
	repo := &memoryRepository{}
	service := NewService(repo)
	userID := uuid.New()
	paymentID := uuid.New()
	input := NewNotificationInput{
		UserID:    userID,
		Kind:      KindPaymentOverdue,
		Title:     "Payment overdue",
		RefEntity: "payment",
		RefID:     &paymentID,
	}

	first, err := service.NotifyOnce(context.Background(), input)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := service.NotifyOnce(context.Background(), input)
	require.NoError(t, err)
	require.Nil(t, second)
	require.Len(t, repo.notifications, 1)
}

func TestListScopedToCaller(t *testing.T) {
	repo := &memoryRepository{}
	service := NewService(repo)
	alice := uuid.New()
	bob := uuid.New()

	_, err := service.Notify(context.Background(), NewNotificationInput{UserID: alice, Title: "For Alice"})
	require.NoError(t, err)
	_, err = service.Notify(context.Background(), NewNotificationInput{UserID: bob, Title: "For Bob"})
	require.NoError(t, err)

	list, err := service.List(context.Background(), &shared.Identity{ID: alice}, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "For Alice", list[0].Title)
}

func TestListRequiresIdentity(t *testing.T) {
	service := NewService(&memoryRepository{})

	_, err := service.List(context.Background(), nil, false)
	require.ErrorIs(t, err, shared.ErrAuthRequired)
}

func TestMarkAllReadClearsUnreadCount(t *testing.T) {
	service := NewService(&memoryRepository{})
	userID := uuid.New()
	identity := &shared.Identity{ID: userID}

	for i := 0; i < 3; i++ {
		_, err := service.Notify(context.Background(), NewNotificationInput{UserID: userID, Title: "Ping"})
		require.NoError(t, err)
	}

	count, err := service.UnreadCount(context.Background(), identity)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)

	marked, err := service.MarkAllRead(context.Background(), identity)
	require.NoError(t, err)
	require.EqualValues(t, 3, marked)

	count, err = service.UnreadCount(context.Background(), identity)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)
}
