package milestones

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/buildflow/buildflow/internal/platform/httpx"
	"github.com/buildflow/buildflow/internal/shared"
)

type memoryRepository struct {
	milestones map[uuid.UUID]*Milestone
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{milestones: map[uuid.UUID]*Milestone{}}
}

func (r *memoryRepository) Create(_ context.Context, input CreateMilestoneInput) (*Milestone, error) {
	m := &Milestone{
		ID:          uuid.New(),
		ProjectID:   input.ProjectID,
		ContractID:  input.ContractID,
		Name:        input.Name,
		Description: input.Description,
		DueDate:     input.DueDate,
		Amount:      input.Amount,
		Percentage:  input.Percentage,
		Status:      StatusPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	r.milestones[m.ID] = m
	return m, nil
}

func (r *memoryRepository) Get(_ context.Context, id uuid.UUID) (*Milestone, error) {
	m, ok := r.milestones[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return m, nil
}

func (r *memoryRepository) List(_ context.Context, req ListMilestonesRequest) ([]Milestone, error) {
	var out []Milestone
	for _, m := range r.milestones {
		if req.ProjectID != nil && m.ProjectID != *req.ProjectID {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func (r *memoryRepository) Update(_ context.Context, id uuid.UUID, input UpdateMilestoneInput) (*Milestone, error) {
	m, ok := r.milestones[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if input.Name != nil {
		m.Name = *input.Name
	}
	if input.Status != nil {
		m.Status = *input.Status
	}
	if input.CompletedAt != nil {
		m.CompletedAt = input.CompletedAt
	}
	m.UpdatedAt = time.Now()
	return m, nil
}

func (r *memoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.milestones[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.milestones, id)
	return nil
}

func TestCreateValidation(t *testing.T) {
	service := NewService(newMemoryRepository())

	_, err := service.Create(context.Background(), CreateMilestoneInput{Name: "Foundation"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = service.Create(context.Background(), CreateMilestoneInput{ProjectID: uuid.New()})
	require.ErrorIs(t, err, httpx.ErrValidation)

	over := decimal.NewFromInt(120)
	_, err = service.Create(context.Background(), CreateMilestoneInput{
		ProjectID:  uuid.New(),
		Name:       "Foundation",
		Percentage: &over,
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCompletingStampsCompletedAt(t *testing.T) {
	repo := newMemoryRepository()
	service := NewService(repo)
	completedAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return completedAt }

	m, err := service.Create(context.Background(), CreateMilestoneInput{ProjectID: uuid.New(), Name: "Plinth level"})
	require.NoError(t, err)
	require.Nil(t, m.CompletedAt)

	status := StatusCompleted
	updated, err := service.Update(context.Background(), m.ID, UpdateMilestoneInput{Status: &status})
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)
	require.True(t, updated.CompletedAt.Equal(completedAt))
}

func TestCompletingKeepsCallerTimestamp(t *testing.T) {
	repo := newMemoryRepository()
	service := NewService(repo)

	m, err := service.Create(context.Background(), CreateMilestoneInput{ProjectID: uuid.New(), Name: "First slab"})
	require.NoError(t, err)

	status := StatusCompleted
	supplied := time.Date(2026, 2, 1, 17, 30, 0, 0, time.UTC)
	updated, err := service.Update(context.Background(), m.ID, UpdateMilestoneInput{Status: &status, CompletedAt: &supplied})
	require.NoError(t, err)
	require.True(t, updated.CompletedAt.Equal(supplied))
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	service := NewService(newMemoryRepository())

	status := "done"
	_, err := service.Update(context.Background(), uuid.New(), UpdateMilestoneInput{Status: &status})
	require.ErrorIs(t, err, httpx.ErrValidation)
}
