package variations

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/buildflow/buildflow/internal/platform/httpx"
	"github.com/buildflow/buildflow/internal/shared"
)

type memoryRepository struct {
	variations map[uuid.UUID]*Variation
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{variations: map[uuid.UUID]*Variation{}}
}

func (m *memoryRepository) Create(_ context.Context, input CreateVariationInput) (*Variation, error) {
	v := &Variation{
		ID:          uuid.New(),
		ContractID:  input.ContractID,
		VariationNo: input.VariationNo,
		Title:       input.Title,
		Description: input.Description,
		Amount:      input.Amount,
		Status:      StatusPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.variations[v.ID] = v
	return v, nil
}

func (m *memoryRepository) Get(_ context.Context, id uuid.UUID) (*Variation, error) {
	v, ok := m.variations[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *v
	return &copied, nil
}

func (m *memoryRepository) List(_ context.Context, req ListVariationsRequest) ([]Variation, error) {
	var out []Variation
	for _, v := range m.variations {
		if req.ContractID != nil && v.ContractID != *req.ContractID {
			continue
		}
		if req.Status != "" && v.Status != req.Status {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

func (m *memoryRepository) Decide(_ context.Context, id uuid.UUID, status string, actorID uuid.UUID, at time.Time) (*Variation, error) {
	v, ok := m.variations[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if v.Status != StatusPending {
		return nil, errAlreadyDecided
	}
	v.Status = status
	if status == StatusApproved {
		v.ApprovedByID = &actorID
		v.ApprovedAt = &at
	}
	copied := *v
	return &copied, nil
}

func (m *memoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	v, ok := m.variations[id]
	if !ok || v.Status != StatusPending {
		return shared.ErrNotFound
	}
	delete(m.variations, id)
	return nil
}

func newTestService(repo RepositoryPort) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(logger, repo, nil, nil)
}

func TestDecideApprovedStampsApprover(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)
	decidedAt := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return decidedAt }
	ctx := context.Background()

	v, err := svc.Create(ctx, CreateVariationInput{
		ContractID:  uuid.New(),
		VariationNo: "VAR-0001",
		Title:       "Extra foundation works",
		Amount:      decimal.NewFromInt(50000),
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, v.Status)
	require.Nil(t, v.ApprovedByID)
	require.Nil(t, v.ApprovedAt)

	approver := &shared.Identity{ID: uuid.New(), Email: "pm@buildflow.com", Role: "MANAGER"}
	decided, err := svc.Decide(ctx, approver, v.ID, StatusApproved)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, decided.Status)
	require.NotNil(t, decided.ApprovedByID)
	require.Equal(t, approver.ID, *decided.ApprovedByID)
	require.NotNil(t, decided.ApprovedAt)
	require.True(t, decided.ApprovedAt.Equal(decidedAt))
}

func TestDecideRejectedLeavesApproverEmpty(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	v, err := svc.Create(ctx, CreateVariationInput{
		ContractID:  uuid.New(),
		VariationNo: "VAR-0002",
		Title:       "Scope reduction",
		Amount:      decimal.NewFromInt(-12000),
	})
	require.NoError(t, err)

	actor := &shared.Identity{ID: uuid.New()}
	decided, err := svc.Decide(ctx, actor, v.ID, StatusRejected)
	require.NoError(t, err)
	require.Equal(t, StatusRejected, decided.Status)
	require.Nil(t, decided.ApprovedByID)
	require.Nil(t, decided.ApprovedAt)
}

func TestDecideRequiresIdentity(t *testing.T) {
	svc := newTestService(newMemoryRepository())
	_, err := svc.Decide(context.Background(), nil, uuid.New(), StatusApproved)
	require.ErrorIs(t, err, shared.ErrAuthRequired)
}

func TestDecideTwiceFails(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	v, err := svc.Create(ctx, CreateVariationInput{
		ContractID:  uuid.New(),
		VariationNo: "VAR-0003",
		Title:       "Retaining wall",
	})
	require.NoError(t, err)

	actor := &shared.Identity{ID: uuid.New()}
	_, err = svc.Decide(ctx, actor, v.ID, StatusApproved)
	require.NoError(t, err)
	_, err = svc.Decide(ctx, actor, v.ID, StatusRejected)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDecideUnknownStatus(t *testing.T) {
	svc := newTestService(newMemoryRepository())
	actor := &shared.Identity{ID: uuid.New()}
	_, err := svc.Decide(context.Background(), actor, uuid.New(), "MAYBE")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newMemoryRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateVariationInput{VariationNo: "VAR-0004", Title: "No contract"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(ctx, CreateVariationInput{ContractID: uuid.New(), Title: "No number"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(ctx, CreateVariationInput{ContractID: uuid.New(), VariationNo: "VAR-0005"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}
