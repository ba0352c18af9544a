package projects

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/buildflow/buildflow/internal/platform/httpx"
	"github.com/buildflow/buildflow/internal/shared"
)

type memoryRepository struct {
	projects []*Project
}

func (r *memoryRepository) Create(_ context.Context, input CreateProjectInput) (*Project, error) {
	p := &Project{
		ID:        uuid.New(),
		Name:      input.Name,
		Code:      input.Code,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Budget:    input.Budget,
		Status:    StatusActive,
		CreatedAt: time.Now(),
	}
	r.projects = append(r.projects, p)
	return p, nil
}

func (r *memoryRepository) Get(_ context.Context, id uuid.UUID) (*Project, error) {
	for _, p := range r.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryRepository) List(_ context.Context, req ListProjectsRequest, limit, offset int) ([]Project, int, error) {
	var matched []Project
	for _, p := range r.projects {
		if req.Status != "" && p.Status != req.Status {
			continue
		}
		matched = append(matched, *p)
	}
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (r *memoryRepository) Update(_ context.Context, id uuid.UUID, input UpdateProjectInput) (*Project, error) {
	p, err := r.Get(context.Background(), id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.Status != nil {
		p.Status = *input.Status
	}
	return p, nil
}

func (r *memoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	for i, p := range r.projects {
		if p.ID == id {
			r.projects = append(r.projects[:i], r.projects[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

func seedProjects(t *testing.T, service *Service, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := service.Create(context.Background(), CreateProjectInput{
			Name: fmt.Sprintf("Tower %d", i+1),
			Code: fmt.Sprintf("PRJ-%03d", i+1),
		})
		require.NoError(t, err)
	}
}

func TestCreateValidation(t *testing.T) {
	service := NewService(&memoryRepository{})

	_, err := service.Create(context.Background(), CreateProjectInput{Code: "PRJ-001"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = service.Create(context.Background(), CreateProjectInput{Name: "Riverside"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, -1, 0)
	_, err = service.Create(context.Background(), CreateProjectInput{
		Name:      "Riverside",
		Code:      "PRJ-001",
		StartDate: &start,
		EndDate:   &end,
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestListPaginates(t *testing.T) {
	service := NewService(&memoryRepository{})
	seedProjects(t, service, 25)

	list, meta, err := service.List(context.Background(), ListProjectsRequest{Page: 2, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, list, 10)
	require.Equal(t, 2, meta.Page)
	require.Equal(t, 25, meta.Total)
	require.Equal(t, 3, meta.TotalPages)

	list, meta, err = service.List(context.Background(), ListProjectsRequest{Page: 3, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, list, 5)
	require.Equal(t, 3, meta.TotalPages)
}

func TestListDefaultsPagination(t *testing.T) {
	service := NewService(&memoryRepository{})
	seedProjects(t, service, 5)

	list, meta, err := service.List(context.Background(), ListProjectsRequest{})
	require.NoError(t, err)
	require.Len(t, list, 5)
	require.Equal(t, 1, meta.Page)
	require.Equal(t, 20, meta.PerPage)
	require.Equal(t, 1, meta.TotalPages)
}
