package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubRepository struct {
	activeProjects  int64
	activeContracts int64
	pendingBills    int64
	pendingPayments int64
	reportDates     []time.Time
	reportCutoff    time.Time
	active          []ProjectSummary
	failCounts      bool
}

func (s *stubRepository) CountActiveProjects(context.Context) (int64, error) {
	if s.failCounts {
		return 0, errors.New("db down")
	}
	return s.activeProjects, nil
}

func (s *stubRepository) CountActiveContracts(context.Context) (int64, error) {
	return s.activeContracts, nil
}

func (s *stubRepository) CountPendingBills(context.Context) (int64, error) {
	return s.pendingBills, nil
}

func (s *stubRepository) CountPendingPayments(context.Context) (int64, error) {
	return s.pendingPayments, nil
}

func (s *stubRepository) CountReportsSince(_ context.Context, cutoff time.Time) (int64, error) {
	s.reportCutoff = cutoff
	var n int64
	for _, d := range s.reportDates {
		if !d.Before(cutoff) {
			n++
		}
	}
	return n, nil
}

func (s *stubRepository) ActiveProjectSummaries(_ context.Context, limit int) ([]ProjectSummary, error) {
	if len(s.active) > limit {
		return s.active[:limit], nil
	}
	return s.active, nil
}

func TestSummaryAggregatesCounts(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	cutoff := now.Add(-7 * 24 * time.Hour)
	repo := &stubRepository{
		activeProjects:  4,
		activeContracts: 6,
		pendingBills:    3,
		pendingPayments: 2,
		reportDates: []time.Time{
			now.Add(-time.Hour),
			now.Add(-6 * 24 * time.Hour),
		},
	}
	svc := NewService(repo)
	svc.now = func() time.Time { return now }

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(4), summary.ActiveProjects)
	require.Equal(t, int64(6), summary.ActiveContracts)
	require.Equal(t, int64(3), summary.PendingBills)
	require.Equal(t, int64(2), summary.PendingPayments)
	require.Equal(t, int64(2), summary.RecentReports)
	require.True(t, repo.reportCutoff.Equal(cutoff), "report window must trail seven days")
}

func TestSummaryRecentReportBoundary(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &stubRepository{
		reportDates: []time.Time{
			now.Add(-7 * 24 * time.Hour),             // exactly on the boundary, counted
			now.Add(-7*24*time.Hour - time.Second),   // one second too old, dropped
			now.Add(-time.Minute),
		},
	}
	svc := NewService(repo)
	svc.now = func() time.Time { return now }

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), summary.RecentReports)
}

func TestSummaryComputesProgress(t *testing.T) {
	repo := &stubRepository{
		active: []ProjectSummary{
			{ID: uuid.New(), Name: "Tower A", Code: "PRJ-001", TotalMilestones: 4, CompletedMilestones: 3},
			{ID: uuid.New(), Name: "Tower B", Code: "PRJ-002", TotalMilestones: 0, CompletedMilestones: 0},
			{ID: uuid.New(), Name: "Tower C", Code: "PRJ-003", TotalMilestones: 3, CompletedMilestones: 1},
		},
	}
	svc := NewService(repo)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.ActiveWork, 3)
	require.True(t, summary.ActiveWork[0].Progress.Equal(decimal.NewFromInt(75)))
	require.True(t, summary.ActiveWork[1].Progress.IsZero(), "no milestones means zero progress")
	require.True(t, summary.ActiveWork[2].Progress.Equal(decimal.RequireFromString("33.33")))
}

func TestSummaryFailsWhole(t *testing.T) {
	svc := NewService(&stubRepository{failCounts: true})
	_, err := svc.Summary(context.Background())
	require.Error(t, err)
}
