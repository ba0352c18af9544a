package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Reports count as recent for seven days.
const recentReportWindow = 7 * 24 * time.Hour

// Up to this many active projects appear on the dashboard.
const activeProjectLimit = 10

// RepositoryPort defines aggregate queries the dashboard needs.
type RepositoryPort interface {
	CountActiveProjects(ctx context.Context) (int64, error)
	CountActiveContracts(ctx context.Context) (int64, error)
	CountPendingBills(ctx context.Context) (int64, error)
	CountPendingPayments(ctx context.Context) (int64, error)
	CountReportsSince(ctx context.Context, cutoff time.Time) (int64, error)
	ActiveProjectSummaries(ctx context.Context, limit int) ([]ProjectSummary, error)
}

// Service assembles the dashboard summary.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Summary fans the count queries out concurrently and fails as a whole if any
// of them fails.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	var summary Summary
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		summary.ActiveProjects, err = s.repo.CountActiveProjects(ctx)
		return err
	})
	g.Go(func() (err error) {
		summary.ActiveContracts, err = s.repo.CountActiveContracts(ctx)
		return err
	})
	g.Go(func() (err error) {
		summary.PendingBills, err = s.repo.CountPendingBills(ctx)
		return err
	})
	g.Go(func() (err error) {
		summary.PendingPayments, err = s.repo.CountPendingPayments(ctx)
		return err
	})
	g.Go(func() (err error) {
		summary.RecentReports, err = s.repo.CountReportsSince(ctx, s.now().Add(-recentReportWindow))
		return err
	})
	g.Go(func() error {
		projects, err := s.repo.ActiveProjectSummaries(ctx, activeProjectLimit)
		if err != nil {
			return err
		}
		for i := range projects {
			projects[i].Progress = progress(projects[i].CompletedMilestones, projects[i].TotalMilestones)
		}
		summary.ActiveWork = projects
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &summary, nil
}

// progress is completed/total as a percentage; zero milestones means zero.
func progress(completed, total int64) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(completed).
		Div(decimal.NewFromInt(total)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}
