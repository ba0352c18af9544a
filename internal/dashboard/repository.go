package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides aggregate queries for the dashboard.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

// CountActiveProjects returns the number of projects with status "active".
func (r *Repository) CountActiveProjects(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM projects WHERE status = 'active'`)
}

// CountActiveContracts returns the number of contracts with status "active".
func (r *Repository) CountActiveContracts(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM contracts WHERE status = 'active'`)
}

// CountPendingBills returns bills awaiting review.
func (r *Repository) CountPendingBills(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM ra_bills WHERE status IN ('SUBMITTED', 'UNDER_REVIEW')`)
}

// CountPendingPayments returns payments still in PENDING.
func (r *Repository) CountPendingPayments(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM payments WHERE status = 'PENDING'`)
}

// CountReportsSince returns daily reports dated at or after the cutoff.
func (r *Repository) CountReportsSince(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM daily_reports WHERE report_date >= $1`, cutoff)
}

// ActiveProjectSummaries returns up to limit active projects with their
// milestone counts, most recently started first.
func (r *Repository) ActiveProjectSummaries(ctx context.Context, limit int) ([]ProjectSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name, p.code,
			COUNT(m.id) AS total,
			COUNT(m.id) FILTER (WHERE m.status = 'completed') AS completed
		FROM projects p
		LEFT JOIN milestones m ON m.project_id = p.id
		WHERE p.status = 'active'
		GROUP BY p.id, p.name, p.code
		ORDER BY p.start_date DESC NULLS LAST
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ProjectSummary
	for rows.Next() {
		var s ProjectSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Code, &s.TotalMilestones, &s.CompletedMilestones); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
