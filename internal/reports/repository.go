package reports

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buildflow/buildflow/internal/shared"
)

// Repository provides PostgreSQL backed persistence for daily reports.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const reportColumns = `id, project_id, report_date, COALESCE(weather, ''), workforce_no,
	COALESCE(progress, ''), COALESCE(issues, ''), created_by_id, created_at, updated_at`

func scanReport(row pgx.Row) (*DailyReport, error) {
	var rep DailyReport
	err := row.Scan(&rep.ID, &rep.ProjectID, &rep.ReportDate, &rep.Weather, &rep.WorkforceNo,
		&rep.Progress, &rep.Issues, &rep.CreatedByID, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rep, nil
}

// Create inserts a daily report.
func (r *Repository) Create(ctx context.Context, input CreateReportInput) (*DailyReport, error) {
	report, err := scanReport(r.pool.QueryRow(ctx, `
		INSERT INTO daily_reports (project_id, report_date, weather, workforce_no, progress, issues, created_by_id)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), NULLIF($6, ''), $7)
		RETURNING `+reportColumns,
		input.ProjectID, input.ReportDate, input.Weather, input.WorkforceNo,
		input.Progress, input.Issues, input.CreatedByID))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return report, nil
}

// Get fetches a report with its photos.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*DailyReport, error) {
	report, err := scanReport(r.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM daily_reports WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	photos, err := r.ListPhotos(ctx, id)
	if err != nil {
		return nil, err
	}
	report.Photos = photos
	return report, nil
}

// List returns reports newest first with optional project and date filters.
func (r *Repository) List(ctx context.Context, req ListReportsRequest) ([]DailyReport, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reportColumns+` FROM daily_reports
		WHERE ($1::uuid IS NULL OR project_id = $1)
		  AND ($2::timestamptz IS NULL OR report_date >= $2)
		  AND ($3::timestamptz IS NULL OR report_date <= $3)
		ORDER BY report_date DESC`, req.ProjectID, req.From, req.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DailyReport
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rep)
	}
	return out, rows.Err()
}

// Update applies partial field updates.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, input UpdateReportInput) (*DailyReport, error) {
	return scanReport(r.pool.QueryRow(ctx, `
		UPDATE daily_reports SET
			weather = COALESCE($2, weather),
			workforce_no = COALESCE($3, workforce_no),
			progress = COALESCE($4, progress),
			issues = COALESCE($5, issues),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+reportColumns,
		id, input.Weather, input.WorkforceNo, input.Progress, input.Issues))
}

// Delete removes a report together with its photo rows.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM daily_reports WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AddPhoto attaches a stored object to a report.
func (r *Repository) AddPhoto(ctx context.Context, reportID uuid.UUID, objectKey, caption string) (*ReportPhoto, error) {
	var p ReportPhoto
	err := r.pool.QueryRow(ctx, `
		INSERT INTO report_photos (report_id, object_key, caption)
		VALUES ($1, $2, NULLIF($3, ''))
		RETURNING id, report_id, object_key, COALESCE(caption, ''), created_at`,
		reportID, objectKey, caption).
		Scan(&p.ID, &p.ReportID, &p.ObjectKey, &p.Caption, &p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListPhotos returns photos for a report in upload order.
func (r *Repository) ListPhotos(ctx context.Context, reportID uuid.UUID) ([]ReportPhoto, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, report_id, object_key, COALESCE(caption, ''), created_at
		FROM report_photos WHERE report_id = $1 ORDER BY created_at ASC`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ReportPhoto
	for rows.Next() {
		var p ReportPhoto
		if err := rows.Scan(&p.ID, &p.ReportID, &p.ObjectKey, &p.Caption, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
