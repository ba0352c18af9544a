package projects

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buildflow/buildflow/internal/platform/httpx"
	"github.com/buildflow/buildflow/internal/shared"
)

// Repository provides PostgreSQL backed persistence for projects.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const projectColumns = `id, name, code, COALESCE(description, ''), COALESCE(location, ''),
	start_date, end_date, budget::text, status, created_at, updated_at`

func scanProject(row pgx.Row) (*Project, error) {
	var p Project
	var budget *string
	err := row.Scan(&p.ID, &p.Name, &p.Code, &p.Description, &p.Location,
		&p.StartDate, &p.EndDate, &budget, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if p.Budget, err = shared.NullDecimalFromText(budget); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a project with the default "active" status.
func (r *Repository) Create(ctx context.Context, input CreateProjectInput) (*Project, error) {
	project, err := scanProject(r.pool.QueryRow(ctx, `
		INSERT INTO projects (name, code, description, location, start_date, end_date, budget)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7)
		RETURNING `+projectColumns,
		input.Name, input.Code, input.Description, input.Location,
		input.StartDate, input.EndDate, input.Budget))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, httpx.ErrDuplicate
		}
		return nil, err
	}
	return project, nil
}

// Get fetches a project by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Project, error) {
	return scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
}

// List returns one page of projects newest first, with optional search and
// status filters, plus the total row count for the same filters.
func (r *Repository) List(ctx context.Context, req ListProjectsRequest, limit, offset int) ([]Project, int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM projects
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR code ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR status = $2)`, req.Search, req.Status).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR code ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`, req.Search, req.Status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

// Update applies partial field updates.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, input UpdateProjectInput) (*Project, error) {
	return scanProject(r.pool.QueryRow(ctx, `
		UPDATE projects SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			location = COALESCE($4, location),
			start_date = COALESCE($5, start_date),
			end_date = COALESCE($6, end_date),
			budget = COALESCE($7, budget),
			status = COALESCE($8, status),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+projectColumns,
		id, input.Name, input.Description, input.Location,
		input.StartDate, input.EndDate, input.Budget, input.Status))
}

// Delete removes a project.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
