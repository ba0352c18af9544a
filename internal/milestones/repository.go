package milestones

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buildflow/buildflow/internal/shared"
)

// Repository provides PostgreSQL backed persistence for milestones.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const milestoneColumns = `id, project_id, contract_id, name, COALESCE(description, ''),
	due_date, amount::text, percentage::text, status, completed_at, created_at, updated_at`

func scanMilestone(row pgx.Row) (*Milestone, error) {
	var m Milestone
	var amount, percentage *string
	err := row.Scan(&m.ID, &m.ProjectID, &m.ContractID, &m.Name, &m.Description,
		&m.DueDate, &amount, &percentage, &m.Status, &m.CompletedAt, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if m.Amount, err = shared.NullDecimalFromText(amount); err != nil {
		return nil, err
	}
	if m.Percentage, err = shared.NullDecimalFromText(percentage); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a milestone with the default "pending" status.
func (r *Repository) Create(ctx context.Context, input CreateMilestoneInput) (*Milestone, error) {
	milestone, err := scanMilestone(r.pool.QueryRow(ctx, `
		INSERT INTO milestones (project_id, contract_id, name, description, due_date, amount, percentage)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
		RETURNING `+milestoneColumns,
		input.ProjectID, input.ContractID, input.Name, input.Description,
		input.DueDate, input.Amount, input.Percentage))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return milestone, nil
}

// Get fetches a milestone by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Milestone, error) {
	return scanMilestone(r.pool.QueryRow(ctx, `SELECT `+milestoneColumns+` FROM milestones WHERE id = $1`, id))
}

// List returns milestones ordered by due date with optional filters.
func (r *Repository) List(ctx context.Context, req ListMilestonesRequest) ([]Milestone, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+milestoneColumns+` FROM milestones
		WHERE ($1::uuid IS NULL OR project_id = $1)
		  AND ($2::uuid IS NULL OR contract_id = $2)
		ORDER BY due_date ASC NULLS LAST`, req.ProjectID, req.ContractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// ListDueBefore returns pending milestones whose due date falls at or before
// the cutoff. Background reminders use it.
func (r *Repository) ListDueBefore(ctx context.Context, cutoff time.Time) ([]Milestone, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+milestoneColumns+` FROM milestones
		WHERE status = 'pending' AND due_date IS NOT NULL AND due_date <= $1
		ORDER BY due_date ASC`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// Update applies partial field updates.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, input UpdateMilestoneInput) (*Milestone, error) {
	return scanMilestone(r.pool.QueryRow(ctx, `
		UPDATE milestones SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			due_date = COALESCE($4, due_date),
			amount = COALESCE($5, amount),
			percentage = COALESCE($6, percentage),
			status = COALESCE($7, status),
			completed_at = COALESCE($8, completed_at),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+milestoneColumns,
		id, input.Name, input.Description, input.DueDate, input.Amount,
		input.Percentage, input.Status, input.CompletedAt))
}

// Delete removes a milestone.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM milestones WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
