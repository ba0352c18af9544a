package variations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buildflow/buildflow/internal/platform/db"
	"github.com/buildflow/buildflow/internal/platform/httpx"
	"github.com/buildflow/buildflow/internal/shared"
)

// Repository provides PostgreSQL backed persistence for variations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const variationColumns = `id, contract_id, variation_no, title, COALESCE(description, ''),
	amount::text, status, approved_by_id, approved_at, created_at, updated_at`

func scanVariation(row pgx.Row) (*Variation, error) {
	var v Variation
	var amount string
	err := row.Scan(&v.ID, &v.ContractID, &v.VariationNo, &v.Title, &v.Description,
		&amount, &v.Status, &v.ApprovedByID, &v.ApprovedAt, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if v.Amount, err = shared.DecimalFromText(amount); err != nil {
		return nil, err
	}
	return &v, nil
}

// Create raises a pending variation.
func (r *Repository) Create(ctx context.Context, input CreateVariationInput) (*Variation, error) {
	variation, err := scanVariation(r.pool.QueryRow(ctx, `
		INSERT INTO variations (contract_id, variation_no, title, description, amount)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		RETURNING `+variationColumns,
		input.ContractID, input.VariationNo, input.Title, input.Description, input.Amount))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return nil, httpx.ErrDuplicate
			case "23503":
				return nil, shared.ErrNotFound
			}
		}
		return nil, err
	}
	return variation, nil
}

// Get fetches a variation by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Variation, error) {
	return scanVariation(r.pool.QueryRow(ctx, `SELECT `+variationColumns+` FROM variations WHERE id = $1`, id))
}

// List returns variations newest first with optional filters.
func (r *Repository) List(ctx context.Context, req ListVariationsRequest) ([]Variation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+variationColumns+` FROM variations
		WHERE ($1::uuid IS NULL OR contract_id = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC`, req.ContractID, req.Status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Variation
	for rows.Next() {
		v, err := scanVariation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

// Decide resolves a pending variation under a row lock. Approving stamps the
// approver and timestamp; rejecting leaves both empty.
func (r *Repository) Decide(ctx context.Context, id uuid.UUID, status string, actorID uuid.UUID, at time.Time) (*Variation, error) {
	var variation *Variation
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var current string
		err := tx.QueryRow(ctx, `SELECT status FROM variations WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return err
		}
		if current != StatusPending {
			return errAlreadyDecided
		}
		if status == StatusApproved {
			variation, err = scanVariation(tx.QueryRow(ctx, `
				UPDATE variations SET status = $2, approved_by_id = $3, approved_at = $4, updated_at = NOW()
				WHERE id = $1
				RETURNING `+variationColumns, id, status, actorID, at))
		} else {
			variation, err = scanVariation(tx.QueryRow(ctx, `
				UPDATE variations SET status = $2, updated_at = NOW()
				WHERE id = $1
				RETURNING `+variationColumns, id, status))
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return variation, nil
}

// Delete removes a pending variation.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM variations WHERE id = $1 AND status = 'PENDING'`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
