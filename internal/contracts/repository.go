package contracts

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

// Repository provides PostgreSQL backed persistence for contracts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const contractColumns = `id, project_id, vendor_id, contract_no, title, value::text,
	start_date, end_date, COALESCE(description, ''), status, created_at, updated_at`

func scanContract(row pgx.Row) (*Contract, error) {
	var c Contract
	var value string
	err := row.Scan(&c.ID, &c.ProjectID, &c.VendorID, &c.ContractNo, &c.Title, &value,
		&c.StartDate, &c.EndDate, &c.Description, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if c.Value, err = shared.DecimalFromText(value); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a contract with the default "active" status.
func (r *Repository) Create(ctx context.Context, input CreateContractInput) (*Contract, error) {
	contract, err := scanContract(r.pool.QueryRow(ctx, `
		INSERT INTO contracts (project_id, vendor_id, contract_no, title, value, start_date, end_date, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		RETURNING `+contractColumns,
		input.ProjectID, input.VendorID, input.ContractNo, input.Title,
		input.Value, input.StartDate, input.EndDate, input.Description))
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
	return contract, nil
}

// Get fetches a contract by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Contract, error) {
	return scanContract(r.pool.QueryRow(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id))
}

// List returns contracts newest first with optional project/vendor filters.
func (r *Repository) List(ctx context.Context, req ListContractsRequest) ([]Contract, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+contractColumns+` FROM contracts
		WHERE ($1::uuid IS NULL OR project_id = $1)
		  AND ($2::uuid IS NULL OR vendor_id = $2)
		ORDER BY created_at DESC`, req.ProjectID, req.VendorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Update applies partial field updates.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, input UpdateContractInput) (*Contract, error) {
	return scanContract(r.pool.QueryRow(ctx, `
		UPDATE contracts SET
			title = COALESCE($2, title),
			value = COALESCE($3, value),
			start_date = COALESCE($4, start_date),
			end_date = COALESCE($5, end_date),
			description = COALESCE($6, description),
			status = COALESCE($7, status),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+contractColumns,
		id, input.Title, input.Value, input.StartDate, input.EndDate, input.Description, input.Status))
}

// Delete removes a contract.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contracts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
