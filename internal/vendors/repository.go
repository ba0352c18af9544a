package vendors

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

// Repository provides PostgreSQL backed persistence for vendors.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const vendorColumns = `id, name, COALESCE(code, ''), type, COALESCE(contact_person, ''),
	COALESCE(email, ''), COALESCE(phone, ''), COALESCE(address, ''), COALESCE(tax_id, ''),
	created_at, updated_at`

func scanVendor(row pgx.Row) (*Vendor, error) {
	var v Vendor
	err := row.Scan(&v.ID, &v.Name, &v.Code, &v.Type, &v.ContactPerson,
		&v.Email, &v.Phone, &v.Address, &v.TaxID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// Create inserts a vendor.
func (r *Repository) Create(ctx context.Context, input CreateVendorInput) (*Vendor, error) {
	vendor, err := scanVendor(r.pool.QueryRow(ctx, `
		INSERT INTO vendors (name, code, type, contact_person, email, phone, address, tax_id)
		VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''))
		RETURNING `+vendorColumns,
		input.Name, input.Code, input.Type, input.ContactPerson,
		input.Email, input.Phone, input.Address, input.TaxID))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, httpx.ErrDuplicate
		}
		return nil, err
	}
	return vendor, nil
}

// Get fetches a vendor by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Vendor, error) {
	return scanVendor(r.pool.QueryRow(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id))
}

// List returns vendors ordered by name with optional search and type filters.
func (r *Repository) List(ctx context.Context, req ListVendorsRequest) ([]Vendor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+vendorColumns+` FROM vendors
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR code ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR type = $2)
		ORDER BY name ASC`, req.Search, req.Type)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

// Update applies partial field updates.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, input UpdateVendorInput) (*Vendor, error) {
	return scanVendor(r.pool.QueryRow(ctx, `
		UPDATE vendors SET
			name = COALESCE($2, name),
			type = COALESCE($3, type),
			contact_person = COALESCE($4, contact_person),
			email = COALESCE($5, email),
			phone = COALESCE($6, phone),
			address = COALESCE($7, address),
			tax_id = COALESCE($8, tax_id),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+vendorColumns,
		id, input.Name, input.Type, input.ContactPerson,
		input.Email, input.Phone, input.Address, input.TaxID))
}

// Delete removes a vendor.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM vendors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
