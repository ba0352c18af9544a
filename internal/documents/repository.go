package documents

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buildflow/buildflow/internal/shared"
)

// Repository provides PostgreSQL backed persistence for document metadata.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const documentColumns = `id, project_id, name, category, object_key, COALESCE(content_type, ''),
	size_bytes, uploaded_by_id, created_at`

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.ProjectID, &d.Name, &d.Category, &d.ObjectKey,
		&d.ContentType, &d.SizeBytes, &d.UploadedByID, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Create inserts document metadata.
func (r *Repository) Create(ctx context.Context, d Document) (*Document, error) {
	doc, err := scanDocument(r.pool.QueryRow(ctx, `
		INSERT INTO documents (project_id, name, category, object_key, content_type, size_bytes, uploaded_by_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
		RETURNING `+documentColumns,
		d.ProjectID, d.Name, d.Category, d.ObjectKey, d.ContentType, d.SizeBytes, d.UploadedByID))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// Get fetches document metadata by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Document, error) {
	return scanDocument(r.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id))
}

// List returns documents newest first with optional filters.
func (r *Repository) List(ctx context.Context, req ListDocumentsRequest) ([]Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE ($1::uuid IS NULL OR project_id = $1)
		  AND ($2 = '' OR category = $2)
		ORDER BY created_at DESC`, req.ProjectID, req.Category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// Update applies partial metadata changes.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, input UpdateDocumentInput) (*Document, error) {
	return scanDocument(r.pool.QueryRow(ctx, `
		UPDATE documents
		SET name = COALESCE($2, name), category = COALESCE($3, category)
		WHERE id = $1
		RETURNING `+documentColumns, id, input.Name, input.Category))
}

// Delete removes document metadata and returns the stored row for storage cleanup.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (*Document, error) {
	return scanDocument(r.pool.QueryRow(ctx, `DELETE FROM documents WHERE id = $1 RETURNING `+documentColumns, id))
}
