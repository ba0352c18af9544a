package billing

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

// Repository provides PostgreSQL backed persistence for RA bills.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const billColumns = `id, project_id, contract_id, bill_no, COALESCE(title, ''), period_from, period_to,
	status, total::text, COALESCE(notes, ''), created_at, updated_at`

func scanBill(row pgx.Row) (*RABill, error) {
	var b RABill
	var total string
	err := row.Scan(&b.ID, &b.ProjectID, &b.ContractID, &b.BillNo, &b.Title, &b.PeriodFrom, &b.PeriodTo,
		&b.Status, &total, &b.Notes, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if b.Total, err = shared.DecimalFromText(total); err != nil {
		return nil, err
	}
	return &b, nil
}

const itemColumns = `id, bill_id, COALESCE(boq_ref, ''), description, COALESCE(unit, ''),
	quantity::text, rate::text, amount::text, previous_qty::text, current_qty::text, created_at`

func scanItem(row pgx.Row) (*BillItem, error) {
	var it BillItem
	var qty, rate, amount string
	var prevQty, currQty *string
	err := row.Scan(&it.ID, &it.BillID, &it.BoqRef, &it.Description, &it.Unit,
		&qty, &rate, &amount, &prevQty, &currQty, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if it.Quantity, err = shared.DecimalFromText(qty); err != nil {
		return nil, err
	}
	if it.Rate, err = shared.DecimalFromText(rate); err != nil {
		return nil, err
	}
	if it.Amount, err = shared.DecimalFromText(amount); err != nil {
		return nil, err
	}
	if it.PreviousQty, err = shared.NullDecimalFromText(prevQty); err != nil {
		return nil, err
	}
	if it.CurrentQty, err = shared.NullDecimalFromText(currQty); err != nil {
		return nil, err
	}
	return &it, nil
}

// CreateBill opens a draft bill with a zero total.
func (r *Repository) CreateBill(ctx context.Context, input CreateBillInput) (*RABill, error) {
	bill, err := scanBill(r.pool.QueryRow(ctx, `
		INSERT INTO ra_bills (project_id, contract_id, bill_no, title, period_from, period_to, notes)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, NULLIF($7, ''))
		RETURNING `+billColumns,
		input.ProjectID, input.ContractID, input.BillNo, input.Title,
		input.PeriodFrom, input.PeriodTo, input.Notes))
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
	return bill, nil
}

// GetBill fetches a bill with its items and payments.
func (r *Repository) GetBill(ctx context.Context, id uuid.UUID) (*RABill, error) {
	bill, err := scanBill(r.pool.QueryRow(ctx, `SELECT `+billColumns+` FROM ra_bills WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if bill.Items, err = r.ListItems(ctx, id); err != nil {
		return nil, err
	}
	if bill.Payments, err = r.ListPayments(ctx, id); err != nil {
		return nil, err
	}
	return bill, nil
}

// ListBills returns bills newest first with optional filters.
func (r *Repository) ListBills(ctx context.Context, req ListBillsRequest) ([]RABill, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+billColumns+` FROM ra_bills
		WHERE ($1::uuid IS NULL OR project_id = $1)
		  AND ($2::uuid IS NULL OR contract_id = $2)
		  AND ($3 = '' OR status = $3)
		ORDER BY created_at DESC`, req.ProjectID, req.ContractID, req.Status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RABill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// ListItems returns a bill's items in insert order.
func (r *Repository) ListItems(ctx context.Context, billID uuid.UUID) ([]BillItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM bill_items WHERE bill_id = $1 ORDER BY created_at ASC, id ASC`, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []BillItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

// AddItems appends items and recomputes the bill total in one transaction.
// The bill row is locked for the duration so concurrent inserts serialize and
// the recomputed total always covers every item present.
func (r *Repository) AddItems(ctx context.Context, billID uuid.UUID, items []NewItemInput) (*RABill, error) {
	var bill *RABill
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var status string
		err := tx.QueryRow(ctx, `SELECT status FROM ra_bills WHERE id = $1 FOR UPDATE`, billID).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return err
		}
		if status != StatusDraft {
			return errBillNotEditable
		}

		batch := &pgx.Batch{}
		for _, it := range items {
			batch.Queue(`
				INSERT INTO bill_items (bill_id, boq_ref, description, unit, quantity, rate, amount, previous_qty, current_qty)
				VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), $5, $6, $7, $8, $9)`,
				billID, it.BoqRef, it.Description, it.Unit, it.Quantity, it.Rate,
				it.Quantity.Mul(it.Rate), it.PreviousQty, it.CurrentQty)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}

		bill, err = scanBill(tx.QueryRow(ctx, `
			UPDATE ra_bills SET
				total = (SELECT COALESCE(SUM(amount), 0) FROM bill_items WHERE bill_id = $1),
				updated_at = NOW()
			WHERE id = $1
			RETURNING `+billColumns, billID))
		return err
	})
	if err != nil {
		return nil, err
	}
	items2, err := r.ListItems(ctx, billID)
	if err != nil {
		return nil, err
	}
	bill.Items = items2
	return bill, nil
}

// UpdateBill applies partial header updates to a draft bill. Bills past DRAFT
// are frozen; the row lock keeps a concurrent submit from racing the edit.
func (r *Repository) UpdateBill(ctx context.Context, billID uuid.UUID, input UpdateBillInput) (*RABill, error) {
	var bill *RABill
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var status string
		err := tx.QueryRow(ctx, `SELECT status FROM ra_bills WHERE id = $1 FOR UPDATE`, billID).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return err
		}
		if status != StatusDraft {
			return errBillNotEditable
		}
		bill, err = scanBill(tx.QueryRow(ctx, `
			UPDATE ra_bills SET
				bill_no = COALESCE($2, bill_no),
				title = COALESCE($3, title),
				period_from = COALESCE($4, period_from),
				period_to = COALESCE($5, period_to),
				notes = COALESCE($6, notes),
				updated_at = NOW()
			WHERE id = $1
			RETURNING `+billColumns,
			billID, input.BillNo, input.Title, input.PeriodFrom, input.PeriodTo, input.Notes))
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return httpx.ErrDuplicate
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// UpdateStatus moves a bill to the given status after checking the transition
// under a row lock.
func (r *Repository) UpdateStatus(ctx context.Context, billID uuid.UUID, to string) (*RABill, error) {
	var bill *RABill
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var from string
		err := tx.QueryRow(ctx, `SELECT status FROM ra_bills WHERE id = $1 FOR UPDATE`, billID).Scan(&from)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return err
		}
		if !CanTransition(from, to) {
			return &TransitionError{From: from, To: to}
		}
		bill, err = scanBill(tx.QueryRow(ctx, `
			UPDATE ra_bills SET status = $2, updated_at = NOW()
			WHERE id = $1
			RETURNING `+billColumns, billID, to))
		return err
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// CreatePayment records a pending payment, optionally linked to a bill.
func (r *Repository) CreatePayment(ctx context.Context, input CreatePaymentInput) (*Payment, error) {
	payment, err := scanPayment(r.pool.QueryRow(ctx, `
		INSERT INTO payments (bill_id, payment_no, amount, method, reference, notes, paid_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7)
		RETURNING `+paymentColumns,
		input.BillID, input.PaymentNo, input.Amount, input.Method, input.Reference, input.Notes, input.PaidAt))
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
	return payment, nil
}

const paymentColumns = `id, bill_id, payment_no, amount::text, COALESCE(method, ''),
	COALESCE(reference, ''), status, COALESCE(notes, ''), paid_at, created_at`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	var amount string
	err := row.Scan(&p.ID, &p.BillID, &p.PaymentNo, &amount, &p.Method,
		&p.Reference, &p.Status, &p.Notes, &p.PaidAt, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if p.Amount, err = shared.DecimalFromText(amount); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPayments returns payments for a bill, oldest first.
func (r *Repository) ListPayments(ctx context.Context, billID uuid.UUID) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE bill_id = $1 ORDER BY created_at ASC`, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// UpdatePaymentStatus marks a payment cleared or rejected and stamps paidAt on clearing.
func (r *Repository) UpdatePaymentStatus(ctx context.Context, paymentID uuid.UUID, status string) (*Payment, error) {
	return scanPayment(r.pool.QueryRow(ctx, `
		UPDATE payments SET
			status = $2,
			paid_at = CASE WHEN $2 = 'CLEARED' THEN COALESCE(paid_at, NOW()) ELSE paid_at END
		WHERE id = $1
		RETURNING `+paymentColumns, paymentID, status))
}

// ListOverduePending returns pending payments created before the cutoff.
func (r *Repository) ListOverduePending(ctx context.Context, cutoff time.Time) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE status = 'PENDING' AND created_at < $1
		ORDER BY created_at ASC`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
