package billing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/buildflow/buildflow/internal/platform/httpx"
	"github.com/buildflow/buildflow/internal/shared"
)

type memoryRepository struct {
	bills    map[uuid.UUID]*RABill
	items    map[uuid.UUID][]BillItem
	payments map[uuid.UUID]*Payment
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		bills:    map[uuid.UUID]*RABill{},
		items:    map[uuid.UUID][]BillItem{},
		payments: map[uuid.UUID]*Payment{},
	}
}

func (m *memoryRepository) CreateBill(_ context.Context, input CreateBillInput) (*RABill, error) {
	for _, b := range m.bills {
		if b.ContractID == input.ContractID && b.BillNo == input.BillNo {
			return nil, httpx.ErrDuplicate
		}
	}
	bill := &RABill{
		ID:         uuid.New(),
		ProjectID:  input.ProjectID,
		ContractID: input.ContractID,
		BillNo:     input.BillNo,
		Title:      input.Title,
		PeriodFrom: input.PeriodFrom,
		PeriodTo:   input.PeriodTo,
		Status:     StatusDraft,
		Total:      decimal.Zero,
		Notes:      input.Notes,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	m.bills[bill.ID] = bill
	return bill, nil
}

func (m *memoryRepository) UpdateBill(_ context.Context, billID uuid.UUID, input UpdateBillInput) (*RABill, error) {
	bill, ok := m.bills[billID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if bill.Status != StatusDraft {
		return nil, errBillNotEditable
	}
	if input.BillNo != nil {
		bill.BillNo = *input.BillNo
	}
	if input.Title != nil {
		bill.Title = *input.Title
	}
	if input.PeriodFrom != nil {
		bill.PeriodFrom = input.PeriodFrom
	}
	if input.PeriodTo != nil {
		bill.PeriodTo = input.PeriodTo
	}
	if input.Notes != nil {
		bill.Notes = *input.Notes
	}
	copied := *bill
	return &copied, nil
}

func (m *memoryRepository) GetBill(_ context.Context, id uuid.UUID) (*RABill, error) {
	bill, ok := m.bills[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *bill
	copied.Items = append([]BillItem(nil), m.items[id]...)
	return &copied, nil
}

func (m *memoryRepository) ListBills(_ context.Context, req ListBillsRequest) ([]RABill, error) {
	var out []RABill
	for _, b := range m.bills {
		if req.ProjectID != nil && b.ProjectID != *req.ProjectID {
			continue
		}
		if req.ContractID != nil && b.ContractID != *req.ContractID {
			continue
		}
		if req.Status != "" && b.Status != req.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (m *memoryRepository) ListItems(_ context.Context, billID uuid.UUID) ([]BillItem, error) {
	return append([]BillItem(nil), m.items[billID]...), nil
}

func (m *memoryRepository) AddItems(_ context.Context, billID uuid.UUID, items []NewItemInput) (*RABill, error) {
	bill, ok := m.bills[billID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if bill.Status != StatusDraft {
		return nil, errBillNotEditable
	}
	for _, it := range items {
		m.items[billID] = append(m.items[billID], BillItem{
			ID:          uuid.New(),
			BillID:      billID,
			BoqRef:      it.BoqRef,
			Description: it.Description,
			Unit:        it.Unit,
			Quantity:    it.Quantity,
			Rate:        it.Rate,
			Amount:      it.Quantity.Mul(it.Rate),
			PreviousQty: it.PreviousQty,
			CurrentQty:  it.CurrentQty,
			CreatedAt:   time.Now(),
		})
	}
	total := decimal.Zero
	for _, it := range m.items[billID] {
		total = total.Add(it.Amount)
	}
	bill.Total = total
	copied := *bill
	copied.Items = append([]BillItem(nil), m.items[billID]...)
	return &copied, nil
}

func (m *memoryRepository) UpdateStatus(_ context.Context, billID uuid.UUID, to string) (*RABill, error) {
	bill, ok := m.bills[billID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if !CanTransition(bill.Status, to) {
		return nil, &TransitionError{From: bill.Status, To: to}
	}
	bill.Status = to
	copied := *bill
	return &copied, nil
}

func (m *memoryRepository) CreatePayment(_ context.Context, input CreatePaymentInput) (*Payment, error) {
	if input.BillID != nil {
		if _, ok := m.bills[*input.BillID]; !ok {
			return nil, shared.ErrNotFound
		}
	}
	p := &Payment{
		ID:        uuid.New(),
		BillID:    input.BillID,
		PaymentNo: input.PaymentNo,
		Amount:    input.Amount,
		Method:    input.Method,
		Reference: input.Reference,
		Status:    PaymentPending,
		Notes:     input.Notes,
		PaidAt:    input.PaidAt,
		CreatedAt: time.Now(),
	}
	m.payments[p.ID] = p
	return p, nil
}

func (m *memoryRepository) ListPayments(_ context.Context, billID uuid.UUID) ([]Payment, error) {
	var out []Payment
	for _, p := range m.payments {
		if p.BillID != nil && *p.BillID == billID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memoryRepository) UpdatePaymentStatus(_ context.Context, paymentID uuid.UUID, status string) (*Payment, error) {
	p, ok := m.payments[paymentID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	p.Status = status
	if status == PaymentCleared && p.PaidAt == nil {
		now := time.Now()
		p.PaidAt = &now
	}
	copied := *p
	return &copied, nil
}

func (m *memoryRepository) ListOverduePending(_ context.Context, cutoff time.Time) ([]Payment, error) {
	var out []Payment
	for _, p := range m.payments {
		if p.Status == PaymentPending && p.CreatedAt.Before(cutoff) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func newTestService(repo RepositoryPort) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(logger, repo, nil, nil)
}

func TestAddItemsRecomputesTotal(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	bill, err := svc.CreateBill(ctx, CreateBillInput{ProjectID: uuid.New(), ContractID: uuid.New(), BillNo: "RA-0001"})
	require.NoError(t, err)
	require.True(t, bill.Total.IsZero())

	bill, err = svc.AddItems(ctx, bill.ID, []NewItemInput{
		{Description: "Excavation", Quantity: decimal.NewFromInt(100), Rate: decimal.NewFromInt(10)},
		{Description: "Backfill", Quantity: decimal.NewFromInt(50), Rate: decimal.NewFromInt(5)},
	})
	require.NoError(t, err)
	require.True(t, bill.Total.Equal(decimal.NewFromInt(1250)), "got %s", bill.Total)
	require.Len(t, bill.Items, 2)

	// A later batch recomputes over every item, not just the new ones.
	bill, err = svc.AddItems(ctx, bill.ID, []NewItemInput{
		{Description: "Shuttering", Quantity: decimal.NewFromInt(10), Rate: decimal.NewFromInt(75)},
	})
	require.NoError(t, err)
	require.True(t, bill.Total.Equal(decimal.NewFromInt(2000)), "got %s", bill.Total)
	require.Len(t, bill.Items, 3)
}

func TestAddItemsValidation(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	bill, err := svc.CreateBill(ctx, CreateBillInput{ProjectID: uuid.New(), ContractID: uuid.New(), BillNo: "RA-0002"})
	require.NoError(t, err)

	_, err = svc.AddItems(ctx, bill.ID, nil)
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.AddItems(ctx, bill.ID, []NewItemInput{{Description: ""}})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.AddItems(ctx, bill.ID, []NewItemInput{
		{Description: "Bad", Quantity: decimal.NewFromInt(-1), Rate: decimal.NewFromInt(10)},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.AddItems(ctx, uuid.New(), []NewItemInput{
		{Description: "Ghost", Quantity: decimal.NewFromInt(1), Rate: decimal.NewFromInt(1)},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAddItemsRejectedAfterDraft(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	bill, err := svc.CreateBill(ctx, CreateBillInput{ProjectID: uuid.New(), ContractID: uuid.New(), BillNo: "RA-0003"})
	require.NoError(t, err)
	_, err = svc.Transition(ctx, nil, bill.ID, StatusSubmitted)
	require.NoError(t, err)

	_, err = svc.AddItems(ctx, bill.ID, []NewItemInput{
		{Description: "Late", Quantity: decimal.NewFromInt(1), Rate: decimal.NewFromInt(1)},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestTransitionLifecycle(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	bill, err := svc.CreateBill(ctx, CreateBillInput{ProjectID: uuid.New(), ContractID: uuid.New(), BillNo: "RA-0004"})
	require.NoError(t, err)

	// Skipping review is illegal.
	_, err = svc.Transition(ctx, nil, bill.ID, StatusApproved)
	var terr *TransitionError
	require.ErrorAs(t, err, &terr)
	require.Equal(t, StatusDraft, terr.From)
	require.ErrorIs(t, err, httpx.ErrValidation)

	for _, status := range []string{StatusSubmitted, StatusUnderReview, StatusApproved, StatusPaid} {
		bill, err = svc.Transition(ctx, nil, bill.ID, status)
		require.NoError(t, err)
		require.Equal(t, status, bill.Status)
	}

	// Paid is terminal.
	_, err = svc.Transition(ctx, nil, bill.ID, StatusSubmitted)
	require.ErrorAs(t, err, &terr)
}

func TestTransitionRejectedIsTerminal(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	bill, err := svc.CreateBill(ctx, CreateBillInput{ProjectID: uuid.New(), ContractID: uuid.New(), BillNo: "RA-0005"})
	require.NoError(t, err)
	for _, status := range []string{StatusSubmitted, StatusUnderReview, StatusRejected} {
		bill, err = svc.Transition(ctx, nil, bill.ID, status)
		require.NoError(t, err)
	}
	_, err = svc.Transition(ctx, nil, bill.ID, StatusApproved)
	var terr *TransitionError
	require.ErrorAs(t, err, &terr)
}

func TestTransitionUnknownStatus(t *testing.T) {
	svc := newTestService(newMemoryRepository())
	_, err := svc.Transition(context.Background(), nil, uuid.New(), "SETTLED")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreatePaymentRequiresApprovedBill(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	bill, err := svc.CreateBill(ctx, CreateBillInput{ProjectID: uuid.New(), ContractID: uuid.New(), BillNo: "RA-0006"})
	require.NoError(t, err)

	billID := bill.ID
	_, err = svc.CreatePayment(ctx, CreatePaymentInput{
		BillID: &billID, PaymentNo: "PAY-0001", Amount: decimal.NewFromInt(500),
	})
	require.ErrorIs(t, err, httpx.ErrValidation)

	for _, status := range []string{StatusSubmitted, StatusUnderReview, StatusApproved} {
		_, err = svc.Transition(ctx, nil, bill.ID, status)
		require.NoError(t, err)
	}

	payment, err := svc.CreatePayment(ctx, CreatePaymentInput{
		BillID: &billID, PaymentNo: "PAY-0001", Amount: decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	require.Equal(t, PaymentPending, payment.Status)
	require.Nil(t, payment.PaidAt)
}

func TestSettlePaymentClearsAndMarksBillPaid(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	bill, err := svc.CreateBill(ctx, CreateBillInput{ProjectID: uuid.New(), ContractID: uuid.New(), BillNo: "RA-0007"})
	require.NoError(t, err)
	for _, status := range []string{StatusSubmitted, StatusUnderReview, StatusApproved} {
		_, err = svc.Transition(ctx, nil, bill.ID, status)
		require.NoError(t, err)
	}
	billID := bill.ID
	payment, err := svc.CreatePayment(ctx, CreatePaymentInput{
		BillID: &billID, PaymentNo: "PAY-0002", Amount: decimal.NewFromInt(1250),
	})
	require.NoError(t, err)

	settled, err := svc.SettlePayment(ctx, nil, payment.ID, PaymentCleared)
	require.NoError(t, err)
	require.Equal(t, PaymentCleared, settled.Status)
	require.NotNil(t, settled.PaidAt)

	got, err := svc.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, got.Status)
}

func TestSettlePaymentRejectsUnknownStatus(t *testing.T) {
	svc := newTestService(newMemoryRepository())
	_, err := svc.SettlePayment(context.Background(), nil, uuid.New(), "DONE")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestGetBillNotFound(t *testing.T) {
	svc := newTestService(newMemoryRepository())
	_, err := svc.GetBill(context.Background(), uuid.New())
	require.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestTransitionRejectFromSubmitted(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	bill, err := svc.CreateBill(ctx, CreateBillInput{ProjectID: uuid.New(), ContractID: uuid.New(), BillNo: "RA-0008"})
	require.NoError(t, err)
	_, err = svc.Transition(ctx, nil, bill.ID, StatusSubmitted)
	require.NoError(t, err)

	bill, err = svc.Transition(ctx, nil, bill.ID, StatusRejected)
	require.NoError(t, err)
	require.Equal(t, StatusRejected, bill.Status)
}

func TestCreateBillPeriodValidation(t *testing.T) {
	svc := newTestService(newMemoryRepository())
	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)

	_, err := svc.CreateBill(context.Background(), CreateBillInput{
		ProjectID:  uuid.New(),
		ContractID: uuid.New(),
		BillNo:     "RA-0009",
		PeriodFrom: &from,
		PeriodTo:   &to,
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateBillFrozenAfterSubmit(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	bill, err := svc.CreateBill(ctx, CreateBillInput{ProjectID: uuid.New(), ContractID: uuid.New(), BillNo: "RA-0010"})
	require.NoError(t, err)

	title := "Running account bill 10"
	updated, err := svc.UpdateBill(ctx, bill.ID, UpdateBillInput{Title: &title})
	require.NoError(t, err)
	require.Equal(t, title, updated.Title)

	_, err = svc.Transition(ctx, nil, bill.ID, StatusSubmitted)
	require.NoError(t, err)

	_, err = svc.UpdateBill(ctx, bill.ID, UpdateBillInput{Title: &title})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestBillNumberScopedToContract(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()
	projectID := uuid.New()
	contractA := uuid.New()
	contractB := uuid.New()

	_, err := svc.CreateBill(ctx, CreateBillInput{ProjectID: projectID, ContractID: contractA, BillNo: "RA-001"})
	require.NoError(t, err)

	// Another contract starts its own RA series with the same number.
	_, err = svc.CreateBill(ctx, CreateBillInput{ProjectID: projectID, ContractID: contractB, BillNo: "RA-001"})
	require.NoError(t, err)

	_, err = svc.CreateBill(ctx, CreateBillInput{ProjectID: projectID, ContractID: contractA, BillNo: "RA-001"})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestCreatePaymentWithoutBill(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	payment, err := svc.CreatePayment(context.Background(), CreatePaymentInput{
		PaymentNo: "PAY-0003",
		Amount:    decimal.NewFromInt(25000),
		Notes:     "mobilization advance",
	})
	require.NoError(t, err)
	require.Nil(t, payment.BillID)
	require.Equal(t, PaymentPending, payment.Status)

	// Clearing a bill-less payment settles it without touching any bill.
	settled, err := svc.SettlePayment(context.Background(), nil, payment.ID, PaymentCleared)
	require.NoError(t, err)
	require.Equal(t, PaymentCleared, settled.Status)
}
