package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/buildflow/buildflow/internal/platform/httpx"
	"github.com/buildflow/buildflow/internal/shared"
)

// RepositoryPort defines data access methods for RA bills.
type RepositoryPort interface {
	CreateBill(ctx context.Context, input CreateBillInput) (*RABill, error)
	GetBill(ctx context.Context, id uuid.UUID) (*RABill, error)
	ListBills(ctx context.Context, req ListBillsRequest) ([]RABill, error)
	UpdateBill(ctx context.Context, billID uuid.UUID, input UpdateBillInput) (*RABill, error)
	ListItems(ctx context.Context, billID uuid.UUID) ([]BillItem, error)
	AddItems(ctx context.Context, billID uuid.UUID, items []NewItemInput) (*RABill, error)
	UpdateStatus(ctx context.Context, billID uuid.UUID, to string) (*RABill, error)
	CreatePayment(ctx context.Context, input CreatePaymentInput) (*Payment, error)
	ListPayments(ctx context.Context, billID uuid.UUID) ([]Payment, error)
	UpdatePaymentStatus(ctx context.Context, paymentID uuid.UUID, status string) (*Payment, error)
	ListOverduePending(ctx context.Context, cutoff time.Time) ([]Payment, error)
}

// Service handles RA billing business logic.
type Service struct {
	logger   *slog.Logger
	repo     RepositoryPort
	audit    *shared.AuditLogger
	approval *shared.ApprovalRecorder
}

// NewService builds Service instance.
func NewService(logger *slog.Logger, repo RepositoryPort, audit *shared.AuditLogger, approval *shared.ApprovalRecorder) *Service {
	return &Service{logger: logger, repo: repo, audit: audit, approval: approval}
}

// CreateBill opens a draft bill. Totals start at zero until items arrive.
func (s *Service) CreateBill(ctx context.Context, input CreateBillInput) (*RABill, error) {
	if input.ProjectID == uuid.Nil {
		return nil, fmt.Errorf("%w: project ID required", httpx.ErrValidation)
	}
	if input.ContractID == uuid.Nil {
		return nil, fmt.Errorf("%w: contract ID required", httpx.ErrValidation)
	}
	if input.BillNo == "" {
		return nil, fmt.Errorf("%w: bill number required", httpx.ErrValidation)
	}
	if input.PeriodFrom != nil && input.PeriodTo != nil && input.PeriodTo.Before(*input.PeriodFrom) {
		return nil, fmt.Errorf("%w: billing period ends before it starts", httpx.ErrValidation)
	}
	return s.repo.CreateBill(ctx, input)
}

// UpdateBill edits the header of a draft bill.
func (s *Service) UpdateBill(ctx context.Context, billID uuid.UUID, input UpdateBillInput) (*RABill, error) {
	if input.BillNo != nil && *input.BillNo == "" {
		return nil, fmt.Errorf("%w: bill number required", httpx.ErrValidation)
	}
	if input.PeriodFrom != nil && input.PeriodTo != nil && input.PeriodTo.Before(*input.PeriodFrom) {
		return nil, fmt.Errorf("%w: billing period ends before it starts", httpx.ErrValidation)
	}
	return s.repo.UpdateBill(ctx, billID, input)
}

// GetBill returns a bill with items.
func (s *Service) GetBill(ctx context.Context, id uuid.UUID) (*RABill, error) {
	return s.repo.GetBill(ctx, id)
}

// ListBills returns filtered bills.
func (s *Service) ListBills(ctx context.Context, req ListBillsRequest) ([]RABill, error) {
	if req.Status != "" && !ValidStatus(req.Status) {
		return nil, fmt.Errorf("%w: unknown bill status", httpx.ErrValidation)
	}
	return s.repo.ListBills(ctx, req)
}

// AddItems appends items to a draft bill. The bill total after the call is the
// sum over every item on the bill, not an increment of the previous total.
func (s *Service) AddItems(ctx context.Context, billID uuid.UUID, items []NewItemInput) (*RABill, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: at least one item required", httpx.ErrValidation)
	}
	for _, it := range items {
		if it.Description == "" {
			return nil, fmt.Errorf("%w: item description required", httpx.ErrValidation)
		}
		if it.Quantity.IsNegative() || it.Rate.IsNegative() {
			return nil, fmt.Errorf("%w: item quantity and rate must not be negative", httpx.ErrValidation)
		}
	}
	return s.repo.AddItems(ctx, billID, items)
}

// Transition moves a bill along its lifecycle. Approvals and rejections are
// recorded against the acting user.
func (s *Service) Transition(ctx context.Context, identity *shared.Identity, billID uuid.UUID, to string) (*RABill, error) {
	if !ValidStatus(to) {
		return nil, fmt.Errorf("%w: unknown bill status", httpx.ErrValidation)
	}
	bill, err := s.repo.UpdateStatus(ctx, billID, to)
	if err != nil {
		return nil, err
	}

	if identity != nil {
		var action shared.ApprovalAction
		switch to {
		case StatusSubmitted:
			action = shared.ApprovalSubmit
		case StatusApproved:
			action = shared.ApprovalApprove
		case StatusRejected:
			action = shared.ApprovalReject
		}
		if action != "" {
			if err := s.approval.Record(ctx, shared.ApprovalLog{
				Module:  "ra_bill",
				RefID:   billID,
				ActorID: identity.ID,
				Action:  action,
			}); err != nil {
				s.logger.Warn("record bill approval", slog.Any("error", err))
			}
		}
		if err := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  identity.ID,
			Action:   "bill.transition",
			Entity:   "ra_bill",
			EntityID: billID.String(),
			Meta:     map[string]any{"to": to},
		}); err != nil {
			s.logger.Warn("record bill audit", slog.Any("error", err))
		}
	}
	return bill, nil
}

// CreatePayment records a pending payment. When the payment references a
// bill, that bill must already be approved.
func (s *Service) CreatePayment(ctx context.Context, input CreatePaymentInput) (*Payment, error) {
	if input.PaymentNo == "" {
		return nil, fmt.Errorf("%w: payment number required", httpx.ErrValidation)
	}
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", httpx.ErrValidation)
	}
	if input.BillID != nil {
		bill, err := s.repo.GetBill(ctx, *input.BillID)
		if err != nil {
			return nil, err
		}
		if bill.Status != StatusApproved && bill.Status != StatusPaid {
			return nil, fmt.Errorf("%w: payments require an approved bill", httpx.ErrValidation)
		}
	}
	return s.repo.CreatePayment(ctx, input)
}

// ListPayments returns payments for a bill.
func (s *Service) ListPayments(ctx context.Context, billID uuid.UUID) ([]Payment, error) {
	return s.repo.ListPayments(ctx, billID)
}

// SettlePayment marks a payment cleared or rejected. Clearing the payment
// moves an approved bill to PAID.
func (s *Service) SettlePayment(ctx context.Context, identity *shared.Identity, paymentID uuid.UUID, status string) (*Payment, error) {
	if status != PaymentCleared && status != PaymentRejected {
		return nil, fmt.Errorf("%w: payment status must be CLEARED or REJECTED", httpx.ErrValidation)
	}
	payment, err := s.repo.UpdatePaymentStatus(ctx, paymentID, status)
	if err != nil {
		return nil, err
	}
	if status == PaymentCleared && payment.BillID != nil {
		if _, err := s.repo.UpdateStatus(ctx, *payment.BillID, StatusPaid); err != nil {
			var terr *TransitionError
			if !errors.As(err, &terr) {
				s.logger.Warn("mark bill paid", slog.Any("error", err))
			}
		}
	}
	if identity != nil {
		if err := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  identity.ID,
			Action:   "payment.settle",
			Entity:   "payment",
			EntityID: paymentID.String(),
			Meta:     map[string]any{"status": status},
		}); err != nil {
			s.logger.Warn("record payment audit", slog.Any("error", err))
		}
	}
	return payment, nil
}

// ListOverduePending exposes stale pending payments for background scans.
func (s *Service) ListOverduePending(ctx context.Context, cutoff time.Time) ([]Payment, error) {
	return s.repo.ListOverduePending(ctx, cutoff)
}
