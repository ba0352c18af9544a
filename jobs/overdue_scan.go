package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/buildflow/buildflow/internal/billing"
	"github.com/buildflow/buildflow/internal/notifications"
	"github.com/buildflow/buildflow/internal/users"
)

// Recipients resolves which users receive operational alerts.
type Recipients interface {
	List(ctx context.Context) ([]users.User, error)
}

// Billing exposes the stale payment query the scan needs.
type Billing interface {
	ListOverduePending(ctx context.Context, cutoff time.Time) ([]billing.Payment, error)
}

// Notifier raises deduplicated notifications.
type Notifier interface {
	NotifyOnce(ctx context.Context, input notifications.NewNotificationInput) (*notifications.Notification, error)
}

// OverdueScanJob flags payments stuck in PENDING and alerts admins and managers.
type OverdueScanJob struct {
	Billing    Billing
	Recipients Recipients
	Notifier   Notifier
	Logger     *slog.Logger
	MaxAge     time.Duration
	clock      func() time.Time
}

// NewOverdueScanJob initialises the overdue payment scan handler.
func NewOverdueScanJob(b Billing, r Recipients, n Notifier, logger *slog.Logger, maxAge time.Duration) *OverdueScanJob {
	return &OverdueScanJob{
		Billing:    b,
		Recipients: r,
		Notifier:   n,
		Logger:     logger,
		MaxAge:     maxAge,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the overdue payment scan.
func (j *OverdueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("overdue scan: handler not configured")
	}
	var payload OverdueScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	maxAge := j.MaxAge
	if payload.MaxAgeHours > 0 {
		maxAge = time.Duration(payload.MaxAgeHours) * time.Hour
	}
	if maxAge <= 0 {
		maxAge = 30 * 24 * time.Hour
	}

	logger := j.logger().With(slog.Duration("max_age", maxAge))
	logger.Info("starting overdue payment scan")

	cutoff := j.now().Add(-maxAge)
	overdue, err := j.Billing.ListOverduePending(ctx, cutoff)
	if err != nil {
		logger.Error("scan failed", slog.Any("error", err))
		return err
	}
	if len(overdue) == 0 {
		logger.Info("no overdue payments")
		return nil
	}

	recipients, err := j.recipients(ctx)
	if err != nil {
		logger.Error("resolve recipients", slog.Any("error", err))
		return err
	}

	notified := 0
	for _, payment := range overdue {
		age := j.now().Sub(payment.CreatedAt)
		for _, u := range recipients {
			refID := payment.ID
			_, err := j.Notifier.NotifyOnce(ctx, notifications.NewNotificationInput{
				UserID:    u.ID,
				Kind:      notifications.KindPaymentOverdue,
				Title:     fmt.Sprintf("Payment %s pending for %d days", payment.PaymentNo, int(age.Hours()/24)),
				Body:      fmt.Sprintf("Payment %s of %s has been pending since %s.", payment.PaymentNo, payment.Amount, payment.CreatedAt.Format("2006-01-02")),
				RefEntity: "payment",
				RefID:     &refID,
			})
			if err != nil {
				logger.Warn("notify overdue payment", slog.String("payment_no", payment.PaymentNo), slog.Any("error", err))
				continue
			}
			notified++
		}
	}

	logger.Info("completed overdue payment scan",
		slog.Int("overdue", len(overdue)),
		slog.Int("notified", notified),
	)
	return nil
}

func (j *OverdueScanJob) recipients(ctx context.Context) ([]users.User, error) {
	all, err := j.Recipients.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]users.User, 0, len(all))
	for _, u := range all {
		if !u.IsActive {
			continue
		}
		if u.Role == users.RoleAdmin || u.Role == users.RoleManager {
			out = append(out, u)
		}
	}
	return out, nil
}

func (j *OverdueScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskOverduePaymentScan))
	}
	return slog.Default().With(slog.String("job", TaskOverduePaymentScan))
}

func (j *OverdueScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
