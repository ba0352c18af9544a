package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOverduePaymentScan flags payments stuck in PENDING.
	TaskOverduePaymentScan = "billing:overdue_scan"
	// TaskMilestoneReminder notifies about milestones approaching their due date.
	TaskMilestoneReminder = "milestones:reminder"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewSendEmailHandler returns the processor for TaskTypeSendEmail tasks.
func NewSendEmailHandler(logger *slog.Logger) asynq.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		// SMTP delivery lands with the mail gateway rollout.
		logger.Info("send email",
			slog.String("to", payload.To),
			slog.String("subject", payload.Subject),
		)
		return nil
	}
}

// OverdueScanPayload configures the overdue payment scan.
type OverdueScanPayload struct {
	// MaxAgeHours is how long a payment may sit in PENDING before it is flagged.
	MaxAgeHours int `json:"max_age_hours"`
}

// NewOverdueScanTask constructs an overdue payment scan task.
func NewOverdueScanTask(payload OverdueScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOverduePaymentScan, data), nil
}

// MilestoneReminderPayload configures the milestone reminder scan.
type MilestoneReminderPayload struct {
	// WindowDays is how far ahead to look for pending milestones.
	WindowDays int `json:"window_days"`
}

// NewMilestoneReminderTask constructs a milestone reminder task.
func NewMilestoneReminderTask(payload MilestoneReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMilestoneReminder, data), nil
}
