package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/buildflow/buildflow/internal/milestones"
	"github.com/buildflow/buildflow/internal/notifications"
)

// Milestones exposes the due date query the reminder needs.
type Milestones interface {
	ListDueBefore(ctx context.Context, cutoff time.Time) ([]milestones.Milestone, error)
}

// MilestoneReminderJob notifies admins and managers about pending milestones
// approaching or past their due date.
type MilestoneReminderJob struct {
	Milestones Milestones
	Recipients Recipients
	Notifier   Notifier
	Logger     *slog.Logger
	clock      func() time.Time
}

// NewMilestoneReminderJob initialises the milestone reminder handler.
func NewMilestoneReminderJob(m Milestones, r Recipients, n Notifier, logger *slog.Logger) *MilestoneReminderJob {
	return &MilestoneReminderJob{
		Milestones: m,
		Recipients: r,
		Notifier:   n,
		Logger:     logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the milestone reminder scan.
func (j *MilestoneReminderJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("milestone reminder: handler not configured")
	}
	var payload MilestoneReminderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.WindowDays <= 0 {
		payload.WindowDays = 7
	}

	logger := j.logger().With(slog.Int("window_days", payload.WindowDays))
	logger.Info("starting milestone reminder scan")

	cutoff := j.now().AddDate(0, 0, payload.WindowDays)
	due, err := j.Milestones.ListDueBefore(ctx, cutoff)
	if err != nil {
		logger.Error("scan failed", slog.Any("error", err))
		return err
	}
	if len(due) == 0 {
		logger.Info("no milestones due")
		return nil
	}

	all, err := j.Recipients.List(ctx)
	if err != nil {
		logger.Error("resolve recipients", slog.Any("error", err))
		return err
	}

	notified := 0
	for _, m := range due {
		for _, u := range all {
			if !u.IsActive {
				continue
			}
			refID := m.ID
			_, err := j.Notifier.NotifyOnce(ctx, notifications.NewNotificationInput{
				UserID:    u.ID,
				Kind:      notifications.KindMilestoneDue,
				Title:     fmt.Sprintf("Milestone %q due %s", m.Name, m.DueDate.Format("2006-01-02")),
				Body:      fmt.Sprintf("Milestone %q is still pending and due on %s.", m.Name, m.DueDate.Format("2006-01-02")),
				RefEntity: "milestone",
				RefID:     &refID,
			})
			if err != nil {
				logger.Warn("notify milestone due", slog.String("milestone", m.Name), slog.Any("error", err))
				continue
			}
			notified++
		}
	}

	logger.Info("completed milestone reminder scan",
		slog.Int("due", len(due)),
		slog.Int("notified", notified),
	)
	return nil
}

func (j *MilestoneReminderJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskMilestoneReminder))
	}
	return slog.Default().With(slog.String("job", TaskMilestoneReminder))
}

func (j *MilestoneReminderJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
