package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/buildflow/buildflow/internal/app"
	"github.com/buildflow/buildflow/internal/billing"
	"github.com/buildflow/buildflow/internal/milestones"
	"github.com/buildflow/buildflow/internal/notifications"
	"github.com/buildflow/buildflow/internal/platform/db"
	"github.com/buildflow/buildflow/internal/users"
	"github.com/buildflow/buildflow/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	billingRepo := billing.NewRepository(pool)
	milestonesRepo := milestones.NewRepository(pool)
	usersRepo := users.NewRepository(pool)
	notificationsService := notifications.NewService(notifications.NewRepository(pool))

	overdueJob := jobs.NewOverdueScanJob(billingRepo, usersRepo, notificationsService, logger, cfg.OverduePaymentAge)
	reminderJob := jobs.NewMilestoneReminderJob(milestonesRepo, usersRepo, notificationsService, logger)

	overdueTask, err := jobs.NewOverdueScanTask(jobs.OverdueScanPayload{})
	if err != nil {
		logger.Error("build overdue scan task", slog.Any("error", err))
		os.Exit(1)
	}
	reminderTask, err := jobs.NewMilestoneReminderTask(jobs.MilestoneReminderPayload{WindowDays: 7})
	if err != nil {
		logger.Error("build milestone reminder task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskOverduePaymentScan, Handler: overdueJob.Handle},
			{Type: jobs.TaskMilestoneReminder, Handler: reminderJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 6 * * *", Task: overdueTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 6 * * *", Task: reminderTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
