package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/buildflow/buildflow/internal/app"
	"github.com/buildflow/buildflow/internal/auth"
	"github.com/buildflow/buildflow/internal/billing"
	"github.com/buildflow/buildflow/internal/contracts"
	"github.com/buildflow/buildflow/internal/dashboard"
	"github.com/buildflow/buildflow/internal/documents"
	"github.com/buildflow/buildflow/internal/milestones"
	"github.com/buildflow/buildflow/internal/notifications"
	"github.com/buildflow/buildflow/internal/observability"
	"github.com/buildflow/buildflow/internal/platform/cache"
	"github.com/buildflow/buildflow/internal/platform/db"
	"github.com/buildflow/buildflow/internal/platform/storage"
	"github.com/buildflow/buildflow/internal/projects"
	"github.com/buildflow/buildflow/internal/reports"
	"github.com/buildflow/buildflow/internal/shared"
	"github.com/buildflow/buildflow/internal/users"
	"github.com/buildflow/buildflow/internal/variations"
	"github.com/buildflow/buildflow/internal/vendors"
	"github.com/buildflow/buildflow/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	store, err := storage.New(ctx, storage.Config{
		Endpoint:  cfg.StorageEndpoint,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		Bucket:    cfg.StorageBucket,
		UseSSL:    cfg.StorageUseSSL,
	})
	if err != nil {
		logger.Error("connect object storage", slog.Any("error", err))
		os.Exit(1)
	}

	auditLogger := shared.NewAuditLogger(pool)
	approvalRecorder := shared.NewApprovalRecorder(pool, logger)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	authService := auth.NewService(auth.NewRepository(pool), tokens)
	authHandler := auth.NewHandler(logger, authService)
	authMiddleware := auth.Middleware{Tokens: tokens, Logger: logger}

	usersService := users.NewService(users.NewRepository(pool))
	usersHandler := users.NewHandler(logger, usersService, authMiddleware)

	projectsService := projects.NewService(projects.NewRepository(pool))
	projectsHandler := projects.NewHandler(logger, projectsService)

	vendorsService := vendors.NewService(vendors.NewRepository(pool))
	vendorsHandler := vendors.NewHandler(logger, vendorsService)

	contractsService := contracts.NewService(contracts.NewRepository(pool))
	contractsHandler := contracts.NewHandler(logger, contractsService)

	milestonesService := milestones.NewService(milestones.NewRepository(pool))
	milestonesHandler := milestones.NewHandler(logger, milestonesService)

	reportsService := reports.NewService(reports.NewRepository(pool), store)
	reportsHandler := reports.NewHandler(logger, reportsService, cfg.SignedURLTTL)

	billingService := billing.NewService(logger, billing.NewRepository(pool), auditLogger, approvalRecorder)
	billingHandler := billing.NewHandler(logger, billingService)

	variationsService := variations.NewService(logger, variations.NewRepository(pool), auditLogger, approvalRecorder)
	variationsHandler := variations.NewHandler(logger, variationsService)

	urlCache := cache.NewKV(redisClient, "buildflow:documents:")
	documentsService := documents.NewService(logger, documents.NewRepository(pool), store, urlCache, cfg.SignedURLTTL)
	documentsHandler := documents.NewHandler(logger, documentsService)

	notificationsService := notifications.NewService(notifications.NewRepository(pool))
	notificationsHandler := notifications.NewHandler(logger, notificationsService)

	dashboardService := dashboard.NewService(dashboard.NewRepository(pool))
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		AuthMiddleware:       authMiddleware,
		AuthHandler:          authHandler,
		UsersHandler:         usersHandler,
		ProjectsHandler:      projectsHandler,
		VendorsHandler:       vendorsHandler,
		ContractsHandler:     contractsHandler,
		MilestonesHandler:    milestonesHandler,
		ReportsHandler:       reportsHandler,
		BillingHandler:       billingHandler,
		VariationsHandler:    variationsHandler,
		DocumentsHandler:     documentsHandler,
		NotificationsHandler: notificationsHandler,
		DashboardHandler:     dashboardHandler,
		JobHandler:           jobHandler,
		Metrics:              metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
