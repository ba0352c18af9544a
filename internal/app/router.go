package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/buildflow/buildflow/internal/auth"
	"github.com/buildflow/buildflow/internal/billing"
	"github.com/buildflow/buildflow/internal/contracts"
	"github.com/buildflow/buildflow/internal/dashboard"
	"github.com/buildflow/buildflow/internal/documents"
	"github.com/buildflow/buildflow/internal/milestones"
	"github.com/buildflow/buildflow/internal/notifications"
	"github.com/buildflow/buildflow/internal/observability"
	"github.com/buildflow/buildflow/internal/projects"
	"github.com/buildflow/buildflow/internal/reports"
	"github.com/buildflow/buildflow/internal/users"
	"github.com/buildflow/buildflow/internal/variations"
	"github.com/buildflow/buildflow/internal/vendors"
	"github.com/buildflow/buildflow/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	AuthMiddleware auth.Middleware

	AuthHandler          *auth.Handler
	UsersHandler         *users.Handler
	ProjectsHandler      *projects.Handler
	VendorsHandler       *vendors.Handler
	ContractsHandler     *contracts.Handler
	MilestonesHandler    *milestones.Handler
	ReportsHandler       *reports.Handler
	BillingHandler       *billing.Handler
	VariationsHandler    *variations.Handler
	DocumentsHandler     *documents.Handler
	NotificationsHandler *notifications.Handler
	DashboardHandler     *dashboard.Handler
	JobHandler           *jobs.Handler
	Metrics              *observability.Metrics
}

// NewRouter constructs the chi.Router with BuildFlow defaults. Everything
// under /api/v1 except /api/v1/auth requires a valid bearer token.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Auth:    params.AuthMiddleware,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)

		r.Group(func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireAuth)

			r.Route("/users", params.UsersHandler.MountRoutes)
			r.Route("/projects", params.ProjectsHandler.MountRoutes)
			r.Route("/vendors", params.VendorsHandler.MountRoutes)
			r.Route("/contracts", params.ContractsHandler.MountRoutes)
			r.Route("/milestones", params.MilestonesHandler.MountRoutes)
			r.Route("/reports", params.ReportsHandler.MountRoutes)
			r.Route("/bills", params.BillingHandler.MountRoutes)
			r.Route("/variations", params.VariationsHandler.MountRoutes)
			r.Route("/documents", params.DocumentsHandler.MountRoutes)
			r.Route("/notifications", params.NotificationsHandler.MountRoutes)
			r.Route("/dashboard", params.DashboardHandler.MountRoutes)
		})
	})

	if params.JobHandler != nil {
		r.Group(func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireAuth)
			r.Use(params.AuthMiddleware.RequireRole(users.RoleAdmin))
			r.Route("/jobs", params.JobHandler.MountRoutes)
		})
	}

	return r
}
