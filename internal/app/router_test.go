package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/buildflow/buildflow/internal/auth"
	"github.com/buildflow/buildflow/internal/billing"
	"github.com/buildflow/buildflow/internal/contracts"
	"github.com/buildflow/buildflow/internal/dashboard"
	"github.com/buildflow/buildflow/internal/documents"
	"github.com/buildflow/buildflow/internal/milestones"
	"github.com/buildflow/buildflow/internal/notifications"
	"github.com/buildflow/buildflow/internal/projects"
	"github.com/buildflow/buildflow/internal/reports"
	"github.com/buildflow/buildflow/internal/users"
	"github.com/buildflow/buildflow/internal/variations"
	"github.com/buildflow/buildflow/internal/vendors"
	"github.com/buildflow/buildflow/jobs"
)

// newTestRouter mounts the full route tree with no backing services; the
// tests below only exercise the middleware gates in front of the handlers.
func newTestRouter(t *testing.T) (http.Handler, *auth.TokenIssuer) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenIssuer("router-test-secret", time.Hour)
	mw := auth.Middleware{Tokens: tokens, Logger: logger}

	return NewRouter(RouterParams{
		Logger:               logger,
		AuthMiddleware:       mw,
		AuthHandler:          auth.NewHandler(logger, nil),
		UsersHandler:         users.NewHandler(logger, nil, mw),
		ProjectsHandler:      projects.NewHandler(logger, nil),
		VendorsHandler:       vendors.NewHandler(logger, nil),
		ContractsHandler:     contracts.NewHandler(logger, nil),
		MilestonesHandler:    milestones.NewHandler(logger, nil),
		ReportsHandler:       reports.NewHandler(logger, nil, time.Hour),
		BillingHandler:       billing.NewHandler(logger, nil),
		VariationsHandler:    variations.NewHandler(logger, nil),
		DocumentsHandler:     documents.NewHandler(logger, nil),
		NotificationsHandler: notifications.NewHandler(logger, nil),
		DashboardHandler:     dashboard.NewHandler(logger, nil),
		JobHandler:           jobs.NewHandler(nil, nil, logger),
	}), tokens
}

func bearer(t *testing.T, tokens *auth.TokenIssuer, role string) string {
	t.Helper()
	token, err := tokens.Issue(&auth.User{
		ID:       uuid.New(),
		Email:    role + "@buildflow.test",
		Role:     role,
		IsActive: true,
	})
	require.NoError(t, err)
	return "Bearer " + token
}

func TestJobRoutesRejectAnonymous(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/jobs/overdue-scan", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJobRoutesAdminOnly(t *testing.T) {
	router, tokens := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/jobs/overdue-scan", nil)
	req.Header.Set("Authorization", bearer(t, tokens, users.RoleEngineer))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Past the gate; this router has no queue client wired.
	req = httptest.NewRequest(http.MethodPost, "/jobs/overdue-scan", nil)
	req.Header.Set("Authorization", bearer(t, tokens, users.RoleAdmin))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
