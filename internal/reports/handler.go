package reports

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/buildflow/buildflow/internal/platform/httpx"
	"github.com/buildflow/buildflow/internal/shared"
)

// Photo uploads are capped at 10 MiB.
const maxPhotoSize = 10 << 20

// Handler serves daily report endpoints.
type Handler struct {
	logger       *slog.Logger
	service      *Service
	validate     *validator.Validate
	signedURLTTL time.Duration
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, signedURLTTL time.Duration) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), signedURLTTL: signedURLTTL}
}

// MountRoutes registers daily report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/photos", h.UploadPhoto)
	r.Get("/{id}/photos", h.ListPhotos)
}

type createReportRequest struct {
	ProjectID  uuid.UUID `json:"projectId" validate:"required"`
	ReportDate string    `json:"reportDate" validate:"required"`
	Weather    string    `json:"weather"`
	Workforce  *int      `json:"workforce"`
	Progress   string    `json:"progress"`
	Issues     string    `json:"issues"`
}

type updateReportRequest struct {
	Weather   *string `json:"weather,omitempty"`
	Workforce *int    `json:"workforce,omitempty"`
	Progress  *string `json:"progress,omitempty"`
	Issues    *string `json:"issues,omitempty"`
}

type photoResponse struct {
	ReportPhoto
	URL string `json:"url,omitempty"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.QueryUUID(r, "projectId")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid projectId")
		return
	}
	from, err := shared.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid from date")
		return
	}
	to, err := shared.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid to date")
		return
	}
	list, err := h.service.List(r.Context(), ListReportsRequest{ProjectID: projectID, From: from, To: to})
	if err != nil {
		h.logger.Error("list reports", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid report id")
		return
	}
	report, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, err := shared.ParseDate(req.ReportDate)
	if err != nil || date == nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid report date")
		return
	}
	report, err := h.service.Create(r.Context(), shared.IdentityFromContext(r.Context()), CreateReportInput{
		ProjectID:   req.ProjectID,
		ReportDate:  *date,
		Weather:     req.Weather,
		WorkforceNo: req.Workforce,
		Progress:    req.Progress,
		Issues:      req.Issues,
	})
	if err != nil {
		h.logger.Error("create report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, report)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid report id")
		return
	}
	var req updateReportRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	report, err := h.service.Update(r.Context(), id, UpdateReportInput{
		Weather:     req.Weather,
		WorkforceNo: req.Workforce,
		Progress:    req.Progress,
		Issues:      req.Issues,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid report id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// UploadPhoto accepts a multipart form with a "photo" file and optional
// "caption" field.
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid report id")
		return
	}
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "expected multipart form")
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "photo file required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxPhotoSize))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unreadable photo")
		return
	}
	photo, err := h.service.AttachPhoto(r.Context(), id, header.Filename,
		header.Header.Get("Content-Type"), r.FormValue("caption"), data)
	if err != nil {
		h.logger.Error("upload report photo", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, photo)
}

// ListPhotos returns photo records with presigned download URLs.
func (h *Handler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid report id")
		return
	}
	report, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]photoResponse, 0, len(report.Photos))
	for _, p := range report.Photos {
		url, err := h.service.PhotoURL(r.Context(), p.ObjectKey, h.signedURLTTL)
		if err != nil {
			h.logger.Warn("presign report photo", slog.String("key", p.ObjectKey), slog.Any("error", err))
		}
		out = append(out, photoResponse{ReportPhoto: p, URL: url})
	}
	httpx.JSON(w, http.StatusOK, out)
}
