package milestones

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/buildflow/buildflow/internal/platform/httpx"
	"github.com/buildflow/buildflow/internal/shared"
)

// Handler serves milestone endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers milestone routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type createMilestoneRequest struct {
	ProjectID   uuid.UUID        `json:"projectId" validate:"required"`
	ContractID  *uuid.UUID       `json:"contractId"`
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description"`
	DueDate     string           `json:"dueDate"`
	Amount      *decimal.Decimal `json:"amount"`
	Percentage  *decimal.Decimal `json:"percentage"`
}

type updateMilestoneRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	DueDate     string           `json:"dueDate,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Percentage  *decimal.Decimal `json:"percentage,omitempty"`
	Status      *string          `json:"status,omitempty"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.QueryUUID(r, "projectId")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid projectId")
		return
	}
	contractID, err := httpx.QueryUUID(r, "contractId")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid contractId")
		return
	}
	list, err := h.service.List(r.Context(), ListMilestonesRequest{ProjectID: projectID, ContractID: contractID})
	if err != nil {
		h.logger.Error("list milestones", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid milestone id")
		return
	}
	milestone, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, milestone)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMilestoneRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	due, err := shared.ParseDate(req.DueDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid due date")
		return
	}
	milestone, err := h.service.Create(r.Context(), CreateMilestoneInput{
		ProjectID:   req.ProjectID,
		ContractID:  req.ContractID,
		Name:        req.Name,
		Description: req.Description,
		DueDate:     due,
		Amount:      req.Amount,
		Percentage:  req.Percentage,
	})
	if err != nil {
		h.logger.Error("create milestone", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, milestone)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid milestone id")
		return
	}
	var req updateMilestoneRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	due, err := shared.ParseDate(req.DueDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid due date")
		return
	}
	milestone, err := h.service.Update(r.Context(), id, UpdateMilestoneInput{
		Name:        req.Name,
		Description: req.Description,
		DueDate:     due,
		Amount:      req.Amount,
		Percentage:  req.Percentage,
		Status:      req.Status,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, milestone)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid milestone id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
