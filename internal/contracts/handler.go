package contracts

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

// Handler serves contract endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers contract routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type createContractRequest struct {
	ProjectID   uuid.UUID       `json:"projectId" validate:"required"`
	VendorID    uuid.UUID       `json:"vendorId" validate:"required"`
	ContractNo  string          `json:"contractNo" validate:"required"`
	Title       string          `json:"title" validate:"required"`
	Value       decimal.Decimal `json:"value"`
	StartDate   string          `json:"startDate" validate:"required"`
	EndDate     string          `json:"endDate"`
	Description string          `json:"description"`
}

type updateContractRequest struct {
	Title       *string          `json:"title,omitempty"`
	Value       *decimal.Decimal `json:"value,omitempty"`
	StartDate   string           `json:"startDate,omitempty"`
	EndDate     string           `json:"endDate,omitempty"`
	Description *string          `json:"description,omitempty"`
	Status      *string          `json:"status,omitempty"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.QueryUUID(r, "projectId")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid projectId")
		return
	}
	vendorID, err := httpx.QueryUUID(r, "vendorId")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid vendorId")
		return
	}
	list, err := h.service.List(r.Context(), ListContractsRequest{ProjectID: projectID, VendorID: vendorID})
	if err != nil {
		h.logger.Error("list contracts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid contract id")
		return
	}
	contract, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, contract)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createContractRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	start, err := shared.ParseDate(req.StartDate)
	if err != nil || start == nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid start date")
		return
	}
	end, err := shared.ParseDate(req.EndDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	contract, err := h.service.Create(r.Context(), CreateContractInput{
		ProjectID:   req.ProjectID,
		VendorID:    req.VendorID,
		ContractNo:  req.ContractNo,
		Title:       req.Title,
		Value:       req.Value,
		StartDate:   *start,
		EndDate:     end,
		Description: req.Description,
	})
	if err != nil {
		h.logger.Error("create contract", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, contract)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid contract id")
		return
	}
	var req updateContractRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	start, err := shared.ParseDate(req.StartDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	end, err := shared.ParseDate(req.EndDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	contract, err := h.service.Update(r.Context(), id, UpdateContractInput{
		Title:       req.Title,
		Value:       req.Value,
		StartDate:   start,
		EndDate:     end,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, contract)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid contract id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
