package billing

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

// Handler serves RA billing endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers billing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Post("/{id}/items", h.AddItems)
	r.Post("/{id}/transition", h.Transition)
	r.Get("/{id}/payments", h.ListPayments)
	r.Post("/{id}/payments", h.CreatePayment)
	r.Post("/payments", h.CreateStandalonePayment)
	r.Post("/payments/{paymentId}/settle", h.SettlePayment)
}

type createBillRequest struct {
	ProjectID  uuid.UUID `json:"projectId" validate:"required"`
	ContractID uuid.UUID `json:"contractId" validate:"required"`
	BillNo     string    `json:"billNo" validate:"required"`
	Title      string    `json:"title"`
	PeriodFrom string    `json:"periodFrom"`
	PeriodTo   string    `json:"periodTo"`
	Notes      string    `json:"notes"`
}

type updateBillRequest struct {
	BillNo     *string `json:"billNo,omitempty"`
	Title      *string `json:"title,omitempty"`
	PeriodFrom string  `json:"periodFrom,omitempty"`
	PeriodTo   string  `json:"periodTo,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

type billItemRequest struct {
	BoqRef      string           `json:"boqRef"`
	Description string           `json:"description" validate:"required"`
	Unit        string           `json:"unit"`
	Quantity    decimal.Decimal  `json:"quantity"`
	Rate        decimal.Decimal  `json:"rate"`
	PreviousQty *decimal.Decimal `json:"previousQty,omitempty"`
	CurrentQty  *decimal.Decimal `json:"currentQty,omitempty"`
}

type addItemsRequest struct {
	Items []billItemRequest `json:"items" validate:"required,min=1,dive"`
}

type transitionRequest struct {
	Status string `json:"status" validate:"required"`
}

type createPaymentRequest struct {
	BillID    *uuid.UUID      `json:"billId,omitempty"`
	PaymentNo string          `json:"paymentNo" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
	PaidAt    string          `json:"paidAt"`
}

type settlePaymentRequest struct {
	Status string `json:"status" validate:"required"`
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
	list, err := h.service.ListBills(r.Context(), ListBillsRequest{
		ProjectID:  projectID,
		ContractID: contractID,
		Status:     r.URL.Query().Get("status"),
	})
	if err != nil {
		h.logger.Error("list bills", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid bill id")
		return
	}
	bill, err := h.service.GetBill(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	periodFrom, err := shared.ParseDate(req.PeriodFrom)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid periodFrom date")
		return
	}
	periodTo, err := shared.ParseDate(req.PeriodTo)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid periodTo date")
		return
	}
	bill, err := h.service.CreateBill(r.Context(), CreateBillInput{
		ProjectID:  req.ProjectID,
		ContractID: req.ContractID,
		BillNo:     req.BillNo,
		Title:      req.Title,
		PeriodFrom: periodFrom,
		PeriodTo:   periodTo,
		Notes:      req.Notes,
	})
	if err != nil {
		h.logger.Error("create bill", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, bill)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid bill id")
		return
	}
	var req updateBillRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	periodFrom, err := shared.ParseDate(req.PeriodFrom)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid periodFrom date")
		return
	}
	periodTo, err := shared.ParseDate(req.PeriodTo)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid periodTo date")
		return
	}
	bill, err := h.service.UpdateBill(r.Context(), id, UpdateBillInput{
		BillNo:     req.BillNo,
		Title:      req.Title,
		PeriodFrom: periodFrom,
		PeriodTo:   periodTo,
		Notes:      req.Notes,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) AddItems(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid bill id")
		return
	}
	var req addItemsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	items := make([]NewItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, NewItemInput{
			BoqRef:      it.BoqRef,
			Description: it.Description,
			Unit:        it.Unit,
			Quantity:    it.Quantity,
			Rate:        it.Rate,
			PreviousQty: it.PreviousQty,
			CurrentQty:  it.CurrentQty,
		})
	}
	bill, err := h.service.AddItems(r.Context(), id, items)
	if err != nil {
		h.logger.Error("add bill items", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid bill id")
		return
	}
	var req transitionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	bill, err := h.service.Transition(r.Context(), shared.IdentityFromContext(r.Context()), id, req.Status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid bill id")
		return
	}
	payments, err := h.service.ListPayments(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payments)
}

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid bill id")
		return
	}
	h.createPayment(w, r, &id)
}

// CreateStandalonePayment records a payment with no bill attached, such as an
// advance or retention release.
func (h *Handler) CreateStandalonePayment(w http.ResponseWriter, r *http.Request) {
	h.createPayment(w, r, nil)
}

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request, billID *uuid.UUID) {
	var req createPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if billID == nil {
		billID = req.BillID
	}
	paidAt, err := shared.ParseDate(req.PaidAt)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid paidAt date")
		return
	}
	payment, err := h.service.CreatePayment(r.Context(), CreatePaymentInput{
		BillID:    billID,
		PaymentNo: req.PaymentNo,
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
		Notes:     req.Notes,
		PaidAt:    paidAt,
	})
	if err != nil {
		h.logger.Error("create payment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) SettlePayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := uuid.Parse(chi.URLParam(r, "paymentId"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid payment id")
		return
	}
	var req settlePaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	payment, err := h.service.SettlePayment(r.Context(), shared.IdentityFromContext(r.Context()), paymentID, req.Status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payment)
}
