package transactions

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/pennywise-app/pennywise/internal/auth"
	"github.com/pennywise-app/pennywise/internal/platform/httpx"
	"github.com/pennywise-app/pennywise/internal/shared"
)

// Handler wires the HTTP endpoints of the transaction service.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	jwtSecret []byte
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, jwtSecret []byte) *Handler {
	return &Handler{logger: logger, service: service, jwtSecret: jwtSecret}
}

// MountRoutes registers the transaction routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(h.jwtSecret))
		r.Post("/transactions", h.handleCreate)
		r.Get("/transactions", h.handleList)
		r.Get("/transactions/summary", h.handleSummary)
		r.Get("/transactions/categories/top", h.handleTopCategories)
		r.Get("/transactions/{id}", h.handleGet)
		r.Put("/transactions/{id}", h.handleUpdate)
		r.Delete("/transactions/{id}", h.handleDelete)
	})
}

// transactionRequest is the write payload. Field names are part of the
// stable client contract; invariant checks live in Validate.
type transactionRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	Type            string          `json:"type"`
	Date            *time.Time      `json:"date"`
	Tags            []string        `json:"tags"`
	IsRecurring     bool            `json:"isRecurring"`
	RecurringPeriod string          `json:"recurringPeriod"`
}

func (req *transactionRequest) params() CreateParams {
	params := CreateParams{
		Amount:          req.Amount,
		Description:     req.Description,
		Category:        Category(req.Category),
		Type:            Type(req.Type),
		Tags:            req.Tags,
		IsRecurring:     req.IsRecurring,
		RecurringPeriod: RecurringPeriod(req.RecurringPeriod),
	}
	if req.Date != nil {
		params.Date = *req.Date
	}
	return params
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}

	txn, err := h.service.Create(r.Context(), shared.UserIDFromContext(r.Context()), req.params())
	if err != nil {
		h.respondServiceError(w, "create transaction", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, txn)
}

type listResponse struct {
	Items      []Transaction     `json:"items"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter, page, pageSize, err := parseListQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	filter.UserID = shared.UserIDFromContext(r.Context())

	items, pagination, err := h.service.FindForUser(r.Context(), filter, page, pageSize)
	if err != nil {
		h.respondServiceError(w, "list transactions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Items: items, Pagination: pagination})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	txn, err := h.service.GetByID(r.Context(), shared.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, "get transaction", err)
		return
	}
	httpx.JSON(w, http.StatusOK, txn)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}

	txn, err := h.service.Update(r.Context(), shared.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), req.params())
	if err != nil {
		h.respondServiceError(w, "update transaction", err)
		return
	}
	httpx.JSON(w, http.StatusOK, txn)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(r.Context(), shared.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, "delete transaction", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetSummary(r.Context(),
		shared.UserIDFromContext(r.Context()), r.URL.Query().Get("period"))
	if err != nil {
		h.respondServiceError(w, "get summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) handleTopCategories(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)
	limit := queryInt(r, "limit", 10)

	top, err := h.service.GetTopCategories(r.Context(), shared.UserIDFromContext(r.Context()), days, limit)
	if err != nil {
		h.respondServiceError(w, "top categories", err)
		return
	}
	httpx.JSON(w, http.StatusOK, top)
}

func parseListQuery(r *http.Request) (Filter, int, int, error) {
	var filter Filter
	query := r.URL.Query()

	if raw := query.Get("category"); raw != "" {
		category := Category(raw)
		if !category.Valid() {
			return filter, 0, 0, shared.NewValidationError("category", "unknown category")
		}
		filter.Category = &category
	}
	if raw := query.Get("type"); raw != "" {
		typ := Type(raw)
		if !typ.Valid() {
			return filter, 0, 0, shared.NewValidationError("type", "must be income or expense")
		}
		filter.Type = &typ
	}
	if raw := query.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, 0, 0, shared.NewValidationError("from", "must be RFC3339")
		}
		filter.From = &from
	}
	if raw := query.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, 0, 0, shared.NewValidationError("to", "must be RFC3339")
		}
		filter.To = &to
	}

	return filter, queryInt(r, "page", 1), queryInt(r, "pageSize", shared.DefaultPageSize), nil
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	if _, ok := shared.AsValidation(err); !ok {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
