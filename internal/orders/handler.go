package orders

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/satriojati/kedai/internal/domain"
)

// OrderService is the surface the HTTP layer needs from the service.
type OrderService interface {
	Create(ctx context.Context, payload map[string]any, allowStatus bool) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	UpdateStatus(ctx context.Context, id string, payload map[string]any) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
	QRCode(ctx context.Context, id string) ([]byte, error)
}

type Handler struct {
	svc    OrderService
	logger *slog.Logger
}

func NewHandler(svc OrderService, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

// HandleCreate serves the public storefront checkout.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, false)
}

// HandleAdminCreate additionally accepts the status field.
func (h *Handler) HandleAdminCreate(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, true)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, allowStatus bool) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	order, err := h.svc.Create(r.Context(), payload, allowStatus)
	if err != nil {
		h.writeServiceError(w, err, "failed to create order")
		return
	}

	h.logger.Info("order created", "order_id", order.ID, "total", order.Total, "items", len(order.Items))
	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id", nil)
		return
	}

	order, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "failed to get order")
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleQRCode(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id", nil)
		return
	}

	qr, err := h.svc.QRCode(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "failed to get pickup code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(qr); err != nil {
		h.logger.Error("failed to write pickup code", "error", err)
	}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))

	result, err := h.svc.List(r.Context(), ListFilter{
		Status:   domain.OrderStatus(q.Get("status")),
		Search:   q.Get("search"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		h.writeServiceError(w, err, "failed to list orders")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id", nil)
		return
	}

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	order, err := h.svc.UpdateStatus(r.Context(), id, payload)
	if err != nil {
		h.writeServiceError(w, err, "failed to update order status")
		return
	}

	h.logger.Info("order status updated", "order_id", order.ID, "status", order.Status)
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id", nil)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err, "failed to delete order")
		return
	}

	h.logger.Info("order deleted", "order_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps core errors onto the wire: validation and stock
// failures are 400 with specifics, not-found is 404, anything else is a
// logged 500 with a generic message.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, logMsg string) {
	var validationErr *domain.ValidationError
	var notFoundErr *domain.NotFoundError
	var stockErr *domain.StockError

	switch {
	case errors.As(err, &validationErr):
		h.writeError(w, http.StatusBadRequest, validationErr.Message, validationErr.Details)
	case errors.As(err, &stockErr):
		h.writeError(w, http.StatusBadRequest, stockErr.Error(), nil)
	case errors.As(err, &notFoundErr):
		h.writeError(w, http.StatusNotFound, notFoundErr.Message, nil)
	default:
		h.logger.Error(logMsg, "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, details []string) {
	h.writeJSON(w, status, errorResponse{Error: message, Details: details})
}
