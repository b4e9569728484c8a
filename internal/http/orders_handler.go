package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/domain"
	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/pipeline"
	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/remote"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type OrdersHandler struct {
	pipeline *pipeline.Pipeline
	timeout  time.Duration
}

func NewOrdersHandler(p *pipeline.Pipeline, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		pipeline: p,
		timeout:  timeout,
	}
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var (
		orders []*domain.Order
		err    error
	)
	if r.URL.Query().Get("pending") == "true" {
		orders, err = h.pipeline.PendingOrders(ctx, userID)
	} else {
		orders, err = h.pipeline.UserOrders(ctx, userID)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "orders_error", err.Error())
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	order, err := h.pipeline.Order(ctx, orderID)
	if err != nil {
		if errors.Is(err, pipeline.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "order_not_found", "no such order")
			return
		}
		respondError(w, http.StatusInternalServerError, "orders_error", err.Error())
		return
	}
	if order.UserID != userID {
		// Another user's order is indistinguishable from a missing one.
		respondError(w, http.StatusNotFound, "order_not_found", "no such order")
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// CheckStatus forces a remote status fetch, the explicit fallback when a
// payment redirect went unrecognized.
func (h *OrdersHandler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	owned, err := h.pipeline.Order(ctx, orderID)
	if err != nil {
		if errors.Is(err, pipeline.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "order_not_found", "no such order")
			return
		}
		respondError(w, http.StatusInternalServerError, "orders_error", err.Error())
		return
	}
	if owned.UserID != userID {
		respondError(w, http.StatusNotFound, "order_not_found", "no such order")
		return
	}

	order, err := h.pipeline.CheckStatus(ctx, orderID)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrOrderNotFound):
			respondError(w, http.StatusNotFound, "order_not_found", "no such order")
		case remote.IsTransport(err):
			respondError(w, http.StatusBadGateway, "remote_unavailable", "could not reach order api")
		default:
			respondError(w, http.StatusInternalServerError, "orders_error", err.Error())
		}
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func orderIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return uuid.Nil, false
	}
	return orderID, true
}
