package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/cart"
	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/checkout"
	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/domain"
	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/pipeline"
	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/remote"
)

type CheckoutHandler struct {
	cart     *cart.Service
	pipeline *pipeline.Pipeline
	timeout  time.Duration
}

func NewCheckoutHandler(cartSvc *cart.Service, p *pipeline.Pipeline, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		cart:     cartSvc,
		pipeline: p,
		timeout:  timeout,
	}
}

type CheckoutRequestDTO struct {
	DeliveryAddress string `json:"delivery_address"`
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	Notes           string `json:"notes,omitempty"`
	PaymentMethod   string `json:"payment_method"`
	DeliveryMethod  string `json:"delivery_method"`
}

type CheckoutResponseDTO struct {
	OrderID      string  `json:"order_id"`
	Status       string  `json:"status"`
	Subtotal     float64 `json:"subtotal"`
	DeliveryCost float64 `json:"delivery_cost"`
	Total        float64 `json:"total"`
	Zone         string  `json:"zone,omitempty"`
}

// Checkout builds a draft from the current cart and runs the submission
// pipeline. Validation failures never reach the network; a transport
// failure returns 502 with the order id so the client can retry.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	lines, err := h.cart.Snapshot(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "cart_error", err.Error())
		return
	}

	draft, err := checkout.BuildDraft(lines, checkout.DraftInput{
		UserID:          userID,
		DeliveryAddress: req.DeliveryAddress,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		Notes:           req.Notes,
		PaymentMethod:   domain.PaymentMethod(req.PaymentMethod),
		DeliveryMethod:  domain.DeliveryMethod(req.DeliveryMethod),
	})
	if err != nil {
		var ve *checkout.ValidationError
		if errors.As(err, &ve) {
			respondError(w, http.StatusUnprocessableEntity, string(ve.Kind), "checkout validation failed")
			return
		}
		respondError(w, http.StatusInternalServerError, "checkout_error", err.Error())
		return
	}

	orderID, err := h.pipeline.Submit(ctx, draft)
	if err != nil {
		if remote.IsTransport(err) {
			// Order is durable locally; the client decides when to retry.
			respondJSON(w, http.StatusBadGateway, map[string]interface{}{
				"error":    "order submission failed, order kept for retry",
				"code":     "submit_retryable",
				"order_id": orderID.String(),
			})
			return
		}
		respondError(w, http.StatusInternalServerError, "submit_error", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		OrderID:      orderID.String(),
		Status:       string(domain.OrderStatusSubmitted),
		Subtotal:     draft.Subtotal,
		DeliveryCost: draft.DeliveryCost,
		Total:        draft.Total,
		Zone:         draft.Zone,
	})
}

// Retry resubmits a pending order after a transport failure.
func (h *CheckoutHandler) Retry(w http.ResponseWriter, r *http.Request) {
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
		respondError(w, http.StatusInternalServerError, "submit_error", err.Error())
		return
	}
	if order.UserID != userID {
		respondError(w, http.StatusNotFound, "order_not_found", "no such order")
		return
	}

	if err := h.pipeline.Resubmit(ctx, orderID); err != nil {
		switch {
		case errors.Is(err, pipeline.ErrOrderNotFound):
			respondError(w, http.StatusNotFound, "order_not_found", "no such order")
		case errors.Is(err, pipeline.ErrStateConflict):
			respondError(w, http.StatusConflict, "state_conflict", err.Error())
		case remote.IsTransport(err):
			respondError(w, http.StatusBadGateway, "submit_retryable", "remote api unavailable")
		default:
			respondError(w, http.StatusInternalServerError, "submit_error", err.Error())
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"order_id": orderID.String(),
		"status":   string(domain.OrderStatusSubmitted),
	})
}
