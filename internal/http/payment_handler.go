package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/payment"
	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/pipeline"
)

type PaymentHandler struct {
	pipeline *pipeline.Pipeline
	timeout  time.Duration
}

func NewPaymentHandler(p *pipeline.Pipeline, timeout time.Duration) *PaymentHandler {
	return &PaymentHandler{
		pipeline: p,
		timeout:  timeout,
	}
}

type PaymentReturnDTO struct {
	ReturnURL string `json:"return_url"`
	OrderID   string `json:"order_id,omitempty"`
}

// PaymentReturn classifies the redirect URL the payment provider sent the
// user back with. An unrecognized URL yields 202 and no state change; the
// client should fall back to an explicit status check.
func (h *PaymentHandler) PaymentReturn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req PaymentReturnDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ReturnURL == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "return_url is required")
		return
	}

	resolver := payment.NewResolver(req.OrderID)
	outcome, ok := resolver.Classify(req.ReturnURL)
	if !ok {
		respondJSON(w, http.StatusAccepted, map[string]string{
			"status": "pending",
			"hint":   "redirect not recognized, use the order status check",
		})
		return
	}

	if outcome.OrderID == "" {
		respondError(w, http.StatusBadRequest, "missing_order_id",
			"no order id known and none found in the return url")
		return
	}

	if err := h.pipeline.ResolvePayment(ctx, outcome); err != nil {
		switch {
		case errors.Is(err, pipeline.ErrOrderNotFound):
			respondError(w, http.StatusNotFound, "order_not_found", "no such order")
		case errors.Is(err, pipeline.ErrStateConflict):
			respondError(w, http.StatusConflict, "state_conflict", err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "payment_error", err.Error())
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"outcome":  string(outcome.Kind),
		"order_id": outcome.OrderID,
	})
}

type NavigationCheckDTO struct {
	URL string `json:"url"`
}

// CheckNavigation tells the client whether a payment-flow URL may be opened.
// Non-HTTP schemes (banking deeplinks without a handler) are blocked.
func (h *PaymentHandler) CheckNavigation(w http.ResponseWriter, r *http.Request) {
	var req NavigationCheckDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := payment.CheckNavigation(req.URL); err != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"allowed": false})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"allowed": true})
}
