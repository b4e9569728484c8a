package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/cart"
	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/domain"
	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/repository"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	svc     *cart.Service
	timeout time.Duration
}

func NewCartHandler(svc *cart.Service, timeout time.Duration) *CartHandler {
	return &CartHandler{
		svc:     svc,
		timeout: timeout,
	}
}

// AddItemRequestDTO carries the product snapshot taken client-side at add
// time. The price is deliberately not re-fetched from the catalog.
type AddItemRequestDTO struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	ImageURL  string  `json:"image_url,omitempty"`
	Quantity  int     `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}
	if req.UnitPrice < 0 {
		respondError(w, http.StatusBadRequest, "invalid_price", "unit_price must not be negative")
		return
	}

	product := domain.Product{
		ID:       req.ProductID,
		Name:     req.Name,
		Price:    req.UnitPrice,
		ImageURL: req.ImageURL,
	}
	if err := h.svc.Add(ctx, userID, product, req.Quantity); err != nil {
		respondError(w, http.StatusInternalServerError, "cart_error", err.Error())
		return
	}

	h.respondSnapshot(ctx, w, userID, http.StatusCreated)
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	h.respondSnapshot(ctx, w, userID, http.StatusOK)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.svc.SetQuantity(ctx, userID, productID, req.Quantity); err != nil {
		if errors.Is(err, repository.ErrLineNotFound) {
			respondError(w, http.StatusNotFound, "line_not_found", "no such cart line")
			return
		}
		respondError(w, http.StatusInternalServerError, "cart_error", err.Error())
		return
	}

	h.respondSnapshot(ctx, w, userID, http.StatusOK)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	if err := h.svc.Remove(ctx, userID, productID); err != nil {
		if errors.Is(err, repository.ErrLineNotFound) {
			respondError(w, http.StatusNotFound, "line_not_found", "no such cart line")
			return
		}
		respondError(w, http.StatusInternalServerError, "cart_error", err.Error())
		return
	}

	h.respondSnapshot(ctx, w, userID, http.StatusOK)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	if err := h.svc.Clear(ctx, userID); err != nil {
		respondError(w, http.StatusInternalServerError, "cart_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"items": []domain.CartLine{}, "subtotal": 0})
}

func (h *CartHandler) respondSnapshot(ctx context.Context, w http.ResponseWriter, userID string, status int) {
	lines, err := h.svc.Snapshot(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "cart_error", err.Error())
		return
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	respondJSON(w, status, map[string]interface{}{
		"items":    lines,
		"subtotal": domain.Subtotal(lines),
	})
}
