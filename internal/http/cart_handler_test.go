package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/cache"
	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/cart"
	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCartRouter() (*chi.Mux, *repository.MemoryStore) {
	store := repository.NewMemoryStore()
	svc := cart.NewService(store, cache.NewMemoryCache())
	handler := NewCartHandler(svc, 5*time.Second)

	r := chi.NewRouter()
	r.Use(UserIDMiddleware)
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", handler.GetCart)
		r.Post("/items", handler.AddItem)
		r.Put("/items/{product_id}", handler.UpdateQuantity)
		r.Delete("/items/{product_id}", handler.RemoveItem)
		r.Delete("/", handler.ClearCart)
	})
	return r, store
}

type cartViewDTO struct {
	Items []struct {
		ProductID int64   `json:"product_id"`
		Quantity  int     `json:"quantity"`
		UnitPrice float64 `json:"unit_price"`
	} `json:"items"`
	Subtotal float64 `json:"subtotal"`
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-User-ID", "u1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAddItem_ReturnsUpdatedCart(t *testing.T) {
	r, _ := newCartRouter()

	rec := doJSON(t, r, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{
		ProductID: 1, Name: "Маргарита", UnitPrice: 650, Quantity: 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var view cartViewDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, 1300.0, view.Subtotal)
}

func TestAddItem_RejectsBadQuantity(t *testing.T) {
	r, _ := newCartRouter()

	rec := doJSON(t, r, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{
		ProductID: 1, Name: "Маргарита", UnitPrice: 650, Quantity: 0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddItem_Unauthorized(t *testing.T) {
	r, _ := newCartRouter()

	body, _ := json.Marshal(AddItemRequestDTO{ProductID: 1, Name: "x", UnitPrice: 1, Quantity: 1})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	r, _ := newCartRouter()

	doJSON(t, r, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{
		ProductID: 1, Name: "Маргарита", UnitPrice: 650, Quantity: 2,
	})
	rec := doJSON(t, r, http.MethodPut, "/api/v1/cart/items/1", UpdateQuantityRequestDTO{Quantity: 0})
	require.Equal(t, http.StatusOK, rec.Code)

	var view cartViewDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Empty(t, view.Items)
}

func TestRemoveItem_NotFound(t *testing.T) {
	r, _ := newCartRouter()

	rec := doJSON(t, r, http.MethodDelete, "/api/v1/cart/items/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClearCart(t *testing.T) {
	r, _ := newCartRouter()

	doJSON(t, r, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{
		ProductID: 1, Name: "Маргарита", UnitPrice: 650, Quantity: 2,
	})
	rec := doJSON(t, r, http.MethodDelete, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/v1/cart", nil)
	var view cartViewDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Empty(t, view.Items)
}
