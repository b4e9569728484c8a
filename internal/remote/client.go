package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/domain"
	"github.com/sony/gobreaker/v2"
)

// Client is the HTTP implementation of API. A circuit breaker guards the
// backend so a flapping network does not hammer it with doomed requests.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        "orders-api",
			MaxRequests: 3,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			IsSuccessful: func(err error) bool {
				// A 4xx is a completed round trip, not a backend outage.
				var rej *rejectionError
				return err == nil || errors.As(err, &rej)
			},
		}),
	}
}

type createOrderRequest struct {
	ClientOrderID   string             `json:"client_order_id"`
	UserID          string             `json:"user_id"`
	Items           []domain.OrderItem `json:"items"`
	TotalAmount     float64            `json:"total_amount"`
	DeliveryAddress string             `json:"delivery_address"`
	CustomerName    string             `json:"customer_name"`
	CustomerPhone   string             `json:"customer_phone"`
	Notes           string             `json:"notes,omitempty"`
	PaymentMethod   string             `json:"payment_method"`
	DeliveryMethod  string             `json:"delivery_method"`
	DeliveryCost    float64            `json:"delivery_cost"`
}

type createOrderResponse struct {
	OrderID string `json:"order_id"`
}

func (c *Client) CreateOrder(ctx context.Context, order *domain.Order) (string, error) {
	req := createOrderRequest{
		ClientOrderID:   order.ID.String(),
		UserID:          order.UserID,
		Items:           order.Items,
		TotalAmount:     order.TotalAmount,
		DeliveryAddress: order.DeliveryAddress,
		CustomerName:    order.CustomerName,
		CustomerPhone:   order.CustomerPhone,
		Notes:           order.Notes,
		PaymentMethod:   string(order.PaymentMethod),
		DeliveryMethod:  string(order.DeliveryMethod),
		DeliveryCost:    order.DeliveryCost,
	}

	var resp createOrderResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/orders", req, &resp); err != nil {
		return "", err
	}
	return resp.OrderID, nil
}

func (c *Client) GetOrder(ctx context.Context, remoteID string) (*domain.Order, error) {
	var order domain.Order
	path := "/api/v1/orders/" + url.PathEscape(remoteID)
	if err := c.do(ctx, http.MethodGet, path, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	var orders []*domain.Order
	path := "/api/v1/orders?user_id=" + url.QueryEscape(userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, remoteID string, status domain.OrderStatus) (*domain.Order, error) {
	body := map[string]string{"status": string(status)}
	var order domain.Order
	path := "/api/v1/orders/" + url.PathEscape(remoteID) + "/status"
	if err := c.do(ctx, http.MethodPatch, path, body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	op := method + " " + path

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	data, err := c.breaker.Execute(func() ([]byte, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		payload, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, readErr
		}

		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("server error: %s", resp.Status)
		}
		if resp.StatusCode >= 400 {
			// Client-side rejection counts as a successful round trip for
			// the breaker.
			return payload, &rejectionError{status: resp.Status, body: payload}
		}
		return payload, nil
	})
	if err != nil {
		var rej *rejectionError
		if errors.As(err, &rej) {
			return fmt.Errorf("%w: %s", ErrRejected, rej.status)
		}
		return &TransportError{Op: op, Err: err}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

type rejectionError struct {
	status string
	body   []byte
}

func (e *rejectionError) Error() string {
	return fmt.Sprintf("rejected with %s", e.status)
}
