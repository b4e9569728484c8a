// Package remote talks to the backend order API. The core treats it as a
// narrow collaborator: create, fetch, list, update status.
package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/domain"
)

// API is the remote order collaborator. All methods may fail with a
// *TransportError, which is retryable and distinct from a rejection.
type API interface {
	// CreateOrder submits the order and returns the server-assigned id.
	// The order's local ID is sent as the idempotency key so the server can
	// deduplicate re-submits.
	CreateOrder(ctx context.Context, order *domain.Order) (string, error)
	GetOrder(ctx context.Context, remoteID string) (*domain.Order, error)
	ListOrders(ctx context.Context, userID string) ([]*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, remoteID string, status domain.OrderStatus) (*domain.Order, error)
}

// ErrRejected means the server understood the request and refused it; not
// retryable as-is.
var ErrRejected = errors.New("remote api rejected the request")

// TransportError wraps network-level failures (connect, timeout, 5xx, open
// circuit). The order stays durable locally and the caller may retry.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is a retryable transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
