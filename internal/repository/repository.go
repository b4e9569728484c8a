// Package repository is the local persistent store for cart lines and
// orders. Consumers depend on the interfaces; the Postgres and in-memory
// implementations are interchangeable and selected at construction time.
package repository

import (
	"context"
	"errors"

	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrLineNotFound  = errors.New("cart line not found")
	ErrOrderNotFound = errors.New("order not found")
	ErrDuplicateID   = errors.New("order with this id already exists")
	ErrStaleStatus   = errors.New("order status changed concurrently")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// CartRepository stores the cart lines of a user keyed by product id.
type CartRepository interface {
	Lines(ctx context.Context, userID string) ([]domain.CartLine, error)
	UpsertLine(ctx context.Context, userID string, line domain.CartLine) error
	UpdateQuantity(ctx context.Context, userID string, productID int64, quantity int) error
	RemoveLine(ctx context.Context, userID string, productID int64) error
	Clear(ctx context.Context, userID string) error
}

// OrderRepository stores orders. ReconcileAndClearCart is the one
// cross-collection operation: it records the server-assigned id, flips the
// order to SUBMITTED and deletes the cart lines that went into the order,
// all visible together or not at all.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetOrderByRemoteID(ctx context.Context, remoteID string) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
	ListOrdersByStatus(ctx context.Context, userID string, status domain.OrderStatus) ([]*domain.Order, error)
	// UpdateOrderStatus flips the order from one status to another; the
	// write fails with ErrStaleStatus when the stored status no longer
	// matches from, so a stale read can never overwrite a newer state.
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) error
	ReconcileAndClearCart(ctx context.Context, id uuid.UUID, remoteID string, userID string, productIDs []int64) error
}

// Store is what the wiring layer constructs: both repositories over one
// storage engine.
type Store interface {
	CartRepository
	OrderRepository
	Close() error
}
