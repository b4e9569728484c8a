package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	// OrderStatusPendingSubmit means the order is durable locally but the
	// remote create call has not succeeded yet.
	OrderStatusPendingSubmit OrderStatus = "PENDING_SUBMIT"
	OrderStatusSubmitted     OrderStatus = "SUBMITTED"
	OrderStatusConfirmed     OrderStatus = "CONFIRMED"
	OrderStatusCancelled     OrderStatus = "CANCELLED"
	OrderStatusFailed        OrderStatus = "FAILED"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusConfirmed || s == OrderStatusCancelled
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// ParseOrderStatus validates a status string coming from the wire.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPendingSubmit, OrderStatusSubmitted,
		OrderStatusConfirmed, OrderStatusCancelled, OrderStatusFailed:
		return OrderStatus(s), true
	}
	return "", false
}

var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPendingSubmit: {OrderStatusSubmitted, OrderStatusCancelled, OrderStatusFailed},
	OrderStatusSubmitted:     {OrderStatusConfirmed, OrderStatusCancelled, OrderStatusFailed},
	// A late payment confirmation may still rescue a failed order.
	OrderStatusFailed: {OrderStatusConfirmed, OrderStatusCancelled},
}

// CanTransitionTo reports whether a status change is allowed. Terminal
// statuses accept nothing.
func CanTransitionTo(from, to OrderStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodCard   PaymentMethod = "CARD_ON_DELIVERY"
	PaymentMethodOnline PaymentMethod = "ONLINE"
)

type DeliveryMethod string

const (
	DeliveryMethodCourier DeliveryMethod = "COURIER"
	DeliveryMethodPickup  DeliveryMethod = "PICKUP"
)

type OrderItem struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Order is the persisted form of a submitted checkout. ID is assigned
// locally before the remote call; RemoteID arrives from the server on a
// successful create and may stay empty until then.
type Order struct {
	ID              uuid.UUID      `json:"id"`
	RemoteID        string         `json:"remote_id,omitempty"`
	UserID          string         `json:"user_id"`
	Status          OrderStatus    `json:"status"`
	Items           []OrderItem    `json:"items"`
	TotalAmount     float64        `json:"total_amount"`
	DeliveryAddress string         `json:"delivery_address"`
	CustomerName    string         `json:"customer_name"`
	CustomerPhone   string         `json:"customer_phone"`
	Notes           string         `json:"notes,omitempty"`
	PaymentMethod   PaymentMethod  `json:"payment_method"`
	DeliveryMethod  DeliveryMethod `json:"delivery_method"`
	DeliveryCost    float64        `json:"delivery_cost"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Subtotal is the items total, always TotalAmount - DeliveryCost at creation.
func (o *Order) Subtotal() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.UnitPrice * float64(it.Quantity)
	}
	return sum
}
