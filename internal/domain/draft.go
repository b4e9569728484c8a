package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderDraft is a fully priced, not yet persisted order. Built fresh per
// checkout attempt; Lines is a snapshot copy, not a live cart reference.
// The ID doubles as the client-supplied idempotency key for the remote
// create call.
type OrderDraft struct {
	ID              uuid.UUID
	UserID          string
	Lines           []CartLine
	DeliveryAddress string
	CustomerName    string
	CustomerPhone   string
	Notes           string
	PaymentMethod   PaymentMethod
	DeliveryMethod  DeliveryMethod
	Zone            string
	Subtotal        float64
	DeliveryCost    float64
	Total           float64
	CreatedAt       time.Time
}

// ToOrder converts the draft to its persisted form in the pending state.
func (d *OrderDraft) ToOrder() *Order {
	items := make([]OrderItem, len(d.Lines))
	for i, l := range d.Lines {
		items[i] = OrderItem{
			ProductID:   l.ProductID,
			ProductName: l.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
	}
	return &Order{
		ID:              d.ID,
		UserID:          d.UserID,
		Status:          OrderStatusPendingSubmit,
		Items:           items,
		TotalAmount:     d.Total,
		DeliveryAddress: d.DeliveryAddress,
		CustomerName:    d.CustomerName,
		CustomerPhone:   d.CustomerPhone,
		Notes:           d.Notes,
		PaymentMethod:   d.PaymentMethod,
		DeliveryMethod:  d.DeliveryMethod,
		DeliveryCost:    d.DeliveryCost,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.CreatedAt,
	}
}

// ProductIDs lists the products included in the draft, used to clear exactly
// those cart lines after a successful submit.
func (d *OrderDraft) ProductIDs() []int64 {
	ids := make([]int64, len(d.Lines))
	for i, l := range d.Lines {
		ids[i] = l.ProductID
	}
	return ids
}
