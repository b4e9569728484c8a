// Package consumer folds remote-side order status events (admin actions,
// payment confirmations) into the local order lifecycle.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/domain"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// StatusEvent mirrors the payload published by the backend when an order
// changes state. OrderID is the client-assigned order UUID the backend
// echoes back.
type StatusEvent struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// StatusApplier is the slice of the pipeline the consumer needs.
type StatusApplier interface {
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error
}

type Consumer struct {
	applier StatusApplier
	reader  *kafka.Reader
}

func NewConsumer(applier StatusApplier, groupID string, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "order-status",
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{applier: applier, reader: reader}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		log.Printf("error closing kafka reader: %v", err)
	}
}

func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("error reading message: %v", err)
		return
	}

	var event StatusEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		log.Printf("error parsing message: %v", err)
		return
	}

	if err := ApplyEvent(ctx, c.applier, event); err != nil {
		log.Printf("status event for order %s not applied: %v", event.OrderID, err)
	}
}

// ApplyEvent validates and applies one status event. Conflicting
// transitions are reported, not retried: the event stream may replay old
// states after a terminal one.
func ApplyEvent(ctx context.Context, applier StatusApplier, event StatusEvent) error {
	orderID, err := uuid.Parse(event.OrderID)
	if err != nil {
		return errors.New("invalid order id")
	}

	status, ok := domain.ParseOrderStatus(event.Status)
	if !ok {
		return errors.New("unknown status " + event.Status)
	}

	return applier.UpdateStatus(ctx, orderID, status)
}
