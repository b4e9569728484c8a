package consumer

import (
	"context"
	"testing"

	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/domain"
	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/pipeline"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockApplier struct {
	orderID uuid.UUID
	status  domain.OrderStatus
	calls   int
	err     error
}

func (m *mockApplier) UpdateStatus(_ context.Context, orderID uuid.UUID, status domain.OrderStatus) error {
	m.calls++
	m.orderID = orderID
	m.status = status
	return m.err
}

func TestApplyEvent_Valid(t *testing.T) {
	applier := &mockApplier{}
	orderID := uuid.New()

	err := ApplyEvent(context.Background(), applier, StatusEvent{
		OrderID: orderID.String(),
		Status:  "CONFIRMED",
	})
	require.NoError(t, err)
	assert.Equal(t, orderID, applier.orderID)
	assert.Equal(t, domain.OrderStatusConfirmed, applier.status)
}

func TestApplyEvent_InvalidOrderID(t *testing.T) {
	applier := &mockApplier{}

	err := ApplyEvent(context.Background(), applier, StatusEvent{
		OrderID: "not-a-uuid",
		Status:  "CONFIRMED",
	})
	require.Error(t, err)
	assert.Zero(t, applier.calls)
}

func TestApplyEvent_UnknownStatus(t *testing.T) {
	applier := &mockApplier{}

	err := ApplyEvent(context.Background(), applier, StatusEvent{
		OrderID: uuid.NewString(),
		Status:  "SHIPPED_TO_MARS",
	})
	require.Error(t, err)
	assert.Zero(t, applier.calls)
}

func TestApplyEvent_StateConflictSurfaces(t *testing.T) {
	applier := &mockApplier{err: pipeline.ErrStateConflict}

	err := ApplyEvent(context.Background(), applier, StatusEvent{
		OrderID: uuid.NewString(),
		Status:  "CANCELLED",
	})
	assert.ErrorIs(t, err, pipeline.ErrStateConflict)
}
