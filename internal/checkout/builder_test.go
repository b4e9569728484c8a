package checkout

import (
	"testing"

	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() DraftInput {
	return DraftInput{
		UserID:          "u1",
		DeliveryAddress: "мкр. Дружба, ул. Ленина, д. 12, кв. 5",
		CustomerName:    "Анна",
		CustomerPhone:   "+7 902 123-45-67",
		PaymentMethod:   domain.PaymentMethodCash,
		DeliveryMethod:  domain.DeliveryMethodCourier,
	}
}

func twoMargheritas() []domain.CartLine {
	return []domain.CartLine{
		{ProductID: 1, Name: "Маргарита", UnitPrice: 650, Quantity: 2},
	}
}

func TestBuildDraft_EmptyCart(t *testing.T) {
	_, err := BuildDraft(nil, validInput())

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, KindEmptyCart, ve.Kind)
}

func TestBuildDraft_ValidationShortCircuits(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DraftInput)
		want   ValidationKind
	}{
		{"blank address", func(in *DraftInput) { in.DeliveryAddress = "  " }, KindInvalidAddress},
		{"short address", func(in *DraftInput) { in.DeliveryAddress = "ул. А, 1" }, KindInvalidAddress},
		{"bad phone", func(in *DraftInput) { in.CustomerPhone = "12345" }, KindInvalidPhone},
		{"foreign phone", func(in *DraftInput) { in.CustomerPhone = "+1 202 555 0100" }, KindInvalidPhone},
		{"blank name", func(in *DraftInput) { in.CustomerName = "" }, KindInvalidName},
		{"one letter name", func(in *DraftInput) { in.CustomerName = "Я" }, KindInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := BuildDraft(twoMargheritas(), in)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.want, ve.Kind)
		})
	}
}

func TestBuildDraft_PhoneVariants(t *testing.T) {
	for _, phone := range []string{"+79021234567", "89021234567", "8 (902) 123-45-67"} {
		in := validInput()
		in.CustomerPhone = phone
		_, err := BuildDraft(twoMargheritas(), in)
		assert.NoErrorf(t, err, "phone %q must be accepted", phone)
	}
}

func TestBuildDraft_FreeDeliveryInDruzhba(t *testing.T) {
	// subtotal 1300 >= threshold 800 in Дружба -> free delivery
	draft, err := BuildDraft(twoMargheritas(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "Дружба", draft.Zone)
	assert.Equal(t, 1300.0, draft.Subtotal)
	assert.Equal(t, 0.0, draft.DeliveryCost)
	assert.Equal(t, 1300.0, draft.Total)
}

func TestBuildDraft_PaidDeliveryInPromuzel(t *testing.T) {
	// subtotal 1300 < threshold 1500 in Промузел -> base cost 300
	in := validInput()
	in.DeliveryAddress = "Промузел, Складской проезд, 3"
	draft, err := BuildDraft(twoMargheritas(), in)
	require.NoError(t, err)

	assert.Equal(t, "Промузел", draft.Zone)
	assert.Equal(t, 1300.0, draft.Subtotal)
	assert.Equal(t, 300.0, draft.DeliveryCost)
	assert.Equal(t, 1600.0, draft.Total)
}

func TestBuildDraft_PickupSkipsDeliveryCost(t *testing.T) {
	in := validInput()
	in.DeliveryMethod = domain.DeliveryMethodPickup
	in.DeliveryAddress = "Промузел, Складской проезд, 3"
	draft, err := BuildDraft(twoMargheritas(), in)
	require.NoError(t, err)

	assert.Equal(t, 0.0, draft.DeliveryCost)
	assert.Equal(t, draft.Subtotal, draft.Total)
}

func TestBuildDraft_SnapshotIsACopy(t *testing.T) {
	lines := twoMargheritas()
	draft, err := BuildDraft(lines, validInput())
	require.NoError(t, err)

	lines[0].Quantity = 99
	assert.Equal(t, 2, draft.Lines[0].Quantity, "draft must not alias caller's slice")
}

func TestBuildDraft_NormalizesContactFields(t *testing.T) {
	in := validInput()
	in.CustomerPhone = "+7 (902) 123-45-67"
	draft, err := BuildDraft(twoMargheritas(), in)
	require.NoError(t, err)

	assert.Equal(t, "79021234567", draft.CustomerPhone)
}

func TestDraftToOrder_ItemsMatchTotals(t *testing.T) {
	draft, err := BuildDraft(twoMargheritas(), validInput())
	require.NoError(t, err)

	order := draft.ToOrder()
	assert.Equal(t, domain.OrderStatusPendingSubmit, order.Status)
	assert.Equal(t, order.TotalAmount-order.DeliveryCost, order.Subtotal())
}
