package domain

type PaymentOutcomeKind string

const (
	PaymentSuccess   PaymentOutcomeKind = "SUCCESS"
	PaymentFailed    PaymentOutcomeKind = "FAILED"
	PaymentCancelled PaymentOutcomeKind = "CANCELLED"
	PaymentError     PaymentOutcomeKind = "ERROR"
)

// PaymentOutcome is the terminal result of an external payment redirect.
// Derived, never persisted; consumed once to drive an order status change.
// OrderID may be the local order UUID or a provider-side identifier parsed
// from the return URL.
type PaymentOutcome struct {
	Kind    PaymentOutcomeKind
	OrderID string
	Message string
}
