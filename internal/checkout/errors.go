package checkout

import "fmt"

type ValidationKind string

const (
	KindEmptyCart      ValidationKind = "EMPTY_CART"
	KindInvalidAddress ValidationKind = "INVALID_ADDRESS"
	KindInvalidPhone   ValidationKind = "INVALID_PHONE"
	KindInvalidName    ValidationKind = "INVALID_NAME"
)

// ValidationError is always recoverable locally and is surfaced before any
// network interaction. The Kind is machine-readable; the message is not part
// of the contract.
type ValidationError struct {
	Kind ValidationKind
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("checkout validation failed: %s", e.Kind)
}
