package domain

// DeliveryZone is a named flat-rate delivery pricing region. Immutable,
// defined in a static table, never persisted per user.
type DeliveryZone struct {
	Name                  string
	BaseCost              float64
	FreeDeliveryThreshold float64
}
