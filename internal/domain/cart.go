package domain

import "time"

// Product is the catalog view of an item at the moment it is added to the
// cart. Only the fields needed for the price snapshot are carried.
type Product struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url,omitempty"`
}

// CartLine is one product position in the cart. UnitPrice is snapshotted at
// add time and never re-read from the catalog, so the cart total is stable
// against mid-session price changes.
type CartLine struct {
	ProductID int64     `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice float64   `json:"unit_price"`
	ImageURL  string    `json:"image_url,omitempty"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l CartLine) LineTotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// Subtotal sums line totals over the snapshotted prices.
func Subtotal(lines []CartLine) float64 {
	var sum float64
	for _, l := range lines {
		sum += l.LineTotal()
	}
	return sum
}

// CopyLines returns an independent copy so a draft cannot alias live cart state.
func CopyLines(lines []CartLine) []CartLine {
	out := make([]CartLine, len(lines))
	copy(out, lines)
	return out
}
