// Package checkout assembles a priced, validated order draft from the cart
// and the customer's checkout form.
package checkout

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/domain"
	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/pricing"
	"github.com/google/uuid"
)

const (
	minAddressLen = 10
	minNameLen    = 2
)

type DraftInput struct {
	UserID          string
	DeliveryAddress string
	CustomerName    string
	CustomerPhone   string
	Notes           string
	PaymentMethod   domain.PaymentMethod
	DeliveryMethod  domain.DeliveryMethod
}

// BuildDraft validates the input and produces an immutable priced draft.
// Validation short-circuits on the first failure. Pricing uses only the
// snapshotted line prices; the catalog is never consulted here.
func BuildDraft(lines []domain.CartLine, in DraftInput) (*domain.OrderDraft, error) {
	if len(lines) == 0 {
		return nil, &ValidationError{Kind: KindEmptyCart}
	}
	if addr := strings.TrimSpace(in.DeliveryAddress); utf8.RuneCountInString(addr) < minAddressLen {
		return nil, &ValidationError{Kind: KindInvalidAddress}
	}
	if !validPhone(in.CustomerPhone) {
		return nil, &ValidationError{Kind: KindInvalidPhone}
	}
	if name := strings.TrimSpace(in.CustomerName); utf8.RuneCountInString(name) < minNameLen {
		return nil, &ValidationError{Kind: KindInvalidName}
	}

	snapshot := domain.CopyLines(lines)
	subtotal := domain.Subtotal(snapshot)

	var zoneName string
	var deliveryCost float64
	if in.DeliveryMethod == domain.DeliveryMethodPickup {
		// Self-pickup skips zone pricing entirely.
		deliveryCost = 0
	} else {
		zone := pricing.ResolveZone(in.DeliveryAddress)
		zoneName = zone.Name
		deliveryCost = pricing.Cost(zone, subtotal)
	}

	return &domain.OrderDraft{
		ID:              uuid.New(),
		UserID:          in.UserID,
		Lines:           snapshot,
		DeliveryAddress: strings.TrimSpace(in.DeliveryAddress),
		CustomerName:    strings.TrimSpace(in.CustomerName),
		CustomerPhone:   normalizePhone(in.CustomerPhone),
		Notes:           strings.TrimSpace(in.Notes),
		PaymentMethod:   in.PaymentMethod,
		DeliveryMethod:  in.DeliveryMethod,
		Zone:            zoneName,
		Subtotal:        subtotal,
		DeliveryCost:    deliveryCost,
		Total:           subtotal + deliveryCost,
		CreatedAt:       time.Now(),
	}, nil
}

// validPhone accepts Russian national numbers: after stripping separators,
// an 11-digit number starting with 7 or 8 (the leading "+" is allowed).
func validPhone(phone string) bool {
	digits := normalizePhone(phone)
	if len(digits) != 11 {
		return false
	}
	if digits[0] != '7' && digits[0] != '8' {
		return false
	}
	for _, r := range digits {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
