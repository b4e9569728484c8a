// Package payment classifies the return leg of an external payment
// redirect. The app never calls the payment provider itself; it only sees
// the URL the provider sends the user back with.
package payment

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/domain"
)

type State string

const (
	StateAwaitingRedirect State = "AWAITING_REDIRECT"
	StateResolved         State = "RESOLVED"
)

// Resolver classifies inbound redirect URLs for one checkout attempt. It
// stays in AWAITING_REDIRECT until a URL carries a recognizable marker;
// ordinary page navigation must never be mistaken for a payment result.
type Resolver struct {
	mu           sync.Mutex
	state        State
	knownOrderID string
	outcome      domain.PaymentOutcome
}

// NewResolver creates a resolver. knownOrderID may be empty; when set it
// always wins over an id parsed out of the URL.
func NewResolver(knownOrderID string) *Resolver {
	return &Resolver{
		state:        StateAwaitingRedirect,
		knownOrderID: knownOrderID,
	}
}

func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Classify inspects a return URL. The boolean is false while the resolver
// is still awaiting a recognizable redirect. Classification is
// deterministic and marker priority is fixed: success before fail before
// cancel before error, because provider URLs may contain several partial
// matches.
func (r *Resolver) Classify(returnURL string) (domain.PaymentOutcome, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateResolved {
		return r.outcome, true
	}

	outcome, ok := classify(returnURL, r.knownOrderID)
	if !ok {
		return domain.PaymentOutcome{}, false
	}

	r.state = StateResolved
	r.outcome = outcome
	return outcome, true
}

func classify(returnURL, knownOrderID string) (domain.PaymentOutcome, bool) {
	lowered := strings.ToLower(returnURL)

	var kind domain.PaymentOutcomeKind
	switch {
	case strings.Contains(lowered, "success"):
		kind = domain.PaymentSuccess
	case strings.Contains(lowered, "fail"):
		kind = domain.PaymentFailed
	case strings.Contains(lowered, "cancel"):
		kind = domain.PaymentCancelled
	case strings.Contains(lowered, "error"):
		kind = domain.PaymentError
	default:
		return domain.PaymentOutcome{}, false
	}

	orderID := knownOrderID
	if orderID == "" {
		orderID = orderIDFromURL(returnURL)
	}

	return domain.PaymentOutcome{
		Kind:    kind,
		OrderID: orderID,
		Message: messageFromURL(returnURL),
	}, true
}

// orderIDFromURL is the fallback when no order id is known up front.
func orderIDFromURL(returnURL string) string {
	u, err := url.Parse(returnURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	for _, key := range []string{"orderId", "order_id", "orderid"} {
		if v := q.Get(key); v != "" {
			return v
		}
	}
	return ""
}

func messageFromURL(returnURL string) string {
	u, err := url.Parse(returnURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	for _, key := range []string{"message", "error", "reason"} {
		if v := q.Get(key); v != "" {
			return v
		}
	}
	return ""
}

// ErrSchemeBlocked means the URL would leave the http(s) world (a banking
// app deeplink with no installed handler, for example). Navigation must be
// blocked, not attempted.
var ErrSchemeBlocked = errors.New("navigation blocked: unsupported url scheme")

// CheckNavigation fails closed on anything that is not plain http(s).
func CheckNavigation(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ErrSchemeBlocked
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return nil
	}
	return ErrSchemeBlocked
}
