// Package pipeline turns a priced draft into a durable, submitted order and
// owns every status change an order goes through afterwards.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/cart"
	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/domain"
	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/remote"
	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/repository"
	"github.com/google/uuid"
)

var (
	// ErrStateConflict is returned for a transition out of a terminal status
	// or any other disallowed status change.
	ErrStateConflict = errors.New("illegal order status transition")
	ErrOrderNotFound = repository.ErrOrderNotFound
)

type Pipeline struct {
	orders repository.OrderRepository
	api    remote.API
	cart   *cart.Service

	mu       sync.Mutex
	orderMus map[uuid.UUID]*sync.Mutex
}

func New(orders repository.OrderRepository, api remote.API, cartSvc *cart.Service) *Pipeline {
	return &Pipeline{
		orders:   orders,
		api:      api,
		cart:     cartSvc,
		orderMus: make(map[uuid.UUID]*sync.Mutex),
	}
}

// orderLock serializes mutations per order so concurrent status events
// cannot interleave into a lost or illegal transition.
func (p *Pipeline) orderLock(id uuid.UUID) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	mu, ok := p.orderMus[id]
	if !ok {
		mu = &sync.Mutex{}
		p.orderMus[id] = mu
	}
	return mu
}

// Submit persists the draft locally first, so the order survives a failed or
// abandoned network call, then creates it remotely. On remote success the
// server id is recorded and the included cart lines are cleared in one local
// transaction. On remote failure the order stays PENDING_SUBMIT with the
// cart intact; the error is retryable and retrying is the caller's decision.
//
// Callers must not re-submit the same draft without a confirmed failure; the
// draft id doubles as the remote idempotency key either way.
func (p *Pipeline) Submit(ctx context.Context, draft *domain.OrderDraft) (uuid.UUID, error) {
	order := draft.ToOrder()

	mu := p.orderLock(order.ID)
	mu.Lock()
	defer mu.Unlock()

	if err := p.orders.CreateOrder(ctx, order); err != nil {
		return uuid.Nil, fmt.Errorf("persist order: %w", err)
	}

	remoteID, err := p.api.CreateOrder(ctx, order)
	if err != nil {
		// Durable locally, retryable later. Covers abandonment too: a
		// canceled ctx surfaces here and the pending order is kept.
		log.Printf("remote create failed for order %s, kept as %s: %v",
			order.ID, domain.OrderStatusPendingSubmit, err)
		return order.ID, err
	}

	if err := p.orders.ReconcileAndClearCart(ctx, order.ID, remoteID, draft.UserID, draft.ProductIDs()); err != nil {
		return order.ID, fmt.Errorf("reconcile order %s: %w", order.ID, err)
	}

	if p.cart != nil {
		p.cart.Refresh(ctx, draft.UserID)
	}

	log.Printf("order %s submitted, remote id %s", order.ID, remoteID)
	return order.ID, nil
}

// UpdateStatus applies a remote-side status event. Transitions are
// monotonic: terminal orders reject everything, other illegal jumps are
// rejected the same way. Conflicts are logged, never silently applied.
// Updates for one order serialize on its lock, and the write itself is
// conditional on the status that passed the guard.
func (p *Pipeline) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error {
	mu := p.orderLock(orderID)
	mu.Lock()
	defer mu.Unlock()

	order, err := p.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	if order.Status == status {
		return nil
	}
	if !domain.CanTransitionTo(order.Status, status) {
		log.Printf("rejected status transition %s -> %s for order %s", order.Status, status, orderID)
		return fmt.Errorf("%w: %s -> %s", ErrStateConflict, order.Status, status)
	}

	if err := p.orders.UpdateOrderStatus(ctx, orderID, order.Status, status); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return fmt.Errorf("%w: %s -> %s", ErrStateConflict, order.Status, status)
		}
		return err
	}
	return nil
}

// ResolvePayment consumes a redirect outcome and drives the matching status
// transition. The outcome's order id may be the local UUID or the remote id
// parsed out of the return URL.
func (p *Pipeline) ResolvePayment(ctx context.Context, outcome domain.PaymentOutcome) error {
	order, err := p.findOrder(ctx, outcome.OrderID)
	if err != nil {
		return err
	}

	var status domain.OrderStatus
	switch outcome.Kind {
	case domain.PaymentSuccess:
		status = domain.OrderStatusConfirmed
	case domain.PaymentCancelled:
		status = domain.OrderStatusCancelled
	case domain.PaymentFailed, domain.PaymentError:
		status = domain.OrderStatusFailed
	default:
		return fmt.Errorf("unknown payment outcome %q", outcome.Kind)
	}

	if outcome.Kind == domain.PaymentError {
		log.Printf("payment provider error for order %s: %s", order.ID, outcome.Message)
	}

	return p.UpdateStatus(ctx, order.ID, status)
}

// CheckStatus is the explicit fallback for an unrecognized redirect: fetch
// the order from the remote side and fold its status in.
func (p *Pipeline) CheckStatus(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, err := p.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.RemoteID == "" {
		return order, nil
	}

	remoteOrder, err := p.api.GetOrder(ctx, order.RemoteID)
	if err != nil {
		return nil, err
	}

	if remoteOrder.Status != order.Status {
		if err := p.UpdateStatus(ctx, order.ID, remoteOrder.Status); err != nil {
			if !errors.Is(err, ErrStateConflict) {
				return nil, err
			}
		} else {
			order.Status = remoteOrder.Status
		}
	}
	return order, nil
}

func (p *Pipeline) Order(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return p.orders.GetOrderByID(ctx, orderID)
}

func (p *Pipeline) UserOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	return p.orders.ListOrdersByUserID(ctx, userID)
}

// PendingOrders lists orders stuck in PENDING_SUBMIT, the candidates for a
// user-driven retry.
func (p *Pipeline) PendingOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	return p.orders.ListOrdersByStatus(ctx, userID, domain.OrderStatusPendingSubmit)
}

// Resubmit retries the remote call for a pending order. The original local
// id is reused, so the remote side sees the same idempotency key.
func (p *Pipeline) Resubmit(ctx context.Context, orderID uuid.UUID) error {
	mu := p.orderLock(orderID)
	mu.Lock()
	defer mu.Unlock()

	order, err := p.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != domain.OrderStatusPendingSubmit {
		return fmt.Errorf("%w: resubmit of %s order", ErrStateConflict, order.Status)
	}

	remoteID, err := p.api.CreateOrder(ctx, order)
	if err != nil {
		return err
	}

	productIDs := make([]int64, len(order.Items))
	for i, it := range order.Items {
		productIDs[i] = it.ProductID
	}
	if err := p.orders.ReconcileAndClearCart(ctx, order.ID, remoteID, order.UserID, productIDs); err != nil {
		return fmt.Errorf("reconcile order %s: %w", order.ID, err)
	}
	if p.cart != nil {
		p.cart.Refresh(ctx, order.UserID)
	}
	return nil
}

func (p *Pipeline) findOrder(ctx context.Context, id string) (*domain.Order, error) {
	if localID, err := uuid.Parse(id); err == nil {
		if order, err := p.orders.GetOrderByID(ctx, localID); err == nil {
			return order, nil
		}
	}
	return p.orders.GetOrderByRemoteID(ctx, id)
}
