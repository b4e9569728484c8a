package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/domain"
	"github.com/google/uuid"
)

// MemoryStore implements Store with in-memory maps. It backs tests and local
// development runs where no Postgres is available.
type MemoryStore struct {
	mu     sync.RWMutex
	carts  map[string]map[int64]domain.CartLine // userID -> productID -> line
	orders map[uuid.UUID]*domain.Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts:  make(map[string]map[int64]domain.CartLine),
		orders: make(map[uuid.UUID]*domain.Order),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Lines(_ context.Context, userID string) ([]domain.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.linesLocked(userID), nil
}

func (s *MemoryStore) linesLocked(userID string) []domain.CartLine {
	lines := make([]domain.CartLine, 0, len(s.carts[userID]))
	for _, l := range s.carts[userID] {
		lines = append(lines, l)
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].AddedAt.Equal(lines[j].AddedAt) {
			return lines[i].ProductID < lines[j].ProductID
		}
		return lines[i].AddedAt.Before(lines[j].AddedAt)
	})
	return lines
}

func (s *MemoryStore) UpsertLine(_ context.Context, userID string, line domain.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if line.AddedAt.IsZero() {
		line.AddedAt = now
	}
	line.UpdatedAt = now
	if s.carts[userID] == nil {
		s.carts[userID] = make(map[int64]domain.CartLine)
	}
	s.carts[userID][line.ProductID] = line
	return nil
}

func (s *MemoryStore) UpdateQuantity(_ context.Context, userID string, productID int64, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	line, ok := s.carts[userID][productID]
	if !ok {
		return ErrLineNotFound
	}
	line.Quantity = quantity
	line.UpdatedAt = time.Now()
	s.carts[userID][productID] = line
	return nil
}

func (s *MemoryStore) RemoveLine(_ context.Context, userID string, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.carts[userID][productID]; !ok {
		return ErrLineNotFound
	}
	delete(s.carts[userID], productID)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}

func (s *MemoryStore) CreateOrder(_ context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orders[order.ID]; exists {
		return ErrDuplicateID
	}
	now := time.Now()
	cp := *order
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	s.orders[order.ID] = &cp
	return nil
}

func (s *MemoryStore) GetOrderByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (s *MemoryStore) GetOrderByRemoteID(_ context.Context, remoteID string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, order := range s.orders {
		if order.RemoteID == remoteID && remoteID != "" {
			cp := *order
			return &cp, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (s *MemoryStore) ListOrdersByUserID(_ context.Context, userID string) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(userID, ""), nil
}

func (s *MemoryStore) ListOrdersByStatus(_ context.Context, userID string, status domain.OrderStatus) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(userID, status), nil
}

func (s *MemoryStore) listLocked(userID string, status domain.OrderStatus) []*domain.Order {
	var orders []*domain.Order
	for _, order := range s.orders {
		if order.UserID != userID {
			continue
		}
		if status != "" && order.Status != status {
			continue
		}
		cp := *order
		orders = append(orders, &cp)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders
}

func (s *MemoryStore) UpdateOrderStatus(_ context.Context, id uuid.UUID, from, to domain.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	if order.Status != from {
		return ErrStaleStatus
	}
	order.Status = to
	order.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) ReconcileAndClearCart(_ context.Context, id uuid.UUID, remoteID string, userID string, productIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	order.RemoteID = remoteID
	order.Status = domain.OrderStatusSubmitted
	order.UpdatedAt = time.Now()
	for _, pid := range productIDs {
		delete(s.carts[userID], pid)
	}
	return nil
}
