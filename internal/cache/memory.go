package cache

import (
	"context"
	"sync"

	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/domain"
)

// MemoryCache is the cache used when no Redis address is configured. No TTL;
// the cart service invalidates on every mutation anyway.
type MemoryCache struct {
	mu    sync.RWMutex
	lines map[string][]domain.CartLine
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{lines: make(map[string][]domain.CartLine)}
}

func (m *MemoryCache) Get(_ context.Context, userID string) ([]domain.CartLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lines, ok := m.lines[userID]
	if !ok {
		return nil, ErrCacheMiss
	}
	return lines, nil
}

func (m *MemoryCache) Set(_ context.Context, userID string, lines []domain.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines[userID] = lines
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lines, userID)
	return nil
}
