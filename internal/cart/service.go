// Package cart implements the mutable shopping cart: persistent line
// storage, a cached point read, and a reactive snapshot stream.
package cart

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/cache"
	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/domain"
	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/repository"
	"golang.org/x/sync/singleflight"
)

type Service struct {
	repo  repository.CartRepository
	cache cache.CartCache
	sfg   singleflight.Group // Prevents cache stampede

	mu      sync.Mutex
	userMus map[string]*sync.Mutex

	subMu     sync.Mutex
	subs      map[string]map[int]chan []domain.CartLine
	nextSubID int
}

func NewService(repo repository.CartRepository, cache cache.CartCache) *Service {
	return &Service{
		repo:    repo,
		cache:   cache,
		userMus: make(map[string]*sync.Mutex),
		subs:    make(map[string]map[int]chan []domain.CartLine),
	}
}

// userLock serializes mutations per user so concurrent Add/SetQuantity calls
// cannot interleave into a lost update.
func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	mu, ok := s.userMus[userID]
	if !ok {
		mu = &sync.Mutex{}
		s.userMus[userID] = mu
	}
	return mu
}

// Add merges the product into an existing line or inserts a new one with a
// price snapshot taken from the product at add time.
func (s *Service) Add(ctx context.Context, userID string, product domain.Product, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	lines, err := s.repo.Lines(ctx, userID)
	if err != nil {
		log.Printf("repo read lines error: %v", err)
		return err
	}

	merged := false
	for _, l := range lines {
		if l.ProductID == product.ID {
			if err := s.repo.UpdateQuantity(ctx, userID, product.ID, l.Quantity+quantity); err != nil {
				log.Printf("repo merge quantity error: %v", err)
				return err
			}
			merged = true
			break
		}
	}
	if !merged {
		line := domain.CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			ImageURL:  product.ImageURL,
			Quantity:  quantity,
			AddedAt:   time.Now(),
		}
		if err := s.repo.UpsertLine(ctx, userID, line); err != nil {
			log.Printf("repo add line error: %v", err)
			return err
		}
	}

	s.afterMutation(ctx, userID)
	return nil
}

// SetQuantity updates a line; a quantity below 1 removes it.
func (s *Service) SetQuantity(ctx context.Context, userID string, productID int64, quantity int) error {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	var err error
	if quantity < 1 {
		err = s.repo.RemoveLine(ctx, userID, productID)
		if errors.Is(err, repository.ErrLineNotFound) {
			err = nil
		}
	} else {
		err = s.repo.UpdateQuantity(ctx, userID, productID, quantity)
	}
	if err != nil {
		log.Printf("repo set quantity error: %v", err)
		return err
	}

	s.afterMutation(ctx, userID)
	return nil
}

func (s *Service) Remove(ctx context.Context, userID string, productID int64) error {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.repo.RemoveLine(ctx, userID, productID); err != nil {
		log.Printf("repo remove line error: %v", err)
		return err
	}

	s.afterMutation(ctx, userID)
	return nil
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.repo.Clear(ctx, userID); err != nil {
		log.Printf("repo clear cart error: %v", err)
		return err
	}

	s.afterMutation(ctx, userID)
	return nil
}

// Snapshot is the cached point-in-time read of the cart lines.
func (s *Service) Snapshot(ctx context.Context, userID string) ([]domain.CartLine, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		lines, err := s.cache.Get(ctx, userID)
		if err == nil {
			return lines, nil
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		lines, errGet := s.repo.Lines(ctx, userID)
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			errSet := s.cache.Set(context.Background(), userID, lines)
			if errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return lines, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.CartLine), nil
}

// Observe returns a stream that receives the full line list after every
// mutation, plus the current state immediately. The returned cancel func
// must be called when the observer is done.
func (s *Service) Observe(ctx context.Context, userID string) (<-chan []domain.CartLine, func(), error) {
	ch := make(chan []domain.CartLine, 1)

	s.subMu.Lock()
	if s.subs[userID] == nil {
		s.subs[userID] = make(map[int]chan []domain.CartLine)
	}
	id := s.nextSubID
	s.nextSubID++
	s.subs[userID][id] = ch
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		if sub, ok := s.subs[userID][id]; ok {
			delete(s.subs[userID], id)
			close(sub)
		}
		s.subMu.Unlock()
	}

	lines, err := s.Snapshot(ctx, userID)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	// A mutation may already have emitted into the buffer between
	// registration and here; that state is at least as fresh, so never
	// block on the initial send.
	select {
	case ch <- lines:
	default:
	}

	return ch, cancel, nil
}

// Refresh invalidates the cache and re-emits the current state. The
// submission pipeline calls it after clearing lines behind the service's
// back in its reconcile transaction.
func (s *Service) Refresh(ctx context.Context, userID string) {
	s.invalidateCache(userID)
	lines, err := s.repo.Lines(ctx, userID)
	if err != nil {
		log.Printf("refresh read lines error: %v", err)
		return
	}
	s.emit(userID, lines)
}

// afterMutation keeps the cache and observers consistent with the store.
// Callers hold the per-user lock, so the read here sees the mutation it
// follows and nothing later.
func (s *Service) afterMutation(ctx context.Context, userID string) {
	s.invalidateCache(userID)
	lines, err := s.repo.Lines(ctx, userID)
	if err != nil {
		log.Printf("post-mutation read lines error: %v", err)
		return
	}
	s.emit(userID, lines)
}

func (s *Service) emit(userID string, lines []domain.CartLine) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs[userID] {
		// Keep only the latest state: drop a stale pending element first.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- lines:
		default:
		}
	}
}

func (s *Service) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
