package cache

import (
	"context"
	"errors"

	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/domain"
)

type CartCache interface {
	Get(ctx context.Context, userID string) ([]domain.CartLine, error)
	Set(ctx context.Context, userID string, lines []domain.CartLine) error
	Delete(ctx context.Context, userID string) error
}

var ErrCacheMiss = errors.New("cache miss")
