package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Store is the key-value backend of the counter. pkg/cache.Cache satisfies it.
type Store interface {
	Increment(ctx context.Context, key string) (int64, error)
	Ping(ctx context.Context) error
}

type ServiceInterface interface {
	// Visit increments the visit counter and returns the new value.
	Visit(ctx context.Context) (int64, error)
	// Healthy reports whether the store answers a ping.
	Healthy(ctx context.Context) bool
}

type counterService struct {
	store Store
	key   string
}

func NewCounterService(store Store, key string) ServiceInterface {
	return &counterService{store: store, key: key}
}

func (s *counterService) Visit(ctx context.Context) (int64, error) {
	n, err := s.store.Increment(ctx, s.key)
	if err != nil {
		log.Warn().Err(err).Str("key", s.key).Msg("counter increment failed")
		return 0, fmt.Errorf("increment %s: %w", s.key, err)
	}
	return n, nil
}

func (s *counterService) Healthy(ctx context.Context) bool {
	if err := s.store.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("counter store ping failed")
		return false
	}
	return true
}
