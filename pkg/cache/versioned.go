package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Versioned scopes keys under a generation counter. Bump moves every reader
// to a fresh key space, so one INCR invalidates all entries of the namespace.
type Versioned struct {
	store     Cache
	namespace string
	ttl       time.Duration
}

func NewVersioned(store Cache, namespace string, ttl time.Duration) *Versioned {
	return &Versioned{store: store, namespace: namespace, ttl: ttl}
}

func (v *Versioned) generationKey() string {
	return v.namespace + ":gen"
}

// Key builds the generation-scoped key for parts.
func (v *Versioned) Key(ctx context.Context, parts ...string) (string, error) {
	var gen int64
	if _, err := v.store.Get(ctx, v.generationKey(), &gen); err != nil {
		return "", fmt.Errorf("read cache generation: %w", err)
	}
	return fmt.Sprintf("%s:v%d:%s", v.namespace, gen, strings.Join(parts, ":")), nil
}

// Bump invalidates every key built before the call.
func (v *Versioned) Bump(ctx context.Context) error {
	if v == nil {
		return nil
	}
	if _, err := v.store.Increment(ctx, v.generationKey()); err != nil {
		return fmt.Errorf("bump cache generation: %w", err)
	}
	return nil
}

// Invalidate is Bump with the error logged instead of returned.
func (v *Versioned) Invalidate(ctx context.Context) {
	if err := v.Bump(ctx); err != nil {
		log.Warn().Err(err).Str("namespace", v.namespace).Msg("cache invalidation failed")
	}
}

// Remember returns the cached value for parts, calling load on a miss.
// A nil v or a failing store degrades to calling load directly.
func Remember[T any](ctx context.Context, v *Versioned, load func(context.Context) (T, error), parts ...string) (T, error) {
	if v == nil {
		return load(ctx)
	}

	key, err := v.Key(ctx, parts...)
	if err != nil {
		log.Warn().Err(err).Msg("cache unavailable, reading from database")
		return load(ctx)
	}

	var cached T
	found, err := v.store.Get(ctx, key, &cached)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache get failed")
	} else if found {
		return cached, nil
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if err := v.store.Set(ctx, key, value, v.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
	return value, nil
}
