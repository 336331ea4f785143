package cache

import (
	"context"
	"time"
)

// Cache is the contract of the cache layer (Redis in production, in-memory in tests).
type Cache interface {
	// Get unmarshals the value stored under key into dest.
	// found is false on a miss, in which case dest is untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key with ttl. A zero ttl keeps the key forever.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error

	// Increment atomically adds one to the integer stored at key.
	Increment(ctx context.Context, key string) (int64, error)

	Ping(ctx context.Context) error
}

// RateDecision is the outcome of one rate-limiter draw.
type RateDecision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter takes one unit of quota from the bucket of key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (RateDecision, error)
}
