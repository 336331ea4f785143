//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	pkgcache "catalog-api/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *RedisClient {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate redis: %v", err)
		}
	})

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	rc, err := NewRedisClient(RedisConfig{Addr: addr})
	require.NoError(t, err)
	require.NoError(t, rc.Connect(ctx))
	t.Cleanup(func() { _ = rc.Close() })
	return rc
}

func TestRedisCache_Integration(t *testing.T) {
	rc := startRedis(t)
	ctx := context.Background()
	c := NewRedisCache(rc.Client)

	var _ pkgcache.Cache = c

	type payload struct {
		Title string `json:"title"`
	}
	var got payload
	found, err := c.Get(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "book:1", payload{Title: "Dune"}, time.Minute))
	found, err = c.Get(ctx, "book:1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Dune", got.Title)

	n, err := c.Increment(ctx, "visits")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, c.Delete(ctx, "book:1"))
	found, err = c.Get(ctx, "book:1", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestVersionedOverRedis_Integration(t *testing.T) {
	rc := startRedis(t)
	ctx := context.Background()
	v := pkgcache.NewVersioned(NewRedisCache(rc.Client), "catalog", time.Minute)

	loads := 0
	load := func(context.Context) ([]string, error) {
		loads++
		return []string{"Fiction"}, nil
	}

	_, err := pkgcache.Remember(ctx, v, load, "categories", "list")
	require.NoError(t, err)
	_, err = pkgcache.Remember(ctx, v, load, "categories", "list")
	require.NoError(t, err)
	assert.Equal(t, 1, loads)

	require.NoError(t, v.Bump(ctx))
	_, err = pkgcache.Remember(ctx, v, load, "categories", "list")
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestTokenBucket_Integration(t *testing.T) {
	rc := startRedis(t)
	ctx := context.Background()
	tb := NewTokenBucket(rc.Client, 1, 2)

	first, err := tb.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	second, err := tb.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	third, err := tb.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	other, err := tb.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)

	assert.True(t, first.Allowed)
	assert.True(t, second.Allowed)
	assert.False(t, third.Allowed)
	assert.Greater(t, third.RetryAfter, time.Duration(0))
	assert.True(t, other.Allowed)
	assert.Equal(t, 2, other.Limit)
}
