package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	data    map[string][]byte
	failGet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	if m.failGet {
		return false, errors.New("connection refused")
	}
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryCache) Increment(_ context.Context, key string) (int64, error) {
	var n int64
	if raw, ok := m.data[key]; ok {
		_ = json.Unmarshal(raw, &n)
	}
	n++
	raw, _ := json.Marshal(n)
	m.data[key] = raw
	return n, nil
}

func (m *memoryCache) Ping(context.Context) error { return nil }

type item struct {
	Name string `json:"name"`
}

func TestRemember_LoadsOnceUntilBump(t *testing.T) {
	ctx := context.Background()
	v := NewVersioned(newMemoryCache(), "catalog", time.Minute)

	calls := 0
	load := func(context.Context) (item, error) {
		calls++
		return item{Name: "Dune"}, nil
	}

	got, err := Remember(ctx, v, load, "books", "1")
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Name)

	got, err = Remember(ctx, v, load, "books", "1")
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Name)
	assert.Equal(t, 1, calls)

	require.NoError(t, v.Bump(ctx))

	_, err = Remember(ctx, v, load, "books", "1")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRemember_DoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	v := NewVersioned(newMemoryCache(), "catalog", time.Minute)

	calls := 0
	load := func(context.Context) (item, error) {
		calls++
		return item{}, errors.New("boom")
	}

	_, err := Remember(ctx, v, load, "books")
	assert.Error(t, err)
	_, err = Remember(ctx, v, load, "books")
	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestRemember_NilAndFailingStoreFallBackToLoad(t *testing.T) {
	ctx := context.Background()
	load := func(context.Context) (item, error) { return item{Name: "x"}, nil }

	got, err := Remember[item](ctx, nil, load, "a")
	require.NoError(t, err)
	assert.Equal(t, "x", got.Name)

	store := newMemoryCache()
	store.failGet = true
	got, err = Remember(ctx, NewVersioned(store, "catalog", 0), load, "a")
	require.NoError(t, err)
	assert.Equal(t, "x", got.Name)
}

func TestVersioned_KeyIncludesGeneration(t *testing.T) {
	ctx := context.Background()
	v := NewVersioned(newMemoryCache(), "catalog", 0)

	key, err := v.Key(ctx, "authors", "list")
	require.NoError(t, err)
	assert.Equal(t, "catalog:v0:authors:list", key)

	require.NoError(t, v.Bump(ctx))
	key, err = v.Key(ctx, "authors", "list")
	require.NoError(t, err)
	assert.Equal(t, "catalog:v1:authors:list", key)
}

func TestVersioned_NilIsSafe(t *testing.T) {
	var v *Versioned
	assert.NoError(t, v.Bump(context.Background()))
}
