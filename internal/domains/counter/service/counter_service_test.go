package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeMock struct {
	incrementFn func(ctx context.Context, key string) (int64, error)
	pingFn      func(ctx context.Context) error
}

func (m *storeMock) Increment(ctx context.Context, key string) (int64, error) {
	return m.incrementFn(ctx, key)
}

func (m *storeMock) Ping(ctx context.Context) error { return m.pingFn(ctx) }

func TestVisit(t *testing.T) {
	counts := map[string]int64{}
	store := &storeMock{incrementFn: func(_ context.Context, key string) (int64, error) {
		counts[key]++
		return counts[key], nil
	}}
	svc := NewCounterService(store, "visits")

	first, err := svc.Visit(context.Background())
	require.NoError(t, err)
	second, err := svc.Visit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
	assert.Equal(t, int64(2), counts["visits"])
}

func TestVisit_StoreDown(t *testing.T) {
	store := &storeMock{incrementFn: func(context.Context, string) (int64, error) {
		return 0, errors.New("connection refused")
	}}

	_, err := NewCounterService(store, "visits").Visit(context.Background())

	assert.ErrorContains(t, err, "connection refused")
}

func TestHealthy(t *testing.T) {
	up := NewCounterService(&storeMock{pingFn: func(context.Context) error { return nil }}, "visits")
	down := NewCounterService(&storeMock{pingFn: func(context.Context) error { return errors.New("timeout") }}, "visits")

	assert.True(t, up.Healthy(context.Background()))
	assert.False(t, down.Healthy(context.Background()))
}
