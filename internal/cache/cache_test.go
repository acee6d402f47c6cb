package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInMemory_GetExistingValue(t *testing.T) {
	c := NewInMemory[uint, []string]("groups", DefaultExpiration, DefaultCleanupInterval)
	c.Set(context.Background(), 7, []string{"abakus", "webkom"}, DefaultExpiration)

	got, ok := c.Get(context.Background(), 7)
	require.True(t, ok)
	require.Equal(t, []string{"abakus", "webkom"}, got)
}

func TestInMemory_GetMissingValue(t *testing.T) {
	c := NewInMemory[uint, string]("groups", DefaultExpiration, DefaultCleanupInterval)

	got, ok := c.Get(context.Background(), 7)
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemory_GetWithInvalidValueType(t *testing.T) {
	c := NewInMemory[string, string]("groups", DefaultExpiration, DefaultCleanupInterval)
	c.cache.Set("food", 123, DefaultExpiration)

	got, ok := c.Get(context.Background(), "food")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemory_DeleteAndFlush(t *testing.T) {
	c := NewInMemory[uint, string]("groups", DefaultExpiration, DefaultCleanupInterval)
	ctx := context.Background()
	c.Set(ctx, 1, "a", DefaultExpiration)
	c.Set(ctx, 2, "b", DefaultExpiration)
	c.Set(ctx, 3, "c", DefaultExpiration)

	c.Delete(ctx, 1)
	_, ok := c.Get(ctx, 1)
	require.False(t, ok)

	c.Flush(ctx)
	_, ok = c.Get(ctx, 2)
	require.False(t, ok)
}

func TestInMemory_Expires(t *testing.T) {
	c := NewInMemory[uint, string]("groups", DefaultExpiration, DefaultCleanupInterval)
	c.Set(context.Background(), 1, "a", time.Millisecond)

	require.Eventually(t, func() bool {
		_, ok := c.Get(context.Background(), 1)
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestReadThrough(t *testing.T) {
	calls := 0
	rt := NewReadThrough[uint, string](
		NewInMemory[uint, string]("groups", DefaultExpiration, DefaultCleanupInterval),
		time.Minute,
		func(_ context.Context, key uint) (string, error) {
			calls++
			if key == 0 {
				return "", errors.New("boom")
			}
			return "loaded", nil
		},
	)
	ctx := context.Background()

	got, err := rt.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "loaded", got)

	_, err = rt.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	_, err = rt.Get(ctx, 0)
	require.Error(t, err)

	rt.Invalidate(ctx, 1)
	_, err = rt.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestReadThrough_NoTTLSkipsCache(t *testing.T) {
	calls := 0
	rt := NewReadThrough[uint, string](
		NewInMemory[uint, string]("groups", DefaultExpiration, DefaultCleanupInterval),
		0,
		func(context.Context, uint) (string, error) {
			calls++
			return "loaded", nil
		},
	)

	_, _ = rt.Get(context.Background(), 1)
	_, _ = rt.Get(context.Background(), 1)
	require.Equal(t, 2, calls)
}
