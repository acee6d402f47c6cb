// Package cache keeps short lived lookups in process memory.
package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	DefaultExpiration      = 5 * time.Minute
	DefaultCleanupInterval = 10 * time.Minute
)

type Manager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K)
	Flush(ctx context.Context)
}

// InMemory is a Manager over go-cache. Keys are stored by their fmt representation.
type InMemory[K comparable, V any] struct {
	useCase string
	cache   *gocache.Cache
	log     *zap.Logger
}

func NewInMemory[K comparable, V any](useCase string, defaultExpiration, cleanupInterval time.Duration) *InMemory[K, V] {
	return &InMemory[K, V]{
		useCase: useCase,
		cache:   gocache.New(defaultExpiration, cleanupInterval),
		log:     zap.L().Named("cache").With(zap.String("use_case", useCase)),
	}
}

func (c *InMemory[K, V]) Get(_ context.Context, key K) (V, bool) {
	var zero V

	value, found := c.cache.Get(c.key(key))
	if !found {
		return zero, false
	}

	v, ok := value.(V)
	if !ok {
		c.log.Error("wrong type assertion when getting value", zap.String("key", c.key(key)))
		return zero, false
	}

	return v, true
}

func (c *InMemory[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) {
	c.cache.Set(c.key(key), value, ttl)
}

func (c *InMemory[K, V]) Delete(_ context.Context, keys ...K) {
	for _, key := range keys {
		c.cache.Delete(c.key(key))
	}
}

func (c *InMemory[K, V]) Flush(_ context.Context) {
	c.cache.Flush()
}

func (c *InMemory[K, V]) key(key K) string {
	return fmt.Sprint(key)
}

// ReadThrough serves values from cache and loads misses with fn.
type ReadThrough[K comparable, V any] struct {
	cache Manager[K, V]
	fn    func(ctx context.Context, key K) (V, error)
	ttl   time.Duration
}

func NewReadThrough[K comparable, V any](cache Manager[K, V], ttl time.Duration, fn func(ctx context.Context, key K) (V, error)) *ReadThrough[K, V] {
	return &ReadThrough[K, V]{
		cache: cache,
		fn:    fn,
		ttl:   ttl,
	}
}

// Get skips the cache entirely when the ttl is not positive.
func (r *ReadThrough[K, V]) Get(ctx context.Context, key K) (V, error) {
	if r.ttl <= 0 {
		return r.fn(ctx, key)
	}

	if value, ok := r.cache.Get(ctx, key); ok {
		return value, nil
	}

	value, err := r.fn(ctx, key)
	if err != nil {
		return value, err
	}

	r.cache.Set(ctx, key, value, r.ttl)

	return value, nil
}

func (r *ReadThrough[K, V]) Invalidate(ctx context.Context, keys ...K) {
	r.cache.Delete(ctx, keys...)
}
