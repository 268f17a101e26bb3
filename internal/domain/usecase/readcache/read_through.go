package readcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	cacheport "github.com/safiripay/payment-core/internal/domain/port/cache"
	"github.com/safiripay/payment-core/internal/domain/port/core"
)

// ReadThrough is a generic JSON read-through cache over the store. All read
// paths fail open: a broken cache degrades to fetching from the source, it
// never fails the caller.
type ReadThrough[T any] struct {
	store  cacheport.Store
	logger core.Logger
	prefix string
	ttl    time.Duration
}

// NewReadThrough creates a cache for values of type T under the given key prefix
func NewReadThrough[T any](store cacheport.Store, logger core.Logger, prefix string, ttl time.Duration) *ReadThrough[T] {
	return &ReadThrough[T]{
		store:  store,
		logger: logger,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Get returns the cached value for key, or (nil, false) on a miss. Store and
// decode errors count as misses.
func (c *ReadThrough[T]) Get(ctx context.Context, key string) (*T, bool) {
	raw, err := c.store.Get(ctx, c.prefix+key)
	if err != nil {
		if !errors.Is(err, cacheport.ErrCacheMiss) {
			c.logger.Warn("Cache read failed, treating as miss", map[string]any{
				"cache_key": c.prefix + key,
				"error":     err.Error(),
			})
		}
		return nil, false
	}

	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		// Corrupt entry: evict so the next read repopulates it
		_ = c.store.Delete(ctx, c.prefix+key)
		return nil, false
	}
	return &value, true
}

// Set caches value under key. Write failures are logged and swallowed.
func (c *ReadThrough[T]) Set(ctx context.Context, key string, value *T) {
	if value == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, c.prefix+key, string(payload), c.ttl); err != nil {
		c.logger.Warn("Cache write failed", map[string]any{
			"cache_key": c.prefix + key,
			"error":     err.Error(),
		})
	}
}

// Invalidate removes the given keys from the cache
func (c *ReadThrough[T]) Invalidate(ctx context.Context, keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = c.prefix + key
	}
	if err := c.store.Delete(ctx, prefixed...); err != nil {
		return fmt.Errorf("invalidate cache keys: %w", err)
	}
	return nil
}

// GetOrFetch returns the cached value for key, calling fetch on a miss and
// caching its result. An absent value (nil from fetch) is returned to the
// caller but never cached, so absence cannot mask a later write.
func (c *ReadThrough[T]) GetOrFetch(ctx context.Context, key string, fetch func(ctx context.Context) (*T, error)) (*T, error) {
	if value, ok := c.Get(ctx, key); ok {
		return value, nil
	}

	value, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if value != nil {
		c.Set(ctx, key, value)
	}
	return value, nil
}
