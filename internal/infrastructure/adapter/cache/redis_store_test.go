package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cacheport "github.com/safiripay/payment-core/internal/domain/port/cache"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisGetSet(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, cacheport.ErrCacheMiss)

	require.NoError(t, store.Set(ctx, "key", "value", time.Minute))

	value, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "value", value)
}

func TestRedisKeyExpiry(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key", "value", time.Second))

	mr.FastForward(2 * time.Second)

	_, err := store.Get(ctx, "key")
	assert.ErrorIs(t, err, cacheport.ErrCacheMiss)
}

func TestRedisSetIfAbsent(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	ok, err := store.SetIfAbsent(ctx, "lock:k", "token-a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.SetIfAbsent(ctx, "lock:k", "token-b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	value, err := store.Get(ctx, "lock:k")
	require.NoError(t, err)
	assert.Equal(t, "token-a", value)
}

func TestRedisCompareAndDelete(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "lock:k", "token-a", time.Minute))

	deleted, err := store.CompareAndDelete(ctx, "lock:k", "token-b")
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = store.CompareAndDelete(ctx, "lock:k", "token-a")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = store.Get(ctx, "lock:k")
	assert.ErrorIs(t, err, cacheport.ErrCacheMiss)
}

func TestRedisCompareAndExpire(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "lock:k", "token-a", time.Second))

	extended, err := store.CompareAndExpire(ctx, "lock:k", "token-b", time.Minute)
	require.NoError(t, err)
	assert.False(t, extended)

	extended, err = store.CompareAndExpire(ctx, "lock:k", "token-a", time.Minute)
	require.NoError(t, err)
	assert.True(t, extended)

	// The original one-second TTL no longer applies
	mr.FastForward(2 * time.Second)
	value, err := store.Get(ctx, "lock:k")
	require.NoError(t, err)
	assert.Equal(t, "token-a", value)
}

func TestRedisListAppendTrimsToWindow(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	for _, v := range []string{"100", "200", "300", "400"} {
		require.NoError(t, store.ListAppend(ctx, "latency", v, 3, time.Hour))
	}

	entries, err := store.ListRange(ctx, "latency", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"400", "300", "200"}, entries)
}

func TestRedisHashIncrement(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	total, err := store.HashIncrement(ctx, "rate", "total", 1, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	total, err = store.HashIncrement(ctx, "rate", "total", 1, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, err = store.HashIncrement(ctx, "rate", "success", 1, time.Hour)
	require.NoError(t, err)

	fields, err := store.HashGetAll(ctx, "rate")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"total": "2", "success": "1"}, fields)
}

func TestRedisSortedSetWindow(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.SortedSetAdd(ctx, "window", "a", 100, time.Minute))
	require.NoError(t, store.SortedSetAdd(ctx, "window", "b", 200, time.Minute))
	require.NoError(t, store.SortedSetAdd(ctx, "window", "c", 300, time.Minute))

	count, err := store.SortedSetCard(ctx, "window")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	oldest, err := store.SortedSetOldest(ctx, "window")
	require.NoError(t, err)
	assert.Equal(t, "a", oldest.Member)
	assert.Equal(t, float64(100), oldest.Score)

	require.NoError(t, store.SortedSetRemoveByScore(ctx, "window", 0, 150))
	oldest, err = store.SortedSetOldest(ctx, "window")
	require.NoError(t, err)
	assert.Equal(t, "b", oldest.Member)

	require.NoError(t, store.SortedSetRemove(ctx, "window", "b", "c"))
	_, err = store.SortedSetOldest(ctx, "window")
	assert.ErrorIs(t, err, cacheport.ErrCacheMiss)
}

func TestRedisPing(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	assert.NoError(t, store.Ping(ctx))

	mr.Close()
	assert.Error(t, store.Ping(ctx))
}
