package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cacheport "github.com/safiripay/payment-core/internal/domain/port/cache"
)

type stubTimeProvider struct {
	now time.Time
}

func newStubTimeProvider() *stubTimeProvider {
	return &stubTimeProvider{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (p *stubTimeProvider) Now() time.Time                  { return p.now }
func (p *stubTimeProvider) Since(t time.Time) time.Duration { return p.now.Sub(t) }
func (p *stubTimeProvider) Sleep(ctx context.Context, d time.Duration) error {
	p.now = p.now.Add(d)
	return nil
}

func TestMemoryValueExpiry(t *testing.T) {
	tp := newStubTimeProvider()
	store := NewMemoryStore(tp)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key", "value", time.Second))

	value, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "value", value)

	tp.now = tp.now.Add(2 * time.Second)
	_, err = store.Get(ctx, "key")
	assert.ErrorIs(t, err, cacheport.ErrCacheMiss)

	// An expired key can be taken again
	ok, err := store.SetIfAbsent(ctx, "key", "other", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryZeroTTLNeverExpires(t *testing.T) {
	tp := newStubTimeProvider()
	store := NewMemoryStore(tp)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key", "value", 0))

	tp.now = tp.now.Add(24 * time.Hour)
	value, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "value", value)
}

func TestMemoryListAppendTrimsToWindow(t *testing.T) {
	tp := newStubTimeProvider()
	store := NewMemoryStore(tp)
	ctx := context.Background()

	for _, v := range []string{"100", "200", "300", "400"} {
		require.NoError(t, store.ListAppend(ctx, "latency", v, 3, time.Hour))
	}

	entries, err := store.ListRange(ctx, "latency", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"400", "300", "200"}, entries)

	// Aggregates expire as a whole
	tp.now = tp.now.Add(2 * time.Hour)
	entries, err = store.ListRange(ctx, "latency", 0, -1)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMemorySortedSetOrdering(t *testing.T) {
	tp := newStubTimeProvider()
	store := NewMemoryStore(tp)
	ctx := context.Background()

	require.NoError(t, store.SortedSetAdd(ctx, "window", "b", 200, time.Minute))
	require.NoError(t, store.SortedSetAdd(ctx, "window", "a", 100, time.Minute))

	oldest, err := store.SortedSetOldest(ctx, "window")
	require.NoError(t, err)
	assert.Equal(t, "a", oldest.Member)

	require.NoError(t, store.SortedSetRemoveByScore(ctx, "window", 0, 150))

	count, err := store.SortedSetCard(ctx, "window")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
