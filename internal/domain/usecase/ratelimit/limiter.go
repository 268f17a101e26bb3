package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	cacheport "github.com/safiripay/payment-core/internal/domain/port/cache"
	"github.com/safiripay/payment-core/internal/domain/port/core"
)

const keyPrefix = "ratelimit:"

// Result reports the outcome of a rate-limit check
type Result struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

// Limiter is a sliding-window request counter on top of the cache store.
// Each check prunes entries older than the window, registers the current
// attempt and counts what remains; a rejected attempt is retracted so it does
// not itself consume quota.
type Limiter struct {
	store        cacheport.Store
	timeProvider core.TimeProvider
	logger       core.Logger
}

// NewLimiter creates a sliding-window limiter backed by the given store
func NewLimiter(store cacheport.Store, timeProvider core.TimeProvider, logger core.Logger) *Limiter {
	return &Limiter{
		store:        store,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Check registers an attempt for key and reports whether it fits within limit
// attempts per window. Callers decide how to treat store errors; the HTTP
// middleware fails open.
func (l *Limiter) Check(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	storeKey := keyPrefix + key
	now := l.timeProvider.Now()
	windowStart := now.Add(-window)

	if err := l.store.SortedSetRemoveByScore(ctx, storeKey, 0, float64(windowStart.UnixNano())); err != nil {
		return Result{}, fmt.Errorf("prune rate-limit window %q: %w", key, err)
	}

	// Member must be unique even for same-instant attempts
	member := fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString())
	if err := l.store.SortedSetAdd(ctx, storeKey, member, float64(now.UnixNano()), window); err != nil {
		return Result{}, fmt.Errorf("register rate-limit attempt %q: %w", key, err)
	}

	count, err := l.store.SortedSetCard(ctx, storeKey)
	if err != nil {
		return Result{}, fmt.Errorf("count rate-limit window %q: %w", key, err)
	}

	if count > int64(limit) {
		// Retract the attempt we just registered: a rejected call must not
		// consume quota
		if err := l.store.SortedSetRemove(ctx, storeKey, member); err != nil {
			l.logger.Warn("Failed to retract rejected rate-limit attempt", map[string]any{
				"key":   key,
				"error": err.Error(),
			})
		}
		return Result{
			Allowed:   false,
			Remaining: 0,
			ResetIn:   l.resetIn(ctx, storeKey, now, window),
		}, nil
	}

	return Result{
		Allowed:   true,
		Remaining: limit - int(count),
		ResetIn:   l.resetIn(ctx, storeKey, now, window),
	}, nil
}

// resetIn is the time until the oldest attempt still in the window ages out
func (l *Limiter) resetIn(ctx context.Context, storeKey string, now time.Time, window time.Duration) time.Duration {
	oldest, err := l.store.SortedSetOldest(ctx, storeKey)
	if err != nil {
		if !errors.Is(err, cacheport.ErrCacheMiss) {
			l.logger.Warn("Failed to read oldest rate-limit attempt", map[string]any{
				"key":   storeKey,
				"error": err.Error(),
			})
		}
		return 0
	}

	oldestAt := time.Unix(0, int64(oldest.Score))
	resetIn := oldestAt.Add(window).Sub(now)
	if resetIn < 0 {
		return 0
	}
	return resetIn
}
