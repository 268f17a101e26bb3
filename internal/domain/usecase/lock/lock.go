package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	errs "github.com/safiripay/payment-core/internal/domain/error"
	cacheport "github.com/safiripay/payment-core/internal/domain/port/cache"
	"github.com/safiripay/payment-core/internal/domain/port/core"
)

const keyPrefix = "lock:"

// Options controls WithLock acquisition behaviour
type Options struct {
	// TTL is how long an acquired lock lives if never released (crash safety)
	TTL time.Duration
	// Retries is the number of acquisition attempts before giving up
	Retries int
	// RetryDelay is the base backoff; attempt n waits RetryDelay * n
	RetryDelay time.Duration
}

// DefaultOptions returns the platform defaults for wallet locking
func DefaultOptions() Options {
	return Options{
		TTL:        30 * time.Second,
		Retries:    5,
		RetryDelay: 100 * time.Millisecond,
	}
}

// DistributedLock is a mutual-exclusion primitive on top of the cache store.
// Each acquisition holds a unique token; release and extend are atomic
// compare-and-act operations so an expired holder can never clobber a lock
// re-acquired by someone else.
//
// Store errors on this path are fail-closed: proceeding without the lock would
// break the serialization guarantee the lock exists to provide.
type DistributedLock struct {
	store        cacheport.Store
	timeProvider core.TimeProvider
	logger       core.Logger
}

// NewDistributedLock creates a lock backed by the given store
func NewDistributedLock(store cacheport.Store, timeProvider core.TimeProvider, logger core.Logger) *DistributedLock {
	return &DistributedLock{
		store:        store,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Acquire attempts to take the lock once. It returns the holder token and
// true on success, and "" and false when the lock is already held. The
// underlying set-if-absent-with-expiry is a single atomic operation.
func (l *DistributedLock) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()

	ok, err := l.store.SetIfAbsent(ctx, keyPrefix+key, token, ttl)
	if err != nil {
		return "", false, fmt.Errorf("acquire lock %q: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release deletes the lock only if it is still held by token. It returns
// false without touching the key when the token no longer matches, e.g. after
// TTL expiry and re-acquisition by another holder.
func (l *DistributedLock) Release(ctx context.Context, key, token string) (bool, error) {
	released, err := l.store.CompareAndDelete(ctx, keyPrefix+key, token)
	if err != nil {
		return false, fmt.Errorf("release lock %q: %w", key, err)
	}
	return released, nil
}

// Extend refreshes the TTL only if the lock is still held by token
func (l *DistributedLock) Extend(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	extended, err := l.store.CompareAndExpire(ctx, keyPrefix+key, token, ttl)
	if err != nil {
		return false, fmt.Errorf("extend lock %q: %w", key, err)
	}
	return extended, nil
}

// WithLock runs fn while holding the lock, retrying acquisition with linearly
// increasing backoff. The lock is always released when fn returns, whatever
// way it exits. Exhausted retries and store failures both surface as a
// LockAcquisitionError so callers can treat them as transient.
func (l *DistributedLock) WithLock(ctx context.Context, key string, opts Options, fn func(ctx context.Context) error) error {
	attempts := opts.Retries
	if attempts < 1 {
		attempts = 1
	}

	var token string
	acquired := false
	for attempt := 1; attempt <= attempts; attempt++ {
		var err error
		token, acquired, err = l.Acquire(ctx, key, opts.TTL)
		if err != nil {
			return &errs.LockAcquisitionError{Key: key, Attempts: attempt, Err: err}
		}
		if acquired {
			break
		}
		if attempt == attempts {
			break
		}
		// Linear backoff: delay grows with the attempt number
		if err := l.timeProvider.Sleep(ctx, opts.RetryDelay*time.Duration(attempt)); err != nil {
			return &errs.LockAcquisitionError{Key: key, Attempts: attempt, Err: err}
		}
	}
	if !acquired {
		return &errs.LockAcquisitionError{Key: key, Attempts: attempts}
	}

	defer func() {
		released, err := l.Release(ctx, key, token)
		if err != nil {
			l.logger.Error("Failed to release lock", map[string]any{
				"lock_key": key,
				"error":    err.Error(),
			})
			return
		}
		if !released {
			l.logger.Warn("Lock expired before release", map[string]any{
				"lock_key": key,
			})
		}
	}()

	return fn(ctx)
}
