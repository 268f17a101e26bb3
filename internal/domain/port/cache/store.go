package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key does not exist or has expired
var ErrCacheMiss = errors.New("cache: key not found")

// ScoredMember is a sorted-set member with its score
type ScoredMember struct {
	Member string
	Score  float64
}

// Store is the key/value collaborator behind caches, the distributed lock and
// the rate limiter. Implementations must make the compare-and-act operations
// atomic (the redis adapter uses server-side scripts); callers rely on this for
// lock safety.
type Store interface {
	// Get returns the value for key, or ErrCacheMiss
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key with the given TTL (0 = no expiry)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetIfAbsent stores value only if key does not exist, reporting whether it was set
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// Delete removes the given keys, ignoring ones that do not exist
	Delete(ctx context.Context, keys ...string) error

	// CompareAndDelete deletes key only if its current value equals expected
	CompareAndDelete(ctx context.Context, key, expected string) (bool, error)
	// CompareAndExpire refreshes the TTL of key only if its current value equals expected
	CompareAndExpire(ctx context.Context, key, expected string, ttl time.Duration) (bool, error)

	// ListAppend pushes value onto the head of the list at key, trims the list
	// to at most maxLen entries and refreshes its TTL, as one atomic operation
	ListAppend(ctx context.Context, key, value string, maxLen int64, ttl time.Duration) error
	// ListRange returns the list entries between start and stop, inclusive
	ListRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// HashIncrement adds delta to a hash field and refreshes the hash TTL,
	// returning the new field value
	HashIncrement(ctx context.Context, key, field string, delta int64, ttl time.Duration) (int64, error)
	// HashGetAll returns all fields of the hash at key; empty map if absent
	HashGetAll(ctx context.Context, key string) (map[string]string, error)

	// SortedSetAdd adds member with score and refreshes the set TTL
	SortedSetAdd(ctx context.Context, key, member string, score float64, ttl time.Duration) error
	// SortedSetRemoveByScore removes members with min <= score <= max
	SortedSetRemoveByScore(ctx context.Context, key string, min, max float64) error
	// SortedSetRemove removes the given members
	SortedSetRemove(ctx context.Context, key string, members ...string) error
	// SortedSetCard returns the number of members in the set
	SortedSetCard(ctx context.Context, key string) (int64, error)
	// SortedSetOldest returns the member with the lowest score, or ErrCacheMiss
	SortedSetOldest(ctx context.Context, key string) (ScoredMember, error)

	// Ping verifies connectivity to the backing store
	Ping(ctx context.Context) error
}
