package cache

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	cacheport "github.com/safiripay/payment-core/internal/domain/port/cache"
	"github.com/safiripay/payment-core/internal/domain/port/core"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

type scoredEntry struct {
	score float64
}

// MemoryStore is an in-process store with the same contract as the redis
// adapter, used in tests and single-node development. A mutex stands in for
// redis scripting: every compare-and-act runs under it.
type MemoryStore struct {
	timeProvider core.TimeProvider

	mu     sync.Mutex
	values map[string]memoryEntry
	lists  map[string][]string
	hashes map[string]map[string]int64
	zsets  map[string]map[string]scoredEntry
	ttls   map[string]time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(timeProvider core.TimeProvider) *MemoryStore {
	return &MemoryStore{
		timeProvider: timeProvider,
		values:       make(map[string]memoryEntry),
		lists:        make(map[string][]string),
		hashes:       make(map[string]map[string]int64),
		zsets:        make(map[string]map[string]scoredEntry),
		ttls:         make(map[string]time.Time),
	}
}

// Get returns the value for key, or ErrCacheMiss
func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.liveValueLocked(key)
	if !ok {
		return "", cacheport.ErrCacheMiss
	}
	return entry.value, nil
}

// Set stores value under key with the given TTL
func (s *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = memoryEntry{value: value, expiresAt: s.expiryLocked(ttl)}
	return nil
}

// SetIfAbsent stores value only if key does not exist
func (s *MemoryStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, held := s.liveValueLocked(key); held {
		return false, nil
	}
	s.values[key] = memoryEntry{value: value, expiresAt: s.expiryLocked(ttl)}
	return true, nil
}

// Delete removes the given keys
func (s *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.values, key)
		delete(s.lists, key)
		delete(s.hashes, key)
		delete(s.zsets, key)
		delete(s.ttls, key)
	}
	return nil
}

// CompareAndDelete deletes key only if its current value equals expected
func (s *MemoryStore) CompareAndDelete(ctx context.Context, key, expected string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.liveValueLocked(key)
	if !ok || entry.value != expected {
		return false, nil
	}
	delete(s.values, key)
	return true, nil
}

// CompareAndExpire refreshes the TTL of key only if its value equals expected
func (s *MemoryStore) CompareAndExpire(ctx context.Context, key, expected string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.liveValueLocked(key)
	if !ok || entry.value != expected {
		return false, nil
	}
	entry.expiresAt = s.expiryLocked(ttl)
	s.values[key] = entry
	return true, nil
}

// ListAppend pushes value onto the head, trims to maxLen and refreshes the TTL
func (s *MemoryStore) ListAppend(ctx context.Context, key, value string, maxLen int64, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireAggregateLocked(key)
	list := append([]string{value}, s.lists[key]...)
	if int64(len(list)) > maxLen {
		list = list[:maxLen]
	}
	s.lists[key] = list
	s.ttls[key] = s.expiryLocked(ttl)
	return nil
}

// ListRange returns the list entries between start and stop, inclusive
func (s *MemoryStore) ListRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireAggregateLocked(key)
	list := s.lists[key]
	n := int64(len(list))
	if n == 0 {
		return []string{}, nil
	}

	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop {
		return []string{}, nil
	}

	out := make([]string, stop-start+1)
	copy(out, list[start:stop+1])
	return out, nil
}

// HashIncrement adds delta to a hash field and refreshes the hash TTL
func (s *MemoryStore) HashIncrement(ctx context.Context, key, field string, delta int64, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireAggregateLocked(key)
	hash := s.hashes[key]
	if hash == nil {
		hash = make(map[string]int64)
		s.hashes[key] = hash
	}
	hash[field] += delta
	s.ttls[key] = s.expiryLocked(ttl)
	return hash[field], nil
}

// HashGetAll returns all fields of the hash at key
func (s *MemoryStore) HashGetAll(ctx context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireAggregateLocked(key)
	out := make(map[string]string, len(s.hashes[key]))
	for field, value := range s.hashes[key] {
		out[field] = strconv.FormatInt(value, 10)
	}
	return out, nil
}

// SortedSetAdd adds member with score and refreshes the set TTL
func (s *MemoryStore) SortedSetAdd(ctx context.Context, key, member string, score float64, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireAggregateLocked(key)
	set := s.zsets[key]
	if set == nil {
		set = make(map[string]scoredEntry)
		s.zsets[key] = set
	}
	set[member] = scoredEntry{score: score}
	s.ttls[key] = s.expiryLocked(ttl)
	return nil
}

// SortedSetRemoveByScore removes members with min <= score <= max
func (s *MemoryStore) SortedSetRemoveByScore(ctx context.Context, key string, min, max float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireAggregateLocked(key)
	for member, entry := range s.zsets[key] {
		if entry.score >= min && entry.score <= max {
			delete(s.zsets[key], member)
		}
	}
	return nil
}

// SortedSetRemove removes the given members
func (s *MemoryStore) SortedSetRemove(ctx context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireAggregateLocked(key)
	for _, member := range members {
		delete(s.zsets[key], member)
	}
	return nil
}

// SortedSetCard returns the number of members in the set
func (s *MemoryStore) SortedSetCard(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireAggregateLocked(key)
	return int64(len(s.zsets[key])), nil
}

// SortedSetOldest returns the member with the lowest score
func (s *MemoryStore) SortedSetOldest(ctx context.Context, key string) (cacheport.ScoredMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireAggregateLocked(key)
	set := s.zsets[key]
	if len(set) == 0 {
		return cacheport.ScoredMember{}, cacheport.ErrCacheMiss
	}

	members := make([]cacheport.ScoredMember, 0, len(set))
	for member, entry := range set {
		members = append(members, cacheport.ScoredMember{Member: member, Score: entry.score})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Score < members[j].Score })
	return members[0], nil
}

// Ping always succeeds for the in-memory store
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) liveValueLocked(key string) (memoryEntry, bool) {
	entry, ok := s.values[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && !s.timeProvider.Now().Before(entry.expiresAt) {
		delete(s.values, key)
		return memoryEntry{}, false
	}
	return entry, true
}

func (s *MemoryStore) expireAggregateLocked(key string) {
	expiresAt, ok := s.ttls[key]
	if !ok || expiresAt.IsZero() {
		return
	}
	if !s.timeProvider.Now().Before(expiresAt) {
		delete(s.lists, key)
		delete(s.hashes, key)
		delete(s.zsets, key)
		delete(s.ttls, key)
	}
}

func (s *MemoryStore) expiryLocked(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.timeProvider.Now().Add(ttl)
}
