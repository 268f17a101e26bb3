package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	cacheport "github.com/safiripay/payment-core/internal/domain/port/cache"
	"github.com/safiripay/payment-core/internal/infrastructure/config"
)

// Compare-and-act scripts run server-side so the check and the mutation are
// one atomic step. Two round trips would let a lock expire and be re-acquired
// between them.
var (
	compareAndDeleteScript = redis.NewScript(`
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		end
		return 0
	`)

	compareAndExpireScript = redis.NewScript(`
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("PEXPIRE", KEYS[1], ARGV[2])
		end
		return 0
	`)
)

// RedisStore implements the cache store on a redis client
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store on an already-configured client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisClient builds a redis client from configuration
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
}

// Get returns the value for key, or ErrCacheMiss
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", cacheport.ErrCacheMiss
		}
		return "", fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, nil
}

// Set stores value under key with the given TTL
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// SetIfAbsent stores value only if key does not exist
func (s *RedisStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %q: %w", key, err)
	}
	return ok, nil
}

// Delete removes the given keys
func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// CompareAndDelete deletes key only if its current value equals expected
func (s *RedisStore) CompareAndDelete(ctx context.Context, key, expected string) (bool, error) {
	deleted, err := compareAndDeleteScript.Run(ctx, s.client, []string{key}, expected).Int()
	if err != nil {
		return false, fmt.Errorf("redis compare-and-delete %q: %w", key, err)
	}
	return deleted == 1, nil
}

// CompareAndExpire refreshes the TTL of key only if its value equals expected
func (s *RedisStore) CompareAndExpire(ctx context.Context, key, expected string, ttl time.Duration) (bool, error) {
	expired, err := compareAndExpireScript.Run(ctx, s.client, []string{key}, expected, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("redis compare-and-expire %q: %w", key, err)
	}
	return expired == 1, nil
}

// ListAppend pushes value, trims the list to maxLen and refreshes its TTL in
// one pipeline
func (s *RedisStore) ListAppend(ctx context.Context, key, value string, maxLen int64, ttl time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, value)
	pipe.LTrim(ctx, key, 0, maxLen-1)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis list append %q: %w", key, err)
	}
	return nil
}

// ListRange returns the list entries between start and stop
func (s *RedisStore) ListRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	entries, err := s.client.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list range %q: %w", key, err)
	}
	return entries, nil
}

// HashIncrement adds delta to a hash field and refreshes the hash TTL
func (s *RedisStore) HashIncrement(ctx context.Context, key, field string, delta int64, ttl time.Duration) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.HIncrBy(ctx, key, field, delta)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis hash increment %q: %w", key, err)
	}
	return incr.Val(), nil
}

// HashGetAll returns all fields of the hash at key
func (s *RedisStore) HashGetAll(ctx context.Context, key string) (map[string]string, error) {
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hash get all %q: %w", key, err)
	}
	return fields, nil
}

// SortedSetAdd adds member with score and refreshes the set TTL
func (s *RedisStore) SortedSetAdd(ctx context.Context, key, member string, score float64, ttl time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: score, Member: member})
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis sorted set add %q: %w", key, err)
	}
	return nil
}

// SortedSetRemoveByScore removes members with min <= score <= max
func (s *RedisStore) SortedSetRemoveByScore(ctx context.Context, key string, min, max float64) error {
	err := s.client.ZRemRangeByScore(ctx, key, formatScore(min), formatScore(max)).Err()
	if err != nil {
		return fmt.Errorf("redis sorted set remove by score %q: %w", key, err)
	}
	return nil
}

// SortedSetRemove removes the given members
func (s *RedisStore) SortedSetRemove(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	args := make([]any, len(members))
	for i, member := range members {
		args[i] = member
	}
	if err := s.client.ZRem(ctx, key, args...).Err(); err != nil {
		return fmt.Errorf("redis sorted set remove %q: %w", key, err)
	}
	return nil
}

// SortedSetCard returns the number of members in the set
func (s *RedisStore) SortedSetCard(ctx context.Context, key string) (int64, error) {
	count, err := s.client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis sorted set card %q: %w", key, err)
	}
	return count, nil
}

// SortedSetOldest returns the member with the lowest score
func (s *RedisStore) SortedSetOldest(ctx context.Context, key string) (cacheport.ScoredMember, error) {
	entries, err := s.client.ZRangeWithScores(ctx, key, 0, 0).Result()
	if err != nil {
		return cacheport.ScoredMember{}, fmt.Errorf("redis sorted set oldest %q: %w", key, err)
	}
	if len(entries) == 0 {
		return cacheport.ScoredMember{}, cacheport.ErrCacheMiss
	}
	member, _ := entries[0].Member.(string)
	return cacheport.ScoredMember{Member: member, Score: entries[0].Score}, nil
}

// Ping verifies connectivity to redis
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
