package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/safiripay/payment-core/internal/domain/entity"
	cacheport "github.com/safiripay/payment-core/internal/domain/port/cache"
	"github.com/safiripay/payment-core/internal/domain/port/core"
	"github.com/safiripay/payment-core/internal/domain/port/persistence"
)

// Cache key prefixes and the hour-bucket layout for success counters
const (
	statusKeyPrefix  = "provider:health:"
	latencyKeyPrefix = "provider:latency:"
	rateKeyPrefix    = "provider:rate:"
	hourBucketLayout = "2006010215"
)

// Config tunes the health tracker. All values ship with the platform defaults
// but are injected from configuration.
type Config struct {
	// StatusTTL caches the durable record; short because health must be near real-time
	StatusTTL time.Duration
	// LatencyWindowSize caps the rolling latency sample list
	LatencyWindowSize int64
	// LatencyTTL expires an idle provider's latency samples
	LatencyTTL time.Duration
	// ResultTTL expires the hour-bucketed success counters
	ResultTTL time.Duration
	// Policy drives the derived health verdict
	Policy entity.HealthPolicy
}

// DefaultConfig returns the observed platform defaults
func DefaultConfig() Config {
	return Config{
		StatusTTL:         10 * time.Second,
		LatencyWindowSize: 100,
		LatencyTTL:        time.Hour,
		ResultTTL:         24 * time.Hour,
		Policy:            entity.DefaultHealthPolicy(),
	}
}

// Tracker keeps per-provider health: a short-TTL cached status over a durable
// upserted record, a capped rolling latency window, and hour-bucketed
// success/total counters. It is lock-free; the signal drives routing
// heuristics, not correctness, so eventual consistency is fine.
type Tracker struct {
	store        cacheport.Store
	repo         persistence.ProviderHealthRepository
	timeProvider core.TimeProvider
	logger       core.Logger
	cfg          Config
}

// NewTracker creates a health tracker
func NewTracker(
	store cacheport.Store,
	repo persistence.ProviderHealthRepository,
	timeProvider core.TimeProvider,
	logger core.Logger,
	cfg Config,
) *Tracker {
	return &Tracker{
		store:        store,
		repo:         repo,
		timeProvider: timeProvider,
		logger:       logger,
		cfg:          cfg,
	}
}

// Get returns the provider's health record, reading through the status cache.
// A cache failure behaves as a miss (fail-open read path). (nil, nil) means no
// record exists yet.
func (t *Tracker) Get(ctx context.Context, provider entity.Provider) (*entity.ProviderHealth, error) {
	key := statusKeyPrefix + string(provider)

	cached, err := t.store.Get(ctx, key)
	if err == nil {
		var record entity.ProviderHealth
		if unmarshalErr := json.Unmarshal([]byte(cached), &record); unmarshalErr == nil {
			return &record, nil
		}
		// Corrupt entry: drop it and fall through to the durable record
		_ = t.store.Delete(ctx, key)
	} else if !errors.Is(err, cacheport.ErrCacheMiss) {
		t.logger.Warn("Health status cache read failed, falling back to store", map[string]any{
			"provider": provider,
			"error":    err.Error(),
		})
	}

	record, err := t.repo.GetByProvider(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("load health record for %s: %w", provider, err)
	}
	if record != nil {
		t.cacheStatus(ctx, record)
	}
	return record, nil
}

// IsHealthy returns the derived routing verdict for a provider. Absence of
// data and read failures are both treated as healthy: the health signal fails
// open so a telemetry outage never blocks payments.
func (t *Tracker) IsHealthy(ctx context.Context, provider entity.Provider) bool {
	record, err := t.Get(ctx, provider)
	if err != nil {
		t.logger.Warn("Health verdict unavailable, assuming healthy", map[string]any{
			"provider": provider,
			"error":    err.Error(),
		})
		return true
	}
	return t.cfg.Policy.Verdict(record, t.timeProvider.Now())
}

// RecordSuccess records a successful provider call with its latency
func (t *Tracker) RecordSuccess(ctx context.Context, provider entity.Provider, latency time.Duration) {
	record := t.loadOrNew(ctx, provider)
	record.RecordSuccess(t.timeProvider.Now(), latency)
	t.persist(ctx, record)
	t.recordLatency(ctx, provider, latency)
	t.recordResult(ctx, provider, true)
}

// RecordFailure records a failed provider call with its latency and error
func (t *Tracker) RecordFailure(ctx context.Context, provider entity.Provider, latency time.Duration, errMsg string) {
	record := t.loadOrNew(ctx, provider)
	record.RecordFailure(t.timeProvider.Now(), latency, errMsg, t.cfg.Policy.FailureThreshold)
	t.persist(ctx, record)
	t.recordLatency(ctx, provider, latency)
	t.recordResult(ctx, provider, false)
}

// AverageLatency averages the rolling latency window; 0 when no samples exist
func (t *Tracker) AverageLatency(ctx context.Context, provider entity.Provider) (time.Duration, error) {
	samples, err := t.store.ListRange(ctx, latencyKeyPrefix+string(provider), 0, -1)
	if err != nil {
		if errors.Is(err, cacheport.ErrCacheMiss) {
			return 0, nil
		}
		return 0, fmt.Errorf("read latency window for %s: %w", provider, err)
	}
	if len(samples) == 0 {
		return 0, nil
	}

	var totalMs int64
	var counted int64
	for _, sample := range samples {
		ms, parseErr := strconv.ParseInt(sample, 10, 64)
		if parseErr != nil {
			continue
		}
		totalMs += ms
		counted++
	}
	if counted == 0 {
		return 0, nil
	}
	return time.Duration(totalMs/counted) * time.Millisecond, nil
}

// SuccessRate returns success/total for the current hour bucket. No data
// means 1.0: absence of signal is never treated as failure.
func (t *Tracker) SuccessRate(ctx context.Context, provider entity.Provider) (float64, error) {
	counters, err := t.store.HashGetAll(ctx, t.rateKey(provider))
	if err != nil {
		return 0, fmt.Errorf("read success counters for %s: %w", provider, err)
	}

	total, _ := strconv.ParseInt(counters["total"], 10, 64)
	if total == 0 {
		return 1.0, nil
	}
	success, _ := strconv.ParseInt(counters["success"], 10, 64)
	return float64(success) / float64(total), nil
}

func (t *Tracker) loadOrNew(ctx context.Context, provider entity.Provider) *entity.ProviderHealth {
	record, err := t.Get(ctx, provider)
	if err != nil {
		t.logger.Warn("Failed to load health record before update", map[string]any{
			"provider": provider,
			"error":    err.Error(),
		})
	}
	if record == nil {
		record = &entity.ProviderHealth{Provider: provider, IsHealthy: true}
	}
	return record
}

// persist upserts the durable record and refreshes the status cache. Neither
// failure is fatal: health recording must never fail the payment it observes.
func (t *Tracker) persist(ctx context.Context, record *entity.ProviderHealth) {
	if err := t.repo.Upsert(ctx, record); err != nil {
		t.logger.Error("Failed to upsert provider health record", map[string]any{
			"provider": record.Provider,
			"error":    err.Error(),
		})
	}
	t.cacheStatus(ctx, record)
}

func (t *Tracker) cacheStatus(ctx context.Context, record *entity.ProviderHealth) {
	payload, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := t.store.Set(ctx, statusKeyPrefix+string(record.Provider), string(payload), t.cfg.StatusTTL); err != nil {
		t.logger.Warn("Failed to cache provider health status", map[string]any{
			"provider": record.Provider,
			"error":    err.Error(),
		})
	}
}

func (t *Tracker) recordLatency(ctx context.Context, provider entity.Provider, latency time.Duration) {
	value := strconv.FormatInt(latency.Milliseconds(), 10)
	err := t.store.ListAppend(ctx, latencyKeyPrefix+string(provider), value, t.cfg.LatencyWindowSize, t.cfg.LatencyTTL)
	if err != nil {
		t.logger.Warn("Failed to record provider latency", map[string]any{
			"provider": provider,
			"error":    err.Error(),
		})
	}
}

func (t *Tracker) recordResult(ctx context.Context, provider entity.Provider, success bool) {
	key := t.rateKey(provider)
	if _, err := t.store.HashIncrement(ctx, key, "total", 1, t.cfg.ResultTTL); err != nil {
		t.logger.Warn("Failed to record provider result", map[string]any{
			"provider": provider,
			"error":    err.Error(),
		})
		return
	}
	if success {
		if _, err := t.store.HashIncrement(ctx, key, "success", 1, t.cfg.ResultTTL); err != nil {
			t.logger.Warn("Failed to record provider success", map[string]any{
				"provider": provider,
				"error":    err.Error(),
			})
		}
	}
}

func (t *Tracker) rateKey(provider entity.Provider) string {
	bucket := t.timeProvider.Now().UTC().Format(hourBucketLayout)
	return rateKeyPrefix + string(provider) + ":" + bucket
}
