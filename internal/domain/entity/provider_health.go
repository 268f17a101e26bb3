package entity

import (
	"time"
)

// ProviderHealth is the durable health record kept per provider, updated after
// every adapter call and never deleted.
type ProviderHealth struct {
	Provider            Provider
	IsHealthy           bool
	ConsecutiveFailures int
	LastCheckedAt       time.Time
	LastResponseTime    time.Duration
	LastSuccessAt       *time.Time
	LastFailureAt       *time.Time
	LastError           string
}

// HealthPolicy holds the tunables behind the derived health verdict. The
// thresholds ship with the platform defaults but are configuration, not
// constants.
type HealthPolicy struct {
	// FailureThreshold is the consecutive-failure count at which a provider is
	// considered unhealthy regardless of its stored flag
	FailureThreshold int
	// StaleBadSignalHold keeps an unhealthy provider unhealthy when its last
	// check is older than this; a stale bad signal never silently recovers
	StaleBadSignalHold time.Duration
}

// DefaultHealthPolicy returns the observed platform defaults
func DefaultHealthPolicy() HealthPolicy {
	return HealthPolicy{
		FailureThreshold:   3,
		StaleBadSignalHold: 5 * time.Minute,
	}
}

// Verdict derives the routing health verdict from a record. A nil record means
// no data, which is deliberately treated as healthy: absence of signal is
// never treated as failure (fail-open policy).
func (p HealthPolicy) Verdict(h *ProviderHealth, now time.Time) bool {
	if h == nil {
		return true
	}
	if h.ConsecutiveFailures >= p.FailureThreshold {
		return false
	}
	// A stale bad signal does not silently recover: an unhealthy record older
	// than the hold window still blocks routing until a success is recorded.
	if !h.IsHealthy && now.Sub(h.LastCheckedAt) > p.StaleBadSignalHold {
		return false
	}
	return h.IsHealthy
}

// RecordSuccess resets the failure streak and marks the provider healthy
func (h *ProviderHealth) RecordSuccess(now time.Time, latency time.Duration) {
	h.ConsecutiveFailures = 0
	h.IsHealthy = true
	h.LastCheckedAt = now
	h.LastResponseTime = latency
	h.LastSuccessAt = &now
	h.LastError = ""
}

// RecordFailure increments the failure streak; the provider is flagged
// unhealthy once the streak reaches threshold.
func (h *ProviderHealth) RecordFailure(now time.Time, latency time.Duration, errMsg string, threshold int) {
	h.ConsecutiveFailures++
	h.IsHealthy = h.ConsecutiveFailures < threshold
	h.LastCheckedAt = now
	h.LastResponseTime = latency
	h.LastFailureAt = &now
	h.LastError = errMsg
}
