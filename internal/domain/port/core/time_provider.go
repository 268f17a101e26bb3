package core

import (
	"context"
	"time"
)

// TimeProvider abstracts time operations so window-based logic (health buckets,
// rate-limit windows, lock backoff) stays deterministic in tests.
type TimeProvider interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	// Sleep blocks for d or until ctx is done, returning ctx.Err() in that case
	Sleep(ctx context.Context, d time.Duration) error
}
