package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/safiripay/payment-core/internal/domain/port/core"
)

// Item is one queued request identified by ID
type Item[T any] struct {
	ID      string
	Payload T
}

// BulkFunc processes one claimed batch and returns a result per item ID.
// An ID missing from the map causes that item's future to be rejected.
type BulkFunc[T, R any] func(ctx context.Context, items []Item[T]) (map[string]R, error)

// Options tunes batching behaviour
type Options struct {
	// MaxBatchSize triggers an immediate flush when the queue reaches it
	MaxBatchSize int
	// MaxWait bounds how long a lone item waits before a timed flush
	MaxWait time.Duration
}

type outcome[R any] struct {
	value R
	err   error
}

// Future resolves when the batch containing its item has been processed
type Future[R any] struct {
	ch <-chan outcome[R]
}

// Wait blocks until the item's result is available or ctx is done. Cancelling
// the wait does not remove the item from an in-flight batch.
func (f *Future[R]) Wait(ctx context.Context) (R, error) {
	select {
	case out := <-f.ch:
		return out.value, out.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

type pendingItem[T, R any] struct {
	item Item[T]
	ch   chan outcome[R]
}

// Processor coalesces individual requests into bounded batches for a
// downstream bulk operation. Latency is bounded by
// min(time-to-fill-batch, MaxWait).
type Processor[T, R any] struct {
	opts    Options
	process BulkFunc[T, R]
	onError func(error)
	logger  core.Logger

	mu         sync.Mutex
	pending    []*pendingItem[T, R]
	timer      *time.Timer
	processing bool
}

// NewProcessor creates a batch processor. onError is an observability hook
// invoked once per failed flush; it may be nil.
func NewProcessor[T, R any](opts Options, process BulkFunc[T, R], onError func(error), logger core.Logger) *Processor[T, R] {
	if opts.MaxBatchSize < 1 {
		opts.MaxBatchSize = 1
	}
	return &Processor[T, R]{
		opts:    opts,
		process: process,
		onError: onError,
		logger:  logger,
	}
}

// Add enqueues an item and returns a future for its result. Reaching
// MaxBatchSize flushes immediately; otherwise a MaxWait timer is armed for
// the queue if one isn't already running.
func (p *Processor[T, R]) Add(item Item[T]) *Future[R] {
	ch := make(chan outcome[R], 1)

	p.mu.Lock()
	p.pending = append(p.pending, &pendingItem[T, R]{item: item, ch: ch})
	full := len(p.pending) >= p.opts.MaxBatchSize
	if full {
		p.stopTimerLocked()
	} else if p.timer == nil {
		p.timer = time.AfterFunc(p.opts.MaxWait, func() {
			p.Flush(context.Background())
		})
	}
	p.mu.Unlock()

	if full {
		go p.Flush(context.Background())
	}

	return &Future[R]{ch: ch}
}

// Flush claims up to MaxBatchSize queued items and runs the bulk processor.
// A flush that arrives while another is processing returns immediately: the
// running flush drains whatever was enqueued meanwhile, so no batch is ever
// claimed twice and nothing stalls.
func (p *Processor[T, R]) Flush(ctx context.Context) {
	p.mu.Lock()
	if p.processing || len(p.pending) == 0 {
		p.mu.Unlock()
		return
	}
	p.processing = true
	p.stopTimerLocked()

	n := len(p.pending)
	if n > p.opts.MaxBatchSize {
		n = p.opts.MaxBatchSize
	}
	claimed := p.pending[:n]
	p.pending = append([]*pendingItem[T, R]{}, p.pending[n:]...)
	p.mu.Unlock()

	items := make([]Item[T], len(claimed))
	for i, pi := range claimed {
		items[i] = pi.item
	}

	results, err := p.process(ctx, items)
	if err != nil {
		// Every item in the failed batch is rejected with the same error
		for _, pi := range claimed {
			pi.ch <- outcome[R]{err: err}
		}
		p.logger.Error("Batch processing failed", map[string]any{
			"batch_size": len(claimed),
			"error":      err.Error(),
		})
		if p.onError != nil {
			p.onError(err)
		}
	} else {
		for _, pi := range claimed {
			result, ok := results[pi.item.ID]
			if !ok {
				// Silent drops are forbidden
				pi.ch <- outcome[R]{err: fmt.Errorf("no result for item %s", pi.item.ID)}
				continue
			}
			pi.ch <- outcome[R]{value: result}
		}
	}

	p.mu.Lock()
	p.processing = false
	remaining := len(p.pending)
	p.mu.Unlock()

	// Keep draining items that arrived while the batch was processing
	if remaining > 0 {
		p.Flush(ctx)
	}
}

// Close flushes anything still queued and stops the timer
func (p *Processor[T, R]) Close() {
	p.mu.Lock()
	p.stopTimerLocked()
	p.mu.Unlock()
	p.Flush(context.Background())
}

func (p *Processor[T, R]) stopTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}
