package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/safiripay/payment-core/internal/infrastructure/adapter/logger"
)

type recordingProcessor struct {
	mu      sync.Mutex
	batches [][]Item[string]
	err     error
	block   chan struct{}
}

func (p *recordingProcessor) process(ctx context.Context, items []Item[string]) (map[string]string, error) {
	if p.block != nil {
		<-p.block
	}

	p.mu.Lock()
	batch := make([]Item[string], len(items))
	copy(batch, items)
	p.batches = append(p.batches, batch)
	p.mu.Unlock()

	if p.err != nil {
		return nil, p.err
	}

	results := make(map[string]string, len(items))
	for _, item := range items {
		results[item.ID] = "processed-" + item.Payload
	}
	return results, nil
}

func (p *recordingProcessor) batchCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.batches)
}

func TestFullBatchFlushesImmediately(t *testing.T) {
	proc := &recordingProcessor{}
	// MaxWait is long on purpose: a full batch must not wait for the timer
	p := NewProcessor(Options{MaxBatchSize: 3, MaxWait: time.Hour}, proc.process, nil, logger.NewNoopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	futures := make([]*Future[string], 3)
	for i := 0; i < 3; i++ {
		futures[i] = p.Add(Item[string]{ID: fmt.Sprintf("item-%d", i), Payload: fmt.Sprintf("p%d", i)})
	}

	for i, f := range futures {
		result, err := f.Wait(ctx)
		assert.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("processed-p%d", i), result)
	}
	assert.Equal(t, 1, proc.batchCount())
}

func TestLoneItemFlushesAfterMaxWait(t *testing.T) {
	proc := &recordingProcessor{}
	p := NewProcessor(Options{MaxBatchSize: 10, MaxWait: 20 * time.Millisecond}, proc.process, nil, logger.NewNoopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	future := p.Add(Item[string]{ID: "item-1", Payload: "solo"})

	result, err := future.Wait(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "processed-solo", result)
}

func TestMissingResultRejectsItem(t *testing.T) {
	process := func(ctx context.Context, items []Item[string]) (map[string]string, error) {
		// Drop item-1 from the result map
		return map[string]string{"item-0": "ok"}, nil
	}
	p := NewProcessor(Options{MaxBatchSize: 2, MaxWait: time.Hour}, process, nil, logger.NewNoopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	f0 := p.Add(Item[string]{ID: "item-0"})
	f1 := p.Add(Item[string]{ID: "item-1"})

	result, err := f0.Wait(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "ok", result)

	_, err = f1.Wait(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no result for item item-1")
}

func TestProcessorErrorRejectsWholeBatch(t *testing.T) {
	wantErr := errors.New("bulk call failed")
	proc := &recordingProcessor{err: wantErr}

	hookErr := make(chan error, 1)
	onError := func(err error) { hookErr <- err }
	p := NewProcessor(Options{MaxBatchSize: 2, MaxWait: time.Hour}, proc.process, onError, logger.NewNoopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	f0 := p.Add(Item[string]{ID: "item-0"})
	f1 := p.Add(Item[string]{ID: "item-1"})

	_, err := f0.Wait(ctx)
	assert.ErrorIs(t, err, wantErr)
	_, err = f1.Wait(ctx)
	assert.ErrorIs(t, err, wantErr)

	select {
	case err := <-hookErr:
		assert.ErrorIs(t, err, wantErr)
	case <-ctx.Done():
		t.Fatal("onError hook was never invoked")
	}
}

func TestItemsEnqueuedDuringProcessingAreDrained(t *testing.T) {
	proc := &recordingProcessor{block: make(chan struct{})}
	p := NewProcessor(Options{MaxBatchSize: 2, MaxWait: time.Hour}, proc.process, nil, logger.NewNoopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Fill the first batch; its flush blocks inside the processor
	f0 := p.Add(Item[string]{ID: "item-0", Payload: "a"})
	f1 := p.Add(Item[string]{ID: "item-1", Payload: "b"})

	// Enqueue more while the first batch is in flight
	f2 := p.Add(Item[string]{ID: "item-2", Payload: "c"})

	close(proc.block)

	for _, f := range []*Future[string]{f0, f1, f2} {
		_, err := f.Wait(ctx)
		assert.NoError(t, err)
	}
	assert.Equal(t, 2, proc.batchCount())
}

func TestCloseFlushesPending(t *testing.T) {
	proc := &recordingProcessor{}
	p := NewProcessor(Options{MaxBatchSize: 10, MaxWait: time.Hour}, proc.process, nil, logger.NewNoopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	future := p.Add(Item[string]{ID: "item-0", Payload: "pending"})
	p.Close()

	result, err := future.Wait(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "processed-pending", result)
}
