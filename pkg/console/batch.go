package console

import (
	"context"
	"sync"
	"time"

	"github.com/metagrid-io/console-client/internal/constants"
)

// BatchResult is the outcome of one item in a batch operation.
type BatchResult struct {
	ID       string
	Success  bool
	Err      error
	Duration time.Duration
}

// BatchReport summarizes a completed batch: every attempt has resolved
// before the report exists. A batch is best-effort, not a transaction;
// failures are counted and reported, never rolled back.
type BatchReport struct {
	Results   []BatchResult
	Succeeded int
	Failed    int
}

// FirstError returns the first failed result's error, or nil when every
// attempt succeeded.
func (r *BatchReport) FirstError() error {
	for _, result := range r.Results {
		if !result.Success {
			return result.Err
		}
	}

	return nil
}

// BatchFunc performs the operation for one item id.
type BatchFunc func(ctx context.Context, id string) error

// BatchExecutor runs the same operation over many item ids with bounded
// concurrency. Its main console use is multi-row delete: each selected row
// is deleted independently and the report carries per-row outcomes.
type BatchExecutor struct {
	concurrency int
	timeout     time.Duration
}

// NewBatchExecutor creates an executor. concurrency <= 0 uses the default.
func NewBatchExecutor(concurrency int) *BatchExecutor {
	if concurrency <= 0 {
		concurrency = constants.DefaultBatchConcurrency
	}

	return &BatchExecutor{
		concurrency: concurrency,
		timeout:     constants.DefaultHTTPTimeout,
	}
}

// SetTimeout bounds each item's operation.
func (b *BatchExecutor) SetTimeout(timeout time.Duration) {
	b.timeout = timeout
}

// Execute runs fn for every id and returns once all attempts have resolved,
// whatever the interleaving of the underlying requests. Result order
// matches the input order.
func (b *BatchExecutor) Execute(ctx context.Context, ids []string, fn BatchFunc) *BatchReport {
	results := make([]BatchResult, len(ids))

	var waitGroup sync.WaitGroup

	semaphore := make(chan struct{}, b.concurrency)

	for index, id := range ids {
		waitGroup.Add(1)

		go func(index int, id string) {
			defer waitGroup.Done()

			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			opCtx, cancel := context.WithTimeout(ctx, b.timeout)
			defer cancel()

			start := time.Now()
			err := fn(opCtx, id)

			results[index] = BatchResult{
				ID:       id,
				Success:  err == nil,
				Err:      err,
				Duration: time.Since(start),
			}
		}(index, id)
	}

	waitGroup.Wait()

	report := &BatchReport{Results: results}

	for _, result := range results {
		if result.Success {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}

	return report
}
