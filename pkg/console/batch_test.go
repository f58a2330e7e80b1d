package console_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metagrid-io/console-client/pkg/console"
)

var errItemRejected = errors.New("item rejected")

func TestBatchExecutor_ReportsPerItemOutcomes(t *testing.T) {
	t.Parallel()

	executor := console.NewBatchExecutor(2)

	report := executor.Execute(context.Background(), []string{"a", "b", "c"},
		func(ctx context.Context, id string) error {
			if id == "b" {
				return fmt.Errorf("deleting %s: %w", id, errItemRejected)
			}

			return nil
		})

	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Results, 3)

	// Results follow the input order regardless of completion order.
	assert.Equal(t, "a", report.Results[0].ID)
	assert.Equal(t, "b", report.Results[1].ID)
	assert.Equal(t, "c", report.Results[2].ID)

	assert.True(t, report.Results[0].Success)
	assert.False(t, report.Results[1].Success)
	require.ErrorIs(t, report.Results[1].Err, errItemRejected)
	assert.True(t, report.Results[2].Success)

	require.ErrorIs(t, report.FirstError(), errItemRejected)
}

func TestBatchExecutor_AllSucceeded(t *testing.T) {
	t.Parallel()

	executor := console.NewBatchExecutor(4)

	report := executor.Execute(context.Background(), []string{"1", "2"},
		func(ctx context.Context, id string) error { return nil })

	assert.Equal(t, 2, report.Succeeded)
	assert.Zero(t, report.Failed)
	require.NoError(t, report.FirstError())
}

func TestBatchExecutor_EmptyInput(t *testing.T) {
	t.Parallel()

	executor := console.NewBatchExecutor(0)

	report := executor.Execute(context.Background(), nil,
		func(ctx context.Context, id string) error {
			t.Error("fn must not run without ids")

			return nil
		})

	assert.Zero(t, report.Succeeded)
	assert.Zero(t, report.Failed)
	assert.Empty(t, report.Results)
}

func TestBatchExecutor_BoundsConcurrency(t *testing.T) {
	t.Parallel()

	executor := console.NewBatchExecutor(1)

	var mu sync.Mutex

	running, peak := 0, 0

	ids := []string{"a", "b", "c", "d"}

	report := executor.Execute(context.Background(), ids,
		func(ctx context.Context, id string) error {
			mu.Lock()
			running++
			if running > peak {
				peak = running
			}
			mu.Unlock()

			mu.Lock()
			running--
			mu.Unlock()

			return nil
		})

	assert.Equal(t, len(ids), report.Succeeded)
	assert.Equal(t, 1, peak)
}

func TestBatchExecutor_EachAttemptResolvesBeforeReport(t *testing.T) {
	t.Parallel()

	executor := console.NewBatchExecutor(8)

	var completed sync.Map

	ids := []string{"a", "b", "c", "d", "e"}

	report := executor.Execute(context.Background(), ids,
		func(ctx context.Context, id string) error {
			completed.Store(id, true)

			return nil
		})

	for _, id := range ids {
		_, ok := completed.Load(id)
		assert.True(t, ok, id)
	}

	assert.Equal(t, len(ids), report.Succeeded)
}
