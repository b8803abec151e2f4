// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tasks_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantrio/pantrio/internal/platform/tasks"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

/*
TestPool_RunsSubmittedJobs verifies that accepted jobs are executed by the workers.
*/
func TestPool_RunsSubmittedJobs(t *testing.T) {
	pool := tasks.NewPool(2, 4, quietLogger())
	pool.Start(context.Background())

	var counter atomic.Int32
	var wg sync.WaitGroup
	wg.Add(3)

	for i := 0; i < 3; i++ {
		err := pool.Submit(tasks.Job{
			Name: "increment",
			Run: func(_ context.Context) error {
				defer wg.Done()
				counter.Add(1)
				return nil
			},
		})
		require.NoError(t, err)
	}

	wg.Wait()
	pool.Stop()

	assert.Equal(t, int32(3), counter.Load())
}

/*
TestPool_QueueFull verifies that submissions beyond capacity are rejected
instead of blocking the caller.
*/
func TestPool_QueueFull(t *testing.T) {
	// Workers are never started, so the single queue slot stays occupied.
	pool := tasks.NewPool(1, 1, quietLogger())

	noop := tasks.Job{Name: "noop", Run: func(_ context.Context) error { return nil }}

	require.NoError(t, pool.Submit(noop))
	assert.ErrorIs(t, pool.Submit(noop), tasks.ErrQueueFull)
}

/*
TestPool_SubmitAfterStop verifies that a stopped pool refuses new work.
*/
func TestPool_SubmitAfterStop(t *testing.T) {
	pool := tasks.NewPool(1, 1, quietLogger())
	pool.Start(context.Background())
	pool.Stop()

	err := pool.Submit(tasks.Job{Name: "late", Run: func(_ context.Context) error { return nil }})
	assert.ErrorIs(t, err, tasks.ErrPoolClosed)
}

/*
TestPool_StopDrainsAcceptedJobs verifies that Stop waits for queued work
instead of dropping it.
*/
func TestPool_StopDrainsAcceptedJobs(t *testing.T) {
	pool := tasks.NewPool(1, 4, quietLogger())

	var counter atomic.Int32
	for i := 0; i < 4; i++ {
		err := pool.Submit(tasks.Job{
			Name: "queued",
			Run: func(_ context.Context) error {
				counter.Add(1)
				return nil
			},
		})
		require.NoError(t, err)
	}

	pool.Start(context.Background())
	pool.Stop()

	assert.Equal(t, int32(4), counter.Load())
}

/*
TestPool_PanicContainment verifies that a panicking job does not take its
worker down.
*/
func TestPool_PanicContainment(t *testing.T) {
	pool := tasks.NewPool(1, 4, quietLogger())

	require.NoError(t, pool.Submit(tasks.Job{
		Name: "explosive",
		Run:  func(_ context.Context) error { panic("boom") },
	}))

	ran := false
	require.NoError(t, pool.Submit(tasks.Job{
		Name: "survivor",
		Run: func(_ context.Context) error {
			ran = true
			return nil
		},
	}))

	pool.Start(context.Background())
	pool.Stop()

	assert.True(t, ran)
}

/*
TestPool_FailedJobDoesNotStopWorker verifies that job errors are contained.
*/
func TestPool_FailedJobDoesNotStopWorker(t *testing.T) {
	pool := tasks.NewPool(1, 2, quietLogger())

	require.NoError(t, pool.Submit(tasks.Job{
		Name: "failing",
		Run:  func(_ context.Context) error { return errors.New("import broke") },
	}))

	ran := false
	require.NoError(t, pool.Submit(tasks.Job{
		Name: "next",
		Run: func(_ context.Context) error {
			ran = true
			return nil
		},
	}))

	pool.Start(context.Background())
	pool.Stop()

	assert.True(t, ran)
}
