// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package tasks provides a bounded background worker pool.

Request handlers must never spawn goroutines directly for deferred work:
an unbounded spawn turns a traffic spike into a memory spike. Instead they
submit jobs here. The pool runs a fixed number of workers over a bounded
queue and sheds load by rejecting submissions when the queue is full.

Lifecycle:

	pool := tasks.NewPool(4, 64, logger)
	pool.Start(ctx)
	defer pool.Stop()

Stop closes the queue and waits for the workers to drain what was already
accepted, so callers should stop the pool before cancelling the context
the jobs run under.
*/
package tasks

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"
)

var (
	// ErrQueueFull is returned by Submit when the queue has no room left.
	ErrQueueFull = errors.New("tasks: queue full")

	// ErrPoolClosed is returned by Submit after Stop has been called.
	ErrPoolClosed = errors.New("tasks: pool closed")
)

// Job is a named unit of background work.
type Job struct {
	// Name identifies the job in logs.
	Name string
	// Run performs the work. The context is the pool's run context.
	Run func(ctx context.Context) error
}

// Pool is a fixed-size worker pool over a bounded job queue.
type Pool struct {
	jobs    chan Job
	workers int
	logger  *slog.Logger

	wg sync.WaitGroup

	// mu guards closed so Submit never races Stop into a send on a
	// closed channel.
	mu     sync.RWMutex
	closed bool
}

// NewPool creates a pool with the given worker count and queue capacity.
func NewPool(workers, capacity int, logger *slog.Logger) *Pool {
	return &Pool{
		jobs:    make(chan Job, capacity),
		workers: workers,
		logger:  logger,
	}
}

// Start launches the workers. Jobs run under the given context.
func (pool *Pool) Start(ctx context.Context) {
	for i := 0; i < pool.workers; i++ {
		pool.wg.Add(1)
		go pool.worker(ctx)
	}

	pool.logger.Info("task_pool_started",
		slog.Int("workers", pool.workers),
		slog.Int("capacity", cap(pool.jobs)),
	)
}

// Submit enqueues a job without blocking.
//
// # Returns
//   - nil when the job was accepted.
//   - [ErrQueueFull] when the queue is at capacity; callers decide whether
//     that is fatal for them (it usually is not).
//   - [ErrPoolClosed] after Stop.
func (pool *Pool) Submit(job Job) error {
	pool.mu.RLock()
	defer pool.mu.RUnlock()

	if pool.closed {
		return ErrPoolClosed
	}

	select {
	case pool.jobs <- job:
		return nil
	default:
		pool.logger.Warn("task_rejected", slog.String("task", job.Name))
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for the workers to finish the jobs that
// were already accepted. It is safe to call more than once.
func (pool *Pool) Stop() {
	pool.mu.Lock()
	alreadyClosed := pool.closed
	if !alreadyClosed {
		pool.closed = true
		close(pool.jobs)
	}
	pool.mu.Unlock()

	pool.wg.Wait()

	if !alreadyClosed {
		pool.logger.Info("task_pool_stopped")
	}
}

func (pool *Pool) worker(ctx context.Context) {
	defer pool.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-pool.jobs:
			if !ok {
				return
			}
			pool.runJob(ctx, job)
		}
	}
}

// runJob executes a single job, recovering panics so a broken task can
// never take a worker (or the process) down with it.
func (pool *Pool) runJob(ctx context.Context, job Job) {
	startTime := time.Now()

	defer func() {
		if recovered := recover(); recovered != nil {
			stackTrace := make([]byte, 2048)
			length := runtime.Stack(stackTrace, false)

			pool.logger.Error("task_panicked",
				slog.String("task", job.Name),
				slog.Any("error", recovered),
				slog.String("stack", string(stackTrace[:length])),
			)
		}
	}()

	if err := job.Run(ctx); err != nil {
		pool.logger.Error("task_failed",
			slog.String("task", job.Name),
			slog.Any("error", err),
			slog.Int64("duration_ms", time.Since(startTime).Milliseconds()),
		)
		return
	}

	pool.logger.Info("task_finished",
		slog.String("task", job.Name),
		slog.Int64("duration_ms", time.Since(startTime).Milliseconds()),
	)
}
