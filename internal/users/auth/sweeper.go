// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pantrio/pantrio/internal/platform/constants"
	"github.com/pantrio/pantrio/pkg/uuidv7"
)

// Sweeper periodically removes expired token rows.
//
// # Single Instance
//
// Every replica runs a Sweeper, but only the one that wins the Redis lock
// (SET key uid NX PX interval) actually sweeps. The lock's TTL equals the
// interval, so the fleet performs one sweep per interval and a crashed
// holder never wedges the schedule. Overlapping sweeps would be harmless
// anyway since deletes are idempotent; the lock only prevents stampedes.
type Sweeper struct {
	authService *Service
	client      *redis.Client
	interval    time.Duration
	instanceID  string
	logger      *slog.Logger
}

// NewSweeper constructs a Sweeper. A non-positive interval falls back to an
// hour.
func NewSweeper(service *Service, client *redis.Client, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		authService: service,
		client:      client,
		interval:    interval,
		instanceID:  uuidv7.New(),
		logger:      logger,
	}
}

// Run blocks until the context is canceled, attempting one sweep per
// interval. Meant to be started as a goroutine during server startup.
func (sweeper *Sweeper) Run(context context.Context) {
	sweeper.logger.Info("sweeper_started", slog.Duration("interval", sweeper.interval))

	ticker := time.NewTicker(sweeper.interval)
	defer ticker.Stop()

	for {
		select {
		case <-context.Done():
			sweeper.logger.Info("sweeper_stopped")
			return
		case <-ticker.C:
			sweeper.sweepOnce(context)
		}
	}
}

func (sweeper *Sweeper) sweepOnce(context context.Context) {
	acquired, err := sweeper.client.SetNX(
		context,
		constants.RedisKeySweepLock,
		sweeper.instanceID,
		sweeper.interval,
	).Result()
	if err != nil {
		sweeper.logger.Error("sweep_lock_failed", slog.Any("error", err))
		return
	}
	if !acquired {
		// Another replica holds this round.
		return
	}

	if _, err := sweeper.authService.Sweep(context); err != nil {
		sweeper.logger.Error("sweep_failed", slog.Any("error", err))
	}
}
