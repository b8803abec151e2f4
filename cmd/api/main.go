// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Pantrio HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire domain services, the background pool, and HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pantrio/pantrio/internal/api"
	"github.com/pantrio/pantrio/internal/households/category"
	"github.com/pantrio/pantrio/internal/households/household"
	"github.com/pantrio/pantrio/internal/households/langimport"
	"github.com/pantrio/pantrio/internal/households/shoppinglist"
	"github.com/pantrio/pantrio/internal/platform/config"
	"github.com/pantrio/pantrio/internal/platform/constants"
	"github.com/pantrio/pantrio/internal/platform/migration"
	pgstore "github.com/pantrio/pantrio/internal/platform/postgres"
	redisstore "github.com/pantrio/pantrio/internal/platform/redis"
	"github.com/pantrio/pantrio/internal/platform/sec"
	"github.com/pantrio/pantrio/internal/platform/tasks"
	"github.com/pantrio/pantrio/internal/users/auth"
	"github.com/pantrio/pantrio/internal/users/user"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "pantrio"))
	slog.SetDefault(log)

	log.Info("[Pantrio] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "pantrio"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Application context for everything that outlives startup: background
	// jobs, the sweeper, and the rate limiter cleanup.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("postgres_pool_closing")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("redis_client_closing")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Credential Codec ───────────────────────────────────────────────
	jwtService, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 7. Background Pool ────────────────────────────────────────────────
	taskPool := tasks.NewPool(cfg.TaskWorkers, cfg.TaskQueueSize, log)
	taskPool.Start(appCtx)

	// ── 8. Identity Domain ────────────────────────────────────────────────
	userRepository := auth.NewPostgresUserRepository(pool)
	tokenRepository := auth.NewPostgresTokenRepository(pool)
	resetRepository := auth.NewResetTokenRepository(rdb)

	authService := auth.NewService(userRepository, tokenRepository, resetRepository, jwtService, log, auth.Options{
		AccessTokenTTL:    cfg.AccessTokenTTL,
		RefreshTokenTTL:   cfg.RefreshTokenTTL,
		OnboardingEnabled: cfg.OnboardingEnabled,
	})
	authHandler := auth.NewHandler(authService)

	accountRepository := user.NewPostgresRepository(pool)
	userService := user.NewService(accountRepository, authService, log)
	userHandler := user.NewHandler(userService)

	// ── 9. Household Domain ───────────────────────────────────────────────
	categoryRepository := category.NewPostgresRepository(pool)
	categoryService := category.NewService(categoryRepository, log)
	categoryHandler := category.NewHandler(categoryService)

	importer := langimport.NewImporter(categoryRepository, taskPool, log)

	householdRepository := household.NewPostgresRepository(pool)
	householdService := household.NewService(householdRepository, importer, log)
	householdHandler := household.NewHandler(householdService)

	listRepository := shoppinglist.NewPostgresRepository(pool)
	listService := shoppinglist.NewService(listRepository, log)
	listHandler := shoppinglist.NewHandler(listService)

	// ── 10. Health & Maintenance ──────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
		CheckCache: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		},
	}, log)

	go auth.NewSweeper(authService, rdb, cfg.SweepInterval, log).Run(appCtx)

	// ── 11. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:     liveness,
		Readiness:    readiness,
		Auth:         authHandler,
		User:         userHandler,
		Household:    householdHandler,
		Shoppinglist: listHandler,
		Category:     categoryHandler,
	}

	server := api.NewServer(appCtx, cfg, log, authService, handlers)

	// ── 12. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("server_shutting_down", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
	}

	// Drain accepted background jobs while the stores are still open; the
	// deferred cancel and closers run after.
	taskPool.Stop()

	log.Info("server_stopped")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
