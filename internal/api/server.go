// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pantrio/pantrio/internal/households/category"
	"github.com/pantrio/pantrio/internal/households/household"
	"github.com/pantrio/pantrio/internal/households/shoppinglist"
	"github.com/pantrio/pantrio/internal/platform/config"
	"github.com/pantrio/pantrio/internal/platform/constants"
	"github.com/pantrio/pantrio/internal/platform/middleware"
	"github.com/pantrio/pantrio/internal/users/auth"
	"github.com/pantrio/pantrio/internal/users/user"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if the process is alive.
	Liveness http.HandlerFunc

	// Readiness serves /ready and /api/health — 200 only while every dependency is healthy.
	Readiness http.HandlerFunc

	// Auth handles login, rotation, logout, long-lived tokens, and password recovery.
	Auth *auth.Handler

	// User handles profiles and server-admin account administration.
	User *user.Handler

	// Household handles households, memberships, and the resources nested in them.
	Household *household.Handler

	// Shoppinglist handles a household's shopping lists.
	Shoppinglist *shoppinglist.Handler

	// Category handles a household's item categories.
	Category *category.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
//
// Authentication is deliberately not part of the global chain: the refresh
// endpoint presents a refresh envelope that access verification must reject,
// so the auth router authenticates its own protected group, and every other
// domain group applies [middleware.Authenticate] at its mount.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.AccessVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under the /api prefix.
	r.Route("/api", func(api chi.Router) {
		api.Get("/health", h.Readiness)

		api.Mount("/auth", h.Auth.Routes())
		api.Mount("/onboarding", h.Auth.OnboardingRoutes())

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.Authenticate(verifier))

			protected.Mount("/user", h.User.Routes())
			protected.Mount("/household", h.Household.Routes(
				h.Shoppinglist.Routes(),
				h.Category.Routes(),
			))
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
