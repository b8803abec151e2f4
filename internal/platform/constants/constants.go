// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuer and credential lifetimes.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "pantrio-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "pantrio.app"

	// DefaultAccessTokenTTL bounds the lifetime of access credentials.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL bounds the lifetime of refresh credentials (30 days).
	DefaultRefreshTokenTTL = 720 * time.Hour

	// DefaultDeviceName labels token rows created without a device hint.
	DefaultDeviceName = "Unknown"

	// DefaultSweepInterval is how often the expiry sweep runs.
	DefaultSweepInterval = 1 * time.Hour

	// ResetTokenTTL bounds the lifetime of password reset tokens.
	ResetTokenTTL = 1 * time.Hour
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderOrigin        = "Origin"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderAuthorization = "Authorization"
)

// # JSON Field Identifiers

const (
	FieldMsg          = "msg"
	FieldAccessToken  = "access_token"
	FieldRefreshToken = "refresh_token"
	FieldOnboarding   = "onboarding"
	FieldItems        = "items"
	FieldMessage      = "message"
	FieldStatus       = "status"
	FieldApp          = "app"
	FieldVersion      = "version"
	FieldChecks       = "checks"
)

// # Database Schemas

const (
	SchemaCore  = "core"
	SchemaUsers = "users"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixResetToken = "auth:reset_token:"
	RedisKeySweepLock     = "auth:sweep_lock"
)

// # Background Work

const (
	// DefaultTaskWorkers is the number of goroutines draining the task queue.
	DefaultTaskWorkers = 4

	// DefaultTaskQueueSize bounds the task queue; enqueueing beyond it fails fast.
	DefaultTaskQueueSize = 64
)

// # Responses

const (
	// MsgDone is the body of mutation acknowledgements.
	MsgDone = "DONE"
)
