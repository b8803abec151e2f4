// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pantrio/pantrio/internal/platform/apperr"
	"github.com/pantrio/pantrio/internal/platform/constants"
	"github.com/pantrio/pantrio/internal/platform/ctxutil"
	"github.com/pantrio/pantrio/internal/platform/respond"
	"github.com/pantrio/pantrio/internal/platform/sec"
)

// AccessVerifier defines the interface needed to verify access tokens in middleware.
//
// # Why an interface?
//
// Defining AccessVerifier here decouples the middleware from the `auth` service
// implementation, allowing us to easily inject fakes during unit testing.
// Verification reaches the token store, so it takes a context.
type AccessVerifier interface {
	VerifyAccess(ctx context.Context, tokenString string) (*sec.Principal, error)
}

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, verify the credential via [AccessVerifier]. Verification
//     covers both the signature and the presence of the token's server-side
//     record, so a revoked token fails here even with a valid signature.
//  4. Inject the resolved [*sec.Principal] into the request context.
//
// # Parameters
//   - verifier: The AccessVerifier instance.
//
// # Returns
//   - An [http.Handler] middleware.
func Authenticate(verifier AccessVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// ── 3. Credential Verification ────────────────────────────────────
			// The verifier classifies its own failures: authentication problems
			// arrive as 401 app errors, store outages as internal errors. Both
			// pass through untouched.
			principal, err := verifier.VerifyAccess(request.Context(), parts[1])
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
//
// # Flow
//  1. Check if [*sec.Principal] exists in context.
//  2. If missing, abort with HTTP 401 Unauthorized.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		principal := ctxutil.GetPrincipal(request.Context())
		if principal == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireFresh blocks requests whose access token did not come directly from a
// password login. Sensitive operations (password change, long-lived token
// creation) demand a fresh credential rather than one minted by rotation.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It implies
// [RequireAuth] so you don't need to mount both.
func RequireFresh(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		principal := ctxutil.GetPrincipal(request.Context())

		if principal == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}

		if !principal.Fresh {
			respond.Error(writer, request, apperr.Unauthorized("Fresh token required"))
			return
		}

		next.ServeHTTP(writer, request)
	})
}

// RequireServerAdmin blocks requests from users without the server admin flag.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It implies
// [RequireAuth] so you don't need to mount both.
func RequireServerAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		principal := ctxutil.GetPrincipal(request.Context())

		if principal == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}

		if !principal.Admin {
			respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
			return
		}

		next.ServeHTTP(writer, request)
	})
}

// # Household Authorization

// Right is the access level a household-scoped route demands.
type Right int

const (
	// RightMember grants access to any member of the household.
	RightMember Right = iota

	// RightAdmin grants access to household admins and the owner.
	RightAdmin

	// RightAdminOrSelf grants access to household admins, the owner, and to
	// the user named by the route's user_id parameter acting on themselves.
	RightAdminOrSelf
)

// String names the right for logs and misuse errors.
func (right Right) String() string {
	switch right {
	case RightMember:
		return "member"
	case RightAdmin:
		return "admin"
	case RightAdminOrSelf:
		return "admin_or_self"
	default:
		return "unknown"
	}
}

// Membership carries the rights attached to a household member.
type Membership struct {
	Admin bool
	Owner bool
}

// MembershipSource supplies household membership facts to [RequireHousehold].
//
// # Contract
//
// A nil Membership with a nil error means the user does not belong to the
// household. Errors are reserved for infrastructure failures.
type MembershipSource interface {
	Membership(ctx context.Context, householdID, userID string) (*Membership, error)
}

// RequireHousehold authorizes the request against the household named by the
// route's household_id parameter.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate], on a route (or route
// subtree) that carries a {household_id} URL parameter. Routes demanding
// [RightAdminOrSelf] must also carry {user_id}. It implies [RequireAuth].
//
// # Flow
//  1. Reject anonymous requests with 401.
//  2. Surface missing route parameters as 500; a household route without its
//     parameters is a registration bug, never a reason to grant access.
//  3. Server admins bypass membership checks entirely.
//  4. Non-members are rejected with 403, except a RightAdminOrSelf request
//     whose user_id parameter names the caller: a user may always detach
//     themselves from a household, even one they no longer belong to.
//  5. Members are measured against the declared right.
//
// Denial never alters state. A 403 here says nothing about whether the
// household exists; probing callers learn nothing from the status code.
func RequireHousehold(source MembershipSource, right Right) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal := ctxutil.GetPrincipal(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if principal == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Route Contract Check ───────────────────────────────────────
			householdID := chi.URLParam(request, "household_id")
			if householdID == "" {
				respond.Error(writer, request, apperr.Internal(
					fmt.Errorf("household route %s registered without household_id parameter", request.URL.Path)))
				return
			}

			targetUserID := chi.URLParam(request, "user_id")
			if right == RightAdminOrSelf && targetUserID == "" {
				respond.Error(writer, request, apperr.Internal(
					fmt.Errorf("admin_or_self route %s registered without user_id parameter", request.URL.Path)))
				return
			}

			// ── 3. Server Admin Bypass ────────────────────────────────────────
			if principal.Admin {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 4. Membership Lookup ──────────────────────────────────────────
			member, err := source.Membership(request.Context(), householdID, principal.UserID)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			if member == nil {
				if right == RightAdminOrSelf && targetUserID == principal.UserID {
					next.ServeHTTP(writer, request)
					return
				}
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			// ── 5. Right Evaluation ───────────────────────────────────────────
			switch right {
			case RightMember:
				next.ServeHTTP(writer, request)
			case RightAdmin:
				if member.Admin || member.Owner {
					next.ServeHTTP(writer, request)
					return
				}
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
			case RightAdminOrSelf:
				if member.Admin || member.Owner || targetUserID == principal.UserID {
					next.ServeHTTP(writer, request)
					return
				}
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
			default:
				respond.Error(writer, request, apperr.Internal(
					fmt.Errorf("household route %s registered with unknown right %d", request.URL.Path, right)))
			}
		})
	}
}

// CheckSameHousehold verifies that two resources referencing each other live
// in the same household. Cross-household references are a client error, not a
// permission problem, so violations surface as 400 rather than 403.
func CheckSameHousehold(householdA, householdB string) error {
	if householdA != householdB {
		return apperr.InvalidUsage("Elements belong to different households")
	}
	return nil
}
