// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"

	"github.com/pantrio/pantrio/internal/platform/sec"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts, limited
// to what authentication needs. Profile management lives in the user package.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: dberr.ErrNotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByUsername returns the account with the given normalized username.

		Parameters:
		  - context: context.Context
		  - normalizedUsername: string (already passed through pkg/username)

		Returns:
		  - *User: Hydrated entity
		  - error: dberr.ErrNotFound or database retrieval failures
	*/
	FindByUsername(context context.Context, normalizedUsername string) (*User, error)

	/*
		Count returns the total number of registered accounts.

		Returns:
		  - int: Account count, used to gate onboarding
		  - error: Database retrieval failures
	*/
	Count(context context.Context) (int, error)

	/*
		Create persists a new account.

		Parameters:
		  - context: context.Context
		  - user: *User (ID and PasswordHash already set)

		Returns:
		  - error: apperr.Conflict on duplicate username, or storage failures
	*/
	Create(context context.Context, user *User) error

	/*
		UpdatePassword replaces the stored password hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - passwordHash: string (bcrypt hash, never the plain text)

		Returns:
		  - error: dberr.ErrNotFound or execution failures
	*/
	UpdatePassword(context context.Context, userID, passwordHash string) error
}

// # Token Data Access

// TokenRepository defines the persistence contract for credential rows and
// their family chains.
//
// # Why fat operations?
//
// ActivateAccess and RotateRefresh are single methods rather than primitives
// composed in the service, because their correctness depends on evaluating the
// acceptance and replay rules under one row lock. Splitting them would move a
// transaction boundary into the service layer.
type TokenRepository interface {

	/*
		Insert persists a single parentless token row (long-lived tokens and
		fresh-login access tokens).

		Parameters:
		  - context: context.Context
		  - token: *Token (CreatedAt is set by the store on return)

		Returns:
		  - error: apperr.Conflict on a jti collision, or storage failures
	*/
	Insert(context context.Context, token *Token) error

	/*
		InsertPair persists a family root refresh and its first access child in
		one transaction, so a login can never leave half a pair behind.

		Parameters:
		  - context: context.Context
		  - refresh: *Token (parentless root)
		  - access: *Token (RefreshTokenID must point at refresh.ID)

		Returns:
		  - error: Storage or transaction failures
	*/
	InsertPair(context context.Context, refresh, access *Token) error

	/*
		FindByJTI returns the row backing an envelope's jti claim.

		Returns:
		  - *Token: Hydrated row
		  - error: dberr.ErrNotFound when the credential was revoked
	*/
	FindByJTI(context context.Context, jti string) (*Token, error)

	/*
		FindByID returns the row with the given primary key.

		Returns:
		  - *Token: Hydrated row
		  - error: dberr.ErrNotFound or retrieval failures
	*/
	FindByID(context context.Context, id string) (*Token, error)

	/*
		MarkUsed flags a token as observed and stamps lastusedat. Idempotent.

		Returns:
		  - error: dberr.ErrNotFound or execution failures
	*/
	MarkUsed(context context.Context, id string) error

	/*
		ChildrenOf lists the direct children of a refresh token, optionally
		filtered by type.

		Parameters:
		  - context: context.Context
		  - refreshID: string
		  - types: ...sec.TokenType (empty means all)

		Returns:
		  - []*Token: Children ordered by creation time
		  - error: Retrieval failures
	*/
	ChildrenOf(context context.Context, refreshID string, types ...sec.TokenType) ([]*Token, error)

	/*
		ListByUser lists a user's tokens, optionally filtered by type, newest
		first. Used for the long-lived token listing.

		Returns:
		  - []*Token: Matching rows
		  - error: Retrieval failures
	*/
	ListByUser(context context.Context, userID string, types ...sec.TokenType) ([]*Token, error)

	/*
		ActivateAccess accepts or denies a presented access or long-lived
		token.

		Description: Runs the acceptance rule in one transaction. The branch
		anchor (the token's grandparent refresh when present, else its parent)
		is taken with SELECT ... FOR UPDATE, the rule is evaluated under that
		lock, and on acceptance the row is marked used. A denial writes
		nothing; denial never revokes.

		Parameters:
		  - context: context.Context
		  - token: *Token (the row previously loaded via FindByJTI)

		Returns:
		  - bool: Whether the token was accepted
		  - error: dberr.ErrNotFound when the row vanished, or failures
	*/
	ActivateAccess(context context.Context, token *Token) (bool, error)

	/*
		RotateRefresh exchanges a presented refresh token for a new pair.

		Description: Runs the replay rule in one transaction. The branch
		anchor (the parent's parent when present, else the parent itself) is
		locked, the parent is re-read (gone → dberr.ErrNotFound), and the rule
		is evaluated under the lock. On replay the whole family is deleted
		inside the same transaction and reported. Otherwise newRefresh and
		newAccess are inserted and the parent is marked used. Cancellation
		leaves either no new rows, or both rows plus the used flag.

		Parameters:
		  - context: context.Context
		  - parent: *Token (the presented refresh row)
		  - newRefresh: *Token (RefreshTokenID must point at parent.ID)
		  - newAccess: *Token (RefreshTokenID must point at newRefresh.ID)

		Returns:
		  - bool: Whether the presentation was a replay
		  - int: Rows removed by the replay revocation (0 when not replayed)
		  - error: dberr.ErrNotFound or transaction failures
	*/
	RotateRefresh(context context.Context, parent, newRefresh, newAccess *Token) (bool, int, error)

	/*
		DeleteFamily revokes the family containing the given token: it walks
		refreshtokenid upward to the oldest ancestor and deletes that root,
		letting the FK cascade remove every descendant.

		Parameters:
		  - context: context.Context
		  - memberID: string (any member of the family)

		Returns:
		  - int: Rows removed
		  - error: dberr.ErrNotFound when the member is already gone
	*/
	DeleteFamily(context context.Context, memberID string) (int, error)

	/*
		DeleteAllForUser revokes every token of a user (password reset).

		Returns:
		  - int: Rows removed
		  - error: Execution failures
	*/
	DeleteAllForUser(context context.Context, userID string) (int, error)

	/*
		DeleteAllForUserExcept revokes every family of a user except the one
		containing keepMemberID, so a password change does not log out the
		session performing it.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - keepMemberID: string (any member of the family to preserve)

		Returns:
		  - int: Family roots removed (descendants cascade)
		  - error: Execution failures
	*/
	DeleteAllForUserExcept(context context.Context, userID, keepMemberID string) (int, error)

	/*
		SweepExpired removes rows no live credential can reach.

		Description: Pass (a) deletes access rows older than accessTTL. Pass
		(b) then deletes the family of every refresh older than refreshTTL
		that has no children; pass (a) runs first so abandoned leaf refreshes
		become childless. Long-lived tokens are never swept.

		Parameters:
		  - context: context.Context
		  - accessTTL: time.Duration
		  - refreshTTL: time.Duration

		Returns:
		  - int: Total rows removed
		  - error: Execution failures
	*/
	SweepExpired(context context.Context, accessTTL, refreshTTL time.Duration) (int, error)
}

// # Reset Token Data Access

// ResetTokenRepository defines the contract for short-lived password reset
// tokens kept in the cache layer.
type ResetTokenRepository interface {

	/*
		Set stores a reset token mapped to a user ID with a TTL.

		Parameters:
		  - context: context.Context
		  - token: string (opaque secure token)
		  - userID: string
		  - timeToLive: time.Duration

		Returns:
		  - error: Cache failures
	*/
	Set(context context.Context, token, userID string, timeToLive time.Duration) error

	/*
		Get resolves a reset token to the user it was issued for.

		Returns:
		  - string: User ID
		  - error: apperr.NotFound when missing or expired
	*/
	Get(context context.Context, token string) (string, error)

	/*
		Delete removes a reset token once consumed.

		Returns:
		  - error: Cache failures
	*/
	Delete(context context.Context, token string) error
}
