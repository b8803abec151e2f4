// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "time"

// # Principal

// Principal is the request-scoped identity produced by a successful credential
// verification: the resolved user plus the claims of the presented token.
//
// It is bound to the request context exactly once; handlers and the
// authorization mediator read from it instead of re-querying the user store.
type Principal struct {
	// UserID is the resolved user's id (the `sub` claim).
	UserID string `json:"id"`

	// Username is the normalized unique login name.
	Username string `json:"username"`

	// Name is the display name.
	Name string `json:"name"`

	// Admin marks a server administrator, who bypasses household membership checks.
	Admin bool `json:"admin"`

	// CreatedAt is the user record's creation time.
	CreatedAt time.Time `json:"created_at"`

	// TokenID is the persisted row id of the presented credential.
	TokenID string `json:"-"`

	// JTI is the presented credential's `jti` claim.
	JTI string `json:"-"`

	// TokenType is the presented credential's kind (access or llt).
	TokenType TokenType `json:"-"`

	// Fresh reports whether the presented access token was minted by a
	// password re-entry. Privileged operations require it.
	Fresh bool `json:"-"`
}
