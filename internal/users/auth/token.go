// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"time"

	"github.com/pantrio/pantrio/internal/platform/sec"
)

// Token is one persisted credential row.
//
// # Family Chains
//
// RefreshTokenID points at the refresh token that minted this one, so rotation
// after rotation forms a singly-linked chain rooted at the login's refresh.
// An access token points at the refresh it was minted alongside; a long-lived
// token has no parent. Because a parent is always inserted before its child,
// a parent's CreatedAt strictly precedes its child's and cycles cannot form.
//
// A row exists iff the credential is currently valid. Deleting the chain's
// root cascades through RefreshTokenID and revokes the whole family.
type Token struct {
	ID             string        `json:"id"`
	JTI            string        `json:"-"` // Envelope claim id. Never serialized.
	Type           sec.TokenType `json:"type"`
	Name           string        `json:"name"` // Device label, e.g. "Pixel 9".
	UserID         string        `json:"-"`
	RefreshTokenID *string       `json:"-"`
	Used           bool          `json:"-"`
	CreatedAt      time.Time     `json:"created_at"`
	LastUsedAt     *time.Time    `json:"last_used_at,omitempty"`
}

// Root reports whether this token starts a family chain.
func (token *Token) Root() bool {
	return token.RefreshTokenID == nil
}
