// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Credential Lifetimes

const (
	// DefaultAccessTokenTTL is the fallback access token lifetime when the
	// configuration leaves it unset. Short, to bound the damage of a leak.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the fallback refresh token lifetime. A
	// refresh unused for this long marks an abandoned device.
	DefaultRefreshTokenTTL = 720 * time.Hour

	// ResetTokenLength is the byte length of the random password reset token.
	ResetTokenLength = 32
)

// # Input Constraints

const (
	// PasswordMinLength applies wherever a password is set, never at login.
	PasswordMinLength = 8

	// PasswordMaxLength matches the bcrypt input limit of 72 bytes.
	PasswordMaxLength = 72

	// DeviceNameMaxLength bounds the stored device label.
	DeviceNameMaxLength = 128

	// DisplayNameMaxLength bounds a user's display name.
	DisplayNameMaxLength = 128
)

// # Client-Visible Messages

// Credential failures deliberately reuse a small message set so responses
// never reveal whether a username exists or why exactly a token was refused
// beyond its lifecycle state.
const (
	MsgInvalidCredentials = "Invalid login credentials"
	MsgTokenExpired       = "Token has expired"
	MsgTokenInvalid       = "Invalid token"
	MsgTokenRevoked       = "Token has been revoked"
	MsgAccessTokenOnly    = "Only non-refresh tokens are allowed"
	MsgRefreshTokenOnly   = "Only refresh tokens are allowed"
)
