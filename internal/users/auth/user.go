// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the user identity and token family layer.

It defines the core domain entities (User, Token) and the logic for
authentication, credential rotation, onboarding, and password recovery.

# Architecture

This layer is the "Truth" of the system. A token row exists exactly as long as
the credential it backs is valid; revocation is deletion. Entities defined here
have no external dependencies and encapsulate all business rules related to
identity and credential lifetime.
*/
package auth

import (
	"time"
)

// # Domain Entities

// User represents a registered member of the Pantrio server.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	Admin        bool      `json:"admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldUsername    = "username"
	FieldName        = "name"
	FieldPassword    = "password"
	FieldDevice      = "device"
	FieldToken       = "token"
	FieldNewPassword = "new_password"
	FieldAdmin       = "admin"
	FieldID          = "id"
)
