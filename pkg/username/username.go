// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package username canonicalizes login names.
//
// # Usage
//
// Usernames are unique, case-insensitive identifiers. Every code path that
// accepts a username from the outside (login, onboarding, user creation,
// password reset) must normalize it through this package before lookups or
// persistence, so "Åsa" and "åsa" resolve to the same account.
package username

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MaxLength is the longest accepted username after normalization.
const MaxLength = 64

// Normalize converts a raw username into its canonical stored form.
//
// # Transformation Pipeline
//
// 1. Trims surrounding whitespace.
// 2. Normalizes to NFKC (compatibility composition, so visually identical
// inputs compare equal).
// 3. Applies Unicode case folding (lowercases beyond ASCII, ß → ss).
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	composed := norm.NFKC.String(trimmed)
	return cases.Fold().String(composed)
}

// Valid reports whether a normalized username is acceptable: non-empty,
// within [MaxLength], and free of whitespace and control characters.
func Valid(normalized string) bool {
	if normalized == "" || len(normalized) > MaxLength {
		return false
	}
	for _, r := range normalized {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}
