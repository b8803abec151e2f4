// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package category manages the item categories of a household.

Categories order the shopping views. Most households never create them by
hand: the language pack importer seeds a default set when the household's
language is chosen, marking each with the pack key it came from so repeated
imports stay idempotent.
*/
package category

import "time"

// Category represents one item category inside a household.
type Category struct {
	ID          string  `json:"id"` // UUIDv7
	Name        string  `json:"name"`
	Default     bool    `json:"default"`               // Seeded by a language pack
	DefaultKey  *string `json:"default_key,omitempty"` // Pack key, nil for user-created categories
	Ordering    int     `json:"ordering"`
	HouseholdID string  `json:"household_id"`

	// CreatedAt is not persisted; the UUIDv7 primary key carries creation order.
	CreatedAt time.Time `json:"-"`
}

// NameMaxLength bounds the category display name.
const NameMaxLength = 128
