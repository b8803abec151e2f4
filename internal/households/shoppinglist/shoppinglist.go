// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package shoppinglist manages the shopping lists of a household.

Every household owns a list named Default from the moment it is created; the
household store writes it in the creation transaction. Lists created here are
additional ones. Item handling is out of scope for this surface.
*/
package shoppinglist

import "time"

// Shoppinglist represents one shopping list inside a household.
type Shoppinglist struct {
	ID          string    `json:"id"` // UUIDv7
	Name        string    `json:"name"`
	HouseholdID string    `json:"household_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// # Field Identifiers

const FieldName = "name"

// NameMaxLength bounds the list display name.
const NameMaxLength = 128
