// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package household manages households and their memberships.

It handles the lifecycle of the collaboration tenant, from creation and
settings to membership roles, and it is the system's membership registry:
the authorization mediator asks this package whether a user belongs to a
household and with which rights.

# Core Responsibility

  - Tenancy: Defines the [Household] entity and its settings.
  - Membership: Manages [Member] associations, the owner/admin flags.
  - Authorization Facts: Implements the membership source consulted by
    household-scoped routes.

Every household-scoped resource (shopping lists, categories) hangs off the
entities defined here.
*/
package household

import "time"

// # Core Entities

// Household represents a collaboration tenant shared by its members.
type Household struct {
	ID              string    `json:"id"` // UUIDv7
	Name            string    `json:"name"`
	Photo           *string   `json:"photo,omitempty"`
	Language        *string   `json:"language,omitempty"` // BCP-47 tag, settable once
	PlannerFeature  bool      `json:"planner_feature"`
	ExpensesFeature bool      `json:"expenses_feature"`
	ViewOrdering    []string  `json:"view_ordering,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Members is populated on detail views only.
	Members []*Member `json:"member,omitempty"`
}

// Member represents a user's affiliation with a household.
//
// Exactly one member per household carries the owner flag; the owner is
// treated as an admin by every authorization decision.
type Member struct {
	HouseholdID string    `json:"household_id"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"` // Denormalized for detail views
	Name        string    `json:"name"`     // Denormalized for detail views
	Owner       bool      `json:"owner"`
	Admin       bool      `json:"admin"`
	CreatedAt   time.Time `json:"created_at"`
}

// # Field Identifiers

const (
	FieldName         = "name"
	FieldPhoto        = "photo"
	FieldLanguage     = "language"
	FieldMember       = "member"
	FieldViewOrdering = "view_ordering"
)

// NameMaxLength bounds the household display name.
const NameMaxLength = 128

// DefaultListName is the name of the shopping list every household starts with.
const DefaultListName = "Default"
