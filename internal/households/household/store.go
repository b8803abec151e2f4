// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package household

import "context"

// # Household Data Access

// Repository defines the data access contract for households and memberships.
type Repository interface {

	/*
		ListForUser returns every household the user is a member of, oldest first.

		Parameters:
		  - context: context.Context
		  - userID: string (UUIDv7)

		Returns:
		  - []*Household: Households without member lists attached
		  - error: Database retrieval failures
	*/
	ListForUser(context context.Context, userID string) ([]*Household, error)

	/*
		FindByID retrieves a household by its UUID.

		Parameters:
		  - context: context.Context
		  - id: string (UUIDv7)

		Returns:
		  - *Household: Hydrated entity, members not attached
		  - error: dberr.ErrNotFound if missing
	*/
	FindByID(context context.Context, id string) (*Household, error)

	/*
		Create persists a new household atomically with its initial state: the
		owner membership, any plain memberships for the given user IDs (unknown
		IDs are skipped), and the household's Default shopping list.

		Parameters:
		  - context: context.Context
		  - household: *Household (ID set by the caller; timestamps stamped by the store)
		  - ownerID: string (the creating user)
		  - memberIDs: []string (optional additional members, may be empty)

		Returns:
		  - error: Persistence failures; nothing is written on failure
	*/
	Create(context context.Context, household *Household, ownerID string, memberIDs []string) error

	/*
		Update rewrites a household's mutable settings.

		Parameters:
		  - context: context.Context
		  - household: *Household

		Returns:
		  - error: dberr.ErrNotFound if missing, persistence failures
	*/
	Update(context context.Context, household *Household) error

	/*
		Delete removes a household. Memberships, shopping lists and categories
		go with it via foreign key cascade.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: dberr.ErrNotFound if missing, persistence failures
	*/
	Delete(context context.Context, id string) error

	// # Membership Management

	/*
		FindMember retrieves one membership row with denormalized user fields.

		Parameters:
		  - context: context.Context
		  - householdID: string
		  - userID: string

		Returns:
		  - *Member: Hydrated membership
		  - error: dberr.ErrNotFound if the user does not belong to the household
	*/
	FindMember(context context.Context, householdID, userID string) (*Member, error)

	/*
		ListMembers returns all members of a household, oldest first.

		Parameters:
		  - context: context.Context
		  - householdID: string

		Returns:
		  - []*Member: Roster with denormalized user fields
		  - error: Retrieval failures
	*/
	ListMembers(context context.Context, householdID string) ([]*Member, error)

	/*
		UpsertMember creates or updates a membership. A nil admin flag keeps the
		current value (false for new rows). The owner flag is never touched.

		Parameters:
		  - context: context.Context
		  - householdID: string
		  - userID: string
		  - admin: *bool

		Returns:
		  - *Member: The resulting membership
		  - error: dberr.ErrNotFound if the user does not exist
	*/
	UpsertMember(context context.Context, householdID, userID string, admin *bool) (*Member, error)

	/*
		RemoveMember deletes a non-owner membership. Removing a membership that
		does not exist is a no-op.

		Parameters:
		  - context: context.Context
		  - householdID: string
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	RemoveMember(context context.Context, householdID, userID string) error
}
