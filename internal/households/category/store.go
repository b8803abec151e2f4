// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import "context"

// Repository defines the data access contract for categories.
type Repository interface {

	/*
		ListByHousehold returns a household's categories ordered for display:
		by ordering, then name.

		Parameters:
		  - context: context.Context
		  - householdID: string

		Returns:
		  - []*Category: Ordered categories
		  - error: Retrieval failures
	*/
	ListByHousehold(context context.Context, householdID string) ([]*Category, error)

	/*
		FindByDefaultKey retrieves the category seeded from a language pack key.

		Parameters:
		  - context: context.Context
		  - householdID: string
		  - defaultKey: string

		Returns:
		  - *Category: Hydrated entity
		  - error: dberr.ErrNotFound if no category carries the key
	*/
	FindByDefaultKey(context context.Context, householdID, defaultKey string) (*Category, error)

	/*
		Create persists a new category. Names are unique per household.

		Parameters:
		  - context: context.Context
		  - entry: *Category

		Returns:
		  - error: Conflict on a duplicate name, persistence failures
	*/
	Create(context context.Context, entry *Category) error
}
