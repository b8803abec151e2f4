// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package shoppinglist

import "context"

// Repository defines the data access contract for shopping lists.
type Repository interface {

	/*
		ListByHousehold returns a household's shopping lists, oldest first.
		The Default list, written at household creation, always sorts first.

		Parameters:
		  - context: context.Context
		  - householdID: string

		Returns:
		  - []*Shoppinglist: Lists in creation order
		  - error: Retrieval failures
	*/
	ListByHousehold(context context.Context, householdID string) ([]*Shoppinglist, error)

	/*
		Create persists a new shopping list.

		Parameters:
		  - context: context.Context
		  - list: *Shoppinglist (ID set by the caller; createdat stamped by the store)

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, list *Shoppinglist) error
}
