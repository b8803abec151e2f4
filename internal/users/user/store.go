// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package user

import (
	"context"

	"github.com/pantrio/pantrio/internal/users/auth"
)

// Repository defines the data access contract for profile management. It
// deliberately overlaps the narrower slice the authentication layer owns:
// both operate on users.account, but this side carries the administration
// operations (listing, deletion) that credentials never need.
type Repository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *auth.User: Hydrated entity
		  - error: dberr.ErrNotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		List returns every registered account, ordered by username.

		Parameters:
		  - context: context.Context

		Returns:
		  - []*auth.User: All accounts
		  - error: Database retrieval failures
	*/
	List(context context.Context) ([]*auth.User, error)

	/*
		Create persists a new account.

		Parameters:
		  - context: context.Context
		  - user: *auth.User (ID and PasswordHash already set; the store
		    stamps the timestamps)

		Returns:
		  - error: apperr.Conflict on a duplicate username, or storage failures
	*/
	Create(context context.Context, user *auth.User) error

	/*
		Update synchronizes the mutable profile fields (the display name) and
		refreshes the updatedat timestamp.

		Parameters:
		  - context: context.Context
		  - user: *auth.User (UpdatedAt is refreshed on return)

		Returns:
		  - error: dberr.ErrNotFound or execution failures
	*/
	Update(context context.Context, user *auth.User) error

	/*
		Delete hard-deletes an account. Memberships and tokens go with it
		through the schema's cascading foreign keys.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: dberr.ErrNotFound or execution failures
	*/
	Delete(context context.Context, id string) error
}
