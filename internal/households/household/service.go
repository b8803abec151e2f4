// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package household

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pantrio/pantrio/internal/platform/apperr"
	"github.com/pantrio/pantrio/internal/platform/dberr"
	"github.com/pantrio/pantrio/internal/platform/middleware"
	"github.com/pantrio/pantrio/internal/platform/validate"
	"github.com/pantrio/pantrio/pkg/uuidv7"
)

// LanguageImporter seeds a household's default categories for a language.
//
// # Why an interface?
//
// The import runs on the background pool and is irrelevant to most of this
// package's behavior, so the service only needs the dispatch hook. Tests
// inject a recorder.
type LanguageImporter interface {
	// Resolve canonicalizes a raw language tag against the supported set.
	Resolve(raw string) (string, bool)

	// Dispatch queues the import for a household; it never blocks.
	Dispatch(householdID, tag string)
}

// # Service Layer

// Service orchestrates business rules for households and memberships.
//
// It doubles as the membership registry: [Service.Membership] implements
// [middleware.MembershipSource], the contract household-scoped routes consult.
type Service struct {
	repo     Repository
	importer LanguageImporter
	logger   *slog.Logger
}

// NewService constructs a new household [Service].
func NewService(repo Repository, importer LanguageImporter, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		importer: importer,
		logger:   logger,
	}
}

// # Membership Registry

/*
Membership reports the rights a user holds in a household.

Description: Implements [middleware.MembershipSource]. A nil result with a
nil error means the user does not belong to the household; errors are
reserved for infrastructure failures.

Parameters:
  - context: context.Context
  - householdID: string
  - userID: string

Returns:
  - *middleware.Membership: Rights, or nil for non-members
  - error: Retrieval failures
*/
func (service *Service) Membership(context context.Context, householdID, userID string) (*middleware.Membership, error) {
	member, err := service.repo.FindMember(context, householdID, userID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("household_service_membership_failed: %w", err)
	}

	return &middleware.Membership{Admin: member.Admin, Owner: member.Owner}, nil
}

// # Household Management

/*
ListForUser retrieves every household the user belongs to.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []*Household: Households without member lists attached
  - error: Retrieval failures
*/
func (service *Service) ListForUser(context context.Context, userID string) ([]*Household, error) {
	return service.repo.ListForUser(context, userID)
}

/*
Get retrieves a household detail view with its member roster attached.

Parameters:
  - context: context.Context
  - householdID: string

Returns:
  - *Household: Hydrated entity including Members
  - error: apperr.NotFound if missing
*/
func (service *Service) Get(context context.Context, householdID string) (*Household, error) {
	household, err := service.repo.FindByID(context, householdID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("Household")
		}
		return nil, fmt.Errorf("household_service_get_failed: %w", err)
	}

	members, err := service.repo.ListMembers(context, householdID)
	if err != nil {
		return nil, fmt.Errorf("household_service_get_members_failed: %w", err)
	}
	household.Members = members

	return household, nil
}

// CreateInput carries the household creation payload.
type CreateInput struct {
	Name            string
	Photo           *string
	Language        *string
	PlannerFeature  *bool
	ExpensesFeature *bool
	ViewOrdering    []string
	MemberIDs       []string
}

/*
Create initializes a new household with the creator as its owner.

Description: The store writes the household, the owner membership, the
requested plain memberships (unknown user IDs are skipped, as is the creator)
and the Default shopping list in one transaction. A language tag that does
not resolve against the supported set is dropped silently; a resolved one is
stored and its category pack import is dispatched to the background pool.

Parameters:
  - context: context.Context
  - ownerID: string (the creating user)
  - input: CreateInput

Returns:
  - *Household: The created household
  - error: Validation or persistence failures
*/
func (service *Service) Create(context context.Context, ownerID string, input CreateInput) (*Household, error) {
	validator := &validate.Validator{}
	validator.Required(FieldName, strings.TrimSpace(input.Name)).
		MaxLen(FieldName, input.Name, NameMaxLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	household := &Household{
		ID:              uuidv7.New(),
		Name:            input.Name,
		Photo:           input.Photo,
		PlannerFeature:  true,
		ExpensesFeature: true,
		ViewOrdering:    input.ViewOrdering,
	}
	if input.PlannerFeature != nil {
		household.PlannerFeature = *input.PlannerFeature
	}
	if input.ExpensesFeature != nil {
		household.ExpensesFeature = *input.ExpensesFeature
	}
	if input.Language != nil {
		if tag, ok := service.importer.Resolve(*input.Language); ok {
			household.Language = &tag
		}
	}

	if err := service.repo.Create(context, household, ownerID, input.MemberIDs); err != nil {
		return nil, err
	}

	if household.Language != nil {
		service.importer.Dispatch(household.ID, *household.Language)
	}

	service.logger.Info("household_created",
		slog.String("household_id", household.ID),
		slog.String("owner_id", ownerID),
	)

	return household, nil
}

// UpdateInput carries the mutable subset of household settings. Nil fields
// keep their current values.
type UpdateInput struct {
	Name            *string
	Photo           *string
	Language        *string
	PlannerFeature  *bool
	ExpensesFeature *bool
	ViewOrdering    []string
}

/*
Update applies a partial settings change to a household.

Description: The language is settable exactly once; once stored it never
changes, so category packs are only ever imported for one language. Setting
it dispatches the import. An empty name is a domain rule violation.

Parameters:
  - context: context.Context
  - householdID: string
  - input: UpdateInput

Returns:
  - *Household: The updated entity
  - error: apperr.NotFound, validation or persistence failures
*/
func (service *Service) Update(context context.Context, householdID string, input UpdateInput) (*Household, error) {
	household, err := service.repo.FindByID(context, householdID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("Household")
		}
		return nil, fmt.Errorf("household_service_update_lookup_failed: %w", err)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperr.InvalidUsage("Household name cannot be empty")
		}
		validator := &validate.Validator{}
		validator.MaxLen(FieldName, *input.Name, NameMaxLength)
		if err := validator.Err(); err != nil {
			return nil, err
		}
		household.Name = *input.Name
	}

	if input.Photo != nil {
		household.Photo = input.Photo
	}

	languageSet := false
	if input.Language != nil && household.Language == nil {
		if tag, ok := service.importer.Resolve(*input.Language); ok {
			household.Language = &tag
			languageSet = true
		}
	}

	if input.PlannerFeature != nil {
		household.PlannerFeature = *input.PlannerFeature
	}
	if input.ExpensesFeature != nil {
		household.ExpensesFeature = *input.ExpensesFeature
	}
	if input.ViewOrdering != nil {
		household.ViewOrdering = input.ViewOrdering
	}

	if err := service.repo.Update(context, household); err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("Household")
		}
		return nil, err
	}

	if languageSet {
		service.importer.Dispatch(household.ID, *household.Language)
	}

	service.logger.Info("household_updated", slog.String("household_id", household.ID))

	return household, nil
}

/*
Delete removes a household and everything scoped to it.

Parameters:
  - context: context.Context
  - householdID: string

Returns:
  - error: apperr.NotFound if missing, persistence failures
*/
func (service *Service) Delete(context context.Context, householdID string) error {
	if err := service.repo.Delete(context, householdID); err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return apperr.NotFound("Household")
		}
		return err
	}

	service.logger.Info("household_deleted", slog.String("household_id", householdID))

	return nil
}

// # Membership Controls

/*
PutMember creates or updates a membership, setting the admin flag.

Description: The owner flag is immutable through this path. A nil admin flag
keeps the member's current value. The household is checked first so a server
admin operating on a dead household sees 404 rather than a constraint error.

Parameters:
  - context: context.Context
  - householdID: string
  - userID: string
  - admin: *bool

Returns:
  - *Member: The resulting membership
  - error: apperr.NotFound if the household or user is missing
*/
func (service *Service) PutMember(context context.Context, householdID, userID string, admin *bool) (*Member, error) {
	if _, err := service.repo.FindByID(context, householdID); err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("Household")
		}
		return nil, fmt.Errorf("household_service_put_member_lookup_failed: %w", err)
	}

	member, err := service.repo.UpsertMember(context, householdID, userID, admin)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("User")
		}
		return nil, err
	}

	service.logger.Info("household_member_saved",
		slog.String("household_id", householdID),
		slog.String("user_id", userID),
		slog.Bool("admin", member.Admin),
	)

	return member, nil
}

/*
RemoveMember detaches a user from a household.

Description: Idempotent; removing a membership that does not exist succeeds,
so a user can clear a stale self-reference. The owner cannot be removed: a
household never exists without its owner.

Parameters:
  - context: context.Context
  - householdID: string
  - userID: string

Returns:
  - error: apperr.InvalidUsage when the target is the owner, persistence failures
*/
func (service *Service) RemoveMember(context context.Context, householdID, userID string) error {
	member, err := service.repo.FindMember(context, householdID, userID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			// Already gone. Idempotent success.
			return nil
		}
		return fmt.Errorf("household_service_remove_member_lookup_failed: %w", err)
	}

	if member.Owner {
		return apperr.InvalidUsage("Cannot remove the household owner")
	}

	if err := service.repo.RemoveMember(context, householdID, userID); err != nil {
		return err
	}

	service.logger.Info("household_member_removed",
		slog.String("household_id", householdID),
		slog.String("user_id", userID),
	)

	return nil
}
