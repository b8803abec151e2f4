// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package shoppinglist

import (
	"context"
	"log/slog"

	"github.com/pantrio/pantrio/internal/platform/validate"
	"github.com/pantrio/pantrio/pkg/uuidv7"
)

// Service orchestrates business rules for shopping lists.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new shopping list [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// ListByHousehold returns a household's shopping lists in creation order.
func (service *Service) ListByHousehold(context context.Context, householdID string) ([]*Shoppinglist, error) {
	return service.repo.ListByHousehold(context, householdID)
}

/*
Create adds a shopping list to a household.

Parameters:
  - context: context.Context
  - householdID: string
  - name: string

Returns:
  - *Shoppinglist: The created list
  - error: Validation or persistence failures
*/
func (service *Service) Create(context context.Context, householdID, name string) (*Shoppinglist, error) {
	validator := &validate.Validator{}
	validator.Required(FieldName, name).MaxLen(FieldName, name, NameMaxLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	list := &Shoppinglist{
		ID:          uuidv7.New(),
		Name:        name,
		HouseholdID: householdID,
	}
	if err := service.repo.Create(context, list); err != nil {
		return nil, err
	}

	service.logger.Info("shoppinglist_created",
		slog.String("shoppinglist_id", list.ID),
		slog.String("household_id", householdID),
	)

	return list, nil
}
