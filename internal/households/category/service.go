// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"log/slog"
)

// Service exposes the category read surface. Writes happen through the
// language pack importer, which talks to the repository directly.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new category [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// ListByHousehold returns a household's categories in display order.
func (service *Service) ListByHousehold(context context.Context, householdID string) ([]*Category, error) {
	return service.repo.ListByHousehold(context, householdID)
}
