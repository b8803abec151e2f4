// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/pantrio/pantrio/internal/platform/request"
	"github.com/pantrio/pantrio/internal/platform/respond"
)

// Handler implements the HTTP layer for category operations.
type Handler struct {
	service *Service
}

// NewHandler constructs a new category [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the category endpoints. The router is mounted inside a
// household scope, behind the member gate, and inherits {household_id}.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.listCategories)
	return router
}

/*
listCategories lists a household's categories in display order.

GET /api/household/{household_id}/category (Member)

Response:
  - 200: []Category: Ordered by ordering, then name
  - 403: Not a member
*/
func (handler *Handler) listCategories(writer http.ResponseWriter, request *http.Request) {
	householdID := requestutil.Param(request, "household_id")

	categories, err := handler.service.ListByHousehold(request.Context(), householdID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, categories)
}
