// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package shoppinglist

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/pantrio/pantrio/internal/platform/request"
	"github.com/pantrio/pantrio/internal/platform/respond"
	"github.com/pantrio/pantrio/internal/platform/validate"
)

// Handler implements the HTTP layer for shopping list operations.
type Handler struct {
	service *Service
}

// NewHandler constructs a new shopping list [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the shopping list endpoints. The router is mounted inside a
// household scope, behind the member gate, and inherits {household_id}.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.listShoppinglists)
	router.Post("/", handler.createShoppinglist)
	return router
}

type createListRequest struct {
	Name string `json:"name"`
}

/*
listShoppinglists lists a household's shopping lists.

GET /api/household/{household_id}/shoppinglist (Member)

Response:
  - 200: []Shoppinglist: Creation order, Default first
  - 403: Not a member
*/
func (handler *Handler) listShoppinglists(writer http.ResponseWriter, request *http.Request) {
	householdID := requestutil.Param(request, "household_id")

	lists, err := handler.service.ListByHousehold(request.Context(), householdID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, lists)
}

/*
createShoppinglist adds a shopping list to the household.

POST /api/household/{household_id}/shoppinglist (Member)

Request:
  - Body: createListRequest (Name)

Response:
  - 201: Shoppinglist
  - 400: Validation failure
  - 403: Not a member
*/
func (handler *Handler) createShoppinglist(writer http.ResponseWriter, request *http.Request) {
	householdID := requestutil.Param(request, "household_id")

	var input createListRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	list, err := handler.service.Create(request.Context(), householdID, input.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, list)
}
