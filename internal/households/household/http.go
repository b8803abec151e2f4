// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package household

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pantrio/pantrio/internal/platform/middleware"
	requestutil "github.com/pantrio/pantrio/internal/platform/request"
	"github.com/pantrio/pantrio/internal/platform/respond"
	"github.com/pantrio/pantrio/internal/platform/validate"
)

// # Handler Implementation

// Handler implements the HTTP layer for household operations.
type Handler struct {
	service *Service
}

// NewHandler constructs a new household [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with the household route table.
//
// The required right of every household-scoped route is declared here, next
// to the route itself; the mediator enforces it before the handler runs. The
// service doubles as the membership source. Sub-resources that live inside a
// household (shopping lists, categories) are passed in and mounted behind the
// member gate, inheriting the {household_id} parameter.
func (handler *Handler) Routes(shoppinglists, categories http.Handler) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.listHouseholds)
	router.Post("/", handler.createHousehold)

	router.Route("/{household_id}", func(scoped chi.Router) {
		member := middleware.RequireHousehold(handler.service, middleware.RightMember)
		admin := middleware.RequireHousehold(handler.service, middleware.RightAdmin)
		adminOrSelf := middleware.RequireHousehold(handler.service, middleware.RightAdminOrSelf)

		scoped.With(member).Get("/", handler.getHousehold)
		scoped.With(admin).Put("/", handler.updateHousehold)
		scoped.With(admin).Delete("/", handler.deleteHousehold)

		scoped.With(admin).Post("/member/{user_id}", handler.putMember)
		scoped.With(adminOrSelf).Delete("/member/{user_id}", handler.deleteMember)

		scoped.With(member).Mount("/shoppinglist", shoppinglists)
		scoped.With(member).Mount("/category", categories)
	})

	return router
}

// # Request Payloads

type createHouseholdRequest struct {
	Name            string   `json:"name"`
	Photo           *string  `json:"photo"`
	Language        *string  `json:"language"`
	PlannerFeature  *bool    `json:"planner_feature"`
	ExpensesFeature *bool    `json:"expenses_feature"`
	ViewOrdering    []string `json:"view_ordering"`
	Member          []string `json:"member"`
}

type updateHouseholdRequest struct {
	Name            *string  `json:"name"`
	Photo           *string  `json:"photo"`
	Language        *string  `json:"language"`
	PlannerFeature  *bool    `json:"planner_feature"`
	ExpensesFeature *bool    `json:"expenses_feature"`
	ViewOrdering    []string `json:"view_ordering"`
}

type putMemberRequest struct {
	Admin *bool `json:"admin"`
}

// # Household Endpoints

/*
listHouseholds lists the households the caller belongs to.

GET /api/household

Response:
  - 200: []Household
  - 401: Authentication required
*/
func (handler *Handler) listHouseholds(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	households, err := handler.service.ListForUser(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, households)
}

/*
createHousehold creates a household owned by the caller.

POST /api/household

Description: The caller becomes the owner. Further user IDs in the member
list become plain members; unknown IDs are skipped. A Default shopping list
is created alongside, and a resolved language dispatches the category pack
import.

Request:
  - Body: createHouseholdRequest

Response:
  - 201: Household
  - 400: Validation failure
  - 401: Authentication required
*/
func (handler *Handler) createHousehold(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createHouseholdRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	household, err := handler.service.Create(request.Context(), userID, CreateInput{
		Name:            input.Name,
		Photo:           input.Photo,
		Language:        input.Language,
		PlannerFeature:  input.PlannerFeature,
		ExpensesFeature: input.ExpensesFeature,
		ViewOrdering:    input.ViewOrdering,
		MemberIDs:       input.Member,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, household)
}

/*
getHousehold returns a household detail view with its member roster.

GET /api/household/{household_id} (Member)

Response:
  - 200: Household
  - 403: Not a member
  - 404: Household not found
*/
func (handler *Handler) getHousehold(writer http.ResponseWriter, request *http.Request) {
	householdID := requestutil.Param(request, "household_id")

	household, err := handler.service.Get(request.Context(), householdID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, household)
}

/*
updateHousehold applies a partial settings change.

PUT /api/household/{household_id} (Admin)

Description: The language is settable once and triggers the category pack
import; an empty name is rejected.

Request:
  - Body: updateHouseholdRequest

Response:
  - 200: Household: Updated entity
  - 400: Empty name or validation failure
  - 403: Not a household admin
  - 404: Household not found
*/
func (handler *Handler) updateHousehold(writer http.ResponseWriter, request *http.Request) {
	householdID := requestutil.Param(request, "household_id")

	var input updateHouseholdRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	household, err := handler.service.Update(request.Context(), householdID, UpdateInput{
		Name:            input.Name,
		Photo:           input.Photo,
		Language:        input.Language,
		PlannerFeature:  input.PlannerFeature,
		ExpensesFeature: input.ExpensesFeature,
		ViewOrdering:    input.ViewOrdering,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, household)
}

/*
deleteHousehold removes a household and everything in it.

DELETE /api/household/{household_id} (Admin)

Response:
  - 200: {"msg": "DONE"}
  - 403: Not a household admin
  - 404: Household not found
*/
func (handler *Handler) deleteHousehold(writer http.ResponseWriter, request *http.Request) {
	householdID := requestutil.Param(request, "household_id")

	if err := handler.service.Delete(request.Context(), householdID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Done(writer)
}

// # Membership Endpoints

/*
putMember creates a membership or updates its admin flag.

POST /api/household/{household_id}/member/{user_id} (Admin)

Description: The owner flag cannot be granted or revoked here.

Request:
  - Body: putMemberRequest (Admin?)

Response:
  - 200: Member
  - 403: Not a household admin
  - 404: Household or user not found
*/
func (handler *Handler) putMember(writer http.ResponseWriter, request *http.Request) {
	householdID := requestutil.Param(request, "household_id")
	userID := requestutil.Param(request, "user_id")

	var input putMemberRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	member, err := handler.service.PutMember(request.Context(), householdID, userID, input.Admin)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, member)
}

/*
deleteMember detaches a user from a household.

DELETE /api/household/{household_id}/member/{user_id} (AdminOrSelf)

Description: Idempotent. A user may always remove themselves, even when they
no longer appear in the household. The owner cannot be removed.

Response:
  - 200: {"msg": "DONE"}
  - 400: Target is the household owner
  - 403: Neither admin nor self
*/
func (handler *Handler) deleteMember(writer http.ResponseWriter, request *http.Request) {
	householdID := requestutil.Param(request, "household_id")
	userID := requestutil.Param(request, "user_id")

	if err := handler.service.RemoveMember(request.Context(), householdID, userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Done(writer)
}
