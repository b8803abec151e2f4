// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pantrio/pantrio/internal/platform/middleware"
	requestutil "github.com/pantrio/pantrio/internal/platform/request"
	"github.com/pantrio/pantrio/internal/platform/respond"
	"github.com/pantrio/pantrio/internal/platform/validate"
	"github.com/pantrio/pantrio/internal/users/auth"
)

// # Handler Implementation

// Handler implements the HTTP layer for profile and user administration.
type Handler struct {
	service *Service
}

// NewHandler constructs a new user [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with the user route table. Every route
// requires authentication; the administration group additionally demands the
// server admin flag, and the password change a fresh credential.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.getProfile)
	router.Patch("/", handler.updateProfile)
	router.With(middleware.RequireFresh).Post("/password", handler.changePassword)

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireServerAdmin)

		admin.Get("/all", handler.listUsers)
		admin.Post("/new", handler.createUser)
		admin.Delete("/{id}", handler.deleteUser)
	})

	return router
}

// # Request Payloads

type updateProfileRequest struct {
	Name *string `json:"name"`
}

type changePasswordRequest struct {
	NewPassword string `json:"new_password"`
}

type createUserRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Admin    bool   `json:"admin"`
}

// # Profile Endpoints

/*
getProfile returns the caller's own account.

GET /api/user

Response:
  - 200: auth.User
  - 401: Authentication required
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Profile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
updateProfile applies a partial change to the caller's account.

PATCH /api/user

Request:
  - Body: updateProfileRequest (Name?)

Response:
  - 200: auth.User: The updated account
  - 400: Validation failure
  - 401: Authentication required
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if input.Name != nil {
		validator.Required(auth.FieldName, *input.Name).
			MaxLen(auth.FieldName, *input.Name, auth.DisplayNameMaxLength)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.UpdateProfile(request.Context(), userID, UpdateProfileInput{
		Name: input.Name,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
changePassword replaces the caller's password.

POST /api/user/password

Description: Demands a fresh access token; a credential minted by rotation
is not enough to take over the account. Every other token family is revoked.

Request:
  - Body: changePasswordRequest (NewPassword)

Response:
  - 200: {"msg": "DONE"}
  - 400: Validation failure
  - 401: Authentication or freshness missing
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(auth.FieldNewPassword, input.NewPassword).
		MinLen(auth.FieldNewPassword, input.NewPassword, auth.PasswordMinLength).
		Custom(auth.FieldNewPassword, len(input.NewPassword) > auth.PasswordMaxLength, "Maximum 72 bytes")
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.ChangePassword(request.Context(), principal, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Done(writer)
}

// # Administration Endpoints

/*
listUsers lists every registered account.

GET /api/user/all (server admin)

Response:
  - 200: []auth.User
  - 403: Not a server administrator
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	users, err := handler.service.List(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, users)
}

/*
createUser registers a new account.

POST /api/user/new (server admin)

Request:
  - Body: createUserRequest (Username, Name, Password, Admin?)

Response:
  - 201: auth.User
  - 400: Validation failure
  - 403: Not a server administrator
  - 409: Username already taken
*/
func (handler *Handler) createUser(writer http.ResponseWriter, request *http.Request) {
	var input createUserRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(auth.FieldUsername, input.Username).
		Required(auth.FieldName, input.Name).
		MaxLen(auth.FieldName, input.Name, auth.DisplayNameMaxLength).
		Required(auth.FieldPassword, input.Password).
		MinLen(auth.FieldPassword, input.Password, auth.PasswordMinLength).
		Custom(auth.FieldPassword, len(input.Password) > auth.PasswordMaxLength, "Maximum 72 bytes")
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Create(request.Context(), CreateInput{
		Username: input.Username,
		Name:     input.Name,
		Password: input.Password,
		Admin:    input.Admin,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
deleteUser hard-deletes an account.

DELETE /api/user/{id} (server admin)

Description: Memberships and token families cascade away with the account.

Response:
  - 200: {"msg": "DONE"}
  - 403: Not a server administrator
  - 404: User not found
*/
func (handler *Handler) deleteUser(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.Param(request, "id")

	if err := handler.service.Delete(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Done(writer)
}
