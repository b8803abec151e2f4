// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pantrio/pantrio/internal/platform/apperr"
	"github.com/pantrio/pantrio/internal/platform/constants"
	"github.com/pantrio/pantrio/internal/platform/middleware"
	requestutil "github.com/pantrio/pantrio/internal/platform/request"
	"github.com/pantrio/pantrio/internal/platform/respond"
	"github.com/pantrio/pantrio/internal/platform/validate"
)

// Handler implements the HTTP layer for authentication and token management.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new auth [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with the auth domain's endpoints.
//
// The credential-exchange endpoints stay public: a login has no credential
// yet, and the refresh endpoint presents a refresh envelope that the access
// verifier would reject. The token management group authenticates itself.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Credential exchange
	router.Post("/", handler.login)
	router.Post("/fresh-login", handler.freshLogin)
	router.Get("/refresh", handler.refresh)

	// Password recovery
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	// Token management
	router.Group(func(protected chi.Router) {
		protected.Use(middleware.Authenticate(handler.authService))
		protected.Use(middleware.RequireAuth)

		protected.Delete("/", handler.logout)
		protected.Get("/llt", handler.listLongLived)
		protected.With(middleware.RequireFresh, middleware.RequireServerAdmin).
			Post("/llt", handler.createLongLived)
		protected.Delete("/llt/{id}", handler.deleteLongLived)
	})

	return router
}

// OnboardingRoutes returns the first-user bootstrap endpoints, mounted
// separately under /onboarding.
func (handler *Handler) OnboardingRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.onboardingStatus)
	router.Post("/", handler.onboard)
	return router
}

// # Request Payloads

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Device   string `json:"device"`
}

type forgotPasswordRequest struct {
	Username string `json:"username"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type createTokenRequest struct {
	Name string `json:"name"`
}

type onboardRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Device   string `json:"device"`
}

// # Response Payloads

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
}

type longLivedTokenResponse struct {
	LongLivedToken string `json:"longlived_token"`
}

type onboardingStatusResponse struct {
	Onboarding bool `json:"onboarding"`
}

// # Credential Exchange Endpoints

/*
login starts a new token family for a user.

POST /api/auth

Description: Verifies the credentials and mints a refresh token plus a fresh
access token. The optional device label shows up in token listings.

Request:
  - Body: loginRequest (Username, Password, Device?)

Response:
  - 200: TokenPair: Signed access and refresh envelopes
  - 401: Invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Login(request.Context(), LoginInput{
		Username: input.Username,
		Password: input.Password,
		Device:   input.Device,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

/*
freshLogin re-verifies a password and mints a single fresh access token.

POST /api/auth/fresh-login

Description: Used right before privileged operations. No refresh token is
minted and the caller's existing family is untouched.

Request:
  - Body: loginRequest (Username, Password)

Response:
  - 200: accessTokenResponse: Fresh access envelope
  - 401: Invalid credentials
*/
func (handler *Handler) freshLogin(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	envelope, err := handler.authService.FreshLogin(request.Context(), LoginInput{
		Username: input.Username,
		Password: input.Password,
		Device:   input.Device,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, accessTokenResponse{AccessToken: envelope})
}

/*
refresh rotates a refresh token into a new access/refresh pair.

GET /api/auth/refresh

Description: The refresh envelope arrives as a bearer credential. Replaying a
superseded refresh revokes the whole family and answers a plain 401.

Response:
  - 200: TokenPair: Signed envelopes of the new generation
  - 401: Missing, expired, revoked, or replayed credential
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	envelope, err := bearerEnvelope(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Refresh(request.Context(), envelope)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

/*
logout revokes the family of the credential authenticating this request.

DELETE /api/auth

Response:
  - 200: {"msg": "DONE"}
  - 401: Authentication required
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), principal); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Done(writer)
}

// # Long-Lived Token Endpoints

/*
listLongLived lists the caller's long-lived tokens.

GET /api/auth/llt

Response:
  - 200: []Token: The caller's long-lived tokens, newest first
  - 401: Authentication required
*/
func (handler *Handler) listLongLived(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	tokens, err := handler.authService.ListLongLived(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tokens)
}

/*
createLongLived mints a never-expiring token for API integrations.

POST /api/auth/llt

Description: Guarded by RequireFresh and RequireServerAdmin. The signed
envelope is returned exactly once and cannot be recovered later.

Request:
  - Body: createTokenRequest (Name)

Response:
  - 201: longLivedTokenResponse: The signed long-lived envelope
  - 401: Authentication or freshness missing
  - 403: Not a server administrator
*/
func (handler *Handler) createLongLived(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createTokenRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		MaxLen(FieldName, input.Name, DeviceNameMaxLength)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	envelope, err := handler.authService.CreateLongLived(request.Context(), principal.UserID, input.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, longLivedTokenResponse{LongLivedToken: envelope})
}

/*
deleteLongLived revokes one of the caller's long-lived tokens.

DELETE /api/auth/llt/{id}

Response:
  - 200: {"msg": "DONE"}
  - 404: Token unknown or owned by someone else
*/
func (handler *Handler) deleteLongLived(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	tokenID := requestutil.Param(request, "id")
	if err := handler.authService.DeleteLongLived(request.Context(), userID, tokenID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Done(writer)
}

// # Password Recovery Endpoints

/*
forgotPassword issues a password reset token.

POST /api/auth/forgot-password

Description: Answers 200 whether or not the username exists, so accounts
cannot be enumerated. The token reaches the user out of band.

Request:
  - Body: forgotPasswordRequest (Username)

Response:
  - 200: {"msg": "DONE"}
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if _, err := handler.authService.RequestPasswordReset(request.Context(), input.Username); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Done(writer)
}

/*
resetPassword consumes a reset token and sets a new password.

POST /api/auth/reset-password

Description: On success every token family of the user is revoked.

Request:
  - Body: resetPasswordRequest (Token, NewPassword)

Response:
  - 200: {"msg": "DONE"}
  - 400: Invalid or expired reset token, or validation failure
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldToken, input.Token).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, PasswordMinLength).
		Custom(FieldNewPassword, len(input.NewPassword) > PasswordMaxLength, "Maximum 72 bytes")
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), input.Token, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Done(writer)
}

// # Onboarding Endpoints

/*
onboardingStatus reports whether the first-user bootstrap is available.

GET /api/onboarding

Response:
  - 200: onboardingStatusResponse
*/
func (handler *Handler) onboardingStatus(writer http.ResponseWriter, request *http.Request) {
	open, err := handler.authService.OnboardingOpen(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, onboardingStatusResponse{Onboarding: open})
}

/*
onboard creates the server's first user and logs them in.

POST /api/onboarding

Request:
  - Body: onboardRequest (Username, Name, Password, Device?)

Response:
  - 200: TokenPair: Signed envelopes for the new server administrator
  - 400: Onboarding closed, duplicate username, or validation failure
*/
func (handler *Handler) onboard(writer http.ResponseWriter, request *http.Request) {
	var input onboardRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		Required(FieldName, input.Name).
		MaxLen(FieldName, input.Name, DisplayNameMaxLength).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLength).
		Custom(FieldPassword, len(input.Password) > PasswordMaxLength, "Maximum 72 bytes")
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Onboard(request.Context(), OnboardInput{
		Username: input.Username,
		Name:     input.Name,
		Password: input.Password,
		Device:   input.Device,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

// # Helpers

// bearerEnvelope extracts the bearer credential for endpoints that parse the
// Authorization header themselves.
func bearerEnvelope(request *http.Request) (string, error) {
	header := request.Header.Get(constants.HeaderAuthorization)
	if header == "" {
		return "", apperr.Unauthorized("Authentication required")
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", apperr.Unauthorized("Invalid authorization format")
	}

	return parts[1], nil
}
