// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package user implements the profile surface of the identity layer.

Authentication owns credentials and token families; this package owns what
sits around them: the caller's own profile, the password change entry point,
and the server-admin account administration (listing, creation, hard
deletion). It reuses the [auth.User] entity — both packages describe the same
users.account row, from two angles.
*/
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pantrio/pantrio/internal/platform/apperr"
	"github.com/pantrio/pantrio/internal/platform/dberr"
	"github.com/pantrio/pantrio/internal/platform/sec"
	"github.com/pantrio/pantrio/internal/users/auth"
	"github.com/pantrio/pantrio/pkg/username"
	"github.com/pantrio/pantrio/pkg/uuidv7"
)

// PasswordChanger is the slice of the authentication service the profile
// layer needs. A password change revokes every other token family, and that
// logic lives where the token store does.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, principal *sec.Principal, newPassword string) error
}

// # Service Layer

// Service orchestrates business logic for profiles and account administration.
type Service struct {
	repo      Repository
	passwords PasswordChanger
	logger    *slog.Logger
}

// NewService constructs a new user [Service].
func NewService(repo Repository, passwords PasswordChanger, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		passwords: passwords,
		logger:    logger,
	}
}

// # Profile Management

/*
Profile retrieves the caller's own account.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: Hydrated entity
  - error: apperr.NotFound if the account vanished, or failures
*/
func (service *Service) Profile(context context.Context, userID string) (*auth.User, error) {
	user, err := service.repo.FindByID(context, userID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("user_service_profile_failed: %w", err)
	}
	return user, nil
}

// UpdateProfileInput defines the mutable subset of profile fields.
type UpdateProfileInput struct {
	Name *string
}

/*
UpdateProfile applies a partial change to the caller's account.

Description: Fetches the current state, overrides the provided fields, and
synchronizes the result. A nil field means "leave unchanged".

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *auth.User: The updated account
  - error: apperr.NotFound, or update failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*auth.User, error) {
	user, err := service.repo.FindByID(context, userID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("user_service_update_lookup_failed: %w", err)
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}

	if err := service.repo.Update(context, user); err != nil {
		return nil, fmt.Errorf("user_service_update_failed: %w", err)
	}

	service.logger.Info("user_profile_updated", slog.String("user_id", userID))

	return user, nil
}

/*
ChangePassword replaces the caller's password.

Description: Delegates to the authentication layer, which owns the bcrypt
hashing and the revocation of every token family except the caller's own.

Parameters:
  - context: context.Context
  - principal: *sec.Principal (the authenticated caller)
  - newPassword: string

Returns:
  - error: Execution failures
*/
func (service *Service) ChangePassword(context context.Context, principal *sec.Principal, newPassword string) error {
	return service.passwords.ChangePassword(context, principal, newPassword)
}

// # Account Administration

/*
List returns every registered account, ordered by username.

Parameters:
  - context: context.Context

Returns:
  - []*auth.User: All accounts
  - error: Retrieval failures
*/
func (service *Service) List(context context.Context) ([]*auth.User, error) {
	return service.repo.List(context)
}

// CreateInput carries the fields of an admin-created account.
type CreateInput struct {
	Username string
	Name     string
	Password string
	Admin    bool
}

/*
Create registers a new account on behalf of a server administrator.

Description: The username is normalized before the uniqueness check, so
"Åsa" and "åsa" land on the same account. Unlike onboarding, the created
user is only an admin when explicitly flagged.

Parameters:
  - context: context.Context
  - input: CreateInput

Returns:
  - *auth.User: The created account
  - error: apperr.InvalidUsage for a bad username, apperr.Conflict for a
    taken one, or failures
*/
func (service *Service) Create(context context.Context, input CreateInput) (*auth.User, error) {
	normalized := username.Normalize(input.Username)
	if !username.Valid(normalized) {
		return nil, apperr.InvalidUsage("Invalid username")
	}

	passwordHash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user_service_hash_password_failed: %w", err)
	}

	user := &auth.User{
		ID:           uuidv7.New(),
		Username:     normalized,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: passwordHash,
		Admin:        input.Admin,
	}
	if err := service.repo.Create(context, user); err != nil {
		if appError := apperr.As(err); appError != nil && appError.Code == "CONFLICT" {
			return nil, apperr.Conflict("Username already exists")
		}
		return nil, fmt.Errorf("user_service_create_failed: %w", err)
	}

	service.logger.Info("user_created",
		slog.String("user_id", user.ID),
		slog.Bool("admin", user.Admin),
	)

	return user, nil
}

/*
Delete hard-deletes an account.

Description: Memberships and token families disappear with the row through
the schema's cascading foreign keys; a deleted user's credentials stop
verifying immediately.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: apperr.NotFound for an unknown account, or failures
*/
func (service *Service) Delete(context context.Context, userID string) error {
	if err := service.repo.Delete(context, userID); err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return apperr.NotFound("User")
		}
		return fmt.Errorf("user_service_delete_failed: %w", err)
	}

	service.logger.Info("user_deleted", slog.String("user_id", userID))

	return nil
}
