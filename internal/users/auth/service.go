// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pantrio/pantrio/internal/platform/apperr"
	"github.com/pantrio/pantrio/internal/platform/constants"
	"github.com/pantrio/pantrio/internal/platform/ctxutil"
	"github.com/pantrio/pantrio/internal/platform/dberr"
	"github.com/pantrio/pantrio/internal/platform/sec"
	"github.com/pantrio/pantrio/pkg/username"
	"github.com/pantrio/pantrio/pkg/uuidv7"
)

// # Codec Contract

// TokenProvider abstracts signing and verification of credential envelopes.
//
// # Why an interface?
//
// The service reasons about claims, never about key material. The production
// implementation is [sec.TokenService]; tests substitute a stub codec.
type TokenProvider interface {
	IssueAccessToken(userID, jti string, timeToLive time.Duration, fresh bool) (string, error)
	IssueRefreshToken(userID, jti string, timeToLive time.Duration) (string, error)
	IssueLongLivedToken(userID, jti string) (string, error)
	VerifyToken(envelope string) (*sec.AuthClaims, error)
}

// # Service Layer

// Options tunes the token family manager. Zero values fall back to the
// package defaults.
type Options struct {
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	OnboardingEnabled bool
}

// Service orchestrates authentication, token family rotation, onboarding,
// and password recovery.
//
// # Token Families
//
// A login mints a parentless refresh token and an access child: the family
// root and its first branch. Every refresh exchange appends a generation to
// the chain. The service enforces a single rule everywhere: once any branch
// of a generation is proven used (its access was activated), every other
// branch of that generation is dead. Presenting a dead access is denied;
// presenting a dead refresh is treated as credential theft and revokes the
// entire family.
type Service struct {
	userRepository       UserRepository
	tokenRepository      TokenRepository
	resetTokenRepository ResetTokenRepository
	tokenProvider        TokenProvider
	accessTokenTTL       time.Duration
	refreshTokenTTL      time.Duration
	onboardingEnabled    bool
	logger               *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	userRepo UserRepository,
	tokenRepo TokenRepository,
	resetRepo ResetTokenRepository,
	provider TokenProvider,
	logger *slog.Logger,
	options Options,
) *Service {
	if options.AccessTokenTTL <= 0 {
		options.AccessTokenTTL = DefaultAccessTokenTTL
	}
	if options.RefreshTokenTTL <= 0 {
		options.RefreshTokenTTL = DefaultRefreshTokenTTL
	}

	return &Service{
		userRepository:       userRepo,
		tokenRepository:      tokenRepo,
		resetTokenRepository: resetRepo,
		tokenProvider:        provider,
		accessTokenTTL:       options.AccessTokenTTL,
		refreshTokenTTL:      options.RefreshTokenTTL,
		onboardingEnabled:    options.OnboardingEnabled,
		logger:               logger,
	}
}

// # Inputs & Outputs

// LoginInput carries the credentials presented to a login.
type LoginInput struct {
	Username string
	Password string
	Device   string
}

// OnboardInput carries the first-user bootstrap payload.
type OnboardInput struct {
	Username string
	Name     string
	Password string
	Device   string
}

// TokenPair is a freshly minted access/refresh envelope pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// # Login

/*
Login verifies a username/password pair and mints a new token family.

Description: The new family consists of a parentless refresh root and an
access child carrying fresh=true, since a password was just presented.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *TokenPair: Signed access and refresh envelopes
  - error: apperr.Unauthorized on bad credentials, or failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*TokenPair, error) {
	user, err := service.authenticate(context, input.Username, input.Password)
	if err != nil {
		return nil, err
	}

	pair, err := service.mintFamily(context, user.ID, deviceOrDefault(input.Device))
	if err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).Info("login_succeeded", slog.String("user_id", user.ID))
	return pair, nil
}

/*
FreshLogin verifies a username/password pair and mints a single fresh access
token. No refresh token is created; the credential expires for good.

Description: Privileged operations (password change, long-lived token
minting) demand an access token whose password entry is recent. Clients call
this without disturbing their existing family.

Parameters:
  - context: context.Context
  - input: LoginInput (Device is optional)

Returns:
  - string: Signed access envelope with fresh=true
  - error: apperr.Unauthorized on bad credentials, or failures
*/
func (service *Service) FreshLogin(context context.Context, input LoginInput) (string, error) {
	user, err := service.authenticate(context, input.Username, input.Password)
	if err != nil {
		return "", err
	}

	row := &Token{
		ID:     uuidv7.New(),
		JTI:    uuidv7.New(),
		Type:   sec.TokenTypeAccess,
		Name:   deviceOrDefault(input.Device),
		UserID: user.ID,
	}
	if err := service.tokenRepository.Insert(context, row); err != nil {
		return "", fmt.Errorf("auth_service_insert_fresh_access_failed: %w", err)
	}

	envelope, err := service.tokenProvider.IssueAccessToken(user.ID, row.JTI, service.accessTokenTTL, true)
	if err != nil {
		return "", fmt.Errorf("auth_service_sign_fresh_access_failed: %w", err)
	}

	ctxutil.GetLogger(context).Info("fresh_login_succeeded", slog.String("user_id", user.ID))
	return envelope, nil
}

// authenticate resolves and verifies a username/password pair. Both unknown
// username and wrong password collapse into the same client-visible error.
func (service *Service) authenticate(context context.Context, rawUsername, password string) (*User, error) {
	normalized := username.Normalize(rawUsername)

	user, err := service.userRepository.FindByUsername(context, normalized)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.Unauthorized(MsgInvalidCredentials)
		}
		return nil, fmt.Errorf("auth_service_user_lookup_failed: %w", err)
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		ctxutil.GetLogger(context).Warn("login_failed", slog.String("user_id", user.ID))
		return nil, apperr.Unauthorized(MsgInvalidCredentials)
	}

	return user, nil
}

// mintFamily creates a family root refresh plus its first access child and
// signs both envelopes. The access is fresh: a password was just presented.
func (service *Service) mintFamily(context context.Context, userID, device string) (*TokenPair, error) {
	refreshRow := &Token{
		ID:     uuidv7.New(),
		JTI:    uuidv7.New(),
		Type:   sec.TokenTypeRefresh,
		Name:   device,
		UserID: userID,
	}
	accessRow := &Token{
		ID:             uuidv7.New(),
		JTI:            uuidv7.New(),
		Type:           sec.TokenTypeAccess,
		Name:           device,
		UserID:         userID,
		RefreshTokenID: &refreshRow.ID,
	}

	if err := service.tokenRepository.InsertPair(context, refreshRow, accessRow); err != nil {
		return nil, fmt.Errorf("auth_service_insert_family_failed: %w", err)
	}

	refreshEnvelope, err := service.tokenProvider.IssueRefreshToken(userID, refreshRow.JTI, service.refreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_sign_refresh_failed: %w", err)
	}
	accessEnvelope, err := service.tokenProvider.IssueAccessToken(userID, accessRow.JTI, service.accessTokenTTL, true)
	if err != nil {
		return nil, fmt.Errorf("auth_service_sign_access_failed: %w", err)
	}

	return &TokenPair{AccessToken: accessEnvelope, RefreshToken: refreshEnvelope}, nil
}

// # Credential Verification

/*
VerifyAccess authenticates a bearer envelope and resolves its principal.

Description: The envelope must decode as an access or long-lived token, its
row must still exist, and the store's acceptance rule must pass under the
branch-anchor lock. Acceptance marks the token used, which is exactly what
cements the presenting branch as the canonical one. A denial is returned as
a plain Unauthorized and revokes nothing.

Parameters:
  - context: context.Context
  - envelope: string (the raw bearer token)

Returns:
  - *sec.Principal: The resolved identity bound to the presented credential
  - error: apperr.Unauthorized with a lifecycle message, or failures
*/
func (service *Service) VerifyAccess(context context.Context, envelope string) (*sec.Principal, error) {
	claims, err := service.tokenProvider.VerifyToken(envelope)
	if err != nil {
		return nil, classifyEnvelopeError(err)
	}
	if claims.TokenType != sec.TokenTypeAccess && claims.TokenType != sec.TokenTypeLongLived {
		return nil, apperr.Unauthorized(MsgAccessTokenOnly)
	}

	row, err := service.tokenRepository.FindByJTI(context, claims.JTI())
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.Unauthorized(MsgTokenRevoked)
		}
		return nil, fmt.Errorf("auth_service_verify_lookup_failed: %w", err)
	}

	accepted, err := service.tokenRepository.ActivateAccess(context, row)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.Unauthorized(MsgTokenRevoked)
		}
		return nil, fmt.Errorf("auth_service_verify_activate_failed: %w", err)
	}
	if !accepted {
		ctxutil.GetLogger(context).Warn("stale_access_denied",
			slog.String("user_id", row.UserID),
			slog.String("token_id", row.ID),
		)
		return nil, apperr.Unauthorized(MsgTokenRevoked)
	}

	user, err := service.userRepository.FindByID(context, row.UserID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.Unauthorized(MsgTokenRevoked)
		}
		return nil, fmt.Errorf("auth_service_verify_user_failed: %w", err)
	}

	return &sec.Principal{
		UserID:    user.ID,
		Username:  user.Username,
		Name:      user.Name,
		Admin:     user.Admin,
		CreatedAt: user.CreatedAt,
		TokenID:   row.ID,
		JTI:       row.JTI,
		TokenType: row.Type,
		Fresh:     claims.Fresh,
	}, nil
}

// # Rotation

/*
Refresh exchanges a refresh envelope for a new access/refresh pair.

Description: The presented refresh becomes the parent of a new generation:
a refresh child plus that child's access. Replay of an already-superseded
refresh is treated as proof of credential theft. The whole family is revoked
in the same transaction and the caller sees a plain Unauthorized, so an
attacker learns nothing from the response.

Parameters:
  - context: context.Context
  - envelope: string (the raw bearer token)

Returns:
  - *TokenPair: Signed envelopes of the new generation
  - error: apperr.Unauthorized with a lifecycle message, or failures
*/
func (service *Service) Refresh(context context.Context, envelope string) (*TokenPair, error) {
	claims, err := service.tokenProvider.VerifyToken(envelope)
	if err != nil {
		return nil, classifyEnvelopeError(err)
	}
	if claims.TokenType != sec.TokenTypeRefresh {
		return nil, apperr.Unauthorized(MsgRefreshTokenOnly)
	}

	presented, err := service.tokenRepository.FindByJTI(context, claims.JTI())
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.Unauthorized(MsgTokenRevoked)
		}
		return nil, fmt.Errorf("auth_service_refresh_lookup_failed: %w", err)
	}

	if presented.Type != sec.TokenTypeRefresh {
		// A signed refresh envelope pointing at a non-refresh row cannot come
		// from our issuance. Treat it like theft.
		service.revokeFamily(context, presented, "token_type_mismatch")
		return nil, apperr.Unauthorized(MsgTokenRevoked)
	}

	newRefresh := &Token{
		ID:             uuidv7.New(),
		JTI:            uuidv7.New(),
		Type:           sec.TokenTypeRefresh,
		Name:           presented.Name,
		UserID:         presented.UserID,
		RefreshTokenID: &presented.ID,
	}
	newAccess := &Token{
		ID:             uuidv7.New(),
		JTI:            uuidv7.New(),
		Type:           sec.TokenTypeAccess,
		Name:           presented.Name,
		UserID:         presented.UserID,
		RefreshTokenID: &newRefresh.ID,
	}

	replayed, removed, err := service.tokenRepository.RotateRefresh(context, presented, newRefresh, newAccess)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.Unauthorized(MsgTokenRevoked)
		}
		return nil, fmt.Errorf("auth_service_rotate_failed: %w", err)
	}
	if replayed {
		ctxutil.GetLogger(context).Warn("refresh_replay_detected",
			slog.String("user_id", presented.UserID),
			slog.String("token_id", presented.ID),
			slog.Int("rows_revoked", removed),
		)
		return nil, apperr.Unauthorized(MsgTokenRevoked)
	}

	refreshEnvelope, err := service.tokenProvider.IssueRefreshToken(presented.UserID, newRefresh.JTI, service.refreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_sign_refresh_failed: %w", err)
	}
	accessEnvelope, err := service.tokenProvider.IssueAccessToken(presented.UserID, newAccess.JTI, service.accessTokenTTL, false)
	if err != nil {
		return nil, fmt.Errorf("auth_service_sign_access_failed: %w", err)
	}

	return &TokenPair{AccessToken: accessEnvelope, RefreshToken: refreshEnvelope}, nil
}

// revokeFamily deletes the family containing the given token and logs the
// compromise. Used on detections outside the rotation transaction.
func (service *Service) revokeFamily(context context.Context, token *Token, reason string) {
	removed, err := service.tokenRepository.DeleteFamily(context, token.ID)
	if err != nil && !errors.Is(err, dberr.ErrNotFound) {
		ctxutil.GetLogger(context).Error("family_revocation_failed",
			slog.String("user_id", token.UserID),
			slog.String("token_id", token.ID),
			slog.Any("error", err),
		)
		return
	}
	ctxutil.GetLogger(context).Warn("token_family_revoked",
		slog.String("user_id", token.UserID),
		slog.String("token_id", token.ID),
		slog.String("reason", reason),
		slog.Int("rows_revoked", removed),
	)
}

// # Logout

/*
Logout revokes the family of the credential that authenticated the request.

Description: Works uniformly for chained access tokens (the whole family
dies), fresh-login accesses and long-lived tokens (single-row families). A
family already gone counts as success.

Parameters:
  - context: context.Context
  - principal: *sec.Principal

Returns:
  - error: Execution failures
*/
func (service *Service) Logout(context context.Context, principal *sec.Principal) error {
	removed, err := service.tokenRepository.DeleteFamily(context, principal.TokenID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	ctxutil.GetLogger(context).Info("logout_completed",
		slog.String("user_id", principal.UserID),
		slog.Int("rows_revoked", removed),
	)
	return nil
}

// # Long-Lived Tokens

/*
CreateLongLived mints a never-expiring token for API integrations.

Description: The route guards already require a fresh access token presented
by a server admin. The token is parentless, never swept, and verified like an
access token.

Parameters:
  - context: context.Context
  - userID: string (the owner)
  - name: string (label shown in listings)

Returns:
  - string: Signed long-lived envelope, shown exactly once
  - error: Storage or signing failures
*/
func (service *Service) CreateLongLived(context context.Context, userID, name string) (string, error) {
	row := &Token{
		ID:     uuidv7.New(),
		JTI:    uuidv7.New(),
		Type:   sec.TokenTypeLongLived,
		Name:   strings.TrimSpace(name),
		UserID: userID,
	}
	if err := service.tokenRepository.Insert(context, row); err != nil {
		return "", fmt.Errorf("auth_service_insert_llt_failed: %w", err)
	}

	envelope, err := service.tokenProvider.IssueLongLivedToken(userID, row.JTI)
	if err != nil {
		return "", fmt.Errorf("auth_service_sign_llt_failed: %w", err)
	}

	ctxutil.GetLogger(context).Info("longlived_token_created",
		slog.String("user_id", userID),
		slog.String("token_id", row.ID),
	)
	return envelope, nil
}

/*
ListLongLived returns the caller's long-lived tokens, newest first.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []*Token: The caller's long-lived tokens
  - error: Retrieval failures
*/
func (service *Service) ListLongLived(context context.Context, userID string) ([]*Token, error) {
	tokens, err := service.tokenRepository.ListByUser(context, userID, sec.TokenTypeLongLived)
	if err != nil {
		return nil, fmt.Errorf("auth_service_list_llt_failed: %w", err)
	}
	if tokens == nil {
		tokens = []*Token{}
	}
	return tokens, nil
}

/*
DeleteLongLived revokes one of the caller's long-lived tokens.

Description: A token belonging to another user, or a non-llt row, answers
NotFound so token IDs cannot be probed.

Parameters:
  - context: context.Context
  - userID: string (the caller)
  - tokenID: string

Returns:
  - error: apperr.NotFound or execution failures
*/
func (service *Service) DeleteLongLived(context context.Context, userID, tokenID string) error {
	row, err := service.tokenRepository.FindByID(context, tokenID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return apperr.NotFound("Token")
		}
		return fmt.Errorf("auth_service_llt_lookup_failed: %w", err)
	}
	if row.UserID != userID || row.Type != sec.TokenTypeLongLived {
		return apperr.NotFound("Token")
	}

	if _, err := service.tokenRepository.DeleteFamily(context, tokenID); err != nil && !errors.Is(err, dberr.ErrNotFound) {
		return fmt.Errorf("auth_service_llt_delete_failed: %w", err)
	}

	ctxutil.GetLogger(context).Info("longlived_token_revoked",
		slog.String("user_id", userID),
		slog.String("token_id", tokenID),
	)
	return nil
}

// # Onboarding

/*
OnboardingOpen reports whether the first-user bootstrap is available: the
feature is enabled and no account exists yet.

Returns:
  - bool: Whether onboarding may proceed
  - error: Retrieval failures
*/
func (service *Service) OnboardingOpen(context context.Context) (bool, error) {
	if !service.onboardingEnabled {
		return false, nil
	}

	count, err := service.userRepository.Count(context)
	if err != nil {
		return false, fmt.Errorf("auth_service_count_users_failed: %w", err)
	}
	return count == 0, nil
}

/*
Onboard creates the server's first user and logs them in.

Description: The first user is a server administrator. Every rejection,
including a concurrent onboarding losing the unique-username race, is an
InvalidUsage so the endpoint stays a plain 400 surface.

Parameters:
  - context: context.Context
  - input: OnboardInput

Returns:
  - *TokenPair: Signed envelopes for the new admin
  - error: apperr.InvalidUsage when closed or invalid, or failures
*/
func (service *Service) Onboard(context context.Context, input OnboardInput) (*TokenPair, error) {
	open, err := service.OnboardingOpen(context)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, apperr.InvalidUsage("Onboarding is not available")
	}

	normalized := username.Normalize(input.Username)
	if !username.Valid(normalized) {
		return nil, apperr.InvalidUsage("Invalid username")
	}

	passwordHash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_password_failed: %w", err)
	}

	user := &User{
		ID:           uuidv7.New(),
		Username:     normalized,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: passwordHash,
		Admin:        true,
	}
	if err := service.userRepository.Create(context, user); err != nil {
		if appError := apperr.As(err); appError != nil && appError.Code == "CONFLICT" {
			return nil, apperr.InvalidUsage("Username already exists")
		}
		return nil, fmt.Errorf("auth_service_onboard_create_failed: %w", err)
	}

	ctxutil.GetLogger(context).Info("onboarding_completed", slog.String("user_id", user.ID))
	return service.mintFamily(context, user.ID, deviceOrDefault(input.Device))
}

// # Password Recovery

/*
RequestPasswordReset issues a reset token for the given username.

Description: An unknown username is silently ignored to prevent account
enumeration; the endpoint answers identically either way.

Parameters:
  - context: context.Context
  - rawUsername: string

Returns:
  - string: The reset token, empty for unknown users
  - error: Generation or cache failures
*/
func (service *Service) RequestPasswordReset(context context.Context, rawUsername string) (string, error) {
	normalized := username.Normalize(rawUsername)

	user, err := service.userRepository.FindByUsername(context, normalized)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("auth_service_reset_lookup_failed: %w", err)
	}

	token, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return "", fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	if err := service.resetTokenRepository.Set(context, token, user.ID, constants.ResetTokenTTL); err != nil {
		return "", fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	// TODO: Hand the reset link to the mailer once an email transport exists.
	ctxutil.GetLogger(context).Info("password_reset_requested", slog.String("user_id", user.ID))
	return token, nil
}

/*
ResetPassword consumes a reset token and replaces the user's password.

Description: Every token family of the user is revoked; whoever triggered the
reset must log in again on every device.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - error: apperr.InvalidUsage for a bad token, or failures
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {
	userID, err := service.resetTokenRepository.Get(context, token)
	if err != nil {
		if appError := apperr.As(err); appError != nil && appError.Code == "NOT_FOUND" {
			return apperr.InvalidUsage("Invalid or expired reset token")
		}
		return fmt.Errorf("auth_service_reset_resolve_failed: %w", err)
	}

	passwordHash, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_hash_password_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, userID, passwordHash); err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			// The account vanished between token issuance and use.
			return apperr.InvalidUsage("Invalid or expired reset token")
		}
		return fmt.Errorf("auth_service_reset_update_failed: %w", err)
	}

	removed, err := service.tokenRepository.DeleteAllForUser(context, userID)
	if err != nil {
		return fmt.Errorf("auth_service_reset_revoke_failed: %w", err)
	}
	_ = service.resetTokenRepository.Delete(context, token)

	ctxutil.GetLogger(context).Info("password_reset_completed",
		slog.String("user_id", userID),
		slog.Int("rows_revoked", removed),
	)
	return nil
}

/*
ChangePassword replaces the caller's password.

Description: Every token family except the one performing the change is
revoked, so a leaked credential on another device dies with the old password
while the current session stays logged in. The route guard already demanded
a fresh access token.

Parameters:
  - context: context.Context
  - principal: *sec.Principal (the authenticated caller)
  - newPassword: string

Returns:
  - error: Execution failures
*/
func (service *Service) ChangePassword(context context.Context, principal *sec.Principal, newPassword string) error {
	passwordHash, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_hash_password_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, principal.UserID, passwordHash); err != nil {
		return fmt.Errorf("auth_service_change_password_failed: %w", err)
	}

	families, err := service.tokenRepository.DeleteAllForUserExcept(context, principal.UserID, principal.TokenID)
	if err != nil {
		return fmt.Errorf("auth_service_change_revoke_failed: %w", err)
	}

	ctxutil.GetLogger(context).Info("password_changed",
		slog.String("user_id", principal.UserID),
		slog.Int("families_revoked", families),
	)
	return nil
}

// # Maintenance

/*
Sweep removes expired access rows and abandoned refresh families.

Returns:
  - int: Rows removed
  - error: Execution failures
*/
func (service *Service) Sweep(context context.Context) (int, error) {
	removed, err := service.tokenRepository.SweepExpired(context, service.accessTokenTTL, service.refreshTokenTTL)
	if err != nil {
		return 0, fmt.Errorf("auth_service_sweep_failed: %w", err)
	}

	if removed > 0 {
		service.logger.Info("token_sweep_completed", slog.Int("rows_removed", removed))
	}
	return removed, nil
}

// # Helpers

// classifyEnvelopeError maps codec failures onto the two client-visible
// verification messages. The distinction between malformed and badly signed
// envelopes stays internal.
func classifyEnvelopeError(err error) error {
	if errors.Is(err, sec.ErrExpired) {
		return apperr.Unauthorized(MsgTokenExpired)
	}
	return apperr.Unauthorized(MsgTokenInvalid)
}

func deviceOrDefault(device string) string {
	trimmed := strings.TrimSpace(device)
	if trimmed == "" {
		return constants.DefaultDeviceName
	}
	if len(trimmed) > DeviceNameMaxLength {
		trimmed = trimmed[:DeviceNameMaxLength]
	}
	return trimmed
}
