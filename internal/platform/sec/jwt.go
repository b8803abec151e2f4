// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and the credential codec.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer; the token family manager consumes it for the opaque
// credential envelope and never touches key material itself.
package sec

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// # Token Kinds

// TokenType discriminates the three credential kinds carried in the `typ` claim
// and persisted on every token row.
type TokenType string

const (
	// TokenTypeAccess is the short-lived credential admitting most operations.
	TokenTypeAccess TokenType = "access"

	// TokenTypeRefresh is the long-lived credential whose sole operation is
	// minting a new access+refresh pair, consumed by that act.
	TokenTypeRefresh TokenType = "refresh"

	// TokenTypeLongLived never expires and is verified like an access token.
	TokenTypeLongLived TokenType = "llt"
)

// # Verification Failures

// Codec verification fails with exactly one of these kinds. They all surface
// to clients as 401, but the distinction matters for logging and tests.
var (
	// ErrMalformed marks an envelope that is not a structurally valid token.
	ErrMalformed = errors.New("sec: malformed token")

	// ErrBadSignature marks an envelope whose signature does not verify.
	ErrBadSignature = errors.New("sec: bad token signature")

	// ErrExpired marks an envelope past its `exp` claim.
	ErrExpired = errors.New("sec: token expired")
)

// AuthClaims is the payload embedded inside every Pantrio credential envelope.
//
// # Claim Set
//
// `sub` carries the user id, `jti` the unique token identifier matching the
// persisted row, `typ` the credential kind, and `fresh` marks access tokens
// minted by a password re-entry. Long-lived tokens carry no `exp`.
type AuthClaims struct {
	jwt.RegisteredClaims

	TokenType TokenType `json:"typ"`
	Fresh     bool      `json:"fresh,omitempty"`
}

// UserID returns the `sub` claim.
func (claims *AuthClaims) UserID() string { return claims.Subject }

// JTI returns the `jti` claim.
func (claims *AuthClaims) JTI() string { return claims.ID }

// TokenService handles generation and verification of JWT envelopes using RS256.
type TokenService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
}

// NewTokenService creates a new TokenService.
// It reads RSA keys from the provided filesystem paths.
func NewTokenService(privateKeyPath, publicKeyPath, issuer string) (*TokenService, error) {
	privateKeyData, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read private key from %s: %w", privateKeyPath, err)
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse private key: %w", err)
	}

	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read public key from %s: %w", publicKeyPath, err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse public key: %w", err)
	}

	return &TokenService{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
	}, nil
}

// # Issuance

/*
IssueAccessToken signs a short-lived access envelope.

Parameters:
  - userID: string (the `sub` claim)
  - jti: string (must match the persisted token row)
  - timeToLive: time.Duration
  - fresh: bool (true only for password re-entry logins)

Returns:
  - string: Signed envelope
  - error: Signing failures
*/
func (service *TokenService) IssueAccessToken(userID, jti string, timeToLive time.Duration, fresh bool) (string, error) {
	return service.issue(userID, jti, TokenTypeAccess, timeToLive, fresh)
}

/*
IssueRefreshToken signs a long-lived refresh envelope.

Parameters:
  - userID: string
  - jti: string
  - timeToLive: time.Duration

Returns:
  - string: Signed envelope
  - error: Signing failures
*/
func (service *TokenService) IssueRefreshToken(userID, jti string, timeToLive time.Duration) (string, error) {
	return service.issue(userID, jti, TokenTypeRefresh, timeToLive, false)
}

/*
IssueLongLivedToken signs an envelope with no expiry.

Parameters:
  - userID: string
  - jti: string

Returns:
  - string: Signed envelope
  - error: Signing failures
*/
func (service *TokenService) IssueLongLivedToken(userID, jti string) (string, error) {
	return service.issue(userID, jti, TokenTypeLongLived, 0, false)
}

// issue builds and signs the claim set. A zero timeToLive omits the `exp` claim.
func (service *TokenService) issue(userID, jti string, tokenType TokenType, timeToLive time.Duration, fresh bool) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			ID:       jti,
			Issuer:   service.issuer,
			IssuedAt: jwt.NewNumericDate(currentTime),
		},
		TokenType: tokenType,
		Fresh:     fresh,
	}
	if timeToLive > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(currentTime.Add(timeToLive))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signedToken, err := token.SignedString(service.privateKey)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// # Verification

/*
VerifyToken checks the signature and validity of an envelope.

Description: Failures are classified as [ErrMalformed], [ErrBadSignature] or
[ErrExpired]; callers map all of them to 401 but log them distinctly.

Parameters:
  - envelope: string

Returns:
  - *AuthClaims: Verified claim set
  - error: Classified verification failure
*/
func (service *TokenService) VerifyToken(envelope string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(envelope, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.publicKey, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %w", ErrExpired, err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: %w", ErrBadSignature, err)
		default:
			return nil, fmt.Errorf("%w: %w", ErrBadSignature, err)
		}
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", ErrMalformed)
	}

	return claims, nil
}
