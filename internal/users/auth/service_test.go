// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pantrio/pantrio/internal/platform/apperr"
	"github.com/pantrio/pantrio/internal/platform/dberr"
	"github.com/pantrio/pantrio/internal/platform/sec"
	"github.com/pantrio/pantrio/internal/users/auth"
	"github.com/pantrio/pantrio/pkg/uuidv7"
)

// # In-Memory Fakes

// fakeUserStore implements auth.UserRepository on a map.
type fakeUserStore struct {
	mu   sync.Mutex
	rows map[string]*auth.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{rows: map[string]*auth.User{}}
}

func (store *fakeUserStore) FindByID(_ context.Context, id string) (*auth.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	row, ok := store.rows[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (store *fakeUserStore) FindByUsername(_ context.Context, normalizedUsername string) (*auth.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, row := range store.rows {
		if row.Username == normalizedUsername {
			copied := *row
			return &copied, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (store *fakeUserStore) Count(_ context.Context) (int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.rows), nil
}

func (store *fakeUserStore) Create(_ context.Context, user *auth.User) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, row := range store.rows {
		if row.Username == user.Username {
			return apperr.Conflict("Resource already exists")
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	store.rows[user.ID] = &copied
	return nil
}

func (store *fakeUserStore) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	row, ok := store.rows[userID]
	if !ok {
		return dberr.ErrNotFound
	}
	row.PasswordHash = passwordHash
	row.UpdatedAt = time.Now()
	return nil
}

// fakeTokenStore implements auth.TokenRepository on a map, mirroring the
// documented contract of the Postgres implementation: the activated-branch
// rules, family deletion via the chain root, and the two-pass sweep. A fake
// clock advances one millisecond per insert so chain timestamps are strict.
type fakeTokenStore struct {
	mu    sync.Mutex
	rows  map[string]*auth.Token
	clock time.Time
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{rows: map[string]*auth.Token{}, clock: time.Now()}
}

func (store *fakeTokenStore) tick() time.Time {
	store.clock = store.clock.Add(time.Millisecond)
	return store.clock
}

// advance moves the fake clock, aging every existing row.
func (store *fakeTokenStore) advance(duration time.Duration) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.clock = store.clock.Add(duration)
}

func (store *fakeTokenStore) size() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.rows)
}

func (store *fakeTokenStore) insert(token *auth.Token) error {
	for _, row := range store.rows {
		if row.JTI == token.JTI {
			return apperr.Conflict("Resource already exists")
		}
	}
	token.CreatedAt = store.tick()
	copied := *token
	store.rows[token.ID] = &copied
	return nil
}

func (store *fakeTokenStore) Insert(_ context.Context, token *auth.Token) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.insert(token)
}

func (store *fakeTokenStore) InsertPair(_ context.Context, refresh, access *auth.Token) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if err := store.insert(refresh); err != nil {
		return err
	}
	return store.insert(access)
}

func (store *fakeTokenStore) FindByJTI(_ context.Context, jti string) (*auth.Token, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, row := range store.rows {
		if row.JTI == jti {
			copied := *row
			return &copied, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (store *fakeTokenStore) FindByID(_ context.Context, id string) (*auth.Token, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	row, ok := store.rows[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (store *fakeTokenStore) MarkUsed(_ context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.markUsed(id)
}

func (store *fakeTokenStore) markUsed(id string) error {
	row, ok := store.rows[id]
	if !ok {
		return dberr.ErrNotFound
	}
	row.Used = true
	stamp := store.clock
	row.LastUsedAt = &stamp
	return nil
}

func (store *fakeTokenStore) ChildrenOf(_ context.Context, refreshID string, types ...sec.TokenType) ([]*auth.Token, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	var children []*auth.Token
	for _, row := range store.rows {
		if row.RefreshTokenID == nil || *row.RefreshTokenID != refreshID {
			continue
		}
		if !matchesType(row, types) {
			continue
		}
		copied := *row
		children = append(children, &copied)
	}
	sort.Slice(children, func(i, j int) bool { return children[i].CreatedAt.Before(children[j].CreatedAt) })
	return children, nil
}

func (store *fakeTokenStore) ListByUser(_ context.Context, userID string, types ...sec.TokenType) ([]*auth.Token, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	var tokens []*auth.Token
	for _, row := range store.rows {
		if row.UserID != userID || !matchesType(row, types) {
			continue
		}
		copied := *row
		tokens = append(tokens, &copied)
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].CreatedAt.After(tokens[j].CreatedAt) })
	return tokens, nil
}

// activatedBranch reports whether refresh token parentID has a refresh child
// (other than excludeChildID, when given) with an access child marked used.
func (store *fakeTokenStore) activatedBranch(parentID string, excludeChildID *string) bool {
	for _, branch := range store.rows {
		if branch.Type != sec.TokenTypeRefresh {
			continue
		}
		if branch.RefreshTokenID == nil || *branch.RefreshTokenID != parentID {
			continue
		}
		if excludeChildID != nil && branch.ID == *excludeChildID {
			continue
		}
		for _, leaf := range store.rows {
			if leaf.Type != sec.TokenTypeAccess || !leaf.Used {
				continue
			}
			if leaf.RefreshTokenID != nil && *leaf.RefreshTokenID == branch.ID {
				return true
			}
		}
	}
	return false
}

func (store *fakeTokenStore) ActivateAccess(_ context.Context, token *auth.Token) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	live, ok := store.rows[token.ID]
	if !ok {
		return false, dberr.ErrNotFound
	}
	if live.RefreshTokenID == nil {
		return true, store.markUsed(live.ID)
	}

	parent, ok := store.rows[*live.RefreshTokenID]
	if !ok {
		return false, dberr.ErrNotFound
	}
	if store.activatedBranch(parent.ID, nil) {
		return false, nil
	}
	if parent.RefreshTokenID != nil && store.activatedBranch(*parent.RefreshTokenID, &parent.ID) {
		return false, nil
	}
	return true, store.markUsed(live.ID)
}

func (store *fakeTokenStore) RotateRefresh(_ context.Context, parent, newRefresh, newAccess *auth.Token) (bool, int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	live, ok := store.rows[parent.ID]
	if !ok {
		return false, 0, dberr.ErrNotFound
	}

	replayed := store.activatedBranch(live.ID, nil)
	if !replayed && live.RefreshTokenID != nil {
		replayed = store.activatedBranch(*live.RefreshTokenID, &live.ID)
	}
	if replayed {
		removed, err := store.deleteFamily(live.ID)
		return true, removed, err
	}

	if err := store.insert(newRefresh); err != nil {
		return false, 0, err
	}
	if err := store.insert(newAccess); err != nil {
		return false, 0, err
	}
	return false, 0, store.markUsed(live.ID)
}

func (store *fakeTokenStore) DeleteFamily(_ context.Context, memberID string) (int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.deleteFamily(memberID)
}

func (store *fakeTokenStore) deleteFamily(memberID string) (int, error) {
	family := store.familyOf(memberID)
	if family == nil {
		return 0, dberr.ErrNotFound
	}
	for id := range family {
		delete(store.rows, id)
	}
	return len(family), nil
}

// familyOf walks up to the chain root and collects the root with every
// descendant. Returns nil when the member does not exist.
func (store *fakeTokenStore) familyOf(memberID string) map[string]bool {
	current, ok := store.rows[memberID]
	if !ok {
		return nil
	}
	for current.RefreshTokenID != nil {
		parent, ok := store.rows[*current.RefreshTokenID]
		if !ok {
			break
		}
		current = parent
	}

	family := map[string]bool{current.ID: true}
	for grew := true; grew; {
		grew = false
		for _, row := range store.rows {
			if family[row.ID] || row.RefreshTokenID == nil {
				continue
			}
			if family[*row.RefreshTokenID] {
				family[row.ID] = true
				grew = true
			}
		}
	}
	return family
}

func (store *fakeTokenStore) DeleteAllForUser(_ context.Context, userID string) (int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	removed := 0
	for id, row := range store.rows {
		if row.UserID == userID {
			delete(store.rows, id)
			removed++
		}
	}
	return removed, nil
}

func (store *fakeTokenStore) DeleteAllForUserExcept(_ context.Context, userID, keepMemberID string) (int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	keep := store.familyOf(keepMemberID)
	families := 0
	for id, row := range store.rows {
		if row.UserID != userID || keep[id] {
			continue
		}
		if row.RefreshTokenID == nil {
			families++
		}
		delete(store.rows, id)
	}
	return families, nil
}

func (store *fakeTokenStore) SweepExpired(_ context.Context, accessTTL, refreshTTL time.Duration) (int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	removed := 0

	accessCutoff := store.clock.Add(-accessTTL)
	for id, row := range store.rows {
		if row.Type == sec.TokenTypeAccess && row.CreatedAt.Before(accessCutoff) {
			delete(store.rows, id)
			removed++
		}
	}

	refreshCutoff := store.clock.Add(-refreshTTL)
	var stale []string
	for id, row := range store.rows {
		if row.Type != sec.TokenTypeRefresh || !row.CreatedAt.Before(refreshCutoff) {
			continue
		}
		childless := true
		for _, child := range store.rows {
			if child.RefreshTokenID != nil && *child.RefreshTokenID == id {
				childless = false
				break
			}
		}
		if childless {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		count, err := store.deleteFamily(id)
		if err != nil {
			continue
		}
		removed += count
	}
	return removed, nil
}

func matchesType(token *auth.Token, types []sec.TokenType) bool {
	if len(types) == 0 {
		return true
	}
	for _, tokenType := range types {
		if token.Type == tokenType {
			return true
		}
	}
	return false
}

// fakeResetStore implements auth.ResetTokenRepository on a map.
type fakeResetStore struct {
	mu   sync.Mutex
	rows map[string]string
}

func newFakeResetStore() *fakeResetStore {
	return &fakeResetStore{rows: map[string]string{}}
}

func (store *fakeResetStore) Set(_ context.Context, token, userID string, _ time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.rows[token] = userID
	return nil
}

func (store *fakeResetStore) Get(_ context.Context, token string) (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	userID, ok := store.rows[token]
	if !ok {
		return "", apperr.NotFound("Reset token")
	}
	return userID, nil
}

func (store *fakeResetStore) Delete(_ context.Context, token string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.rows, token)
	return nil
}

// stubCodec implements auth.TokenProvider without real signatures: each
// issued envelope is an opaque key into a claims map.
type stubCodec struct {
	mu       sync.Mutex
	claims   map[string]*sec.AuthClaims
	expired  map[string]bool
	sequence int
}

func newStubCodec() *stubCodec {
	return &stubCodec{claims: map[string]*sec.AuthClaims{}, expired: map[string]bool{}}
}

func (codec *stubCodec) issue(userID, jti string, tokenType sec.TokenType, fresh bool) (string, error) {
	codec.mu.Lock()
	defer codec.mu.Unlock()

	codec.sequence++
	envelope := fmt.Sprintf("envelope-%03d-%s", codec.sequence, tokenType)
	codec.claims[envelope] = &sec.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID, ID: jti},
		TokenType:        tokenType,
		Fresh:            fresh,
	}
	return envelope, nil
}

func (codec *stubCodec) IssueAccessToken(userID, jti string, _ time.Duration, fresh bool) (string, error) {
	return codec.issue(userID, jti, sec.TokenTypeAccess, fresh)
}

func (codec *stubCodec) IssueRefreshToken(userID, jti string, _ time.Duration) (string, error) {
	return codec.issue(userID, jti, sec.TokenTypeRefresh, false)
}

func (codec *stubCodec) IssueLongLivedToken(userID, jti string) (string, error) {
	return codec.issue(userID, jti, sec.TokenTypeLongLived, false)
}

func (codec *stubCodec) VerifyToken(envelope string) (*sec.AuthClaims, error) {
	codec.mu.Lock()
	defer codec.mu.Unlock()

	if codec.expired[envelope] {
		return nil, sec.ErrExpired
	}
	claims, ok := codec.claims[envelope]
	if !ok {
		return nil, sec.ErrMalformed
	}
	return claims, nil
}

// expire makes future verifications of an envelope fail as expired.
func (codec *stubCodec) expire(envelope string) {
	codec.mu.Lock()
	defer codec.mu.Unlock()
	codec.expired[envelope] = true
}

// # Test Harness

const testPassword = "correct-horse-battery"

var (
	testHashOnce sync.Once
	testHash     string
)

// testPasswordHash hashes the shared test password once, at the cheapest
// bcrypt cost, so the suite does not burn seconds on hashing.
func testPasswordHash(t *testing.T) string {
	t.Helper()
	testHashOnce.Do(func() {
		hashed, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
		require.NoError(t, err)
		testHash = string(hashed)
	})
	return testHash
}

type harness struct {
	service *auth.Service
	users   *fakeUserStore
	tokens  *fakeTokenStore
	resets  *fakeResetStore
	codec   *stubCodec
}

func newHarness(t *testing.T, options auth.Options) *harness {
	t.Helper()

	users := newFakeUserStore()
	tokens := newFakeTokenStore()
	resets := newFakeResetStore()
	codec := newStubCodec()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &harness{
		service: auth.NewService(users, tokens, resets, codec, logger, options),
		users:   users,
		tokens:  tokens,
		resets:  resets,
		codec:   codec,
	}
}

func (h *harness) seedUser(t *testing.T, name string, admin bool) *auth.User {
	t.Helper()

	user := &auth.User{
		ID:           uuidv7.New(),
		Username:     name,
		Name:         name,
		PasswordHash: testPasswordHash(t),
		Admin:        admin,
	}
	require.NoError(t, h.users.Create(context.Background(), user))
	return user
}

func (h *harness) login(t *testing.T, name string) *auth.TokenPair {
	t.Helper()

	pair, err := h.service.Login(context.Background(), auth.LoginInput{
		Username: name,
		Password: testPassword,
		Device:   "test-device",
	})
	require.NoError(t, err)
	return pair
}

func requireUnauthorized(t *testing.T, err error, message string) {
	t.Helper()

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusUnauthorized, appError.HTTPStatus)
	assert.Equal(t, message, appError.Message)
}

// # Login & Verification

/*
TestLogin_MintsFamily checks that a login creates a refresh root with an
access child, and that the access verifies as a fresh credential.
*/
func TestLogin_MintsFamily(t *testing.T) {
	h := newHarness(t, auth.Options{})
	user := h.seedUser(t, "ada", false)
	ctx := context.Background()

	pair := h.login(t, "ada")
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, 2, h.tokens.size())

	principal, err := h.service.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.UserID)
	assert.Equal(t, "ada", principal.Username)
	assert.True(t, principal.Fresh)
	assert.Equal(t, sec.TokenTypeAccess, principal.TokenType)

	// The access row hangs off the refresh root, strictly younger.
	accessRow, err := h.tokens.FindByID(ctx, principal.TokenID)
	require.NoError(t, err)
	require.NotNil(t, accessRow.RefreshTokenID)
	refreshRow, err := h.tokens.FindByID(ctx, *accessRow.RefreshTokenID)
	require.NoError(t, err)
	assert.Nil(t, refreshRow.RefreshTokenID)
	assert.True(t, refreshRow.CreatedAt.Before(accessRow.CreatedAt))
}

func TestLogin_BadCredentials(t *testing.T) {
	h := newHarness(t, auth.Options{})
	h.seedUser(t, "ada", false)
	ctx := context.Background()

	_, err := h.service.Login(ctx, auth.LoginInput{Username: "nobody", Password: testPassword})
	requireUnauthorized(t, err, auth.MsgInvalidCredentials)

	_, err = h.service.Login(ctx, auth.LoginInput{Username: "ada", Password: "wrong"})
	requireUnauthorized(t, err, auth.MsgInvalidCredentials)

	assert.Equal(t, 0, h.tokens.size())
}

func TestVerifyAccess_RejectsRefreshEnvelope(t *testing.T) {
	h := newHarness(t, auth.Options{})
	h.seedUser(t, "ada", false)

	pair := h.login(t, "ada")
	_, err := h.service.VerifyAccess(context.Background(), pair.RefreshToken)
	requireUnauthorized(t, err, auth.MsgAccessTokenOnly)
}

func TestVerifyAccess_ExpiredEnvelope(t *testing.T) {
	h := newHarness(t, auth.Options{})
	h.seedUser(t, "ada", false)

	pair := h.login(t, "ada")
	h.codec.expire(pair.AccessToken)

	_, err := h.service.VerifyAccess(context.Background(), pair.AccessToken)
	requireUnauthorized(t, err, auth.MsgTokenExpired)
}

func TestVerifyAccess_GarbageEnvelope(t *testing.T) {
	h := newHarness(t, auth.Options{})

	_, err := h.service.VerifyAccess(context.Background(), "not-an-envelope")
	requireUnauthorized(t, err, auth.MsgTokenInvalid)
}

/*
TestVerifyAccess_Repeatable checks that presenting the same access token over
and over keeps succeeding as long as the chain has not moved on.
*/
func TestVerifyAccess_Repeatable(t *testing.T) {
	h := newHarness(t, auth.Options{})
	h.seedUser(t, "ada", false)
	ctx := context.Background()

	pair := h.login(t, "ada")
	for round := 0; round < 3; round++ {
		_, err := h.service.VerifyAccess(ctx, pair.AccessToken)
		require.NoError(t, err, "round %d", round)
	}
}

// # Rotation

/*
TestRefresh_NormalRotation walks the happy path: login, verify, rotate,
verify the next generation.
*/
func TestRefresh_NormalRotation(t *testing.T) {
	h := newHarness(t, auth.Options{})
	h.seedUser(t, "ada", false)
	ctx := context.Background()

	pair := h.login(t, "ada")
	_, err := h.service.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)

	next, err := h.service.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, next.AccessToken)
	require.NotEmpty(t, next.RefreshToken)
	assert.Equal(t, 4, h.tokens.size())

	principal, err := h.service.VerifyAccess(ctx, next.AccessToken)
	require.NoError(t, err)
	assert.False(t, principal.Fresh)
}

/*
TestRefresh_RetryAfterLostResponse covers the shaky-network client: the
rotation response is lost, the old access keeps working, and rotating the
same refresh again simply succeeds. Only once the replacement access is
activated does the old one die.
*/
func TestRefresh_RetryAfterLostResponse(t *testing.T) {
	h := newHarness(t, auth.Options{})
	h.seedUser(t, "ada", false)
	ctx := context.Background()

	pair := h.login(t, "ada")

	// First rotation; the response never reaches the client.
	_, err := h.service.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	// The old access still verifies: nothing downstream was activated.
	_, err = h.service.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)

	// The client retries the rotation with the same refresh.
	retried, err := h.service.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	// Activating the retried branch moves the chain on.
	_, err = h.service.VerifyAccess(ctx, retried.AccessToken)
	require.NoError(t, err)

	_, err = h.service.VerifyAccess(ctx, pair.AccessToken)
	requireUnauthorized(t, err, auth.MsgTokenRevoked)
}

/*
TestRefresh_TheftDetectedAfterVictimRotates plays the attacker who stole a
refresh token and rotated first but never used the loot. The victim keeps
working undisturbed until the attacker's replay lights up the family, which
is then revoked wholesale.
*/
func TestRefresh_TheftDetectedAfterVictimRotates(t *testing.T) {
	h := newHarness(t, auth.Options{})
	h.seedUser(t, "ada", false)
	ctx := context.Background()

	pair := h.login(t, "ada")

	// Attacker rotates the stolen refresh, hoards the result.
	loot, err := h.service.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	// Victim's access still works, and so does the victim's own rotation.
	_, err = h.service.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)
	victim, err := h.service.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	// Victim activates their branch: it becomes canonical.
	_, err = h.service.VerifyAccess(ctx, victim.AccessToken)
	require.NoError(t, err)

	// The hoarded access is dead.
	_, err = h.service.VerifyAccess(ctx, loot.AccessToken)
	requireUnauthorized(t, err, auth.MsgTokenRevoked)

	// The hoarded refresh is proof of theft: the family burns.
	_, err = h.service.Refresh(ctx, loot.RefreshToken)
	requireUnauthorized(t, err, auth.MsgTokenRevoked)
	assert.Equal(t, 0, h.tokens.size())

	// The victim is logged out too and must authenticate again.
	_, err = h.service.Refresh(ctx, victim.RefreshToken)
	requireUnauthorized(t, err, auth.MsgTokenRevoked)
}

/*
TestRefresh_TheftDetectedAfterAttackerActivates plays the attacker who
rotates and uses the loot before the victim notices. The victim's next
presentations expose the theft and the family burns, cutting the attacker
off as well.
*/
func TestRefresh_TheftDetectedAfterAttackerActivates(t *testing.T) {
	h := newHarness(t, auth.Options{})
	h.seedUser(t, "ada", false)
	ctx := context.Background()

	pair := h.login(t, "ada")

	loot, err := h.service.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	_, err = h.service.VerifyAccess(ctx, loot.AccessToken)
	require.NoError(t, err)

	// Victim's old access is denied, but denial alone revokes nothing.
	_, err = h.service.VerifyAccess(ctx, pair.AccessToken)
	requireUnauthorized(t, err, auth.MsgTokenRevoked)
	assert.Equal(t, 4, h.tokens.size())

	// Victim's rotation of the superseded refresh is the replay signal.
	_, err = h.service.Refresh(ctx, pair.RefreshToken)
	requireUnauthorized(t, err, auth.MsgTokenRevoked)
	assert.Equal(t, 0, h.tokens.size())

	// The attacker's credentials died with the family.
	_, err = h.service.VerifyAccess(ctx, loot.AccessToken)
	requireUnauthorized(t, err, auth.MsgTokenRevoked)
}

/*
TestRefresh_ConcurrentRotationRace covers two rotations of one refresh that
both get through before either result is used. The first activated grandchild
wins; the losing branch's access is denied and its refresh burns the family.
*/
func TestRefresh_ConcurrentRotationRace(t *testing.T) {
	h := newHarness(t, auth.Options{})
	h.seedUser(t, "ada", false)
	ctx := context.Background()

	pair := h.login(t, "ada")

	first, err := h.service.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	second, err := h.service.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	// Both branches persisted.
	assert.Equal(t, 6, h.tokens.size())

	// The second branch activates first and becomes canonical.
	_, err = h.service.VerifyAccess(ctx, second.AccessToken)
	require.NoError(t, err)

	_, err = h.service.VerifyAccess(ctx, first.AccessToken)
	requireUnauthorized(t, err, auth.MsgTokenRevoked)

	_, err = h.service.Refresh(ctx, first.RefreshToken)
	requireUnauthorized(t, err, auth.MsgTokenRevoked)
	assert.Equal(t, 0, h.tokens.size())

	// Replaying the long-consumed root finds nothing.
	_, err = h.service.Refresh(ctx, pair.RefreshToken)
	requireUnauthorized(t, err, auth.MsgTokenRevoked)
}

func TestRefresh_RejectsAccessEnvelope(t *testing.T) {
	h := newHarness(t, auth.Options{})
	h.seedUser(t, "ada", false)
	ctx := context.Background()

	pair := h.login(t, "ada")
	_, err := h.service.Refresh(ctx, pair.AccessToken)
	requireUnauthorized(t, err, auth.MsgRefreshTokenOnly)

	// A wrong envelope type at the gate does not touch the family.
	assert.Equal(t, 2, h.tokens.size())
}

// # Logout

/*
TestLogout_RemovesWholeFamily rotates a few generations and checks that one
logout leaves neither ancestors nor descendants behind.
*/
func TestLogout_RemovesWholeFamily(t *testing.T) {
	h := newHarness(t, auth.Options{})
	h.seedUser(t, "ada", false)
	ctx := context.Background()

	pair := h.login(t, "ada")
	for round := 0; round < 3; round++ {
		next, err := h.service.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		_, err = h.service.VerifyAccess(ctx, next.AccessToken)
		require.NoError(t, err)
		pair = next
	}
	require.Equal(t, 8, h.tokens.size())

	principal, err := h.service.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.NoError(t, h.service.Logout(ctx, principal))

	assert.Equal(t, 0, h.tokens.size())
}

// # Long-Lived Tokens

func TestLongLived_Lifecycle(t *testing.T) {
	h := newHarness(t, auth.Options{})
	admin := h.seedUser(t, "root", true)
	other := h.seedUser(t, "guest", false)
	ctx := context.Background()

	envelope, err := h.service.CreateLongLived(ctx, admin.ID, "grocy bridge")
	require.NoError(t, err)

	principal, err := h.service.VerifyAccess(ctx, envelope)
	require.NoError(t, err)
	assert.Equal(t, sec.TokenTypeLongLived, principal.TokenType)
	assert.Equal(t, admin.ID, principal.UserID)

	listed, err := h.service.ListLongLived(ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "grocy bridge", listed[0].Name)

	// Another user cannot see or revoke it.
	foreign, err := h.service.ListLongLived(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, foreign)
	err = h.service.DeleteLongLived(ctx, other.ID, listed[0].ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperr.As(err).HTTPStatus)

	// The owner can.
	require.NoError(t, h.service.DeleteLongLived(ctx, admin.ID, listed[0].ID))
	_, err = h.service.VerifyAccess(ctx, envelope)
	requireUnauthorized(t, err, auth.MsgTokenRevoked)
}

// # Fresh Login

func TestFreshLogin_SingleAccessOnly(t *testing.T) {
	h := newHarness(t, auth.Options{})
	h.seedUser(t, "ada", false)
	ctx := context.Background()

	pair := h.login(t, "ada")
	require.Equal(t, 2, h.tokens.size())

	envelope, err := h.service.FreshLogin(ctx, auth.LoginInput{Username: "ada", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, 3, h.tokens.size())

	principal, err := h.service.VerifyAccess(ctx, envelope)
	require.NoError(t, err)
	assert.True(t, principal.Fresh)

	// Logging out the fresh access touches nothing else.
	require.NoError(t, h.service.Logout(ctx, principal))
	assert.Equal(t, 2, h.tokens.size())
	_, err = h.service.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)
}

// # Onboarding

func TestOnboarding_FirstUserBecomesAdmin(t *testing.T) {
	h := newHarness(t, auth.Options{OnboardingEnabled: true})
	ctx := context.Background()

	open, err := h.service.OnboardingOpen(ctx)
	require.NoError(t, err)
	assert.True(t, open)

	pair, err := h.service.Onboard(ctx, auth.OnboardInput{
		Username: "Ada",
		Name:     "Ada Lovelace",
		Password: testPassword,
	})
	require.NoError(t, err)

	principal, err := h.service.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, principal.Admin)
	assert.Equal(t, "ada", principal.Username)

	open, err = h.service.OnboardingOpen(ctx)
	require.NoError(t, err)
	assert.False(t, open)

	_, err = h.service.Onboard(ctx, auth.OnboardInput{
		Username: "eve",
		Name:     "Eve",
		Password: testPassword,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.As(err).HTTPStatus)
}

func TestOnboarding_Disabled(t *testing.T) {
	h := newHarness(t, auth.Options{OnboardingEnabled: false})
	ctx := context.Background()

	open, err := h.service.OnboardingOpen(ctx)
	require.NoError(t, err)
	assert.False(t, open)

	_, err = h.service.Onboard(ctx, auth.OnboardInput{
		Username: "ada",
		Name:     "Ada",
		Password: testPassword,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.As(err).HTTPStatus)
}

// # Password Recovery

func TestPasswordReset_Flow(t *testing.T) {
	h := newHarness(t, auth.Options{})
	h.seedUser(t, "ada", false)
	ctx := context.Background()

	h.login(t, "ada")
	h.login(t, "ada")
	require.Equal(t, 4, h.tokens.size())

	token, err := h.service.RequestPasswordReset(ctx, "ada")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, h.service.ResetPassword(ctx, token, "brand-new-password"))

	// Every session died with the old password.
	assert.Equal(t, 0, h.tokens.size())

	// Only the new password logs in.
	_, err = h.service.Login(ctx, auth.LoginInput{Username: "ada", Password: testPassword})
	requireUnauthorized(t, err, auth.MsgInvalidCredentials)
	_, err = h.service.Login(ctx, auth.LoginInput{Username: "ada", Password: "brand-new-password"})
	require.NoError(t, err)

	// The reset token was consumed.
	err = h.service.ResetPassword(ctx, token, "another-password")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.As(err).HTTPStatus)
}

func TestPasswordReset_UnknownUsernameIsSilent(t *testing.T) {
	h := newHarness(t, auth.Options{})

	token, err := h.service.RequestPasswordReset(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestChangePassword_KeepsCurrentFamily(t *testing.T) {
	h := newHarness(t, auth.Options{})
	user := h.seedUser(t, "ada", false)
	ctx := context.Background()

	current := h.login(t, "ada")
	stale := h.login(t, "ada")
	_, err := h.service.CreateLongLived(ctx, user.ID, "old integration")
	require.NoError(t, err)
	require.Equal(t, 5, h.tokens.size())

	principal, err := h.service.VerifyAccess(ctx, current.AccessToken)
	require.NoError(t, err)

	require.NoError(t, h.service.ChangePassword(ctx, principal, "brand-new-password"))

	// The performing family survives; everything else is gone.
	assert.Equal(t, 2, h.tokens.size())
	_, err = h.service.VerifyAccess(ctx, current.AccessToken)
	require.NoError(t, err)
	_, err = h.service.VerifyAccess(ctx, stale.AccessToken)
	requireUnauthorized(t, err, auth.MsgTokenRevoked)

	_, err = h.service.Login(ctx, auth.LoginInput{Username: "ada", Password: "brand-new-password"})
	require.NoError(t, err)
}

// # Sweep

/*
TestSweep_RemovesAbandonedFamilies ages one family past both lifetimes and
checks the erosion: expired access rows first, then the childless refresh
chain, while long-lived tokens and fresh families stay put.
*/
func TestSweep_RemovesAbandonedFamilies(t *testing.T) {
	h := newHarness(t, auth.Options{
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 720 * time.Hour,
	})
	user := h.seedUser(t, "ada", false)
	ctx := context.Background()

	h.login(t, "ada")
	_, err := h.service.CreateLongLived(ctx, user.ID, "forever")
	require.NoError(t, err)
	require.Equal(t, 3, h.tokens.size())

	// A month passes; the abandoned family is due.
	h.tokens.advance(721 * time.Hour)
	fresh := h.login(t, "ada")

	removed, err := h.service.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	// The long-lived token and the fresh family survived.
	assert.Equal(t, 3, h.tokens.size())
	_, err = h.service.VerifyAccess(ctx, fresh.AccessToken)
	require.NoError(t, err)

	listed, err := h.service.ListLongLived(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}
