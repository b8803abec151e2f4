// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package household_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantrio/pantrio/internal/households/household"
	"github.com/pantrio/pantrio/internal/platform/apperr"
	"github.com/pantrio/pantrio/internal/platform/dberr"
	"github.com/pantrio/pantrio/pkg/pointer"
	"github.com/pantrio/pantrio/pkg/uuidv7"
)

// # In-Memory Fakes

// fakeRepository implements household.Repository on maps, mirroring the
// documented contract of the Postgres implementation: the transactional
// create that writes the owner membership and the Default list alongside the
// household row, membership upserts restricted to known accounts, and owner
// rows shielded from removal. A fake clock advances one millisecond per
// insert so roster ordering is strict.
type fakeRepository struct {
	mu         sync.Mutex
	households map[string]*household.Household
	members    map[string]map[string]*household.Member // householdID → userID
	users      map[string]bool                         // known account IDs
	lists      map[string][]string                     // householdID → list names
	failWith   error                                   // injected infrastructure failure
	clock      time.Time
}

func newFakeRepository(userIDs ...string) *fakeRepository {
	users := map[string]bool{}
	for _, id := range userIDs {
		users[id] = true
	}
	return &fakeRepository{
		households: map[string]*household.Household{},
		members:    map[string]map[string]*household.Member{},
		users:      users,
		lists:      map[string][]string{},
		clock:      time.Now(),
	}
}

func (repo *fakeRepository) tick() time.Time {
	repo.clock = repo.clock.Add(time.Millisecond)
	return repo.clock
}

func (repo *fakeRepository) putMember(householdID, userID string, owner, admin bool) *household.Member {
	roster, ok := repo.members[householdID]
	if !ok {
		roster = map[string]*household.Member{}
		repo.members[householdID] = roster
	}
	member := &household.Member{
		HouseholdID: householdID,
		UserID:      userID,
		Owner:       owner,
		Admin:       admin,
		CreatedAt:   repo.tick(),
	}
	roster[userID] = member
	return member
}

func (repo *fakeRepository) ListForUser(_ context.Context, userID string) ([]*household.Household, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.failWith != nil {
		return nil, repo.failWith
	}

	var result []*household.Household
	for id, entry := range repo.households {
		if _, ok := repo.members[id][userID]; ok {
			copied := *entry
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (repo *fakeRepository) FindByID(_ context.Context, id string) (*household.Household, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.failWith != nil {
		return nil, repo.failWith
	}

	entry, ok := repo.households[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	copied := *entry
	return &copied, nil
}

func (repo *fakeRepository) Create(_ context.Context, entry *household.Household, ownerID string, memberIDs []string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.failWith != nil {
		return repo.failWith
	}

	entry.CreatedAt = repo.tick()
	entry.UpdatedAt = entry.CreatedAt
	copied := *entry
	repo.households[entry.ID] = &copied

	repo.putMember(entry.ID, ownerID, true, true)
	for _, memberID := range memberIDs {
		if memberID == ownerID || !repo.users[memberID] {
			continue
		}
		if _, ok := repo.members[entry.ID][memberID]; ok {
			continue
		}
		repo.putMember(entry.ID, memberID, false, false)
	}

	repo.lists[entry.ID] = append(repo.lists[entry.ID], household.DefaultListName)
	return nil
}

func (repo *fakeRepository) Update(_ context.Context, entry *household.Household) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.failWith != nil {
		return repo.failWith
	}

	stored, ok := repo.households[entry.ID]
	if !ok {
		return dberr.ErrNotFound
	}
	entry.CreatedAt = stored.CreatedAt
	entry.UpdatedAt = repo.tick()
	copied := *entry
	repo.households[entry.ID] = &copied
	return nil
}

func (repo *fakeRepository) Delete(_ context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.failWith != nil {
		return repo.failWith
	}

	if _, ok := repo.households[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(repo.households, id)
	delete(repo.members, id)
	delete(repo.lists, id)
	return nil
}

func (repo *fakeRepository) FindMember(_ context.Context, householdID, userID string) (*household.Member, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.failWith != nil {
		return nil, repo.failWith
	}

	member, ok := repo.members[householdID][userID]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	copied := *member
	return &copied, nil
}

func (repo *fakeRepository) ListMembers(_ context.Context, householdID string) ([]*household.Member, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.failWith != nil {
		return nil, repo.failWith
	}

	var roster []*household.Member
	for _, member := range repo.members[householdID] {
		copied := *member
		roster = append(roster, &copied)
	}
	return roster, nil
}

func (repo *fakeRepository) UpsertMember(_ context.Context, householdID, userID string, admin *bool) (*household.Member, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.failWith != nil {
		return nil, repo.failWith
	}

	if !repo.users[userID] {
		return nil, dberr.ErrNotFound
	}

	member, ok := repo.members[householdID][userID]
	if !ok {
		member = repo.putMember(householdID, userID, false, admin != nil && *admin)
	} else if admin != nil {
		member.Admin = *admin
	}
	copied := *member
	return &copied, nil
}

func (repo *fakeRepository) RemoveMember(_ context.Context, householdID, userID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.failWith != nil {
		return repo.failWith
	}

	member, ok := repo.members[householdID][userID]
	if ok && !member.Owner {
		delete(repo.members[householdID], userID)
	}
	return nil
}

// fakeImporter resolves from a fixed table and records dispatches.
type fakeImporter struct {
	mu          sync.Mutex
	resolutions map[string]string
	dispatched  []string // "householdID/tag"
}

func newFakeImporter() *fakeImporter {
	return &fakeImporter{resolutions: map[string]string{
		"de":    "de",
		"de-AT": "de",
		"en":    "en",
	}}
}

func (importer *fakeImporter) Resolve(raw string) (string, bool) {
	code, ok := importer.resolutions[raw]
	return code, ok
}

func (importer *fakeImporter) Dispatch(householdID, tag string) {
	importer.mu.Lock()
	defer importer.mu.Unlock()
	importer.dispatched = append(importer.dispatched, householdID+"/"+tag)
}

func (importer *fakeImporter) calls() []string {
	importer.mu.Lock()
	defer importer.mu.Unlock()
	return append([]string(nil), importer.dispatched...)
}

// # Test Harness

type harness struct {
	service  *household.Service
	repo     *fakeRepository
	importer *fakeImporter
}

func newHarness(userIDs ...string) *harness {
	repo := newFakeRepository(userIDs...)
	importer := newFakeImporter()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &harness{
		service:  household.NewService(repo, importer, logger),
		repo:     repo,
		importer: importer,
	}
}

func (h *harness) create(t *testing.T, ownerID string, input household.CreateInput) *household.Household {
	t.Helper()

	created, err := h.service.Create(context.Background(), ownerID, input)
	require.NoError(t, err)
	return created
}

func requireAppError(t *testing.T, err error, status int, message string) {
	t.Helper()

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, status, appError.HTTPStatus)
	if message != "" {
		assert.Equal(t, message, appError.Message)
	}
}

// # Creation

/*
TestCreate_InitialState checks that a new household gets its owner membership,
the requested plain members, the Default shopping list, and both feature flags
enabled when the request leaves them unset.
*/
func TestCreate_InitialState(t *testing.T) {
	h := newHarness("owner-1", "friend-1")
	ctx := context.Background()

	created := h.create(t, "owner-1", household.CreateInput{
		Name:      "Buivan Home",
		MemberIDs: []string{"friend-1", "owner-1", "ghost-1"},
	})

	require.NotEmpty(t, created.ID)
	assert.True(t, created.PlannerFeature)
	assert.True(t, created.ExpensesFeature)
	assert.Nil(t, created.Language)

	// Owner carries both flags; the friend joined plain; the unknown ID and
	// the owner's duplicate entry were skipped.
	owner, err := h.repo.FindMember(ctx, created.ID, "owner-1")
	require.NoError(t, err)
	assert.True(t, owner.Owner)
	assert.True(t, owner.Admin)

	friend, err := h.repo.FindMember(ctx, created.ID, "friend-1")
	require.NoError(t, err)
	assert.False(t, friend.Owner)
	assert.False(t, friend.Admin)

	_, err = h.repo.FindMember(ctx, created.ID, "ghost-1")
	require.ErrorIs(t, err, dberr.ErrNotFound)

	assert.Equal(t, []string{household.DefaultListName}, h.repo.lists[created.ID])
	assert.Empty(t, h.importer.calls())
}

/*
TestCreate_FeatureFlags checks that explicitly disabled feature flags survive
the default-on rule.
*/
func TestCreate_FeatureFlags(t *testing.T) {
	h := newHarness("owner-1")
	off := false

	created := h.create(t, "owner-1", household.CreateInput{
		Name:            "Flags",
		PlannerFeature:  &off,
		ExpensesFeature: &off,
	})

	assert.False(t, created.PlannerFeature)
	assert.False(t, created.ExpensesFeature)
}

/*
TestCreate_Language checks the language handling at creation: a resolvable tag
is canonicalized, stored, and dispatched for import exactly once; an
unsupported tag is dropped without failing the creation.
*/
func TestCreate_Language(t *testing.T) {
	testCases := []struct {
		name         string
		language     *string
		wantStored   *string
		wantDispatch int
	}{
		{
			name:         "regional_variant_canonicalized_and_dispatched",
			language:     pointer.To("de-AT"),
			wantStored:   pointer.To("de"),
			wantDispatch: 1,
		},
		{
			name:         "unsupported_tag_dropped_silently",
			language:     pointer.To("tlh"),
			wantStored:   nil,
			wantDispatch: 0,
		},
		{
			name:         "no_tag_no_import",
			language:     nil,
			wantStored:   nil,
			wantDispatch: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness("owner-1")

			created := h.create(t, "owner-1", household.CreateInput{
				Name:     "Sprachhaus",
				Language: tc.language,
			})

			if tc.wantStored == nil {
				assert.Nil(t, created.Language)
			} else {
				require.NotNil(t, created.Language)
				assert.Equal(t, *tc.wantStored, *created.Language)
			}

			calls := h.importer.calls()
			require.Len(t, calls, tc.wantDispatch)
			if tc.wantDispatch > 0 {
				assert.Equal(t, created.ID+"/"+*tc.wantStored, calls[0])
			}
		})
	}
}

/*
TestCreate_Validation checks the name rules.
*/
func TestCreate_Validation(t *testing.T) {
	h := newHarness("owner-1")

	_, err := h.service.Create(context.Background(), "owner-1", household.CreateInput{Name: "   "})
	requireAppError(t, err, http.StatusBadRequest, "")

	_, err = h.service.Create(context.Background(), "owner-1", household.CreateInput{
		Name: strings.Repeat("x", household.NameMaxLength+1),
	})
	requireAppError(t, err, http.StatusBadRequest, "")

	assert.Empty(t, h.repo.households)
}

// # Retrieval

/*
TestGet_AttachesRoster checks that the detail view carries the member list
while the collection view does not.
*/
func TestGet_AttachesRoster(t *testing.T) {
	h := newHarness("owner-1", "friend-1")
	ctx := context.Background()

	created := h.create(t, "owner-1", household.CreateInput{
		Name:      "Roster",
		MemberIDs: []string{"friend-1"},
	})

	detail, err := h.service.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Members, 2)

	listed, err := h.service.ListForUser(ctx, "friend-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Empty(t, listed[0].Members)

	_, err = h.service.Get(ctx, uuidv7.New())
	requireAppError(t, err, http.StatusNotFound, "Household not found")
}

// # Settings

/*
TestUpdate_MergesFields checks the partial update: provided fields override,
nil fields keep their stored values.
*/
func TestUpdate_MergesFields(t *testing.T) {
	h := newHarness("owner-1")
	ctx := context.Background()

	created := h.create(t, "owner-1", household.CreateInput{Name: "Before"})

	off := false
	updated, err := h.service.Update(ctx, created.ID, household.UpdateInput{
		Name:           pointer.To("After"),
		Photo:          pointer.To("pantry.jpg"),
		PlannerFeature: &off,
		ViewOrdering:   []string{"shoppinglist", "planner"},
	})
	require.NoError(t, err)

	assert.Equal(t, "After", updated.Name)
	require.NotNil(t, updated.Photo)
	assert.Equal(t, "pantry.jpg", *updated.Photo)
	assert.False(t, updated.PlannerFeature)
	assert.True(t, updated.ExpensesFeature)
	assert.Equal(t, []string{"shoppinglist", "planner"}, updated.ViewOrdering)
}

/*
TestUpdate_EmptyNameRejected checks that a household cannot be renamed to
nothing.
*/
func TestUpdate_EmptyNameRejected(t *testing.T) {
	h := newHarness("owner-1")

	created := h.create(t, "owner-1", household.CreateInput{Name: "Keep"})

	_, err := h.service.Update(context.Background(), created.ID, household.UpdateInput{Name: pointer.To("  ")})
	requireAppError(t, err, http.StatusBadRequest, "Household name cannot be empty")

	stored, findErr := h.repo.FindByID(context.Background(), created.ID)
	require.NoError(t, findErr)
	assert.Equal(t, "Keep", stored.Name)
}

/*
TestUpdate_LanguageSetOnce checks the one-shot language rule: the first
resolvable tag is stored and dispatched; later updates cannot change it and
trigger no further imports.
*/
func TestUpdate_LanguageSetOnce(t *testing.T) {
	h := newHarness("owner-1")
	ctx := context.Background()

	created := h.create(t, "owner-1", household.CreateInput{Name: "Einmal"})

	first, err := h.service.Update(ctx, created.ID, household.UpdateInput{Language: pointer.To("de-AT")})
	require.NoError(t, err)
	require.NotNil(t, first.Language)
	assert.Equal(t, "de", *first.Language)
	assert.Equal(t, []string{created.ID + "/de"}, h.importer.calls())

	second, err := h.service.Update(ctx, created.ID, household.UpdateInput{Language: pointer.To("en")})
	require.NoError(t, err)
	require.NotNil(t, second.Language)
	assert.Equal(t, "de", *second.Language)
	assert.Len(t, h.importer.calls(), 1)
}

/*
TestUpdate_UnknownHousehold checks the not-found mapping.
*/
func TestUpdate_UnknownHousehold(t *testing.T) {
	h := newHarness("owner-1")

	_, err := h.service.Update(context.Background(), uuidv7.New(), household.UpdateInput{Name: pointer.To("x")})
	requireAppError(t, err, http.StatusNotFound, "Household not found")
}

/*
TestDelete_Household checks removal and its not-found mapping.
*/
func TestDelete_Household(t *testing.T) {
	h := newHarness("owner-1")
	ctx := context.Background()

	created := h.create(t, "owner-1", household.CreateInput{Name: "Doomed"})

	require.NoError(t, h.service.Delete(ctx, created.ID))
	_, err := h.service.Get(ctx, created.ID)
	requireAppError(t, err, http.StatusNotFound, "Household not found")

	err = h.service.Delete(ctx, created.ID)
	requireAppError(t, err, http.StatusNotFound, "Household not found")
}

// # Membership Registry

/*
TestMembership_Contract checks the mediator contract: members yield their
rights, non-members yield nil with a nil error, and infrastructure failures
surface as errors.
*/
func TestMembership_Contract(t *testing.T) {
	h := newHarness("owner-1", "friend-1")
	ctx := context.Background()

	created := h.create(t, "owner-1", household.CreateInput{
		Name:      "Facts",
		MemberIDs: []string{"friend-1"},
	})

	owner, err := h.service.Membership(ctx, created.ID, "owner-1")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.True(t, owner.Owner)
	assert.True(t, owner.Admin)

	friend, err := h.service.Membership(ctx, created.ID, "friend-1")
	require.NoError(t, err)
	require.NotNil(t, friend)
	assert.False(t, friend.Owner)
	assert.False(t, friend.Admin)

	outsider, err := h.service.Membership(ctx, created.ID, "stranger-1")
	require.NoError(t, err)
	assert.Nil(t, outsider)

	h.repo.failWith = apperr.Internal(assert.AnError)
	_, err = h.service.Membership(ctx, created.ID, "owner-1")
	require.Error(t, err)
}

// # Membership Controls

/*
TestPutMember checks the upsert path: joining, promoting, keeping the current
flag on a nil admin pointer, and the not-found mappings.
*/
func TestPutMember(t *testing.T) {
	h := newHarness("owner-1", "friend-1")
	ctx := context.Background()

	created := h.create(t, "owner-1", household.CreateInput{Name: "Flags"})

	// Join as plain member.
	member, err := h.service.PutMember(ctx, created.ID, "friend-1", nil)
	require.NoError(t, err)
	assert.False(t, member.Admin)
	assert.False(t, member.Owner)

	// Promote.
	on := true
	member, err = h.service.PutMember(ctx, created.ID, "friend-1", &on)
	require.NoError(t, err)
	assert.True(t, member.Admin)

	// A nil flag keeps the promotion.
	member, err = h.service.PutMember(ctx, created.ID, "friend-1", nil)
	require.NoError(t, err)
	assert.True(t, member.Admin)

	_, err = h.service.PutMember(ctx, created.ID, "ghost-1", nil)
	requireAppError(t, err, http.StatusNotFound, "User not found")

	_, err = h.service.PutMember(ctx, uuidv7.New(), "friend-1", nil)
	requireAppError(t, err, http.StatusNotFound, "Household not found")
}

/*
TestRemoveMember checks detachment: plain members go, the owner never goes,
and removing an absent membership succeeds so stale self-references can be
cleared.
*/
func TestRemoveMember(t *testing.T) {
	h := newHarness("owner-1", "friend-1")
	ctx := context.Background()

	created := h.create(t, "owner-1", household.CreateInput{
		Name:      "Leaving",
		MemberIDs: []string{"friend-1"},
	})

	require.NoError(t, h.service.RemoveMember(ctx, created.ID, "friend-1"))
	_, err := h.repo.FindMember(ctx, created.ID, "friend-1")
	require.ErrorIs(t, err, dberr.ErrNotFound)

	// Idempotent: the second removal and a never-member both succeed.
	require.NoError(t, h.service.RemoveMember(ctx, created.ID, "friend-1"))
	require.NoError(t, h.service.RemoveMember(ctx, created.ID, "stranger-1"))

	err = h.service.RemoveMember(ctx, created.ID, "owner-1")
	requireAppError(t, err, http.StatusBadRequest, "Cannot remove the household owner")

	owner, findErr := h.repo.FindMember(ctx, created.ID, "owner-1")
	require.NoError(t, findErr)
	assert.True(t, owner.Owner)
}

