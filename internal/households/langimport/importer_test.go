// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package langimport_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantrio/pantrio/internal/households/category"
	"github.com/pantrio/pantrio/internal/households/langimport"
	"github.com/pantrio/pantrio/internal/platform/apperr"
	"github.com/pantrio/pantrio/internal/platform/dberr"
	"github.com/pantrio/pantrio/internal/platform/tasks"
	"github.com/pantrio/pantrio/pkg/pointer"
)

// # In-Memory Fake

// fakeCategoryStore implements langimport.CategoryStore, enforcing the same
// per-household name uniqueness the Postgres schema does.
type fakeCategoryStore struct {
	mu   sync.Mutex
	rows []*category.Category
}

func (store *fakeCategoryStore) FindByDefaultKey(_ context.Context, householdID, defaultKey string) (*category.Category, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, row := range store.rows {
		if row.HouseholdID == householdID && row.DefaultKey != nil && *row.DefaultKey == defaultKey {
			copied := *row
			return &copied, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (store *fakeCategoryStore) Create(_ context.Context, entry *category.Category) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, row := range store.rows {
		if row.HouseholdID == entry.HouseholdID && row.Name == entry.Name {
			return apperr.Conflict("Resource already exists")
		}
	}
	copied := *entry
	store.rows = append(store.rows, &copied)
	return nil
}

func (store *fakeCategoryStore) forHousehold(householdID string) []*category.Category {
	store.mu.Lock()
	defer store.mu.Unlock()

	var result []*category.Category
	for _, row := range store.rows {
		if row.HouseholdID == householdID {
			copied := *row
			result = append(result, &copied)
		}
	}
	return result
}

func newImporter(store *fakeCategoryStore, pool *tasks.Pool) *langimport.Importer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return langimport.NewImporter(store, pool, logger)
}

// # Tag Resolution

/*
TestResolve checks BCP-47 canonicalization against the supported pack set:
base tags and regional variants land on their pack, everything else is
rejected rather than guessed.
*/
func TestResolve(t *testing.T) {
	testCases := []struct {
		raw      string
		wantCode string
		wantOK   bool
	}{
		{raw: "de", wantCode: "de", wantOK: true},
		{raw: "DE", wantCode: "de", wantOK: true},
		{raw: "de-AT", wantCode: "de", wantOK: true},
		{raw: "de-CH", wantCode: "de", wantOK: true},
		{raw: "pt-BR", wantCode: "pt", wantOK: true},
		{raw: "en-US", wantCode: "en", wantOK: true},
		{raw: "sv", wantCode: "sv", wantOK: true},
		{raw: "ja", wantOK: false},
		{raw: "zz", wantOK: false},
		{raw: "", wantOK: false},
		{raw: "not a tag", wantOK: false},
	}

	for _, tc := range testCases {
		t.Run("tag_"+tc.raw, func(t *testing.T) {
			code, ok := langimport.Resolve(tc.raw)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantCode, code)
		})
	}
}

// # Seeding

/*
TestImport_SeedsPack checks a first import: one category per pack entry,
flagged as default, stamped with the pack key, ordered by pack position. A
second run finds every key present and seeds nothing.
*/
func TestImport_SeedsPack(t *testing.T) {
	store := &fakeCategoryStore{}
	importer := newImporter(store, nil)
	ctx := context.Background()

	require.NoError(t, importer.Import(ctx, "h1", "de"))

	seeded := store.forHousehold("h1")
	require.Len(t, seeded, 10)

	for index, entry := range seeded {
		assert.True(t, entry.Default)
		require.NotNil(t, entry.DefaultKey)
		assert.Equal(t, index, entry.Ordering)
		assert.NotEmpty(t, entry.ID)
	}
	assert.Equal(t, "Obst & Gemüse", seeded[0].Name)
	assert.Equal(t, "produce", *seeded[0].DefaultKey)
	assert.Equal(t, "Haushalt", seeded[9].Name)

	// Idempotent: the second run recognizes every key.
	require.NoError(t, importer.Import(ctx, "h1", "de"))
	assert.Len(t, store.forHousehold("h1"), 10)
}

/*
TestImport_IsolatesHouseholds checks that packs seed per household, and that
different households can hold different languages.
*/
func TestImport_IsolatesHouseholds(t *testing.T) {
	store := &fakeCategoryStore{}
	importer := newImporter(store, nil)
	ctx := context.Background()

	require.NoError(t, importer.Import(ctx, "h1", "de"))
	require.NoError(t, importer.Import(ctx, "h2", "sv"))

	assert.Len(t, store.forHousehold("h1"), 10)
	swedish := store.forHousehold("h2")
	require.Len(t, swedish, 10)
	assert.Equal(t, "Frukt & grönt", swedish[0].Name)
}

/*
TestImport_KeepsUserCategories checks the collision rule: when members already
created a category whose name matches a pack entry, the entry is skipped and
the hand-made category survives untouched. Later entries keep their pack
position as ordering.
*/
func TestImport_KeepsUserCategories(t *testing.T) {
	store := &fakeCategoryStore{}
	ctx := context.Background()

	handMade := &category.Category{
		ID:          "user-made",
		Name:        "Obst & Gemüse",
		HouseholdID: "h1",
		Ordering:    42,
	}
	require.NoError(t, store.Create(ctx, handMade))

	importer := newImporter(store, nil)
	require.NoError(t, importer.Import(ctx, "h1", "de"))

	rows := store.forHousehold("h1")
	require.Len(t, rows, 10) // 1 hand-made + 9 seeded

	// The hand-made row is untouched; no seeded row claims its key.
	assert.Equal(t, "user-made", rows[0].ID)
	assert.False(t, rows[0].Default)
	assert.Nil(t, rows[0].DefaultKey)
	_, err := store.FindByDefaultKey(ctx, "h1", "produce")
	require.ErrorIs(t, err, dberr.ErrNotFound)

	// Pack positions survive the skip: dairy stays at index 1.
	dairy, err := store.FindByDefaultKey(ctx, "h1", "dairy")
	require.NoError(t, err)
	assert.Equal(t, 1, dairy.Ordering)
}

/*
TestImport_UnknownPack checks that an uncanonical tag fails loudly; Dispatch
only ever queues codes that went through Resolve.
*/
func TestImport_UnknownPack(t *testing.T) {
	store := &fakeCategoryStore{}
	importer := newImporter(store, nil)

	err := importer.Import(context.Background(), "h1", "ja")
	require.Error(t, err)
	assert.Empty(t, store.forHousehold("h1"))
}

// # Background Dispatch

/*
TestDispatch_RunsOnPool checks the worker pool integration: a dispatched
import lands asynchronously, and dispatching into a stopped pool degrades to
a logged warning instead of blocking or panicking.
*/
func TestDispatch_RunsOnPool(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pool := tasks.NewPool(1, 4, logger)
	pool.Start(context.Background())

	store := &fakeCategoryStore{}
	importer := newImporter(store, pool)

	importer.Dispatch("h1", "en")
	pool.Stop() // waits for the accepted job to finish

	seeded := store.forHousehold("h1")
	require.Len(t, seeded, 10)
	assert.Equal(t, "Fruits & Vegetables", seeded[0].Name)
	assert.Equal(t, pointer.To("produce"), seeded[0].DefaultKey)

	// The pool is closed now; a late dispatch is dropped, not a panic.
	importer.Dispatch("h2", "en")
	assert.Empty(t, store.forHousehold("h2"))
}
