// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package shoppinglist_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantrio/pantrio/internal/households/shoppinglist"
	"github.com/pantrio/pantrio/internal/platform/apperr"
)

// fakeRepository implements shoppinglist.Repository in insertion order.
type fakeRepository struct {
	mu   sync.Mutex
	rows []*shoppinglist.Shoppinglist
}

func (repo *fakeRepository) ListByHousehold(_ context.Context, householdID string) ([]*shoppinglist.Shoppinglist, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var result []*shoppinglist.Shoppinglist
	for _, row := range repo.rows {
		if row.HouseholdID == householdID {
			copied := *row
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (repo *fakeRepository) Create(_ context.Context, list *shoppinglist.Shoppinglist) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	copied := *list
	repo.rows = append(repo.rows, &copied)
	return nil
}

func newTestService(repo *fakeRepository) *shoppinglist.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return shoppinglist.NewService(repo, logger)
}

/*
TestCreate checks list creation: the service assigns the ID and scopes the
list to the household, and the name rules hold.
*/
func TestCreate(t *testing.T) {
	repo := &fakeRepository{}
	service := newTestService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, "h1", "Groceries")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Groceries", created.Name)
	assert.Equal(t, "h1", created.HouseholdID)

	_, err = service.Create(ctx, "h1", "")
	requireValidationError(t, err)

	_, err = service.Create(ctx, "h1", strings.Repeat("x", shoppinglist.NameMaxLength+1))
	requireValidationError(t, err)

	// The failed attempts wrote nothing.
	lists, err := service.ListByHousehold(ctx, "h1")
	require.NoError(t, err)
	assert.Len(t, lists, 1)
}

/*
TestListByHousehold checks household scoping and creation order.
*/
func TestListByHousehold(t *testing.T) {
	repo := &fakeRepository{}
	service := newTestService(repo)
	ctx := context.Background()

	_, err := service.Create(ctx, "h1", "Groceries")
	require.NoError(t, err)
	_, err = service.Create(ctx, "h1", "Hardware")
	require.NoError(t, err)
	_, err = service.Create(ctx, "h2", "Elsewhere")
	require.NoError(t, err)

	lists, err := service.ListByHousehold(ctx, "h1")
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "Groceries", lists[0].Name)
	assert.Equal(t, "Hardware", lists[1].Name)

	empty, err := service.ListByHousehold(ctx, "h3")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func requireValidationError(t *testing.T, err error) {
	t.Helper()

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusBadRequest, appError.HTTPStatus)
}
