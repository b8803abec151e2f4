// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package langimport seeds a household's default categories from built-in
language packs.

A household picks its language at most once (at creation or on the first
update that sets it). The importer then runs on the background pool and
creates one category per pack entry, stamped with the entry's stable key.
Seeding is idempotent: entries whose key already exists in the household are
skipped, and entries whose localized name collides with a category the
members created by hand are left alone.

Raw tags from clients ("de-AT", "pt-BR") are canonicalized against the
supported set with BCP-47 matching, so regional variants land on their base
pack instead of being rejected.
*/
package langimport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/text/language"

	"github.com/pantrio/pantrio/internal/households/category"
	"github.com/pantrio/pantrio/internal/platform/apperr"
	"github.com/pantrio/pantrio/internal/platform/dberr"
	"github.com/pantrio/pantrio/internal/platform/tasks"
	"github.com/pantrio/pantrio/pkg/pointer"
	"github.com/pantrio/pantrio/pkg/slice"
	"github.com/pantrio/pantrio/pkg/uuidv7"
)

// # Tag Matching

var (
	supportedCodes = supported()
	packMatcher    = language.NewMatcher(slice.Map(supportedCodes, language.MustParse))
)

func supported() []string {
	codes := make([]string, 0, len(packs))
	for code := range packs {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

/*
Resolve canonicalizes a raw language tag against the supported pack set.

Description: "de-AT" resolves to "de", "pt-BR" to "pt". Matches below high
confidence are rejected rather than guessed, so an unsupported language never
seeds the wrong pack.

Parameters:
  - raw: string: Client-supplied BCP-47 tag

Returns:
  - string: Canonical pack code, empty when unsupported
  - bool: Whether a pack exists for the tag
*/
func Resolve(raw string) (string, bool) {
	parsed, err := language.Parse(raw)
	if err != nil {
		return "", false
	}

	_, index, confidence := packMatcher.Match(parsed)
	if confidence < language.High {
		return "", false
	}

	return supportedCodes[index], true
}

// # Importer

// CategoryStore is the slice of the category repository the importer needs.
type CategoryStore interface {
	FindByDefaultKey(ctx context.Context, householdID, defaultKey string) (*category.Category, error)
	Create(ctx context.Context, entry *category.Category) error
}

// Importer seeds pack categories through the background worker pool.
type Importer struct {
	categories CategoryStore
	pool       *tasks.Pool
	logger     *slog.Logger
}

// NewImporter constructs a new language pack [Importer].
func NewImporter(categories CategoryStore, pool *tasks.Pool, logger *slog.Logger) *Importer {
	return &Importer{
		categories: categories,
		pool:       pool,
		logger:     logger,
	}
}

// Resolve implements the service-side lookup; see the package-level [Resolve].
func (importer *Importer) Resolve(raw string) (string, bool) {
	return Resolve(raw)
}

/*
Dispatch queues the import for a household. It never blocks the caller.

Description: Runs after the household row is committed, so the job cannot
observe a household that a rolled-back transaction takes away again. A full
queue drops the job with a warning; the next language update retries.

Parameters:
  - householdID: string
  - tag: string: Canonical pack code from [Resolve]
*/
func (importer *Importer) Dispatch(householdID, tag string) {
	job := tasks.Job{
		Name: "language_import",
		Run: func(ctx context.Context) error {
			return importer.Import(ctx, householdID, tag)
		},
	}

	if err := importer.pool.Submit(job); err != nil {
		importer.logger.Warn("language_import_not_queued",
			slog.String("household_id", householdID),
			slog.String("language", tag),
			slog.Any("error", err),
		)
	}
}

/*
Import seeds the pack's categories into a household.

Description: Idempotent by defaultkey: entries already seeded are skipped. A
name collision with a hand-created category skips the entry instead of
failing the import. The pack index becomes the category's ordering.

Parameters:
  - ctx: context.Context
  - householdID: string
  - tag: string: Canonical pack code from [Resolve]

Returns:
  - error: Unknown pack code, persistence failures
*/
func (importer *Importer) Import(ctx context.Context, householdID, tag string) error {
	pack, ok := packs[tag]
	if !ok {
		return fmt.Errorf("langimport_unsupported_language: %s", tag)
	}

	seeded := 0
	for index, entry := range pack {
		_, err := importer.categories.FindByDefaultKey(ctx, householdID, entry.Key)
		if err == nil {
			continue
		}
		if !errors.Is(err, dberr.ErrNotFound) {
			return fmt.Errorf("langimport_lookup_failed: %w", err)
		}

		err = importer.categories.Create(ctx, &category.Category{
			ID:          uuidv7.New(),
			Name:        entry.Name,
			Default:     true,
			DefaultKey:  pointer.To(entry.Key),
			Ordering:    index,
			HouseholdID: householdID,
		})
		if err != nil {
			if appError := apperr.As(err); appError != nil && appError.Code == "CONFLICT" {
				continue
			}
			return fmt.Errorf("langimport_seed_failed: %w", err)
		}

		seeded++
	}

	importer.logger.Info("language_import_finished",
		slog.String("household_id", householdID),
		slog.String("language", tag),
		slog.Int("seeded", seeded),
	)

	return nil
}
