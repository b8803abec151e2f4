// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pantrio/pantrio/internal/platform/database/schema"
	"github.com/pantrio/pantrio/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed category store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) ListByHousehold(context context.Context, householdID string) ([]*Category, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC, %s ASC`,
		schema.CoreCategory.ID, schema.CoreCategory.Name, schema.CoreCategory.DefaultFlag,
		schema.CoreCategory.DefaultKey, schema.CoreCategory.Ordering, schema.CoreCategory.HouseholdID,
		schema.CoreCategory.Table,
		schema.CoreCategory.HouseholdID,
		schema.CoreCategory.Ordering, schema.CoreCategory.Name,
	)

	rows, err := repository.db.Query(context, query, householdID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_categories")
	}
	defer rows.Close()

	var categories []*Category
	for rows.Next() {
		entry := &Category{}
		err := rows.Scan(
			&entry.ID, &entry.Name, &entry.Default,
			&entry.DefaultKey, &entry.Ordering, &entry.HouseholdID,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_category")
		}
		categories = append(categories, entry)
	}

	return categories, nil
}

func (repository *PostgresRepository) FindByDefaultKey(context context.Context, householdID, defaultKey string) (*Category, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = $2`,
		schema.CoreCategory.ID, schema.CoreCategory.Name, schema.CoreCategory.DefaultFlag,
		schema.CoreCategory.DefaultKey, schema.CoreCategory.Ordering, schema.CoreCategory.HouseholdID,
		schema.CoreCategory.Table,
		schema.CoreCategory.HouseholdID, schema.CoreCategory.DefaultKey,
	)

	entry := &Category{}
	err := repository.db.QueryRow(context, query, householdID, defaultKey).Scan(
		&entry.ID, &entry.Name, &entry.Default,
		&entry.DefaultKey, &entry.Ordering, &entry.HouseholdID,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find_category_by_default_key")
	}
	return entry, nil
}

func (repository *PostgresRepository) Create(context context.Context, entry *Category) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		schema.CoreCategory.Table,
		schema.CoreCategory.ID, schema.CoreCategory.Name, schema.CoreCategory.DefaultFlag,
		schema.CoreCategory.DefaultKey, schema.CoreCategory.Ordering, schema.CoreCategory.HouseholdID,
	)

	_, err := repository.db.Exec(context, query,
		entry.ID, entry.Name, entry.Default, entry.DefaultKey, entry.Ordering, entry.HouseholdID,
	)
	return dberr.Wrap(err, "create_category")
}
