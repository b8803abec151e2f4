// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package shoppinglist

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

// NewPostgresRepository constructs a PostgreSQL backed shopping list store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) ListByHousehold(context context.Context, householdID string) ([]*Shoppinglist, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC, %s ASC`,
		schema.CoreShoppinglist.ID, schema.CoreShoppinglist.Name,
		schema.CoreShoppinglist.HouseholdID, schema.CoreShoppinglist.CreatedAt,
		schema.CoreShoppinglist.Table,
		schema.CoreShoppinglist.HouseholdID,
		schema.CoreShoppinglist.CreatedAt, schema.CoreShoppinglist.ID,
	)

	rows, err := repository.db.Query(context, query, householdID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_shoppinglists")
	}
	defer rows.Close()

	var lists []*Shoppinglist
	for rows.Next() {
		list := &Shoppinglist{}
		if err := rows.Scan(&list.ID, &list.Name, &list.HouseholdID, &list.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_shoppinglist")
		}
		lists = append(lists, list)
	}

	return lists, nil
}

func (repository *PostgresRepository) Create(context context.Context, list *Shoppinglist) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, NOW())
		RETURNING %s`,
		schema.CoreShoppinglist.Table,
		schema.CoreShoppinglist.ID, schema.CoreShoppinglist.Name,
		schema.CoreShoppinglist.HouseholdID, schema.CoreShoppinglist.CreatedAt,
		schema.CoreShoppinglist.CreatedAt,
	)

	err := repository.db.QueryRow(context, query, list.ID, list.Name, list.HouseholdID).Scan(&list.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_shoppinglist")
	}
	return nil
}
