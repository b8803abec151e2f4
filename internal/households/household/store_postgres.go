// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package household

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pantrio/pantrio/internal/platform/database/schema"
	"github.com/pantrio/pantrio/internal/platform/dberr"
	"github.com/pantrio/pantrio/pkg/uuidv7"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed household store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// # Household Retrieval

/*
ListForUser returns the households the user belongs to, oldest first.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []*Household: Matching households
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) ListForUser(context context.Context, userID string) ([]*Household, error) {
	query := fmt.Sprintf(`
		SELECT h.%s, h.%s, h.%s, h.%s, h.%s, h.%s, h.%s, h.%s, h.%s
		FROM %s AS h
		JOIN %s AS m ON m.%s = h.%s
		WHERE m.%s = $1
		ORDER BY h.%s ASC`,
		schema.CoreHousehold.ID, schema.CoreHousehold.Name, schema.CoreHousehold.Photo,
		schema.CoreHousehold.Language, schema.CoreHousehold.PlannerFeature, schema.CoreHousehold.ExpensesFeature,
		schema.CoreHousehold.ViewOrdering, schema.CoreHousehold.CreatedAt, schema.CoreHousehold.UpdatedAt,
		schema.CoreHousehold.Table,
		schema.CoreMember.Table, schema.CoreMember.HouseholdID, schema.CoreHousehold.ID,
		schema.CoreMember.UserID,
		schema.CoreHousehold.CreatedAt,
	)

	rows, err := repository.db.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_households_for_user")
	}
	defer rows.Close()

	var households []*Household
	for rows.Next() {
		household := &Household{}
		err := rows.Scan(
			&household.ID, &household.Name, &household.Photo,
			&household.Language, &household.PlannerFeature, &household.ExpensesFeature,
			&household.ViewOrdering, &household.CreatedAt, &household.UpdatedAt,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_household")
		}
		households = append(households, household)
	}

	return households, nil
}

/*
FindByID retrieves a single household record by its primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Household: Hydrated entity
  - error: dberr.ErrNotFound if missing
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Household, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		schema.CoreHousehold.ID, schema.CoreHousehold.Name, schema.CoreHousehold.Photo,
		schema.CoreHousehold.Language, schema.CoreHousehold.PlannerFeature, schema.CoreHousehold.ExpensesFeature,
		schema.CoreHousehold.ViewOrdering, schema.CoreHousehold.CreatedAt, schema.CoreHousehold.UpdatedAt,
		schema.CoreHousehold.Table,
		schema.CoreHousehold.ID,
	)

	household := &Household{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&household.ID, &household.Name, &household.Photo,
		&household.Language, &household.PlannerFeature, &household.ExpensesFeature,
		&household.ViewOrdering, &household.CreatedAt, &household.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find_household_by_id")
	}
	return household, nil
}

// # Household Mutation

/*
Create persists a new household together with its initial state.

Description: Runs inside a single transaction.
1. Inserts the household row.
2. Inserts the owner membership.
3. Inserts plain memberships for the requested member IDs, restricted to IDs
that actually exist in users.account; the creator and duplicates are skipped.
4. Inserts the Default shopping list.
A failure in any step rolls back everything, so a household never exists
without its owner and its Default list.

Parameters:
  - context: context.Context
  - household: *Household
  - ownerID: string
  - memberIDs: []string

Returns:
  - error: Transactional or database failures
*/
func (repository *PostgresRepository) Create(context context.Context, household *Household, ownerID string, memberIDs []string) error {
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_create_household_tx")
	}
	defer transaction.Rollback(context)

	// ── 1. Household Row ──────────────────────────────────────────────────
	householdQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING %s, %s`,
		schema.CoreHousehold.Table,
		schema.CoreHousehold.ID, schema.CoreHousehold.Name, schema.CoreHousehold.Photo,
		schema.CoreHousehold.Language, schema.CoreHousehold.PlannerFeature, schema.CoreHousehold.ExpensesFeature,
		schema.CoreHousehold.ViewOrdering, schema.CoreHousehold.CreatedAt, schema.CoreHousehold.UpdatedAt,
		schema.CoreHousehold.CreatedAt, schema.CoreHousehold.UpdatedAt,
	)
	err = transaction.QueryRow(context, householdQuery,
		household.ID, household.Name, household.Photo, household.Language,
		household.PlannerFeature, household.ExpensesFeature, household.ViewOrdering,
	).Scan(&household.CreatedAt, &household.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_household")
	}

	// ── 2. Owner Membership ───────────────────────────────────────────────
	ownerQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, TRUE, TRUE, NOW())`,
		schema.CoreMember.Table,
		schema.CoreMember.HouseholdID, schema.CoreMember.UserID,
		schema.CoreMember.Owner, schema.CoreMember.Admin, schema.CoreMember.CreatedAt,
	)
	if _, err := transaction.Exec(context, ownerQuery, household.ID, ownerID); err != nil {
		return dberr.Wrap(err, "create_household_owner")
	}

	// ── 3. Initial Members ────────────────────────────────────────────────
	// The SELECT source restricts the insert to user IDs that exist, so
	// unknown IDs in the request are skipped rather than failing the whole
	// creation. ON CONFLICT absorbs duplicates in the request list.
	if len(memberIDs) > 0 {
		membersQuery := fmt.Sprintf(`
			INSERT INTO %s (%s, %s, %s, %s, %s)
			SELECT $1, a.%s, FALSE, FALSE, NOW()
			FROM %s AS a
			WHERE a.%s = ANY($2) AND a.%s <> $3
			ON CONFLICT (%s, %s) DO NOTHING`,
			schema.CoreMember.Table,
			schema.CoreMember.HouseholdID, schema.CoreMember.UserID,
			schema.CoreMember.Owner, schema.CoreMember.Admin, schema.CoreMember.CreatedAt,
			schema.UserAccount.ID,
			schema.UserAccount.Table,
			schema.UserAccount.ID, schema.UserAccount.ID,
			schema.CoreMember.HouseholdID, schema.CoreMember.UserID,
		)
		if _, err := transaction.Exec(context, membersQuery, household.ID, memberIDs, ownerID); err != nil {
			return dberr.Wrap(err, "create_household_members")
		}
	}

	// ── 4. Default Shopping List ──────────────────────────────────────────
	listQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, NOW())`,
		schema.CoreShoppinglist.Table,
		schema.CoreShoppinglist.ID, schema.CoreShoppinglist.Name,
		schema.CoreShoppinglist.HouseholdID, schema.CoreShoppinglist.CreatedAt,
	)
	if _, err := transaction.Exec(context, listQuery, uuidv7.New(), DefaultListName, household.ID); err != nil {
		return dberr.Wrap(err, "create_household_default_list")
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_create_household_tx")
	}
	return nil
}

/*
Update rewrites the household's mutable settings.

Parameters:
  - context: context.Context
  - household: *Household

Returns:
  - error: dberr.ErrNotFound if missing, persistence failures
*/
func (repository *PostgresRepository) Update(context context.Context, household *Household) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = NOW()
		WHERE %s = $1
		RETURNING %s`,
		schema.CoreHousehold.Table,
		schema.CoreHousehold.Name, schema.CoreHousehold.Photo, schema.CoreHousehold.Language,
		schema.CoreHousehold.PlannerFeature, schema.CoreHousehold.ExpensesFeature,
		schema.CoreHousehold.ViewOrdering, schema.CoreHousehold.UpdatedAt,
		schema.CoreHousehold.ID,
		schema.CoreHousehold.UpdatedAt,
	)
	err := repository.db.QueryRow(context, query,
		household.ID, household.Name, household.Photo, household.Language,
		household.PlannerFeature, household.ExpensesFeature, household.ViewOrdering,
	).Scan(&household.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "update_household")
	}
	return nil
}

/*
Delete removes the household row. Members, shopping lists and categories are
removed by ON DELETE CASCADE.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: dberr.ErrNotFound if missing, persistence failures
*/
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.CoreHousehold.Table, schema.CoreHousehold.ID)

	tag, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_household")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// # Membership Implementation

const memberColumnsFormat = `m.%s, m.%s, a.%s, a.%s, m.%s, m.%s, m.%s`

func memberColumns() string {
	return fmt.Sprintf(memberColumnsFormat,
		schema.CoreMember.HouseholdID, schema.CoreMember.UserID,
		schema.UserAccount.Username, schema.UserAccount.Name,
		schema.CoreMember.Owner, schema.CoreMember.Admin, schema.CoreMember.CreatedAt,
	)
}

/*
FindMember retrieves one membership row joined with its account fields.

Parameters:
  - context: context.Context
  - householdID: string
  - userID: string

Returns:
  - *Member: Hydrated membership
  - error: dberr.ErrNotFound if absent
*/
func (repository *PostgresRepository) FindMember(context context.Context, householdID, userID string) (*Member, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s AS m
		JOIN %s AS a ON a.%s = m.%s
		WHERE m.%s = $1 AND m.%s = $2`,
		memberColumns(),
		schema.CoreMember.Table,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.CoreMember.UserID,
		schema.CoreMember.HouseholdID, schema.CoreMember.UserID,
	)

	member := &Member{}
	err := repository.db.QueryRow(context, query, householdID, userID).Scan(
		&member.HouseholdID, &member.UserID, &member.Username, &member.Name,
		&member.Owner, &member.Admin, &member.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find_household_member")
	}
	return member, nil
}

/*
ListMembers retrieves the full roster of a household, oldest first.

Parameters:
  - context: context.Context
  - householdID: string

Returns:
  - []*Member: Roster
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListMembers(context context.Context, householdID string) ([]*Member, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s AS m
		JOIN %s AS a ON a.%s = m.%s
		WHERE m.%s = $1
		ORDER BY m.%s ASC`,
		memberColumns(),
		schema.CoreMember.Table,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.CoreMember.UserID,
		schema.CoreMember.HouseholdID,
		schema.CoreMember.CreatedAt,
	)

	rows, err := repository.db.Query(context, query, householdID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_household_members")
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		member := &Member{}
		err := rows.Scan(
			&member.HouseholdID, &member.UserID, &member.Username, &member.Name,
			&member.Owner, &member.Admin, &member.CreatedAt,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_household_member")
		}
		members = append(members, member)
	}

	return members, nil
}

/*
UpsertMember creates or updates a membership row.

Description: The SELECT source ties the insert to an existing account, so an
unknown user ID yields no row and surfaces as not-found rather than a foreign
key error. COALESCE keeps the current admin flag when none is supplied. The
owner column is never written here.

Parameters:
  - context: context.Context
  - householdID: string
  - userID: string
  - admin: *bool (nil keeps the current value)

Returns:
  - *Member: The resulting membership with account fields attached
  - error: dberr.ErrNotFound if the user does not exist
*/
func (repository *PostgresRepository) UpsertMember(context context.Context, householdID, userID string, admin *bool) (*Member, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		SELECT $1, a.%s, FALSE, COALESCE($3, FALSE), NOW()
		FROM %s AS a
		WHERE a.%s = $2
		ON CONFLICT (%s, %s)
		DO UPDATE SET %s = COALESCE($3, %s.%s)
		RETURNING %s, %s, %s, %s, %s`,
		schema.CoreMember.Table,
		schema.CoreMember.HouseholdID, schema.CoreMember.UserID,
		schema.CoreMember.Owner, schema.CoreMember.Admin, schema.CoreMember.CreatedAt,
		schema.UserAccount.ID,
		schema.UserAccount.Table,
		schema.UserAccount.ID,
		schema.CoreMember.HouseholdID, schema.CoreMember.UserID,
		schema.CoreMember.Admin, schema.CoreMember.Table, schema.CoreMember.Admin,
		schema.CoreMember.HouseholdID, schema.CoreMember.UserID,
		schema.CoreMember.Owner, schema.CoreMember.Admin, schema.CoreMember.CreatedAt,
	)

	member := &Member{}
	err := repository.db.QueryRow(context, query, householdID, userID, admin).Scan(
		&member.HouseholdID, &member.UserID, &member.Owner, &member.Admin, &member.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "upsert_household_member")
	}

	// Attach the denormalized account fields for the response body.
	return repository.FindMember(context, member.HouseholdID, member.UserID)
}

/*
RemoveMember deletes a membership row unless it carries the owner flag.
Deleting an absent membership is a no-op.

Parameters:
  - context: context.Context
  - householdID: string
  - userID: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) RemoveMember(context context.Context, householdID, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2 AND NOT %s`,
		schema.CoreMember.Table,
		schema.CoreMember.HouseholdID, schema.CoreMember.UserID, schema.CoreMember.Owner,
	)
	_, err := repository.db.Exec(context, query, householdID, userID)
	return dberr.Wrap(err, "remove_household_member")
}
