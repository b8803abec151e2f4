// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pantrio/pantrio/internal/platform/dberr"
	"github.com/pantrio/pantrio/internal/platform/sec"
)

// # User Repository Implementation

// PostgresUserRepository implements [UserRepository] using pgx.
type PostgresUserRepository struct {
	db *pgxpool.Pool
}

// NewPostgresUserRepository constructs a PostgreSQL backed user store.
func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `id, username, name, passwordhash, admin, createdat, updatedat`

// FindByID returns the account with the given ID.
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users.account WHERE id = $1`

	user, err := scanUser(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_user_by_id")
	}
	return user, nil
}

// FindByUsername returns the account with the given normalized username.
func (repository *PostgresUserRepository) FindByUsername(context context.Context, normalizedUsername string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users.account WHERE username = $1`

	user, err := scanUser(repository.db.QueryRow(context, query, normalizedUsername))
	if err != nil {
		return nil, dberr.Wrap(err, "find_user_by_username")
	}
	return user, nil
}

// Count returns the total number of registered accounts.
func (repository *PostgresUserRepository) Count(context context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM users.account`

	var count int
	if err := repository.db.QueryRow(context, query).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "count_users")
	}
	return count, nil
}

// Create persists a new account. The store stamps the timestamps.
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (id, username, name, passwordhash, admin, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING createdat, updatedat
	`

	err := repository.db.QueryRow(
		context, query,
		user.ID, user.Username, user.Name, user.PasswordHash, user.Admin,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_user")
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, passwordHash string) error {
	const query = `UPDATE users.account SET passwordhash = $2, updatedat = NOW() WHERE id = $1`

	tag, err := repository.db.Exec(context, query, userID, passwordHash)
	if err != nil {
		return dberr.Wrap(err, "update_user_password")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID, &user.Username, &user.Name, &user.PasswordHash,
		&user.Admin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// # Token Repository Implementation

// PostgresTokenRepository implements [TokenRepository] using pgx.
//
// # Locking Discipline
//
// Every verify/rotate transaction takes exactly one row lock, always on the
// oldest involved ancestor (the branch anchor), so lock ordering is uniform
// across concurrent operations on one family and deadlocks cannot form.
type PostgresTokenRepository struct {
	db *pgxpool.Pool
}

// NewPostgresTokenRepository constructs a PostgreSQL backed token store.
func NewPostgresTokenRepository(db *pgxpool.Pool) *PostgresTokenRepository {
	return &PostgresTokenRepository{db: db}
}

const tokenColumns = `id, jti, type, name, userid, refreshtokenid, used, createdat, lastusedat`

// insertTokenQuery stamps createdat with clock_timestamp() rather than NOW():
// rotation inserts a parent and its child inside one transaction, and the
// chain invariant needs the parent's timestamp to precede the child's.
const insertTokenQuery = `
	INSERT INTO users.token (id, jti, type, name, userid, refreshtokenid, createdat)
	VALUES ($1, $2, $3, $4, $5, $6, clock_timestamp())
	RETURNING createdat
`

// activatedBranchQuery reports whether the refresh token $1 has a refresh
// child (other than $2, when given) whose own access child was marked used.
// Such a child is an "activated branch": the client provably moved past $1.
const activatedBranchQuery = `
	SELECT EXISTS (
		SELECT 1
		FROM users.token AS branch
		JOIN users.token AS leaf ON leaf.refreshtokenid = branch.id
		WHERE branch.refreshtokenid = $1
		  AND branch.type = 'refresh'
		  AND ($2::uuid IS NULL OR branch.id <> $2::uuid)
		  AND leaf.type = 'access'
		  AND leaf.used
	)
`

const markUsedQuery = `UPDATE users.token SET used = TRUE, lastusedat = clock_timestamp() WHERE id = $1`

// Insert persists a single parentless token row.
func (repository *PostgresTokenRepository) Insert(context context.Context, token *Token) error {
	err := repository.db.QueryRow(
		context, insertTokenQuery,
		token.ID, token.JTI, token.Type, token.Name, token.UserID, token.RefreshTokenID,
	).Scan(&token.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "insert_token")
	}
	return nil
}

// InsertPair persists a family root refresh and its first access child in one
// transaction.
func (repository *PostgresTokenRepository) InsertPair(context context.Context, refresh, access *Token) error {
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_insert_pair_tx")
	}
	defer transaction.Rollback(context)

	if err := insertTokenTx(context, transaction, refresh); err != nil {
		return err
	}
	if err := insertTokenTx(context, transaction, access); err != nil {
		return err
	}

	return transaction.Commit(context)
}

// FindByJTI returns the row backing an envelope's jti claim.
func (repository *PostgresTokenRepository) FindByJTI(context context.Context, jti string) (*Token, error) {
	const query = `SELECT ` + tokenColumns + ` FROM users.token WHERE jti = $1`

	token, err := scanToken(repository.db.QueryRow(context, query, jti))
	if err != nil {
		return nil, dberr.Wrap(err, "find_token_by_jti")
	}
	return token, nil
}

// FindByID returns the row with the given primary key.
func (repository *PostgresTokenRepository) FindByID(context context.Context, id string) (*Token, error) {
	const query = `SELECT ` + tokenColumns + ` FROM users.token WHERE id = $1`

	token, err := scanToken(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_token_by_id")
	}
	return token, nil
}

// MarkUsed flags a token as observed and stamps lastusedat. Idempotent.
func (repository *PostgresTokenRepository) MarkUsed(context context.Context, id string) error {
	tag, err := repository.db.Exec(context, markUsedQuery, id)
	if err != nil {
		return dberr.Wrap(err, "mark_token_used")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// ChildrenOf lists the direct children of a refresh token, oldest first.
func (repository *PostgresTokenRepository) ChildrenOf(context context.Context, refreshID string, types ...sec.TokenType) ([]*Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM users.token WHERE refreshtokenid = $1`
	args := []any{refreshID}

	if len(types) > 0 {
		query += ` AND type = ANY($2)`
		args = append(args, typeNames(types))
	}
	query += ` ORDER BY createdat ASC`

	return repository.queryTokens(context, query, args, "list_token_children")
}

// ListByUser lists a user's tokens, newest first.
func (repository *PostgresTokenRepository) ListByUser(context context.Context, userID string, types ...sec.TokenType) ([]*Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM users.token WHERE userid = $1`
	args := []any{userID}

	if len(types) > 0 {
		query += ` AND type = ANY($2)`
		args = append(args, typeNames(types))
	}
	query += ` ORDER BY createdat DESC`

	return repository.queryTokens(context, query, args, "list_user_tokens")
}

/*
ActivateAccess accepts or denies a presented access or long-lived token.

Description: Parentless tokens are accepted whenever their row still exists;
the mark-used update doubles as the row lock. For chained access tokens the
branch anchor (grandparent refresh when present, else the parent) is locked,
the presented row is re-checked under the lock, and the acceptance rule runs:

 1. Denied if any refresh child of the parent has an activated access child
    (the chain moved past the parent).
 2. Denied if a refresh sibling of the parent, under the grandparent, has an
    activated access child (the presenter's whole branch lost the race).

A denial writes nothing. Denial never revokes.

Parameters:
  - context: context.Context
  - token: *Token (previously loaded via FindByJTI)

Returns:
  - bool: Whether the token was accepted
  - error: dberr.ErrNotFound when the row vanished meanwhile, or failures
*/
func (repository *PostgresTokenRepository) ActivateAccess(context context.Context, token *Token) (bool, error) {
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return false, dberr.Wrap(err, "begin_activate_access_tx")
	}
	defer transaction.Rollback(context)

	// ── 1. Parentless short path (llt, fresh-login access) ──────────────────
	if token.Root() {
		tag, err := transaction.Exec(context, markUsedQuery, token.ID)
		if err != nil {
			return false, dberr.Wrap(err, "activate_parentless_token")
		}
		if tag.RowsAffected() == 0 {
			return false, dberr.ErrNotFound
		}
		return true, transaction.Commit(context)
	}

	// ── 2. Resolve parent and grandparent ───────────────────────────────────
	var parentID string
	var grandparentID *string
	err = transaction.QueryRow(
		context,
		`SELECT id, refreshtokenid FROM users.token WHERE id = $1`,
		*token.RefreshTokenID,
	).Scan(&parentID, &grandparentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The parent only disappears when the family was revoked.
			return false, dberr.ErrNotFound
		}
		return false, dberr.Wrap(err, "load_access_parent")
	}

	// ── 3. Lock the branch anchor ───────────────────────────────────────────
	anchorID := parentID
	if grandparentID != nil {
		anchorID = *grandparentID
	}
	if err := lockTokenRow(context, transaction, anchorID); err != nil {
		return false, err
	}

	// The family may have been revoked while we waited on the lock.
	exists, err := tokenExists(context, transaction, token.ID)
	if err != nil {
		return false, dberr.Wrap(err, "recheck_access_row")
	}
	if !exists {
		return false, dberr.ErrNotFound
	}

	// ── 4. Acceptance rule, evaluated under the lock ────────────────────────
	movedPast, err := activatedBranch(context, transaction, parentID, nil)
	if err != nil {
		return false, err
	}
	if movedPast {
		return false, transaction.Commit(context)
	}

	if grandparentID != nil {
		lostRace, err := activatedBranch(context, transaction, *grandparentID, &parentID)
		if err != nil {
			return false, err
		}
		if lostRace {
			return false, transaction.Commit(context)
		}
	}

	// ── 5. Accept: mark used ────────────────────────────────────────────────
	if _, err := transaction.Exec(context, markUsedQuery, token.ID); err != nil {
		return false, dberr.Wrap(err, "mark_access_used")
	}

	return true, transaction.Commit(context)
}

/*
RotateRefresh exchanges a presented refresh token for a new pair.

Description: Locks the branch anchor (the parent's own parent when present,
else the presented refresh itself), re-checks the presented row under the
lock, then evaluates the replay rule:

 1. Replayed if any refresh child of the presented token has an activated
    access child (this refresh was already exchanged and the client moved on).
 2. Replayed if a refresh sibling of the presented token has an activated
    access child (the presenter's branch lost the race).

On replay the entire family is deleted inside the same transaction. Otherwise
both children are inserted and the presented token is marked used.

Parameters:
  - context: context.Context
  - parent: *Token (the presented refresh row)
  - newRefresh: *Token (child of parent)
  - newAccess: *Token (child of newRefresh)

Returns:
  - bool: Whether the presentation was a replay
  - int: Rows removed by the replay revocation
  - error: dberr.ErrNotFound when the row vanished meanwhile, or failures
*/
func (repository *PostgresTokenRepository) RotateRefresh(context context.Context, parent, newRefresh, newAccess *Token) (bool, int, error) {
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return false, 0, dberr.Wrap(err, "begin_rotate_refresh_tx")
	}
	defer transaction.Rollback(context)

	// ── 1. Lock the branch anchor ───────────────────────────────────────────
	anchorID := parent.ID
	if parent.RefreshTokenID != nil {
		anchorID = *parent.RefreshTokenID
	}
	if err := lockTokenRow(context, transaction, anchorID); err != nil {
		return false, 0, err
	}

	exists, err := tokenExists(context, transaction, parent.ID)
	if err != nil {
		return false, 0, dberr.Wrap(err, "recheck_refresh_row")
	}
	if !exists {
		return false, 0, dberr.ErrNotFound
	}

	// ── 2. Replay rule, evaluated under the lock ────────────────────────────
	replayed, err := activatedBranch(context, transaction, parent.ID, nil)
	if err != nil {
		return false, 0, err
	}
	if !replayed && parent.RefreshTokenID != nil {
		replayed, err = activatedBranch(context, transaction, *parent.RefreshTokenID, &parent.ID)
		if err != nil {
			return false, 0, err
		}
	}

	if replayed {
		removed, err := deleteFamilyTx(context, transaction, parent.ID)
		if err != nil {
			return false, 0, err
		}
		return true, removed, transaction.Commit(context)
	}

	// ── 3. Mint the next generation ─────────────────────────────────────────
	if err := insertTokenTx(context, transaction, newRefresh); err != nil {
		return false, 0, err
	}
	if err := insertTokenTx(context, transaction, newAccess); err != nil {
		return false, 0, err
	}
	if _, err := transaction.Exec(context, markUsedQuery, parent.ID); err != nil {
		return false, 0, dberr.Wrap(err, "mark_refresh_used")
	}

	return false, 0, transaction.Commit(context)
}

// DeleteFamily revokes the family containing the given token.
func (repository *PostgresTokenRepository) DeleteFamily(context context.Context, memberID string) (int, error) {
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return 0, dberr.Wrap(err, "begin_delete_family_tx")
	}
	defer transaction.Rollback(context)

	removed, err := deleteFamilyTx(context, transaction, memberID)
	if err != nil {
		return 0, err
	}

	return removed, transaction.Commit(context)
}

// DeleteAllForUser revokes every token of a user.
func (repository *PostgresTokenRepository) DeleteAllForUser(context context.Context, userID string) (int, error) {
	tag, err := repository.db.Exec(context, `DELETE FROM users.token WHERE userid = $1`, userID)
	if err != nil {
		return 0, dberr.Wrap(err, "delete_user_tokens")
	}
	return int(tag.RowsAffected()), nil
}

// DeleteAllForUserExcept revokes every family of a user except the one
// containing keepMemberID. Only roots are deleted directly; the FK cascade
// removes their descendants.
func (repository *PostgresTokenRepository) DeleteAllForUserExcept(context context.Context, userID, keepMemberID string) (int, error) {
	const query = `
		WITH RECURSIVE ancestors AS (
			SELECT id, refreshtokenid FROM users.token WHERE id = $2
			UNION ALL
			SELECT parent.id, parent.refreshtokenid
			FROM users.token AS parent
			JOIN ancestors ON ancestors.refreshtokenid = parent.id
		)
		DELETE FROM users.token
		WHERE userid = $1
		  AND refreshtokenid IS NULL
		  AND id NOT IN (SELECT id FROM ancestors WHERE refreshtokenid IS NULL)
	`

	tag, err := repository.db.Exec(context, query, userID, keepMemberID)
	if err != nil {
		return 0, dberr.Wrap(err, "delete_other_user_families")
	}
	return int(tag.RowsAffected()), nil
}

/*
SweepExpired removes rows no live credential can reach.

Description: Pass (a) deletes expired access rows in one statement. Pass (b)
collects refresh tokens past their TTL that have no children (abandoned
leaves, childless because pass (a) already removed their access siblings) and
deletes each one's family. A leaf already removed by an earlier family
deletion in the same sweep is skipped.

Parameters:
  - context: context.Context
  - accessTTL: time.Duration
  - refreshTTL: time.Duration

Returns:
  - int: Total rows removed
  - error: Execution failures
*/
func (repository *PostgresTokenRepository) SweepExpired(context context.Context, accessTTL, refreshTTL time.Duration) (int, error) {
	removed := 0

	// Pass (a): expired access rows.
	tag, err := repository.db.Exec(
		context,
		`DELETE FROM users.token WHERE type = 'access' AND createdat < $1`,
		time.Now().Add(-accessTTL),
	)
	if err != nil {
		return removed, dberr.Wrap(err, "sweep_expired_access")
	}
	removed += int(tag.RowsAffected())

	// Pass (b): abandoned refresh leaves.
	const staleLeavesQuery = `
		SELECT leaf.id
		FROM users.token AS leaf
		WHERE leaf.type = 'refresh'
		  AND leaf.createdat < $1
		  AND NOT EXISTS (
			SELECT 1 FROM users.token AS child WHERE child.refreshtokenid = leaf.id
		  )
	`

	rows, err := repository.db.Query(context, staleLeavesQuery, time.Now().Add(-refreshTTL))
	if err != nil {
		return removed, dberr.Wrap(err, "sweep_find_stale_leaves")
	}

	var staleIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return removed, dberr.Wrap(err, "sweep_scan_stale_leaf")
		}
		staleIDs = append(staleIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return removed, dberr.Wrap(err, "sweep_iterate_stale_leaves")
	}

	for _, id := range staleIDs {
		count, err := repository.DeleteFamily(context, id)
		if err != nil {
			if errors.Is(err, dberr.ErrNotFound) {
				continue
			}
			return removed, err
		}
		removed += count
	}

	return removed, nil
}

// # Shared Transaction Helpers

func insertTokenTx(context context.Context, transaction pgx.Tx, token *Token) error {
	err := transaction.QueryRow(
		context, insertTokenQuery,
		token.ID, token.JTI, token.Type, token.Name, token.UserID, token.RefreshTokenID,
	).Scan(&token.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "insert_token")
	}
	return nil
}

// lockTokenRow takes the single row lock that serializes all verify and
// rotate work on one family branch.
func lockTokenRow(context context.Context, transaction pgx.Tx, id string) error {
	var locked string
	err := transaction.QueryRow(
		context,
		`SELECT id FROM users.token WHERE id = $1 FOR UPDATE`,
		id,
	).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dberr.ErrNotFound
		}
		return dberr.Wrap(err, "lock_branch_anchor")
	}
	return nil
}

func tokenExists(context context.Context, transaction pgx.Tx, id string) (bool, error) {
	var exists bool
	err := transaction.QueryRow(
		context,
		`SELECT EXISTS (SELECT 1 FROM users.token WHERE id = $1)`,
		id,
	).Scan(&exists)
	return exists, err
}

func activatedBranch(context context.Context, transaction pgx.Tx, refreshID string, excludeChildID *string) (bool, error) {
	var activated bool
	err := transaction.QueryRow(context, activatedBranchQuery, refreshID, excludeChildID).Scan(&activated)
	if err != nil {
		return false, dberr.Wrap(err, "evaluate_activated_branch")
	}
	return activated, nil
}

// deleteFamilyTx walks refreshtokenid upward to the family root, counts the
// family, and deletes the root; the FK cascade removes every descendant.
func deleteFamilyTx(context context.Context, transaction pgx.Tx, memberID string) (int, error) {
	const familyRootQuery = `
		WITH RECURSIVE ancestors AS (
			SELECT id, refreshtokenid FROM users.token WHERE id = $1
			UNION ALL
			SELECT parent.id, parent.refreshtokenid
			FROM users.token AS parent
			JOIN ancestors ON ancestors.refreshtokenid = parent.id
		)
		SELECT id FROM ancestors WHERE refreshtokenid IS NULL
	`

	var rootID string
	err := transaction.QueryRow(context, familyRootQuery, memberID).Scan(&rootID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, dberr.ErrNotFound
		}
		return 0, dberr.Wrap(err, "find_family_root")
	}

	const familySizeQuery = `
		WITH RECURSIVE family AS (
			SELECT id FROM users.token WHERE id = $1
			UNION ALL
			SELECT child.id
			FROM users.token AS child
			JOIN family ON child.refreshtokenid = family.id
		)
		SELECT COUNT(*) FROM family
	`

	var size int
	if err := transaction.QueryRow(context, familySizeQuery, rootID).Scan(&size); err != nil {
		return 0, dberr.Wrap(err, "count_family")
	}

	if _, err := transaction.Exec(context, `DELETE FROM users.token WHERE id = $1`, rootID); err != nil {
		return 0, dberr.Wrap(err, "delete_family_root")
	}

	return size, nil
}

func (repository *PostgresTokenRepository) queryTokens(context context.Context, query string, args []any, action string) ([]*Token, error) {
	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	defer rows.Close()

	var tokens []*Token
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, dberr.Wrap(err, action)
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, action)
	}

	return tokens, nil
}

func scanToken(row pgx.Row) (*Token, error) {
	var token Token
	err := row.Scan(
		&token.ID, &token.JTI, &token.Type, &token.Name, &token.UserID,
		&token.RefreshTokenID, &token.Used, &token.CreatedAt, &token.LastUsedAt,
	)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func typeNames(types []sec.TokenType) []string {
	names := make([]string, len(types))
	for index, tokenType := range types {
		names[index] = string(tokenType)
	}
	return names
}
