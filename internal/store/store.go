// Package store persists flattened ClickUp entities into a local SQLite
// database.
//
// Each entity collection is upserted by primary key inside its own
// transaction: rows with a known key have every column overwritten, new keys
// are inserted, and nothing is ever deleted. A run interrupted halfway keeps
// the collections written so far.
//
// Foreign keys are advisory. They are recorded in the foreign_keys table for
// tools that browse the database, but SQLite's enforcement stays off so that
// partial or out-of-order upstream data always loads.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gregmuellegger/clickup-to-sqlite/internal/schema"
)

// DB wraps the SQLite connection.
type DB struct {
	conn *sqlx.DB
	path string
}

// Open opens (creating if needed) the database file at path.
//
// The caller MUST call Close() when done.
//
// Example:
//
//	db, err := store.Open("clickup.db")
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create database directory", goerr.V("dir", dir))
	}

	conn, err := sqlx.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("path", path))
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, goerr.Wrap(err, "failed to ping database", goerr.V("path", path))
	}

	// One writer, one connection: pragmas below stay in effect.
	conn.SetMaxOpenConns(1)

	db := &DB{
		conn: conn,
		path: path,
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=OFF",
	}
	for _, p := range pragmas {
		if _, err := db.conn.Exec(p); err != nil {
			_ = db.Close()
			return nil, goerr.Wrap(err, "failed to configure database", goerr.V("pragma", p))
		}
	}

	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Close closes the database connection after checkpointing the WAL.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	if _, err := db.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}

	if err := db.conn.Close(); err != nil {
		return goerr.Wrap(err, "failed to close database")
	}

	db.conn = nil
	return nil
}

// InitSchema creates the tables and indexes if they don't exist.
// This is idempotent - safe to call on every run.
func (db *DB) InitSchema(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, schemaSQL); err != nil {
		return goerr.Wrap(err, "failed to initialize schema")
	}
	return nil
}

// UpsertTeams inserts or updates teams.
func (db *DB) UpsertTeams(ctx context.Context, rows []schema.TeamRow) error {
	return upsert(ctx, db, teamsTable, rows)
}

// UpsertMembers inserts or updates team memberships.
func (db *DB) UpsertMembers(ctx context.Context, rows []schema.MemberRow) error {
	return upsert(ctx, db, membersTable, rows)
}

// UpsertSpaces inserts or updates spaces.
func (db *DB) UpsertSpaces(ctx context.Context, rows []schema.SpaceRow) error {
	return upsert(ctx, db, spacesTable, rows)
}

// UpsertFolders inserts or updates folders.
func (db *DB) UpsertFolders(ctx context.Context, rows []schema.FolderRow) error {
	return upsert(ctx, db, foldersTable, rows)
}

// UpsertLists inserts or updates lists.
func (db *DB) UpsertLists(ctx context.Context, rows []schema.ListRow) error {
	return upsert(ctx, db, listsTable, rows)
}

// UpsertTasks inserts or updates tasks.
func (db *DB) UpsertTasks(ctx context.Context, rows []schema.TaskRow) error {
	return upsert(ctx, db, tasksTable, rows)
}

// UpsertTimeEntries inserts or updates time entries.
func (db *DB) UpsertTimeEntries(ctx context.Context, rows []schema.TimeEntryRow) error {
	return upsert(ctx, db, timeEntriesTable, rows)
}

// upsert writes rows in a single transaction.
func upsert[T any](ctx context.Context, db *DB, t table, rows []T) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction", goerr.V("table", t.name))
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, t.upsertSQL())
	if err != nil {
		return goerr.Wrap(err, "failed to prepare upsert", goerr.V("table", t.name))
	}
	defer stmt.Close()

	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]); err != nil {
			return goerr.Wrap(err, "failed to upsert row", goerr.V("table", t.name), goerr.V("index", i))
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit transaction", goerr.V("table", t.name))
	}
	return nil
}

// TeamIDs returns the ids of all stored teams in insertion order.
func (db *DB) TeamIDs(ctx context.Context) ([]string, error) {
	return db.ids(ctx, TableTeams)
}

// SpaceIDs returns the ids of all stored spaces in insertion order.
func (db *DB) SpaceIDs(ctx context.Context) ([]string, error) {
	return db.ids(ctx, TableSpaces)
}

func (db *DB) ids(ctx context.Context, name string) ([]string, error) {
	var ids []string
	query := fmt.Sprintf("SELECT id FROM %s ORDER BY rowid", quote(name))
	if err := db.conn.SelectContext(ctx, &ids, query); err != nil {
		return nil, goerr.Wrap(err, "failed to query ids", goerr.V("table", name))
	}
	return ids, nil
}

// Count returns the number of rows in an entity table.
func (db *DB) Count(ctx context.Context, name string) (int, error) {
	if !isTable(name) {
		return 0, goerr.New("unknown table", goerr.V("table", name))
	}

	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quote(name))
	if err := db.conn.GetContext(ctx, &count, query); err != nil {
		return 0, goerr.Wrap(err, "failed to count rows", goerr.V("table", name))
	}
	return count, nil
}

// Counts returns the number of rows of every entity table present in the
// database. Tables that do not exist yet are left out.
func (db *DB) Counts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(Tables))
	for _, name := range Tables {
		exists, err := db.hasTable(ctx, name)
		if err != nil {
			return nil, err
		}
		if !exists {
			continue
		}
		n, err := db.Count(ctx, name)
		if err != nil {
			return nil, err
		}
		counts[name] = n
	}
	return counts, nil
}

func (db *DB) hasTable(ctx context.Context, name string) (bool, error) {
	var n int
	query := `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
	if err := db.conn.GetContext(ctx, &n, query, name); err != nil {
		return false, goerr.Wrap(err, "failed to look up table", goerr.V("table", name))
	}
	return n > 0, nil
}

// getRow loads a single row by id into dest. Returns sql.ErrNoRows (wrapped)
// if no row matches.
func (db *DB) getRow(ctx context.Context, dest any, name string, id any) error {
	query := fmt.Sprintf("SELECT * FROM %s WHERE id = ?", quote(name))
	if err := db.conn.GetContext(ctx, dest, query, id); err != nil {
		return goerr.Wrap(err, "failed to get row", goerr.V("table", name), goerr.V("id", id))
	}
	return nil
}

// GetTask returns the stored row of a task.
func (db *DB) GetTask(ctx context.Context, id string) (*schema.TaskRow, error) {
	var row schema.TaskRow
	if err := db.getRow(ctx, &row, TableTasks, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetTimeEntry returns the stored row of a time entry.
func (db *DB) GetTimeEntry(ctx context.Context, id string) (*schema.TimeEntryRow, error) {
	var row schema.TimeEntryRow
	if err := db.getRow(ctx, &row, TableTimeEntries, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetTeam returns the stored row of a team.
func (db *DB) GetTeam(ctx context.Context, id string) (*schema.TeamRow, error) {
	var row schema.TeamRow
	if err := db.getRow(ctx, &row, TableTeams, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetList returns the stored row of a list.
func (db *DB) GetList(ctx context.Context, id string) (*schema.ListRow, error) {
	var row schema.ListRow
	if err := db.getRow(ctx, &row, TableLists, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// Members returns the stored memberships of a team ordered by user id.
func (db *DB) Members(ctx context.Context, teamID string) ([]schema.MemberRow, error) {
	var rows []schema.MemberRow
	query := "SELECT * FROM members WHERE team_id = ? ORDER BY id"
	if err := db.conn.SelectContext(ctx, &rows, query, teamID); err != nil {
		return nil, goerr.Wrap(err, "failed to query members", goerr.V("team_id", teamID))
	}
	return rows, nil
}

// IsNotFound reports whether err means a requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
