// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists collections, contacts and tasks in SQLite.
// Contacts keep their emails and phones in child tables, ordered as they
// were written.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/merge-engine/pkg/types"
)

const (
	dbFile    = "merge-engine.db"
	exportDir = "export"

	// deleteChunk keeps IN lists under SQLite's bound-parameter limit.
	deleteChunk = 500
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// querier is the subset of *sql.DB and *sql.Tx the store uses.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store manages the merge-engine SQLite database.
type Store struct {
	db      *sql.DB
	dataDir string

	// now is replaced in tests for stable timestamps.
	now func() time.Time
}

// Open opens or creates the database at dataDir/merge-engine.db and
// creates the schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:      db,
		dataDir: dataDir,
		now:     func() time.Time { return time.Now().UTC() },
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DataDir returns the directory holding the database and exports.
func (s *Store) DataDir() string {
	return s.dataDir
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS collections (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			source_url TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS contacts (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			collection_id TEXT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
			uid TEXT,
			formatted_name TEXT NOT NULL,
			organization TEXT,
			note TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS contact_emails (
			contact_id TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			address TEXT NOT NULL,
			PRIMARY KEY (contact_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS contact_phones (
			contact_id TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			number TEXT NOT NULL,
			PRIMARY KEY (contact_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			collection_id TEXT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
			uid TEXT,
			title TEXT NOT NULL,
			description TEXT,
			status TEXT NOT NULL,
			priority INTEGER NOT NULL DEFAULT 0,
			due TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contacts_collection ON contacts(collection_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_collection ON tasks(collection_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Tx scopes store writes to a single database transaction.
type Tx struct {
	tx  *sql.Tx
	now func() time.Time
}

// WithTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&Tx{tx: sqlTx, now: s.now}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// --- collections ---

// CreateCollection inserts c, assigning an ID and creation time when unset.
func (s *Store) CreateCollection(ctx context.Context, c types.Collection) (types.Collection, error) {
	if !c.Kind.Valid() {
		return types.Collection{}, fmt.Errorf("invalid collection kind %q", c.Kind)
	}
	if strings.TrimSpace(c.Name) == "" {
		return types.Collection{}, fmt.Errorf("collection name is required")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO collections (id, kind, name, source_url, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, string(c.Kind), c.Name, nullString(c.SourceURL), formatTime(c.CreatedAt),
	)
	if err != nil {
		return types.Collection{}, fmt.Errorf("inserting collection: %w", err)
	}
	return c, nil
}

// GetCollection returns the collection with id, or ErrNotFound.
func (s *Store) GetCollection(ctx context.Context, id string) (types.Collection, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, name, source_url, created_at FROM collections WHERE id = ?`, id)
	c, err := scanCollection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Collection{}, fmt.Errorf("collection %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.Collection{}, fmt.Errorf("looking up collection: %w", err)
	}
	return c, nil
}

// ListCollections returns collections ordered by creation time. An empty
// kind lists every collection.
func (s *Store) ListCollections(ctx context.Context, kind types.CollectionKind) ([]types.Collection, error) {
	query := `SELECT id, kind, name, source_url, created_at FROM collections`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	var out []types.Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCollection(row rowScanner) (types.Collection, error) {
	var (
		c         types.Collection
		kind      string
		sourceURL sql.NullString
		createdAt string
	)
	if err := row.Scan(&c.ID, &kind, &c.Name, &sourceURL, &createdAt); err != nil {
		return types.Collection{}, err
	}
	c.Kind = types.CollectionKind(kind)
	c.SourceURL = sourceURL.String
	c.CreatedAt = parseTime(createdAt)
	return c, nil
}

// --- shared helpers ---

// deleteByIDs removes rows of table whose id is in ids, in chunks, and
// returns the number of rows removed.
func deleteByIDs(ctx context.Context, q querier, table string, ids []string) (int, error) {
	total := 0
	for start := 0; start < len(ids); start += deleteChunk {
		end := min(start+deleteChunk, len(ids))
		chunk := ids[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}

		res, err := q.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE id IN (`+placeholders+`)`, args...)
		if err != nil {
			return total, fmt.Errorf("deleting from %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("counting deleted rows: %w", err)
		}
		total += int(n)
	}
	return total, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullUID(uid *string) sql.NullString {
	if uid == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *uid, Valid: true}
}

func uidFromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
