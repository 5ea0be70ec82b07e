// Package store persists models, accounts, events and the import cache.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-join-import/pkg/database"
	"github.com/ovaphlow/pitchfork/service-join-import/pkg/utilities"
)

// Collection tables.
const (
	TableModels   = "models"
	TableAccounts = "accounts"
	TableCache    = "join_import"
	TableEvents   = "events"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrConflict = errors.New("document revision conflict")
)

// SaveStatus reports what a revision-aware write did.
type SaveStatus int

const (
	SaveSkipped SaveStatus = iota
	SaveCreated
	SaveUpdated
	SaveExists
)

func (s SaveStatus) String() string {
	switch s {
	case SaveSkipped:
		return "skip"
	case SaveCreated:
		return "created"
	case SaveUpdated:
		return "updated"
	case SaveExists:
		return "exists, not updated"
	default:
		return fmt.Sprintf("SaveStatus(%d)", int(s))
	}
}

// Document is a stored JSON document with its revision token.
type Document struct {
	ID  string `db:"id"`
	Rev string `db:"rev"`
	Doc string `db:"doc"`
}

// Decode unmarshals the document body into v.
func (d Document) Decode(v any) error {
	return json.Unmarshal([]byte(d.Doc), v)
}

// DocumentRepo is a keyed JSON document collection with optimistic locking
// on the revision token.
type DocumentRepo struct {
	db    *sqlx.DB
	table string
}

func NewDocumentRepo(db *sqlx.DB, table string) *DocumentRepo {
	return &DocumentRepo{db: db, table: table}
}

func (r *DocumentRepo) Table() string { return r.table }

// EnsureTable creates the collection table if it does not exist.
func (r *DocumentRepo) EnsureTable(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS ` + r.table + ` (
  id TEXT PRIMARY KEY,
  rev TEXT NOT NULL,
  doc JSONB NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	if r.db.DriverName() == database.DriverSQLite {
		ddl = `CREATE TABLE IF NOT EXISTS ` + r.table + ` (
  id TEXT PRIMARY KEY,
  rev TEXT NOT NULL,
  doc TEXT NOT NULL,
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
	}
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure %s: %w", r.table, err)
	}
	return nil
}

// Get returns the stored document or ErrNotFound.
func (r *DocumentRepo) Get(ctx context.Context, id string) (Document, error) {
	q := r.db.Rebind(`SELECT id, rev, doc FROM ` + r.table + ` WHERE id = ?`)
	var d Document
	if err := r.db.GetContext(ctx, &d, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("get %s/%s: %w", r.table, id, err)
	}
	return d, nil
}

// Create inserts a new document and returns its first revision. An existing
// id yields ErrConflict.
func (r *DocumentRepo) Create(ctx context.Context, id string, doc any) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode %s/%s: %w", r.table, id, err)
	}
	rev := utilities.NextRevision("")
	q := r.db.Rebind(`INSERT INTO ` + r.table + ` (id, rev, doc) VALUES (?, ?, ?) ON CONFLICT (id) DO NOTHING`)
	res, err := r.db.ExecContext(ctx, q, id, rev, string(body))
	if err != nil {
		return "", fmt.Errorf("create %s/%s: %w", r.table, id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return "", err
	} else if n == 0 {
		return "", fmt.Errorf("create %s/%s: %w", r.table, id, ErrConflict)
	}
	return rev, nil
}

// Update replaces the document only if its stored revision still equals rev.
func (r *DocumentRepo) Update(ctx context.Context, id, rev string, doc any) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode %s/%s: %w", r.table, id, err)
	}
	next := utilities.NextRevision(rev)
	q := r.db.Rebind(`UPDATE ` + r.table + ` SET doc = ?, rev = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND rev = ?`)
	res, err := r.db.ExecContext(ctx, q, string(body), next, id, rev)
	if err != nil {
		return "", fmt.Errorf("update %s/%s: %w", r.table, id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return "", err
	} else if n == 0 {
		return "", fmt.Errorf("update %s/%s at %s: %w", r.table, id, rev, ErrConflict)
	}
	return next, nil
}

// Save creates the document, or when it exists updates it carrying the
// stored revision if update is set. Otherwise it leaves it alone and
// reports SaveExists.
func (r *DocumentRepo) Save(ctx context.Context, id string, doc any, update bool) (SaveStatus, string, error) {
	prior, err := r.Get(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		rev, err := r.Create(ctx, id, doc)
		if err != nil {
			return SaveSkipped, "", err
		}
		return SaveCreated, rev, nil
	case err != nil:
		return SaveSkipped, "", err
	}
	if !update {
		return SaveExists, prior.Rev, nil
	}
	rev, err := r.Update(ctx, id, prior.Rev, doc)
	if err != nil {
		return SaveSkipped, "", err
	}
	return SaveUpdated, rev, nil
}

// IDs lists every document id in the collection.
func (r *DocumentRepo) IDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM `+r.table+` ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table, err)
	}
	return ids, nil
}

// Count returns the number of documents in the collection.
func (r *DocumentRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM `+r.table); err != nil {
		return 0, fmt.Errorf("count %s: %w", r.table, err)
	}
	return n, nil
}
