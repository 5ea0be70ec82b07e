// Package storetest opens a throwaway SQLite store for tests.
package storetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-join-import/internal/store"
	"github.com/ovaphlow/pitchfork/service-join-import/pkg/database"
)

// Open connects to a fresh database under t.TempDir.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()
	db, err := database.Connect(database.Config{
		Driver: database.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "store.db"),
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// New returns a store with its schema in place.
func New(t testing.TB) *store.Store {
	t.Helper()
	s := store.New(Open(t), nil)
	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return s
}
