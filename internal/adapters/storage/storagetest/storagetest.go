// Package storagetest opens migrated databases for store tests.
package storagetest

import (
	"context"
	"path/filepath"
	"testing"

	"courtside/internal/adapters/storage"
)

// OpenDB returns a freshly migrated SQLite database that is closed when t ends.
func OpenDB(t testing.TB) *storage.TimedDB {
	t.Helper()
	raw, err := storage.Open(filepath.Join(t.TempDir(), "courtside.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { raw.Close() })
	if err := storage.InitDB(context.Background(), raw); err != nil {
		t.Fatalf("init db: %v", err)
	}
	return storage.NewTimedDB(raw, nil, 0)
}

// Exec runs seed statements, failing the test on the first error.
func Exec(t testing.TB, db storage.SQLDB, stmts ...string) {
	t.Helper()
	for _, s := range stmts {
		if _, err := db.ExecContext(context.Background(), s); err != nil {
			t.Fatalf("seed %q: %v", s, err)
		}
	}
}
