package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/workshop-planner/internal/persistence"
	"github.com/example/workshop-planner/internal/persistence/sqlite"
)

// SQLiteHarness provides the record stores backed by a temporary, migrated
// SQLite database.
type SQLiteHarness struct {
	KV       *sqlite.Store
	Sessions *persistence.SessionStore
	Library  *persistence.LibraryStore

	cleanup func()
}

// Close releases the database. It is also registered with tb.Cleanup.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens a fresh database file under tb.TempDir.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "planner.db")
	store, err := sqlite.Open(context.Background(), sqlite.DefaultConfig(path))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	harness := &SQLiteHarness{
		KV:       store,
		Sessions: persistence.NewSessionStore(store),
		Library:  persistence.NewLibraryStore(store),
		cleanup: func() {
			_ = store.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
