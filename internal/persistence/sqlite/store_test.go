package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/example/workshop-planner/internal/persistence"
	"github.com/example/workshop-planner/internal/persistence/sqlite"
)

func openStore(t *testing.T, dsn string) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), sqlite.DefaultConfig(dsn))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRoundTripAndOverwrite(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, sqlite.MemoryDSN)

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Set(ctx, "k", []byte("first")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "k", []byte("second")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("expected overwritten value, got %q", got)
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("expected deleting a missing key to succeed, got %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStoreKeysMatchesPrefixExactly(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, sqlite.MemoryDSN)

	for _, key := range []string{"workshop_sessions_b", "workshop_sessions_a", "Workshop_sessions_c", "workshopXsessions_d", "other"} {
		if err := store.Set(ctx, key, []byte("[]")); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}

	keys, err := store.Keys(ctx, "workshop_sessions_")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	want := []string{"workshop_sessions_a", "workshop_sessions_b"}
	if len(keys) != len(want) {
		t.Fatalf("expected %v, got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, keys)
		}
	}

	all, err := store.Keys(ctx, "")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected every key for empty prefix, got %v", all)
	}
}

func TestOpenIsIdempotentAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "nested", "planner.db")

	first, err := sqlite.Open(ctx, sqlite.DefaultConfig(dsn))
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := first.Set(ctx, "autosaved_form", []byte(`{"hours":2}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second := openStore(t, dsn)
	applied, err := second.Migrate(ctx)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("expected no pending migrations, got %v", applied)
	}
	got, err := second.Get(ctx, "autosaved_form")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if string(got) != `{"hours":2}` {
		t.Fatalf("unexpected value after reopen: %q", got)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  sqlite.Config
		wantErr bool
	}{
		{name: "default", config: sqlite.DefaultConfig("planner.db")},
		{name: "memory", config: sqlite.DefaultConfig(sqlite.MemoryDSN)},
		{name: "empty dsn", config: sqlite.Config{}, wantErr: true},
		{name: "bad journal", config: sqlite.Config{DSN: "x.db", JournalMode: "SIDEWAYS"}, wantErr: true},
		{name: "bad synchronous", config: sqlite.Config{DSN: "x.db", Synchronous: "MAYBE"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMigrationsAreOrdered(t *testing.T) {
	migrations, err := sqlite.Migrations()
	if err != nil {
		t.Fatalf("migrations: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatalf("expected embedded migrations")
	}
	if migrations[0].Version != "001" || migrations[0].Checksum == "" {
		t.Fatalf("unexpected first migration: %+v", migrations[0])
	}
}
