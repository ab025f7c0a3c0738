package persistence_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/example/workshop-planner/internal/catalog"
	"github.com/example/workshop-planner/internal/persistence"
	"github.com/example/workshop-planner/internal/persistence/memory"
	"github.com/example/workshop-planner/internal/scheduler"
	"github.com/example/workshop-planner/internal/testfixtures"
)

type substrate struct {
	name string
	open func(t *testing.T) persistence.KeyValueStore
}

func substrates() []substrate {
	return []substrate{
		{name: "memory", open: func(t *testing.T) persistence.KeyValueStore { return memory.New() }},
		{name: "sqlite", open: func(t *testing.T) persistence.KeyValueStore { return testfixtures.NewSQLiteHarness(t).KV }},
	}
}

func sampleSessions() []scheduler.Session {
	return []scheduler.Session{
		{ID: "session-0", Activity: catalog.Activity{ID: catalog.WelcomeID}, Duration: 15, StartTime: "09:00", EndTime: "09:15", Phase: scheduler.PhaseOpen},
		{ID: "session-1", Activity: catalog.Activity{ID: "min-specs"}, Duration: 50, StartTime: "09:15", EndTime: "10:05", Phase: scheduler.PhaseDiverge,
			CustomData: &scheduler.CustomData{Purpose: "Narrow the list"}, IsCustomized: true},
		{ID: "session-2", Activity: catalog.Activity{ID: catalog.ClosingID}, Duration: 15, StartTime: "10:05", EndTime: "10:20", Phase: scheduler.PhaseCommit},
	}
}

func TestSessionStore(t *testing.T) {
	t.Parallel()

	for _, sub := range substrates() {
		sub := sub
		t.Run(sub.name, func(t *testing.T) {
			t.Parallel()

			t.Run("round trips under the namespaced key", func(t *testing.T) {
				ctx := context.Background()
				kv := sub.open(t)
				store := persistence.NewSessionStore(kv)

				if err := store.Save(ctx, "ws-1", sampleSessions()); err != nil {
					t.Fatalf("save: %v", err)
				}
				if _, err := kv.Get(ctx, "workshop_sessions_ws-1"); err != nil {
					t.Fatalf("expected raw key workshop_sessions_ws-1: %v", err)
				}

				loaded, err := store.Load(ctx, "ws-1")
				if err != nil {
					t.Fatalf("load: %v", err)
				}
				if !slices.Equal(scheduler.ActivityIDs(loaded), scheduler.ActivityIDs(sampleSessions())) {
					t.Fatalf("unexpected activity order %v", scheduler.ActivityIDs(loaded))
				}
				if loaded[1].CustomData == nil || loaded[1].CustomData.Purpose != "Narrow the list" || !loaded[1].IsCustomized {
					t.Fatalf("expected custom data to survive, got %+v", loaded[1])
				}

				exists, err := store.Exists(ctx, "ws-1")
				if err != nil || !exists {
					t.Fatalf("expected ws-1 to exist, got %v, %v", exists, err)
				}
			})

			t.Run("save overwrites", func(t *testing.T) {
				ctx := context.Background()
				store := persistence.NewSessionStore(sub.open(t))

				if err := store.Save(ctx, "ws-1", sampleSessions()); err != nil {
					t.Fatalf("save: %v", err)
				}
				if err := store.Save(ctx, "ws-1", sampleSessions()[:1]); err != nil {
					t.Fatalf("overwrite: %v", err)
				}
				loaded, err := store.Load(ctx, "ws-1")
				if err != nil {
					t.Fatalf("load: %v", err)
				}
				if len(loaded) != 1 {
					t.Fatalf("expected overwritten list of 1, got %d", len(loaded))
				}
			})

			t.Run("missing and corrupt entries", func(t *testing.T) {
				ctx := context.Background()
				kv := sub.open(t)
				store := persistence.NewSessionStore(kv)

				if _, err := store.Load(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
					t.Fatalf("expected ErrNotFound, got %v", err)
				}
				for key, raw := range map[string]string{"bad-json": "{not json", "empty": "[]", "null": "null"} {
					if err := kv.Set(ctx, persistence.SessionKey(key), []byte(raw)); err != nil {
						t.Fatalf("seed %s: %v", key, err)
					}
					if _, err := store.Load(ctx, key); !errors.Is(err, persistence.ErrCorrupt) {
						t.Fatalf("%s: expected ErrCorrupt, got %v", key, err)
					}
				}
			})

			t.Run("delete and orphan cleanup", func(t *testing.T) {
				ctx := context.Background()
				kv := sub.open(t)
				store := persistence.NewSessionStore(kv)

				for _, id := range []string{"keep", "drop-1", "drop-2"} {
					if err := store.Save(ctx, id, sampleSessions()); err != nil {
						t.Fatalf("save %s: %v", id, err)
					}
				}
				if err := kv.Set(ctx, persistence.AutoSavedFormKey, []byte(`{}`)); err != nil {
					t.Fatalf("seed form: %v", err)
				}

				removed, err := store.CleanupOrphaned(ctx, []string{"keep"})
				if err != nil {
					t.Fatalf("cleanup: %v", err)
				}
				if !slices.Equal(removed, []string{"drop-1", "drop-2"}) {
					t.Fatalf("unexpected removed ids %v", removed)
				}
				ids, err := store.IDs(ctx)
				if err != nil {
					t.Fatalf("ids: %v", err)
				}
				if !slices.Equal(ids, []string{"keep"}) {
					t.Fatalf("unexpected remaining ids %v", ids)
				}
				if _, err := kv.Get(ctx, persistence.AutoSavedFormKey); err != nil {
					t.Fatalf("expected unrelated keys to survive cleanup: %v", err)
				}

				if err := store.Delete(ctx, "keep"); err != nil {
					t.Fatalf("delete: %v", err)
				}
				exists, err := store.Exists(ctx, "keep")
				if err != nil || exists {
					t.Fatalf("expected keep to be gone, got %v, %v", exists, err)
				}
			})
		})
	}
}

func TestLibraryStore(t *testing.T) {
	t.Parallel()

	base := testfixtures.ReferenceTime()
	record := func(id string, modified time.Time) persistence.SavedWorkshopRecord {
		return persistence.SavedWorkshopRecord{
			ID:           id,
			Name:         "Workshop " + id,
			Status:       "draft",
			CreatedAt:    base,
			LastModified: modified,
			Form:         persistence.FormRecord{Hours: 2, Participants: 8, Purposes: []string{}},
		}
	}

	for _, sub := range substrates() {
		sub := sub
		t.Run(sub.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			kv := sub.open(t)
			store := persistence.NewLibraryStore(kv)

			for _, r := range []persistence.SavedWorkshopRecord{
				record("old", base),
				record("new", base.Add(2*time.Hour)),
				record("mid", base.Add(time.Hour)),
			} {
				if err := store.Put(ctx, r); err != nil {
					t.Fatalf("put %s: %v", r.ID, err)
				}
			}
			if err := kv.Set(ctx, persistence.LibraryKeyPrefix+"broken", []byte("nope")); err != nil {
				t.Fatalf("seed broken record: %v", err)
			}

			list, err := store.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			var ids []string
			for _, r := range list {
				ids = append(ids, r.ID)
			}
			if !slices.Equal(ids, []string{"new", "mid", "old"}) {
				t.Fatalf("expected newest first without broken entries, got %v", ids)
			}

			if _, err := store.Get(ctx, "broken"); !errors.Is(err, persistence.ErrCorrupt) {
				t.Fatalf("expected ErrCorrupt for broken record, got %v", err)
			}
			if err := store.Delete(ctx, "mid"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if err := store.Delete(ctx, "mid"); !errors.Is(err, persistence.ErrNotFound) {
				t.Fatalf("expected ErrNotFound on second delete, got %v", err)
			}

			if _, err := store.LoadForm(ctx); !errors.Is(err, persistence.ErrNotFound) {
				t.Fatalf("expected no auto-saved form yet, got %v", err)
			}
			saved := base.Add(3 * time.Hour)
			if err := store.SaveForm(ctx, persistence.FormRecord{Hours: 3, Context: "Draft", LastSaved: &saved}); err != nil {
				t.Fatalf("save form: %v", err)
			}
			form, err := store.LoadForm(ctx)
			if err != nil {
				t.Fatalf("load form: %v", err)
			}
			if form.Hours != 3 || form.LastSaved == nil || !form.LastSaved.Equal(saved) {
				t.Fatalf("unexpected form %+v", form)
			}
		})
	}
}
