package application_test

import (
	"context"
	"encoding/base64"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/example/workshop-planner/internal/application"
	"github.com/example/workshop-planner/internal/persistence"
	"github.com/example/workshop-planner/internal/testfixtures"
)

func newLibraryService(t *testing.T, kv persistence.KeyValueStore) *application.LibraryService {
	t.Helper()
	if kv == nil {
		kv = testfixtures.NewSQLiteHarness(t).KV
	}
	return testfixtures.NewServiceFactory().NewLibraryService(testfixtures.LibraryServiceDeps{
		Library: persistence.NewLibraryStore(kv),
	})
}

func generatedWorkshop(t *testing.T, params application.GenerateParams) application.Workshop {
	t.Helper()
	h := newWorkshopHarness(t, nil, nil)
	ws, err := h.service.Preview(context.Background(), params)
	if err != nil {
		t.Fatalf("Preview returned error: %v", err)
	}
	return ws
}

func TestSaveWorkshopRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := newLibraryService(t, nil)
	params := testfixtures.NewGenerateParams()
	ws := generatedWorkshop(t, params)

	saved, err := service.SaveWorkshop(ctx, ws, testfixtures.FormFor(params))
	if err != nil {
		t.Fatalf("SaveWorkshop returned error: %v", err)
	}
	if saved.ID != "id-1" || saved.Status != application.StatusCompleted {
		t.Fatalf("unexpected saved entry %+v", saved)
	}
	if saved.Name != "Improve onboarding. Second cla... - Define next steps" {
		t.Fatalf("unexpected name %q", saved.Name)
	}
	if !saved.CreatedAt.Equal(testfixtures.ReferenceTime()) {
		t.Fatalf("unexpected created at %v", saved.CreatedAt)
	}

	loaded, err := service.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if loaded.Workshop == nil || loaded.Workshop.ID != ws.ID {
		t.Fatalf("expected workshop %s to be stored, got %+v", ws.ID, loaded.Workshop)
	}
	if !reflect.DeepEqual(loaded.Workshop.Sessions, ws.Sessions) {
		t.Fatalf("expected sessions to survive the round trip")
	}
	if !reflect.DeepEqual(loaded.Form, testfixtures.FormFor(params)) {
		t.Fatalf("expected form %+v, got %+v", testfixtures.FormFor(params), loaded.Form)
	}

	ids, err := service.WorkshopIDs(ctx)
	if err != nil {
		t.Fatalf("WorkshopIDs returned error: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{ws.ID}) {
		t.Fatalf("unexpected workshop ids %v", ids)
	}
}

func TestSaveWorkshopRequiresSessions(t *testing.T) {
	t.Parallel()

	service := newLibraryService(t, testfixtures.NewFaultyStore())
	_, err := service.SaveWorkshop(context.Background(), application.Workshop{ID: "ws-empty"}, application.FormData{})
	if _, ok := validationFields(t, err)["workshop"]; !ok {
		t.Fatalf("expected workshop error, got %v", err)
	}
}

func TestListUpdateAndDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := newLibraryService(t, nil)

	first, err := service.SaveDraft(ctx, application.FormData{Hours: 2, Context: "First"})
	if err != nil {
		t.Fatalf("SaveDraft returned error: %v", err)
	}
	second, err := service.SaveDraft(ctx, application.FormData{Hours: 3, Context: "Second"})
	if err != nil {
		t.Fatalf("SaveDraft returned error: %v", err)
	}

	assertOrder := func(want ...string) {
		t.Helper()
		entries, err := service.List(ctx)
		if err != nil {
			t.Fatalf("List returned error: %v", err)
		}
		got := make([]string, 0, len(entries))
		for _, entry := range entries {
			got = append(got, entry.ID)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
	assertOrder(second.ID, first.ID)

	name := "  Renamed  "
	status := application.StatusCompleted
	ws := generatedWorkshop(t, testfixtures.NewGenerateParams())
	updated, err := service.Update(ctx, first.ID, application.SavedWorkshopUpdate{Name: &name, Status: &status, Workshop: &ws})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Name != "Renamed" || updated.Status != application.StatusCompleted || updated.Workshop == nil {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if !updated.LastModified.After(updated.CreatedAt) {
		t.Fatalf("expected last modified to move forward")
	}
	assertOrder(first.ID, second.ID)

	if err := service.Delete(ctx, second.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := service.Delete(ctx, second.ID); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := service.Get(ctx, second.ID); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	assertOrder(first.ID)
}

func TestUpdateValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := newLibraryService(t, testfixtures.NewFaultyStore())
	saved, err := service.SaveDraft(ctx, application.FormData{Context: "Draft"})
	if err != nil {
		t.Fatalf("SaveDraft returned error: %v", err)
	}

	blank := " "
	bogus := application.SavedStatus("archived")
	empty := application.Workshop{ID: "ws-empty"}

	_, err = service.Update(ctx, saved.ID, application.SavedWorkshopUpdate{Name: &blank, Status: &bogus, Workshop: &empty})
	fields := validationFields(t, err)
	for _, field := range []string{"name", "status", "workshop"} {
		if _, ok := fields[field]; !ok {
			t.Fatalf("expected %s error, got %v", field, fields)
		}
	}

	name := "Fine"
	if _, err := service.Update(ctx, "missing", application.SavedWorkshopUpdate{Name: &name}); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCleanupDuplicatesKeepsNewestPerName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := newLibraryService(t, testfixtures.NewFaultyStore())
	form := application.FormData{Context: "Retro", Goals: "Actions"}

	older, err := service.SaveDraft(ctx, form)
	if err != nil {
		t.Fatalf("SaveDraft returned error: %v", err)
	}
	newer, err := service.SaveDraft(ctx, form)
	if err != nil {
		t.Fatalf("SaveDraft returned error: %v", err)
	}
	other, err := service.SaveDraft(ctx, application.FormData{Context: "Kickoff"})
	if err != nil {
		t.Fatalf("SaveDraft returned error: %v", err)
	}

	removed, err := service.CleanupDuplicates(ctx)
	if err != nil {
		t.Fatalf("CleanupDuplicates returned error: %v", err)
	}
	if !reflect.DeepEqual(removed, []string{older.ID}) {
		t.Fatalf("expected %v removed, got %v", []string{older.ID}, removed)
	}
	for _, id := range []string{newer.ID, other.ID} {
		if _, err := service.Get(ctx, id); err != nil {
			t.Fatalf("expected %s to survive, got %v", id, err)
		}
	}
}

func TestAutoSavedForm(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := testfixtures.NewFaultyStore()
	service := newLibraryService(t, kv)

	if _, err := service.LoadAutoSavedForm(ctx); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before any save, got %v", err)
	}

	form := testfixtures.FormFor(testfixtures.NewGenerateParams())
	saved, err := service.AutoSaveForm(ctx, form)
	if err != nil {
		t.Fatalf("AutoSaveForm returned error: %v", err)
	}
	if !saved.LastSaved.Equal(testfixtures.ReferenceTime()) {
		t.Fatalf("unexpected last saved %v", saved.LastSaved)
	}

	loaded, err := service.LoadAutoSavedForm(ctx)
	if err != nil {
		t.Fatalf("LoadAutoSavedForm returned error: %v", err)
	}
	if !reflect.DeepEqual(loaded.Form, form) || !loaded.LastSaved.Equal(saved.LastSaved) {
		t.Fatalf("unexpected auto-saved form %+v", loaded)
	}

	kv.FailSets(errors.New("disk full"))
	if _, err := service.AutoSaveForm(ctx, form); err == nil {
		t.Fatalf("expected write failure to surface")
	}
}

func TestShareTokens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := newLibraryService(t, testfixtures.NewFaultyStore())
	params := testfixtures.NewGenerateParams()
	ws := generatedWorkshop(t, params)

	saved, err := service.SaveWorkshop(ctx, ws, testfixtures.FormFor(params))
	if err != nil {
		t.Fatalf("SaveWorkshop returned error: %v", err)
	}
	token, err := service.ShareToken(ctx, saved.ID)
	if err != nil {
		t.Fatalf("ShareToken returned error: %v", err)
	}
	if strings.ContainsAny(token, "+/=") {
		t.Fatalf("expected URL-safe token, got %q", token)
	}
	decoded, err := application.DecodeShareToken(token)
	if err != nil {
		t.Fatalf("DecodeShareToken returned error: %v", err)
	}
	if decoded.ID != ws.ID || !reflect.DeepEqual(decoded.Sessions, ws.Sessions) {
		t.Fatalf("decoded workshop does not match the original")
	}

	draft, err := service.SaveDraft(ctx, testfixtures.FormFor(params))
	if err != nil {
		t.Fatalf("SaveDraft returned error: %v", err)
	}
	if _, err := service.ShareToken(ctx, draft.ID); err == nil {
		t.Fatalf("expected drafts to be rejected")
	}

	for name, token := range map[string]string{
		"not base64":   "%%%",
		"not json":     base64.RawURLEncoding.EncodeToString([]byte("hello")),
		"missing data": base64.RawURLEncoding.EncodeToString([]byte(`{"id":"ws-1"}`)),
	} {
		if _, err := application.DecodeShareToken(token); !errors.Is(err, application.ErrInvalidShareToken) {
			t.Fatalf("%s: expected ErrInvalidShareToken, got %v", name, err)
		}
	}
}

func TestLibraryWriteFailure(t *testing.T) {
	t.Parallel()

	kv := testfixtures.NewFaultyStore()
	kv.FailSets(errors.New("read-only"))
	service := newLibraryService(t, kv)

	if _, err := service.SaveDraft(context.Background(), application.FormData{}); err == nil {
		t.Fatalf("expected write failure to surface")
	}
}

func TestGenerateName(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		context string
		goals   string
		want    string
	}{
		{"both", "Improve onboarding", "Define next steps", "Improve onboarding - Define next steps"},
		{"context only", "Improve onboarding", "", "Improve onboarding"},
		{"goals only", "", "Define next steps", "Define next steps"},
		{"long context", strings.Repeat("a", 31), "", strings.Repeat("a", 30) + "..."},
		{"exactly thirty", strings.Repeat("b", 30), "", strings.Repeat("b", 30)},
		{"multibyte", strings.Repeat("ä", 31), "", strings.Repeat("ä", 30) + "..."},
		{"empty", "", "", "Workshop 2024-03-09"},
	}
	for _, tc := range tests {
		if got := application.GenerateName(tc.context, tc.goals, now); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}
