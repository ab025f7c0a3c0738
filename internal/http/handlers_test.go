package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/workshop-planner/internal/application"
	"github.com/example/workshop-planner/internal/catalog"
	"github.com/example/workshop-planner/internal/persistence"
	"github.com/example/workshop-planner/internal/testfixtures"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cat := testfixtures.NewCatalog(t, []catalog.Activity{
		testfixtures.NewActivity("a", 30),
		testfixtures.NewActivity("b", 30),
		testfixtures.NewActivity("c", 30),
		testfixtures.NewActivity("swap", 50),
	}, []catalog.Purpose{
		{ID: "focus", Name: "Focus", RecommendedStructures: []string{"a"}},
	})
	kv := testfixtures.NewFaultyStore()
	factory := testfixtures.NewServiceFactory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	workshops := factory.NewWorkshopService(testfixtures.WorkshopServiceDeps{
		Catalog:  cat,
		Random:   testfixtures.NewSequenceRandom(),
		Sessions: persistence.NewSessionStore(kv),
		Logger:   logger,
	})
	library := factory.NewLibraryService(testfixtures.LibraryServiceDeps{
		Library: persistence.NewLibraryStore(kv),
		Logger:  logger,
	})

	return NewRouter(RouterConfig{
		Catalog:    NewCatalogHandler(workshops, logger),
		Workshops:  NewWorkshopHandler(workshops, logger),
		Library:    NewLibraryHandler(library, logger),
		Middleware: []func(http.Handler) http.Handler{RequestLogger(logger)},
	})
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(v)
	default:
		payload, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

var twoHourForm = application.FormData{Hours: 2, Participants: 5, StartTime: "09:00", Context: "Plan the offsite"}

func previewWorkshop(t *testing.T, router http.Handler) application.Workshop {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/workshops/preview", twoHourForm)
	expectStatus(t, rec, http.StatusOK)
	return decodeBody[workshopResponse](t, rec).Workshop
}

func TestWorkshopEndpoints(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	ws := previewWorkshop(t, router)
	if len(ws.Sessions) != 6 || ws.Sessions[0].StartTime != "09:00" {
		t.Fatalf("unexpected preview %+v", ws)
	}

	rec := doJSON(t, router, http.MethodGet, "/workshops/"+ws.ID+"/sessions", nil)
	expectStatus(t, rec, http.StatusOK)
	stored := decodeBody[sessionsResponse](t, rec)
	if stored.WorkshopID != ws.ID || len(stored.Sessions) != 6 || stored.TotalTime != 120 {
		t.Fatalf("unexpected sessions response %+v", stored)
	}

	t.Run("replace", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/workshops/"+ws.ID+"/replace", map[string]any{
			"workshop":      ws,
			"session_index": 2,
			"activity_id":   "swap",
		})
		expectStatus(t, rec, http.StatusOK)
		updated := decodeBody[workshopResponse](t, rec)
		if updated.Workshop.Sessions[2].Activity.ID != "swap" || updated.Workshop.Sessions[5].EndTime != "11:20" {
			t.Fatalf("unexpected replace result %+v", updated.Workshop.Sessions)
		}
		if len(updated.Issues) != 0 {
			t.Fatalf("unexpected issues %+v", updated.Issues)
		}
	})

	t.Run("replace rejects reserved activity", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/workshops/"+ws.ID+"/replace", map[string]any{
			"workshop":      ws,
			"session_index": 2,
			"activity_id":   catalog.WelcomeID,
		})
		expectStatus(t, rec, http.StatusUnprocessableEntity)
		body := decodeBody[errorResponse](t, rec)
		if _, ok := body.Errors["activity_id"]; !ok {
			t.Fatalf("expected activity_id error, got %+v", body)
		}
	})

	t.Run("replace requires an index", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/workshops/"+ws.ID+"/replace", map[string]any{
			"workshop":    ws,
			"activity_id": "swap",
		})
		expectStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("edit rejects mismatched id", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/workshops/other/edit", map[string]any{
			"workshop":      ws,
			"session_index": 1,
		})
		expectStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("edit", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/workshops/"+ws.ID+"/edit", map[string]any{
			"workshop":      ws,
			"session_index": 1,
			"custom_data":   map[string]string{"purpose": "Agree on the venue"},
			"duration":      33,
		})
		expectStatus(t, rec, http.StatusOK)
		updated := decodeBody[workshopResponse](t, rec).Workshop
		if updated.Sessions[1].Duration != 35 || updated.Sessions[1].Purpose != "Agree on the venue" {
			t.Fatalf("unexpected edit result %+v", updated.Sessions[1])
		}
		if updated.Sessions[2].StartTime != "09:45" {
			t.Fatalf("expected retimed follower, got %s", updated.Sessions[2].StartTime)
		}
	})

	t.Run("start time", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/workshops/"+ws.ID+"/start-time", map[string]any{
			"workshop":   ws,
			"start_time": "10:30",
		})
		expectStatus(t, rec, http.StatusOK)
		updated := decodeBody[workshopResponse](t, rec).Workshop
		if updated.Sessions[0].StartTime != "10:30" || updated.StartTime != "10:30" {
			t.Fatalf("unexpected start time result %+v", updated.Sessions[0])
		}
	})

	t.Run("discard", func(t *testing.T) {
		expectStatus(t, doJSON(t, router, http.MethodDelete, "/workshops/"+ws.ID+"/sessions", nil), http.StatusNoContent)
		expectStatus(t, doJSON(t, router, http.MethodGet, "/workshops/"+ws.ID+"/sessions", nil), http.StatusNotFound)
	})
}

func TestGenerateEndpoints(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/workshops", twoHourForm)
	expectStatus(t, rec, http.StatusOK)
	if id := decodeBody[workshopResponse](t, rec).Workshop.ID; id != "workshop-id-1" {
		t.Fatalf("unexpected generated id %q", id)
	}

	rec = doJSON(t, router, http.MethodPost, "/workshops/regenerate", twoHourForm)
	expectStatus(t, rec, http.StatusCreated)

	bad := twoHourForm
	bad.StartTime = "9am"
	rec = doJSON(t, router, http.MethodPost, "/workshops/preview", bad)
	expectStatus(t, rec, http.StatusUnprocessableEntity)
	if body := decodeBody[errorResponse](t, rec); body.ErrorCode != "VALIDATION_FAILED" || body.Errors["start_time"] == "" {
		t.Fatalf("unexpected error body %+v", body)
	}

	expectStatus(t, doJSON(t, router, http.MethodPost, "/workshops/preview", "{not json"), http.StatusBadRequest)

	rec = doJSON(t, router, http.MethodGet, "/workshops", nil)
	expectStatus(t, rec, http.StatusMethodNotAllowed)
	if allow := rec.Header().Get("Allow"); allow != http.MethodPost {
		t.Fatalf("unexpected Allow header %q", allow)
	}

	expectStatus(t, doJSON(t, router, http.MethodGet, "/workshops/ws-1/unknown", nil), http.StatusNotFound)
}

func TestLibraryEndpoints(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	ws := previewWorkshop(t, router)

	rec := doJSON(t, router, http.MethodPost, "/library", map[string]any{"workshop": ws, "form": twoHourForm})
	expectStatus(t, rec, http.StatusCreated)
	saved := decodeBody[application.SavedWorkshop](t, rec)
	if saved.Status != application.StatusCompleted || saved.Name != "Plan the offsite" {
		t.Fatalf("unexpected saved entry %+v", saved)
	}

	expectStatus(t, doJSON(t, router, http.MethodPost, "/library/drafts", map[string]any{"form": twoHourForm}), http.StatusCreated)

	rec = doJSON(t, router, http.MethodGet, "/library", nil)
	expectStatus(t, rec, http.StatusOK)
	if list := decodeBody[listLibraryResponse](t, rec); len(list.Workshops) != 2 {
		t.Fatalf("expected two entries, got %d", len(list.Workshops))
	}

	rec = doJSON(t, router, http.MethodGet, "/library/"+saved.ID+"/share", nil)
	expectStatus(t, rec, http.StatusOK)
	share := decodeBody[shareResponse](t, rec)

	rec = doJSON(t, router, http.MethodGet, share.Path, nil)
	expectStatus(t, rec, http.StatusOK)
	if shared := decodeBody[workshopResponse](t, rec).Workshop; shared.ID != ws.ID || len(shared.Sessions) != len(ws.Sessions) {
		t.Fatalf("shared workshop does not match the original")
	}

	rec = doJSON(t, router, http.MethodGet, "/shared/not-a-token", nil)
	expectStatus(t, rec, http.StatusBadRequest)
	if body := decodeBody[errorResponse](t, rec); body.ErrorCode != "INVALID_SHARE_TOKEN" {
		t.Fatalf("unexpected error body %+v", body)
	}

	rec = doJSON(t, router, http.MethodPut, "/library/"+saved.ID, map[string]any{"name": "Offsite v2", "status": "Draft"})
	expectStatus(t, rec, http.StatusOK)
	if updated := decodeBody[application.SavedWorkshop](t, rec); updated.Name != "Offsite v2" || updated.Status != application.StatusDraft {
		t.Fatalf("unexpected update result %+v", updated)
	}

	expectStatus(t, doJSON(t, router, http.MethodPut, "/library/"+saved.ID, map[string]any{"status": "archived"}), http.StatusUnprocessableEntity)
	expectStatus(t, doJSON(t, router, http.MethodDelete, "/library/"+saved.ID, nil), http.StatusNoContent)
	expectStatus(t, doJSON(t, router, http.MethodGet, "/library/"+saved.ID, nil), http.StatusNotFound)
	expectStatus(t, doJSON(t, router, http.MethodDelete, "/library/"+saved.ID, nil), http.StatusNotFound)
}

func TestAutoSaveEndpoints(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	expectStatus(t, doJSON(t, router, http.MethodGet, "/library/autosave", nil), http.StatusNotFound)

	rec := doJSON(t, router, http.MethodPut, "/library/autosave", map[string]any{"form": twoHourForm})
	expectStatus(t, rec, http.StatusOK)

	rec = doJSON(t, router, http.MethodGet, "/library/autosave", nil)
	expectStatus(t, rec, http.StatusOK)
	body := decodeBody[autoSavedResponse](t, rec)
	if body.Form.Context != twoHourForm.Context || body.LastSaved != testfixtures.ReferenceTime().Format("2006-01-02T15:04:05Z07:00") {
		t.Fatalf("unexpected auto-saved form %+v", body)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/catalog", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[activitiesResponse](t, rec).Activities; len(got) != 8 {
		t.Fatalf("expected 8 activities, got %d", len(got))
	}

	rec = doJSON(t, router, http.MethodGet, "/catalog?participants=5", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[activitiesResponse](t, rec).Activities; len(got) != 4 {
		t.Fatalf("expected 4 feasible activities, got %d", len(got))
	}

	expectStatus(t, doJSON(t, router, http.MethodGet, "/catalog?participants=many", nil), http.StatusBadRequest)

	rec = doJSON(t, router, http.MethodGet, "/purposes", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[purposesResponse](t, rec).Purposes; len(got) != 1 || got[0].ID != "focus" {
		t.Fatalf("unexpected purposes %+v", got)
	}

	expectStatus(t, doJSON(t, router, http.MethodGet, "/healthz", nil), http.StatusNoContent)
}
