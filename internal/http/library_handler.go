package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/workshop-planner/internal/application"
)

type libraryService interface {
	SaveWorkshop(ctx context.Context, workshop application.Workshop, form application.FormData) (application.SavedWorkshop, error)
	SaveDraft(ctx context.Context, form application.FormData) (application.SavedWorkshop, error)
	List(ctx context.Context) ([]application.SavedWorkshop, error)
	Get(ctx context.Context, id string) (application.SavedWorkshop, error)
	Update(ctx context.Context, id string, update application.SavedWorkshopUpdate) (application.SavedWorkshop, error)
	Delete(ctx context.Context, id string) error
	AutoSaveForm(ctx context.Context, form application.FormData) (application.AutoSavedForm, error)
	LoadAutoSavedForm(ctx context.Context) (application.AutoSavedForm, error)
	ShareToken(ctx context.Context, id string) (string, error)
}

// LibraryHandler serves the saved-workshop library and share links.
type LibraryHandler struct {
	service   libraryService
	responder responder
	logger    *slog.Logger
}

func NewLibraryHandler(service libraryService, logger *slog.Logger) *LibraryHandler {
	return &LibraryHandler{service: service, responder: newResponder(logger), logger: logger}
}

func (h *LibraryHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

func (h *LibraryHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	entries, err := h.service.List(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listLibraryResponse{Workshops: entries})
}

// Save stores a completed workshop.
func (h *LibraryHandler) Save(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	var req saveWorkshopRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	saved, err := h.service.SaveWorkshop(r.Context(), req.Workshop, req.Form)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, saved)
}

// SaveDraft stores a form without an agenda.
func (h *LibraryHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	var req draftRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	saved, err := h.service.SaveDraft(r.Context(), req.Form)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, saved)
}

func (h *LibraryHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.savedID(w, r)
	if !ok {
		return
	}

	saved, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, saved)
}

func (h *LibraryHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.savedID(w, r)
	if !ok {
		return
	}

	var req updateLibraryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	saved, err := h.service.Update(r.Context(), id, req.toUpdate())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, saved)
}

func (h *LibraryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.savedID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Share returns a share token for a completed entry.
func (h *LibraryHandler) Share(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.savedID(w, r)
	if !ok {
		return
	}

	token, err := h.service.ShareToken(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, shareResponse{Token: token, Path: "/shared/" + token})
}

// Shared decodes a share token. It needs no stored state.
func (h *LibraryHandler) Shared(w http.ResponseWriter, r *http.Request, token string) {
	workshop, err := application.DecodeShareToken(token)
	if err != nil {
		handlerLogger(r.Context(), h.logger, "LibraryHandler", "Shared").
			InfoContext(r.Context(), "rejected share token", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, workshopResponse{
		Workshop: workshop,
		Issues:   application.CheckTimeline(workshop.Sessions),
	})
}

// AutoSaved returns the auto-saved form.
func (h *LibraryHandler) AutoSaved(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	form, err := h.service.LoadAutoSavedForm(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, autoSavedResponse{Form: form.Form, LastSaved: form.LastSaved.Format(time.RFC3339)})
}

// AutoSave replaces the auto-saved form.
func (h *LibraryHandler) AutoSave(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	var req draftRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	form, err := h.service.AutoSaveForm(r.Context(), req.Form)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, autoSavedResponse{Form: form.Form, LastSaved: form.LastSaved.Format(time.RFC3339)})
}

func (h *LibraryHandler) savedID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := SavedIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSavedID)
		return "", false
	}
	return id, true
}

type saveWorkshopRequest struct {
	Workshop application.Workshop `json:"workshop"`
	Form     application.FormData `json:"form"`
}

type draftRequest struct {
	Form application.FormData `json:"form"`
}

type updateLibraryRequest struct {
	Name     *string               `json:"name"`
	Status   *string               `json:"status"`
	Form     *application.FormData `json:"form"`
	Workshop *application.Workshop `json:"workshop"`
}

func (req updateLibraryRequest) toUpdate() application.SavedWorkshopUpdate {
	update := application.SavedWorkshopUpdate{
		Name:     req.Name,
		Form:     req.Form,
		Workshop: req.Workshop,
	}
	if req.Status != nil {
		status := application.SavedStatus(strings.ToLower(strings.TrimSpace(*req.Status)))
		update.Status = &status
	}
	return update
}

type listLibraryResponse struct {
	Workshops []application.SavedWorkshop `json:"workshops"`
}

type shareResponse struct {
	Token string `json:"token"`
	Path  string `json:"path"`
}

type autoSavedResponse struct {
	Form      application.FormData `json:"form"`
	LastSaved string               `json:"last_saved"`
}
