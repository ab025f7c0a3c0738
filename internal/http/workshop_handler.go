package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/workshop-planner/internal/application"
	"github.com/example/workshop-planner/internal/scheduler"
	"github.com/example/workshop-planner/internal/timeline"
)

type workshopService interface {
	Generate(ctx context.Context, params application.GenerateParams) (application.Workshop, error)
	Preview(ctx context.Context, params application.GenerateParams) (application.Workshop, error)
	Regenerate(ctx context.Context, params application.GenerateParams) (application.Workshop, error)
	Sessions(ctx context.Context, workshopID string) ([]scheduler.Session, error)
	Discard(ctx context.Context, workshopID string) error
	ReplaceActivity(ctx context.Context, workshop application.Workshop, index int, activityID string) (application.Workshop, error)
	EditActivity(ctx context.Context, workshop application.Workshop, index int, custom scheduler.CustomData, duration *int) (application.Workshop, error)
	ChangeStartTime(ctx context.Context, workshop application.Workshop, startTime string) (application.Workshop, error)
}

// WorkshopHandler serves agenda generation and editing.
type WorkshopHandler struct {
	service   workshopService
	responder responder
	logger    *slog.Logger
}

func NewWorkshopHandler(service workshopService, logger *slog.Logger) *WorkshopHandler {
	return &WorkshopHandler{service: service, responder: newResponder(logger), logger: logger}
}

func (h *WorkshopHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

// Generate runs a one-off generation.
func (h *WorkshopHandler) Generate(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, http.StatusOK, func(ctx context.Context, params application.GenerateParams) (application.Workshop, error) {
		return h.service.Generate(ctx, params)
	})
}

// Preview resolves the workshop under its stable id.
func (h *WorkshopHandler) Preview(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, http.StatusOK, func(ctx context.Context, params application.GenerateParams) (application.Workshop, error) {
		return h.service.Preview(ctx, params)
	})
}

// Regenerate builds a new agenda under a fresh id.
func (h *WorkshopHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, http.StatusCreated, func(ctx context.Context, params application.GenerateParams) (application.Workshop, error) {
		return h.service.Regenerate(ctx, params)
	})
}

func (h *WorkshopHandler) generate(w http.ResponseWriter, r *http.Request, status int, run func(context.Context, application.GenerateParams) (application.Workshop, error)) {
	if !h.ready(w) {
		return
	}

	var req application.FormData
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	workshop, err := run(r.Context(), req.Params())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.renderWorkshop(r.Context(), w, workshop, status)
}

// Sessions returns the stored agenda for the workshop in the path.
func (h *WorkshopHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	workshopID, ok := h.workshopID(w, r)
	if !ok {
		return
	}

	sessions, err := h.service.Sessions(r.Context(), workshopID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionsResponse{
		WorkshopID: workshopID,
		Sessions:   sessions,
		TotalTime:  scheduler.TotalDuration(sessions),
	})
}

// Discard removes the stored agenda for the workshop in the path.
func (h *WorkshopHandler) Discard(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	workshopID, ok := h.workshopID(w, r)
	if !ok {
		return
	}

	if err := h.service.Discard(r.Context(), workshopID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Replace swaps the activity of one session.
func (h *WorkshopHandler) Replace(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	var req replaceRequest
	workshop, ok := h.decodeEdit(w, r, &req, &req.workshopEnvelope)
	if !ok {
		return
	}
	if req.SessionIndex == nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingIndex)
		return
	}

	updated, err := h.service.ReplaceActivity(r.Context(), workshop, *req.SessionIndex, strings.TrimSpace(req.ActivityID))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.renderWorkshop(r.Context(), w, updated, http.StatusOK)
}

// Edit overlays facilitator overrides on one session.
func (h *WorkshopHandler) Edit(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	var req editRequest
	workshop, ok := h.decodeEdit(w, r, &req, &req.workshopEnvelope)
	if !ok {
		return
	}
	if req.SessionIndex == nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingIndex)
		return
	}

	updated, err := h.service.EditActivity(r.Context(), workshop, *req.SessionIndex, req.CustomData, req.Duration)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.renderWorkshop(r.Context(), w, updated, http.StatusOK)
}

// StartTime moves the whole agenda.
func (h *WorkshopHandler) StartTime(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	var req startTimeRequest
	workshop, ok := h.decodeEdit(w, r, &req, &req.workshopEnvelope)
	if !ok {
		return
	}

	updated, err := h.service.ChangeStartTime(r.Context(), workshop, req.StartTime)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.renderWorkshop(r.Context(), w, updated, http.StatusOK)
}

// decodeEdit decodes body into dst and reconciles the embedded workshop id
// with the path.
func (h *WorkshopHandler) decodeEdit(w http.ResponseWriter, r *http.Request, dst any, envelope *workshopEnvelope) (application.Workshop, bool) {
	workshopID, ok := h.workshopID(w, r)
	if !ok {
		return application.Workshop{}, false
	}
	if err := decodeJSON(r, dst); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return application.Workshop{}, false
	}

	workshop := envelope.Workshop
	switch workshop.ID {
	case "":
		workshop.ID = workshopID
	case workshopID:
	default:
		handlerLogger(r.Context(), h.logger, "WorkshopHandler", "decodeEdit",
			"path_id", workshopID, "body_id", workshop.ID,
		).WarnContext(r.Context(), "workshop id mismatch")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errWorkshopIDMismatch)
		return application.Workshop{}, false
	}
	return workshop, true
}

func (h *WorkshopHandler) workshopID(w http.ResponseWriter, r *http.Request) (string, bool) {
	workshopID, ok := WorkshopIDFromContext(r.Context())
	if !ok || strings.TrimSpace(workshopID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWorkshopID)
		return "", false
	}
	return workshopID, true
}

func (h *WorkshopHandler) renderWorkshop(ctx context.Context, w http.ResponseWriter, workshop application.Workshop, status int) {
	h.responder.writeJSON(ctx, w, status, workshopResponse{
		Workshop: workshop,
		Issues:   application.CheckTimeline(workshop.Sessions),
	})
}

type workshopEnvelope struct {
	Workshop application.Workshop `json:"workshop"`
}

type replaceRequest struct {
	workshopEnvelope
	SessionIndex *int   `json:"session_index"`
	ActivityID   string `json:"activity_id"`
}

type editRequest struct {
	workshopEnvelope
	SessionIndex *int                 `json:"session_index"`
	CustomData   scheduler.CustomData `json:"custom_data"`
	Duration     *int                 `json:"duration"`
}

type startTimeRequest struct {
	workshopEnvelope
	StartTime string `json:"start_time"`
}

type workshopResponse struct {
	Workshop application.Workshop `json:"workshop"`
	Issues   []timeline.Issue     `json:"issues,omitempty"`
}

type sessionsResponse struct {
	WorkshopID string              `json:"workshop_id"`
	Sessions   []scheduler.Session `json:"sessions"`
	TotalTime  int                 `json:"total_time"`
}
