package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/example/workshop-planner/internal/catalog"
)

type catalogSource interface {
	Catalog() *catalog.Catalog
}

// CatalogHandler lists activities and purposes.
type CatalogHandler struct {
	source    catalogSource
	responder responder
}

func NewCatalogHandler(source catalogSource, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{source: source, responder: newResponder(logger)}
}

// Activities lists the catalog. With ?participants=N only activities that fit
// the group are returned.
func (h *CatalogHandler) Activities(w http.ResponseWriter, r *http.Request) {
	cat := h.catalog(w)
	if cat == nil {
		return
	}

	activities := cat.Activities()
	if raw := r.URL.Query().Get("participants"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidParticipants)
			return
		}
		activities = cat.Feasible(n)
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, activitiesResponse{Activities: activities})
}

func (h *CatalogHandler) Purposes(w http.ResponseWriter, r *http.Request) {
	cat := h.catalog(w)
	if cat == nil {
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, purposesResponse{Purposes: cat.Purposes()})
}

func (h *CatalogHandler) catalog(w http.ResponseWriter) *catalog.Catalog {
	if h == nil || h.source == nil || h.source.Catalog() == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return nil
	}
	return h.source.Catalog()
}

type activitiesResponse struct {
	Activities []catalog.Activity `json:"activities"`
}

type purposesResponse struct {
	Purposes []catalog.Purpose `json:"purposes"`
}
