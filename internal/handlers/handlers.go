package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"rdioactivity/internal/models"
)

// SnapshotService defines the interface for activity operations
type SnapshotService interface {
	Snapshot(ctx context.Context, kind models.EntityKind) ([]models.ActiveEntity, error)
	TouchVisitor(identity string) int
	Status() models.Status
}

// ActivityHandler handles HTTP requests for activity snapshots
type ActivityHandler struct {
	service SnapshotService
	log     zerolog.Logger
	// trackTalkgroupVisitors extends presence tracking to the
	// talkgroups endpoint. The legacy behavior counts visitors on the
	// units endpoint only.
	trackTalkgroupVisitors bool
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(service SnapshotService, log zerolog.Logger, trackTalkgroupVisitors bool) *ActivityHandler {
	return &ActivityHandler{
		service:                service,
		log:                    log,
		trackTalkgroupVisitors: trackTalkgroupVisitors,
	}
}

// ActiveUnits handles GET /api/active-units
func (h *ActivityHandler) ActiveUnits(w http.ResponseWriter, r *http.Request) {
	h.service.TouchVisitor(ClientIdentity(r))

	entities, err := h.service.Snapshot(r.Context(), models.KindUnit)
	if err != nil {
		h.log.Error().Err(err).Msg("active units snapshot failed")
		h.writeInternalError(w)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, models.ActiveUnits(entities))
}

// ActiveTalkgroups handles GET /api/active-talkgroups
func (h *ActivityHandler) ActiveTalkgroups(w http.ResponseWriter, r *http.Request) {
	if h.trackTalkgroupVisitors {
		h.service.TouchVisitor(ClientIdentity(r))
	}

	entities, err := h.service.Snapshot(r.Context(), models.KindTalkgroup)
	if err != nil {
		h.log.Error().Err(err).Msg("active talkgroups snapshot failed")
		h.writeInternalError(w)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, models.ActiveTalkgroups(entities))
}

// Status handles GET /api/status
func (h *ActivityHandler) Status(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, http.StatusOK, h.service.Status())
}

// writeJSONResponse writes a JSON response
func (h *ActivityHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeInternalError writes the generic failure body. Diagnostic detail
// stays in the logs, never in the response.
func (h *ActivityHandler) writeInternalError(w http.ResponseWriter) {
	h.writeJSONResponse(w, http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error"})
}
