package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/todoapp/notifier/internal/api/shared"
	"github.com/todoapp/notifier/internal/events"
	"github.com/todoapp/notifier/internal/platform/logger"
)

// ChangeApplier applies a change event and reports how many cached scans
// it dropped. Implemented by cache.InvalidationHandler.
type ChangeApplier interface {
	Apply(ctx context.Context, event *events.ChangeEvent) (int, error)
}

// InvalidateHandler serves POST /api/internal/scans/invalidate.
type InvalidateHandler struct {
	applier ChangeApplier
}

// NewInvalidateHandler creates an InvalidateHandler.
func NewInvalidateHandler(applier ChangeApplier) *InvalidateHandler {
	return &InvalidateHandler{applier: applier}
}

// Invalidate drops cached scans after a task or list change.
func (h *InvalidateHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	req := InvalidateRequest{Type: events.TypeTaskChanged, Entity: "task"}
	if err := shared.DecodeJSON(r, &req); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request", err)
		return
	}

	event := events.NewChangeEvent(req.Type, req.Entity, req.EntityID)
	n, err := h.applier.Apply(r.Context(), event)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	userID, _ := shared.GetUserID(r)
	logger.FromContext(r.Context()).Info("scan cache invalidated",
		"event_id", event.ID,
		"event_type", event.Type,
		"entity_id", nilAsEmpty(event.EntityID),
		"requested_by", userID,
		"deleted", n)

	writeJSON(w, r, http.StatusOK, InvalidateResponse{Invalidated: n})
}

func nilAsEmpty(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	shared.RespondWithJSON(w, r, status, v)
}
