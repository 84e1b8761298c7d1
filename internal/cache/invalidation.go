package cache

import (
	"context"
	"log/slog"

	"github.com/todoapp/notifier/internal/events"
	"github.com/todoapp/notifier/internal/platform/logger"
)

// InvalidationHandler drops cached scans whenever a task or list changes.
type InvalidationHandler struct {
	scans  *ScanCache
	logger *slog.Logger
}

var _ events.EventHandler = (*InvalidationHandler)(nil)

// NewInvalidationHandler creates an InvalidationHandler for scans.
func NewInvalidationHandler(scans *ScanCache, log *slog.Logger) *InvalidationHandler {
	if log == nil {
		log = logger.Discard()
	}
	return &InvalidationHandler{
		scans:  scans,
		logger: log.With("component", "scan_invalidation"),
	}
}

// HandleEvent implements events.EventHandler.
func (h *InvalidationHandler) HandleEvent(ctx context.Context, event *events.ChangeEvent) error {
	_, err := h.Apply(ctx, event)
	return err
}

// Apply invalidates the scan cache for a task or list change and returns
// how many entries were dropped. Unrelated event types are ignored.
func (h *InvalidationHandler) Apply(ctx context.Context, event *events.ChangeEvent) (int, error) {
	switch event.Type {
	case events.TypeTaskChanged, events.TypeListChanged:
	default:
		return 0, nil
	}

	n, err := h.scans.Invalidate(ctx)
	if err != nil {
		return n, err
	}
	h.logger.Debug("scan cache invalidated",
		"event_id", event.ID,
		"event_type", event.Type,
		"deleted", n)
	return n, nil
}
