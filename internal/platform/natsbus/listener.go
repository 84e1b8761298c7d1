package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/todoapp/notifier/internal/events"
	"github.com/todoapp/notifier/internal/platform/logger"
)

const handleTimeout = 10 * time.Second

// ChangeListener forwards change events from ChangeSubject to an emitter.
type ChangeListener struct {
	emitter events.EventEmitter
	logger  *slog.Logger
	sub     *nats.Subscription
}

// NewChangeListener creates a ChangeListener.
func NewChangeListener(emitter events.EventEmitter, log *slog.Logger) *ChangeListener {
	if log == nil {
		log = logger.Discard()
	}
	return &ChangeListener{emitter: emitter, logger: log.With("component", "nats_change_listener")}
}

// Start subscribes on nc.
func (l *ChangeListener) Start(nc *nats.Conn) error {
	sub, err := nc.Subscribe(ChangeSubject, l.HandleMsg)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", ChangeSubject, err)
	}
	l.sub = sub
	return nil
}

// Stop unsubscribes.
func (l *ChangeListener) Stop() error {
	if l.sub == nil {
		return nil
	}
	return l.sub.Unsubscribe()
}

// HandleMsg decodes one change event and emits it. Malformed messages are
// logged and dropped.
func (l *ChangeListener) HandleMsg(msg *nats.Msg) {
	var event events.ChangeEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		l.logger.Error("failed to unmarshal change event", "error", err)
		return
	}
	if event.Type == "" {
		l.logger.Warn("dropping change event without type")
		return
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()
	if err := l.emitter.EmitEvent(ctx, &event); err != nil {
		l.logger.Error("failed to handle change event",
			"error", err,
			"event_id", event.ID,
			"event_type", event.Type)
	}
}
