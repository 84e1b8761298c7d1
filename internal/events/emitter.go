package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

type subscription struct {
	handler EventHandler
	types   map[string]struct{}
}

func (s subscription) wants(eventType string) bool {
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[eventType]
	return ok
}

// Bus routes change events to in-process subscribers. Delivery is
// synchronous and in subscription order.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	logger *slog.Logger
}

// NewBus creates an empty Bus.
func NewBus(log *slog.Logger) *Bus {
	return &Bus{logger: log.With("component", "change_bus")}
}

// Subscribe registers handler for the given event types, or for every
// type when none are given.
func (b *Bus) Subscribe(handler EventHandler, types ...string) {
	sub := subscription{handler: handler}
	if len(types) > 0 {
		sub.types = make(map[string]struct{}, len(types))
		for _, t := range types {
			sub.types[t] = struct{}{}
		}
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	n := len(b.subs)
	b.mu.Unlock()

	b.logger.Debug("subscribed change handler", "types", types, "subscribers", n)
}

// EmitEvent hands event to every interested subscriber. A failing
// subscriber does not stop the rest; all failures are joined.
func (b *Bus) EmitEvent(ctx context.Context, event *ChangeEvent) error {
	b.mu.RLock()
	subs := make([]subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.wants(event.Type) {
			subs = append(subs, s)
		}
	}
	b.mu.RUnlock()

	log := b.logger.With("event_id", event.ID, "event_type", event.Type)
	if len(subs) == 0 {
		log.Debug("no subscribers for change event")
		return nil
	}

	var errs []error
	for _, s := range subs {
		if err := s.handler.HandleEvent(ctx, event); err != nil {
			log.Error("change handler failed", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
