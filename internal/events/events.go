package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Change event types.
const (
	TypeTaskChanged = "task.changed"
	TypeListChanged = "list.changed"
)

// ChangeEvent reports that an entity read by the schedulers has changed.
type ChangeEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// Entity names the changed entity kind, e.g. "task" or "list"
	Entity string `json:"entity"`

	// EntityID identifies the changed entity; uuid.Nil means "many"
	EntityID uuid.UUID `json:"entity_id"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewChangeEvent creates a ChangeEvent stamped with a fresh ID and the
// current time.
func NewChangeEvent(eventType, entity string, entityID uuid.UUID) *ChangeEvent {
	return &ChangeEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Entity:    entity,
		EntityID:  entityID,
		CreatedAt: time.Now(),
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *ChangeEvent) error
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *ChangeEvent) error
}
