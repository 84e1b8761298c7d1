package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEventHandler records the events it receives.
type MockEventHandler struct {
	mu           sync.Mutex
	LastEvent    *ChangeEvent
	HandlerError error
	HandledCount int
}

func (h *MockEventHandler) HandleEvent(ctx context.Context, event *ChangeEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestNewChangeEvent(t *testing.T) {
	id := uuid.New()
	event := NewChangeEvent(TypeTaskChanged, "task", id)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeTaskChanged, event.Type)
	assert.Equal(t, "task", event.Entity)
	assert.Equal(t, id, event.EntityID)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)
}

func TestBus(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("no subscribers", func(t *testing.T) {
		bus := NewBus(logger)
		err := bus.EmitEvent(context.Background(), NewChangeEvent(TypeListChanged, "list", uuid.Nil))
		assert.NoError(t, err)
	})

	t.Run("all subscribers receive the event", func(t *testing.T) {
		bus := NewBus(logger)
		h1, h2 := &MockEventHandler{}, &MockEventHandler{}
		bus.Subscribe(h1)
		bus.Subscribe(h2)

		event := NewChangeEvent(TypeTaskChanged, "task", uuid.New())
		require.NoError(t, bus.EmitEvent(context.Background(), event))

		assert.Equal(t, 1, h1.HandledCount)
		assert.Equal(t, 1, h2.HandledCount)
		assert.Same(t, event, h1.LastEvent)
		assert.Same(t, event, h2.LastEvent)
	})

	t.Run("typed subscription filters", func(t *testing.T) {
		bus := NewBus(logger)
		lists := &MockEventHandler{}
		bus.Subscribe(lists, TypeListChanged)

		require.NoError(t, bus.EmitEvent(context.Background(), NewChangeEvent(TypeTaskChanged, "task", uuid.New())))
		assert.Zero(t, lists.HandledCount)

		require.NoError(t, bus.EmitEvent(context.Background(), NewChangeEvent(TypeListChanged, "list", uuid.New())))
		assert.Equal(t, 1, lists.HandledCount)
	})

	t.Run("failing subscriber does not stop the others", func(t *testing.T) {
		bus := NewBus(logger)
		boom := errors.New("handler error")
		failing := &MockEventHandler{HandlerError: boom}
		ok := &MockEventHandler{}
		bus.Subscribe(failing)
		bus.Subscribe(ok)

		err := bus.EmitEvent(context.Background(), NewChangeEvent(TypeTaskChanged, "task", uuid.New()))
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, failing.HandledCount)
		assert.Equal(t, 1, ok.HandledCount)
	})
}
