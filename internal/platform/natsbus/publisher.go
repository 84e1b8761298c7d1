package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/todoapp/notifier/internal/delivery"
	"github.com/todoapp/notifier/internal/platform/logger"
)

// publisher is the subset of *nats.Conn used here.
type publisher interface {
	Publish(subject string, data []byte) error
}

// Message is the JSON body published for each notification.
type Message struct {
	Event       string    `json:"event"`
	RecipientID uuid.UUID `json:"recipientId"`
	Data        any       `json:"data"`
}

// Publisher implements delivery.Pusher over NATS core pub/sub.
type Publisher struct {
	nc     publisher
	logger *slog.Logger
}

var _ delivery.Pusher = (*Publisher)(nil)

// NewPublisher creates a Publisher on nc, normally a *nats.Conn.
func NewPublisher(nc publisher, log *slog.Logger) *Publisher {
	if log == nil {
		log = logger.Discard()
	}
	return &Publisher{nc: nc, logger: log.With("component", "nats_publisher")}
}

// Push publishes the notification on the user subject and the global
// subject. A publish says nothing about whether anyone is listening, so the
// recipient is never reported active.
func (p *Publisher) Push(_ context.Context, recipientID uuid.UUID, event string, payload any) (bool, error) {
	data, err := json.Marshal(Message{Event: event, RecipientID: recipientID, Data: payload})
	if err != nil {
		return false, fmt.Errorf("marshal notification: %w", err)
	}

	if err := p.nc.Publish(UserSubject(recipientID, event), data); err != nil {
		return false, fmt.Errorf("publish notification: %w", err)
	}
	if err := p.nc.Publish(allSubject, data); err != nil {
		p.logger.Error("failed to publish global notification", "error", err)
	}
	return false, nil
}
