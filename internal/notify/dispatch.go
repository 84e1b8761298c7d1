package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/todoapp/notifier/internal/delivery"
	"github.com/todoapp/notifier/internal/domain"
	"github.com/todoapp/notifier/internal/platform/logger"
)

// Deliverer sends one grouped notification. *delivery.Fanout implements it.
type Deliverer interface {
	Deliver(ctx context.Context, n domain.GroupedNotification, payload any) delivery.Result
}

// Deduper is the per-task, per-channel cooldown tracker. *cache.DedupCache
// implements it.
type Deduper interface {
	RecentlyNotified(ctx context.Context, taskID uuid.UUID, channel domain.Channel, cooldown time.Duration) (bool, error)
	MarkNotified(ctx context.Context, taskID uuid.UUID, channel domain.Channel) error
}

// DispatchConfig bounds per-tick delivery.
type DispatchConfig struct {
	// Workers is the number of recipients delivered concurrently. Values
	// below 1 mean 1.
	Workers int
	// Timeout bounds one recipient's delivery. Zero disables it.
	Timeout time.Duration
}

// Outgoing is a composed notification ready for delivery.
type Outgoing struct {
	Notification domain.GroupedNotification
	Payload      any
}

// Outcome is the delivery result for one recipient.
type Outcome struct {
	RecipientID uuid.UUID
	Tasks       int
	Result      delivery.Result
	// MarkErrors counts tasks whose notification could not be recorded.
	MarkErrors int
}

// Dispatcher delivers composed notifications, one recipient at a time or
// with bounded concurrency, and records every delivered task with the
// deduper.
type Dispatcher struct {
	deliverer Deliverer
	dedup     Deduper
	config    DispatchConfig
	logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(deliverer Deliverer, dedup Deduper, config DispatchConfig, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = logger.Discard()
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &Dispatcher{
		deliverer: deliverer,
		dedup:     dedup,
		config:    config,
		logger:    log.With("component", "dispatcher"),
	}
}

// Dispatch delivers every outgoing notification and returns one Outcome per
// entry, in input order. A failure for one recipient never affects the
// others. Tasks are marked notified after the delivery attempt whatever its
// result, using ctx rather than the per-recipient deadline.
func (d *Dispatcher) Dispatch(ctx context.Context, out []Outgoing) []Outcome {
	outcomes := make([]Outcome, len(out))

	var g errgroup.Group
	g.SetLimit(d.config.Workers)
	for i := range out {
		g.Go(func() error {
			outcomes[i] = d.deliver(ctx, out[i])
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (d *Dispatcher) deliver(ctx context.Context, o Outgoing) Outcome {
	n := o.Notification
	outcome := Outcome{RecipientID: n.RecipientID, Tasks: len(n.Entries)}

	dctx := ctx
	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}
	outcome.Result = d.deliverer.Deliver(dctx, n, o.Payload)

	for _, id := range n.TaskIDs() {
		if err := d.dedup.MarkNotified(ctx, id, n.Channel); err != nil {
			outcome.MarkErrors++
			d.logger.Warn("failed to record notification",
				"channel", n.Channel,
				"task_id", id,
				"error", err)
		}
	}
	return outcome
}
