package delivery

import (
	"context"
	"log/slog"
	"time"

	"github.com/todoapp/notifier/internal/domain"
	"github.com/todoapp/notifier/internal/metrics"
	"github.com/todoapp/notifier/internal/platform/logger"
	"github.com/todoapp/notifier/internal/store"
)

// Medium labels for metrics and logs.
const (
	MediumPush  = "push"
	MediumEmail = "email"
)

// Fanout delivers grouped notifications over the real-time channel and
// email.
type Fanout struct {
	pusher   Pusher
	mailer   Mailer
	contacts store.ContactStore
	location *time.Location
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// FanoutOption configures a Fanout.
type FanoutOption func(*Fanout)

// WithLocation sets the time zone used for due dates in emails.
func WithLocation(loc *time.Location) FanoutOption {
	return func(f *Fanout) {
		if loc != nil {
			f.location = loc
		}
	}
}

// WithMetrics enables delivery metrics.
func WithMetrics(m *metrics.Metrics) FanoutOption {
	return func(f *Fanout) {
		f.metrics = m
	}
}

// NewFanout creates a Fanout. A nil mailer or contact store disables email.
func NewFanout(
	pusher Pusher,
	mailer Mailer,
	contacts store.ContactStore,
	log *slog.Logger,
	opts ...FanoutOption,
) *Fanout {
	if log == nil {
		log = logger.Discard()
	}
	f := &Fanout{
		pusher:   pusher,
		mailer:   mailer,
		contacts: contacts,
		location: time.UTC,
		logger:   log.With("component", "delivery_fanout"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Deliver pushes payload to the recipient's real-time channel under the
// notification's event name, then emails the recipient. The email leg runs
// even when the push fails and its failure never masks the push result.
func (f *Fanout) Deliver(ctx context.Context, n domain.GroupedNotification, payload any) Result {
	log := f.logger.With(
		"channel", n.Channel,
		"user_id", n.RecipientID,
		"tasks", len(n.Entries))

	var res Result

	active, err := f.pusher.Push(ctx, n.RecipientID, n.Event, payload)
	switch {
	case err != nil:
		res.PushErr = domain.NewOpError("deliver.push", domain.ErrDeliveryFailed, err)
		log.Error("failed to push notification", "error", err)
	case active:
		res.Active = true
		log.Info("pushed notification", "event", n.Event)
	default:
		log.Debug("recipient not connected, skipping real-time push")
	}
	f.metrics.Notification(string(n.Channel), MediumPush, err == nil)

	res.Emailed, res.EmailErr = f.email(ctx, log, n)
	if res.EmailErr != nil || res.Emailed {
		f.metrics.Notification(string(n.Channel), MediumEmail, res.EmailErr == nil)
	}

	return res
}

func (f *Fanout) email(ctx context.Context, log *slog.Logger, n domain.GroupedNotification) (bool, error) {
	if f.mailer == nil || f.contacts == nil {
		return false, nil
	}

	contact, err := f.contacts.GetContact(ctx, n.RecipientID)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Warn("recipient has no contact record, skipping email")
		} else {
			log.Error("failed to look up recipient for email", "error", err)
		}
		return false, domain.NewOpError("deliver.contact", domain.ErrDeliveryFailed, err)
	}
	if !contact.Reachable() {
		log.Debug("recipient has no email address, skipping email")
		return false, nil
	}

	mail, err := RenderEmail(n, *contact, f.location)
	if err != nil {
		log.Error("failed to render email", "error", err)
		return false, domain.NewOpError("deliver.render", domain.ErrDeliveryFailed, err)
	}

	if err := f.mailer.Send(ctx, mail); err != nil {
		log.Error("failed to send email", "error", err)
		return false, domain.NewOpError("deliver.email", domain.ErrDeliveryFailed, err)
	}

	log.Info("sent notification email", "subject", mail.Subject)
	return true, nil
}
