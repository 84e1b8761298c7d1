package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/todoapp/notifier/internal/domain"
	"github.com/todoapp/notifier/internal/platform/logger"
)

// ReminderConfig is the due-soon window and the reminder cooldown.
type ReminderConfig struct {
	Horizon  time.Duration
	Cooldown time.Duration
}

// DefaultReminderConfig returns a 30 minute horizon with a 25 minute
// cooldown.
func DefaultReminderConfig() ReminderConfig {
	return ReminderConfig{Horizon: 30 * time.Minute, Cooldown: 25 * time.Minute}
}

// ReminderScheduler notifies owners of tasks that are about to become due.
type ReminderScheduler struct {
	scans      Scanner
	dedup      Deduper
	dispatcher *Dispatcher
	config     ReminderConfig
	timeFunc   func() time.Time // Injectable for testing
	logger     *slog.Logger
}

// NewReminderScheduler creates a ReminderScheduler.
func NewReminderScheduler(
	scans Scanner,
	dedup Deduper,
	dispatcher *Dispatcher,
	config ReminderConfig,
	log *slog.Logger,
) *ReminderScheduler {
	if log == nil {
		log = logger.Discard()
	}
	return &ReminderScheduler{
		scans:      scans,
		dedup:      dedup,
		dispatcher: dispatcher,
		config:     config,
		timeFunc:   time.Now,
		logger:     log.With("component", "reminder_scheduler"),
	}
}

// SetTimeFunc replaces the clock.
func (s *ReminderScheduler) SetTimeFunc(fn func() time.Time) {
	s.timeFunc = fn
}

// Tick runs one reminder pass. It fails only when the scan fails, with an
// error tagged domain.ErrStoreUnavailable.
func (s *ReminderScheduler) Tick(ctx context.Context) (TickReport, error) {
	var report TickReport
	now := s.timeFunc()

	tasks, err := s.scans.DueSoon(ctx, now, now.Add(s.config.Horizon))
	if err != nil {
		s.logger.Error("due-soon scan failed", "error", err)
		return report, err
	}

	groups := collect(ctx, s.logger, s.dedup, tasks, domain.ChannelReminder, s.config.Cooldown,
		func(t domain.Task) time.Duration { return t.DueAt.Sub(now) }, &report)

	out := make([]Outgoing, 0, len(groups))
	for _, g := range groups {
		n, payload := ComposeReminder(g.recipient, g.entries)
		out = append(out, Outgoing{Notification: n, Payload: payload})
	}
	report.record(s.dispatcher.Dispatch(ctx, out))

	s.logger.Info("reminder tick complete", report.logAttrs()...)
	return report, nil
}
