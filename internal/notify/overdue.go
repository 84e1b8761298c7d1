package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/todoapp/notifier/internal/domain"
	"github.com/todoapp/notifier/internal/platform/logger"
)

// DefaultOverdueCooldown is the minimum time between two overdue alerts for
// the same task.
const DefaultOverdueCooldown = 60 * time.Minute

// OverdueScheduler alerts owners of tasks past their due date.
type OverdueScheduler struct {
	scans      Scanner
	dedup      Deduper
	dispatcher *Dispatcher
	cooldown   time.Duration
	timeFunc   func() time.Time // Injectable for testing
	logger     *slog.Logger
}

// NewOverdueScheduler creates an OverdueScheduler.
func NewOverdueScheduler(
	scans Scanner,
	dedup Deduper,
	dispatcher *Dispatcher,
	cooldown time.Duration,
	log *slog.Logger,
) *OverdueScheduler {
	if log == nil {
		log = logger.Discard()
	}
	if cooldown <= 0 {
		cooldown = DefaultOverdueCooldown
	}
	return &OverdueScheduler{
		scans:      scans,
		dedup:      dedup,
		dispatcher: dispatcher,
		cooldown:   cooldown,
		timeFunc:   time.Now,
		logger:     log.With("component", "overdue_scheduler"),
	}
}

// SetTimeFunc replaces the clock.
func (s *OverdueScheduler) SetTimeFunc(fn func() time.Time) {
	s.timeFunc = fn
}

// Tick runs one overdue pass. It fails only when the scan fails, with an
// error tagged domain.ErrStoreUnavailable.
func (s *OverdueScheduler) Tick(ctx context.Context) (TickReport, error) {
	var report TickReport
	now := s.timeFunc()

	tasks, err := s.scans.Overdue(ctx, now)
	if err != nil {
		s.logger.Error("overdue scan failed", "error", err)
		return report, err
	}

	groups := collect(ctx, s.logger, s.dedup, tasks, domain.ChannelOverdue, s.cooldown,
		func(t domain.Task) time.Duration { return now.Sub(t.DueAt) }, &report)

	out := make([]Outgoing, 0, len(groups))
	for _, g := range groups {
		n, payload := ComposeOverdue(g.recipient, g.entries)
		out = append(out, Outgoing{Notification: n, Payload: payload})
	}
	report.record(s.dispatcher.Dispatch(ctx, out))

	s.logger.Info("overdue tick complete", report.logAttrs()...)
	return report, nil
}
