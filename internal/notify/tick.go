package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/todoapp/notifier/internal/domain"
)

// Scanner returns scan-eligible tasks. *cache.ScanCache implements it.
type Scanner interface {
	DueSoon(ctx context.Context, now, horizon time.Time) ([]domain.Task, error)
	Overdue(ctx context.Context, now time.Time) ([]domain.Task, error)
}

// TickReport summarizes one scheduler run.
type TickReport struct {
	Scanned    int // tasks returned by the scan
	Unrouted   int // skipped because the owning list was missing
	Suppressed int // skipped because of the cooldown
	DedupErrs  int // cooldown checks that failed open
	Recipients int
	Notified   int // tasks included in a notification
	Failed     int // recipients with a push or email failure
	MarkErrs   int
	Outcomes   []Outcome
}

type recipientGroup struct {
	recipient uuid.UUID
	entries   []domain.NotificationEntry
}

// collect drops unroutable and recently notified tasks and groups the rest
// by recipient, in order of first appearance. duration computes the entry
// duration for a task.
func collect(
	ctx context.Context,
	log *slog.Logger,
	dedup Deduper,
	tasks []domain.Task,
	channel domain.Channel,
	cooldown time.Duration,
	duration func(domain.Task) time.Duration,
	report *TickReport,
) []recipientGroup {
	report.Scanned = len(tasks)

	var groups []recipientGroup
	index := make(map[uuid.UUID]int)

	for _, task := range tasks {
		recipient, ok := task.Recipient()
		if !ok {
			report.Unrouted++
			continue
		}

		recent, err := dedup.RecentlyNotified(ctx, task.ID, channel, cooldown)
		if err != nil {
			report.DedupErrs++
			log.Warn("cooldown check failed, notifying anyway",
				"task_id", task.ID,
				"error", err)
		}
		if recent {
			report.Suppressed++
			continue
		}

		i, ok := index[recipient]
		if !ok {
			i = len(groups)
			index[recipient] = i
			groups = append(groups, recipientGroup{recipient: recipient})
		}
		groups[i].entries = append(groups[i].entries, domain.NotificationEntry{
			Task:     task,
			Duration: duration(task),
		})
	}
	return groups
}

// record folds dispatch outcomes into the report.
func (r *TickReport) record(outcomes []Outcome) {
	r.Outcomes = outcomes
	r.Recipients = len(outcomes)
	for _, o := range outcomes {
		r.Notified += o.Tasks
		r.MarkErrs += o.MarkErrors
		if o.Result.Err() != nil {
			r.Failed++
		}
	}
}

func (r *TickReport) logAttrs() []any {
	return []any{
		"scanned", r.Scanned,
		"unrouted", r.Unrouted,
		"suppressed", r.Suppressed,
		"recipients", r.Recipients,
		"notified", r.Notified,
		"failed", r.Failed,
		"dedup_errors", r.DedupErrs,
		"mark_errors", r.MarkErrs,
	}
}
