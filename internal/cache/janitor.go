package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/todoapp/notifier/internal/domain"
	"github.com/todoapp/notifier/internal/metrics"
	"github.com/todoapp/notifier/internal/platform/logger"
)

// DefaultStaleAfter is the age past which the janitor evicts a record.
const DefaultStaleAfter = 2 * time.Hour

// SweepReport summarizes one janitor pass.
type SweepReport struct {
	Scanned int // keys listed
	Stale   int // older than the stale threshold
	Corrupt int // unparseable or unreadable
	Deleted int // keys the cache reported as removed
}

// Janitor evicts notification records that are older than the stale
// threshold or cannot be parsed. It bounds cache growth only; cooldown
// checks never depend on it.
type Janitor struct {
	kv         KV
	staleAfter time.Duration
	timeFunc   func() time.Time
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewJanitor creates a Janitor.
func NewJanitor(kv KV, staleAfter time.Duration, log *slog.Logger, m *metrics.Metrics) *Janitor {
	if log == nil {
		log = logger.Discard()
	}
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &Janitor{
		kv:         kv,
		staleAfter: staleAfter,
		timeFunc:   time.Now,
		logger:     log.With("component", "cache_janitor"),
		metrics:    m,
	}
}

// SetTimeFunc replaces the clock.
func (j *Janitor) SetTimeFunc(fn func() time.Time) {
	j.timeFunc = fn
}

// Sweep lists every notification record, marks stale and corrupt ones, and
// deletes them in a single batch. Enumeration and deletion errors are
// returned tagged domain.ErrCacheUnavailable and are not retried.
func (j *Janitor) Sweep(ctx context.Context) (SweepReport, error) {
	var report SweepReport

	keys, err := j.kv.ListMatching(ctx, KeyLastNotifPrefix+"*")
	if err != nil {
		j.metrics.CacheError("janitor.list")
		return report, domain.NewOpError("janitor.list", domain.ErrCacheUnavailable, err)
	}
	report.Scanned = len(keys)
	if len(keys) == 0 {
		return report, nil
	}

	now := j.timeFunc().UnixMilli()
	threshold := j.staleAfter.Milliseconds()
	var doomed []string

	for _, key := range keys {
		raw, err := j.kv.Get(ctx, key)
		if errors.Is(err, ErrNil) {
			// expired between list and read
			continue
		}
		if err != nil {
			report.Corrupt++
			doomed = append(doomed, key)
			continue
		}

		ts, err := parseMillis(raw)
		if err != nil {
			report.Corrupt++
			doomed = append(doomed, key)
			continue
		}
		if now-ts > threshold {
			report.Stale++
			doomed = append(doomed, key)
		}
	}

	if len(doomed) == 0 {
		return report, nil
	}

	n, err := j.kv.DeleteMany(ctx, doomed)
	if err != nil {
		j.metrics.CacheError("janitor.delete")
		return report, domain.NewOpError("janitor.delete", domain.ErrCacheUnavailable, err)
	}
	report.Deleted = n
	j.metrics.Evicted(n)

	j.logger.Info("cleaned up notification records",
		"scanned", report.Scanned,
		"stale", report.Stale,
		"corrupt", report.Corrupt,
		"deleted", report.Deleted)
	return report, nil
}
