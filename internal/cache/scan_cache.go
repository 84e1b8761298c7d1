package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/todoapp/notifier/internal/domain"
	"github.com/todoapp/notifier/internal/metrics"
	"github.com/todoapp/notifier/internal/platform/logger"
	"github.com/todoapp/notifier/internal/store"
)

// Scan kinds, used in keys, logs and metrics.
const (
	ScanDueSoon = "due_soon"
	ScanOverdue = "overdue"
)

// ScanCacheConfig configures a ScanCache.
type ScanCacheConfig struct {
	// TTL is the lifetime of a cached scan result.
	TTL time.Duration

	// Granularity widens scan windows to whole units before building the
	// key and querying the store, so scans inside the same unit share one
	// entry. Results are still filtered to the exact requested bounds.
	// Zero disables widening.
	Granularity time.Duration
}

// DefaultScanCacheConfig returns the five-minute, minute-granularity policy.
func DefaultScanCacheConfig() ScanCacheConfig {
	return ScanCacheConfig{
		TTL:         5 * time.Minute,
		Granularity: time.Minute,
	}
}

// ScanCache is a time-windowed read-through cache over the due-soon and
// overdue scans.
type ScanCache struct {
	kv      KV
	store   store.TaskScanStore
	config  ScanCacheConfig
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewScanCache creates a ScanCache. A nil logger discards output; nil
// metrics disable instrumentation.
func NewScanCache(
	kv KV,
	taskStore store.TaskScanStore,
	config ScanCacheConfig,
	log *slog.Logger,
	m *metrics.Metrics,
) *ScanCache {
	if log == nil {
		log = logger.Discard()
	}
	if config.TTL <= 0 {
		config.TTL = DefaultScanCacheConfig().TTL
	}
	return &ScanCache{
		kv:      kv,
		store:   taskStore,
		config:  config,
		logger:  log.With("component", "scan_cache"),
		metrics: m,
	}
}

// DueSoon returns eligible tasks due in [now, horizon].
//
// Only a store failure is returned, tagged domain.ErrStoreUnavailable;
// cache failures fall through to the store.
func (c *ScanCache) DueSoon(ctx context.Context, now, horizon time.Time) ([]domain.Task, error) {
	from, to := c.floor(now), c.ceil(horizon)
	key := fmt.Sprintf("%s:%d:%d", KeyDueTasks, from.UnixMilli(), to.UnixMilli())
	return c.scan(ctx, ScanDueSoon, key, store.DueBetween(from, to), store.DueBetween(now, horizon))
}

// Overdue returns eligible tasks due strictly before now.
func (c *ScanCache) Overdue(ctx context.Context, now time.Time) ([]domain.Task, error) {
	before := c.ceil(now)
	key := fmt.Sprintf("%s:%d", KeyOverdueTasks, before.UnixMilli())
	return c.scan(ctx, ScanOverdue, key, store.DueBefore(before), store.DueBefore(now))
}

// Invalidate drops every cached scan of both kinds and returns how many
// entries were removed. Writers call it after changing tasks or lists.
func (c *ScanCache) Invalidate(ctx context.Context) (int, error) {
	total := 0
	for _, prefix := range []string{KeyDueTasks, KeyOverdueTasks} {
		n, err := c.kv.DeleteMatching(ctx, prefix+"*")
		total += n
		if err != nil {
			c.metrics.CacheError("scan.invalidate")
			return total, domain.NewOpError("scan.invalidate", domain.ErrCacheUnavailable, err)
		}
	}
	c.logger.Debug("invalidated scan cache", "deleted", total)
	return total, nil
}

func (c *ScanCache) scan(
	ctx context.Context,
	kind, key string,
	query, exact store.TaskFilter,
) ([]domain.Task, error) {
	log := c.logger.With("scan", kind, "cache_key", key)

	tasks, hit := c.lookup(ctx, log, kind, key)
	if !hit {
		var err error
		tasks, err = c.store.FindEligibleTasks(ctx, query)
		if err != nil {
			return nil, domain.NewOpError("scan."+kind, domain.ErrStoreUnavailable, err)
		}
		c.populate(ctx, log, key, tasks)
	}

	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if exact.Matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// lookup reports a hit only when the entry exists and decodes cleanly.
func (c *ScanCache) lookup(ctx context.Context, log *slog.Logger, kind, key string) ([]domain.Task, bool) {
	raw, err := c.kv.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNil):
		c.metrics.ScanLookup(kind, metrics.LookupMiss)
		log.Debug("scan cache miss")
		return nil, false
	case err != nil:
		c.metrics.ScanLookup(kind, metrics.LookupError)
		log.Warn("scan cache read failed, querying store", "error", err)
		return nil, false
	}

	var tasks []domain.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		c.metrics.ScanLookup(kind, metrics.LookupError)
		log.Warn("scan cache entry unreadable, querying store", "error", err)
		return nil, false
	}

	c.metrics.ScanLookup(kind, metrics.LookupHit)
	log.Debug("scan cache hit", "tasks", len(tasks))
	return tasks, true
}

// populate writes a fresh store result back. Failures are logged only.
func (c *ScanCache) populate(ctx context.Context, log *slog.Logger, key string, tasks []domain.Task) {
	raw, err := json.Marshal(tasks)
	if err != nil {
		log.Warn("failed to encode scan result", "error", err)
		return
	}
	if err := c.kv.SetEx(ctx, key, raw, c.config.TTL); err != nil {
		c.metrics.CacheError("scan.write")
		log.Warn("failed to cache scan result", "error", err)
	}
}

func (c *ScanCache) floor(t time.Time) time.Time {
	if c.config.Granularity <= 0 {
		return t
	}
	return t.Truncate(c.config.Granularity)
}

func (c *ScanCache) ceil(t time.Time) time.Time {
	f := c.floor(t)
	if f.Equal(t) {
		return f
	}
	return f.Add(c.config.Granularity)
}
