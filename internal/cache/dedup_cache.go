package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/todoapp/notifier/internal/domain"
	"github.com/todoapp/notifier/internal/metrics"
	"github.com/todoapp/notifier/internal/platform/logger"
)

// DefaultNotificationTTL is the safety-net expiry of a notification record.
// The effective suppression window is the per-channel cooldown.
const DefaultNotificationTTL = 2 * time.Hour

// DedupCache tracks when each task was last notified on each channel.
type DedupCache struct {
	kv       KV
	ttl      time.Duration
	timeFunc func() time.Time // Injectable for testing
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewDedupCache creates a DedupCache whose records expire after ttl.
func NewDedupCache(kv KV, ttl time.Duration, log *slog.Logger, m *metrics.Metrics) *DedupCache {
	if log == nil {
		log = logger.Discard()
	}
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	return &DedupCache{
		kv:       kv,
		ttl:      ttl,
		timeFunc: time.Now,
		logger:   log.With("component", "dedup_cache"),
		metrics:  m,
	}
}

// SetTimeFunc replaces the clock.
func (d *DedupCache) SetTimeFunc(fn func() time.Time) {
	d.timeFunc = fn
}

// NotificationKey returns the cache key of the record for (channel, task).
func NotificationKey(channel domain.Channel, taskID uuid.UUID) string {
	return KeyLastNotifPrefix + string(channel) + ":" + taskID.String()
}

// RecentlyNotified reports whether the task was notified on channel less
// than cooldown ago.
//
// It fails open: when the record cannot be read or parsed the result is
// false together with an error tagged domain.ErrCacheUnavailable, which
// callers log and otherwise ignore.
func (d *DedupCache) RecentlyNotified(
	ctx context.Context,
	taskID uuid.UUID,
	channel domain.Channel,
	cooldown time.Duration,
) (bool, error) {
	if err := channel.Validate(); err != nil {
		return false, err
	}

	raw, err := d.kv.Get(ctx, NotificationKey(channel, taskID))
	if errors.Is(err, ErrNil) {
		return false, nil
	}
	if err != nil {
		d.metrics.CacheError("dedup.read")
		return false, domain.NewOpError("dedup.read", domain.ErrCacheUnavailable, err)
	}

	last, err := parseMillis(raw)
	if err != nil {
		d.metrics.CacheError("dedup.read")
		return false, domain.NewOpError("dedup.read", domain.ErrCacheUnavailable, err)
	}

	return d.timeFunc().UnixMilli()-last < cooldown.Milliseconds(), nil
}

// MarkNotified records now as the last notification time of the task on
// channel. A failed write is returned tagged domain.ErrCacheUnavailable;
// callers treat it as a no-op.
func (d *DedupCache) MarkNotified(ctx context.Context, taskID uuid.UUID, channel domain.Channel) error {
	if err := channel.Validate(); err != nil {
		return err
	}

	now := strconv.FormatInt(d.timeFunc().UnixMilli(), 10)
	if err := d.kv.SetEx(ctx, NotificationKey(channel, taskID), []byte(now), d.ttl); err != nil {
		d.metrics.CacheError("dedup.mark")
		return domain.NewOpError("dedup.mark", domain.ErrCacheUnavailable, err)
	}
	return nil
}

func parseMillis(raw []byte) (int64, error) {
	ms, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid notification timestamp %q: %w", raw, err)
	}
	return ms, nil
}
