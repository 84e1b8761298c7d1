package cache

import (
	"context"
	"errors"
	"time"
)

// Key namespaces. Scan keys are suffixed with window bounds in Unix
// milliseconds; notification keys with "<channel>:<task id>".
const (
	KeyDueTasks        = "cron:due_tasks"
	KeyOverdueTasks    = "cron:overdue_tasks"
	KeyLastNotifPrefix = "cron:last_notif:"
)

// ErrNil is returned by KV.Get when the key does not exist.
var ErrNil = errors.New("cache: key not found")

// KV is the key-value store the caches are built on. Any call may fail;
// callers degrade instead of failing their operation.
// Version: 1.0
type KV interface {
	// Get returns the value stored at key, or ErrNil.
	Get(ctx context.Context, key string) ([]byte, error)

	// SetEx stores value at key with the given expiry.
	SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// DeleteMatching removes every key matching the glob pattern and
	// returns how many were removed.
	DeleteMatching(ctx context.Context, pattern string) (int, error)

	// ListMatching returns every key matching the glob pattern.
	ListMatching(ctx context.Context, pattern string) ([]string, error)

	// DeleteMany removes the given keys in one operation and returns how
	// many existed.
	DeleteMany(ctx context.Context, keys []string) (int, error)
}
