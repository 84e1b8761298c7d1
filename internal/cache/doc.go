// Package cache implements the two caches the schedulers rely on and the
// janitor that keeps them bounded.
//
// ScanCache is a read-through accelerator over the due-soon and overdue scan
// queries; the task store stays authoritative and is consulted whenever the
// cache misses or fails. DedupCache is the per-task, per-channel cooldown
// tracker; it fails open, so an unavailable cache can cause a duplicate
// notification but never suppresses one. Janitor periodically evicts stale
// or corrupt notification records.
//
// All three talk to a KV, implemented over Redis in internal/platform/redis.
package cache
