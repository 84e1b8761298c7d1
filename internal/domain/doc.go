// Package domain contains the core entities of the notifier: tasks and the
// lists that own them, notification channels and priorities, and the
// per-recipient notification aggregate built during a scheduler tick.
// It is independent of any storage, cache, or delivery mechanism.
package domain
