// Package notify contains the reminder and overdue schedulers.
//
// Each tick scans for tasks through the scan cache, drops tasks that were
// notified on the same channel within the cooldown, groups the rest by the
// owner of their list, composes one message per owner, and hands the
// groups to a Dispatcher. The Dispatcher delivers each group in isolation
// and then records the notification for every task in it.
package notify
