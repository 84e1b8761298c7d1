// Package store defines the persistence boundary the scheduler reads from:
// the eligible-task scan query and the contact lookup used for email. The
// interfaces keep the scheduling and caching logic independent of the
// database technology behind them.
package store
