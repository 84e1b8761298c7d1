// Package testdb provides helpers for tests that need a live PostgreSQL
// database. Tests skip unless NOTIFIER_DATABASE_URL or DATABASE_URL is set.
package testdb
