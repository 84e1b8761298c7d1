// Package postgres provides PostgreSQL implementations of the read-side
// store interfaces defined in internal/store, plus the embedded goose
// migrations for the tables they read.
package postgres
