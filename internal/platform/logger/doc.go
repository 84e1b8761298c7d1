// Package logger builds the process-wide slog JSON logger from config and
// carries scoped loggers through context.Context: HTTP requests get one
// tagged with their trace ID, scheduler runs one tagged with the job name.
package logger
