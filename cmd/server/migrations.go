package main

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/todoapp/notifier/internal/platform/postgres"
)

// handleMigrations runs one goose command against the embedded migrations.
func handleMigrations(ctx context.Context, db *sql.DB, command string, log *slog.Logger) error {
	start := time.Now()
	log.Info("executing migrations", "command", command)

	if err := postgres.Migrate(ctx, db, command, log); err != nil {
		log.Error("migration failed",
			"command", command,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return err
	}

	log.Info("migrations completed",
		"command", command,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}
