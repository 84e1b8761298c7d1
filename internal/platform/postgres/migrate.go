package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	migrationsDir   = "migrations"
	migrationsTable = "schema_migrations"
)

// Migration commands accepted by Migrate.
var migrateCommands = map[string]bool{
	"up":      true,
	"down":    true,
	"status":  true,
	"version": true,
}

// gooseLogger adapts the goose logger interface to slog.
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf logs at error level and does not exit; goose returns the error to
// the caller as well.
func (l gooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

// Migrate runs a goose command against the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB, command string, log *slog.Logger) error {
	if !migrateCommands[command] {
		return fmt.Errorf("unsupported migration command %q", command)
	}
	if log == nil {
		log = slog.Default()
	}

	goose.SetBaseFS(migrationsFS)
	goose.SetTableName(migrationsTable)
	goose.SetLogger(gooseLogger{logger: log.With("component", "migrations")})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.RunContext(ctx, command, db, migrationsDir); err != nil {
		return fmt.Errorf("goose %s failed: %w", command, MapError(err))
	}
	return nil
}
