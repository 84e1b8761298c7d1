// Package main runs the todo notifier: the reminder, overdue, and cache
// cleanup jobs, the websocket endpoint clients receive notifications on,
// and the small internal HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "time/tzdata" // scheduler.timezone must resolve in minimal containers

	"github.com/google/uuid"

	"github.com/todoapp/notifier/internal/config"
	"github.com/todoapp/notifier/internal/platform/logger"
	"github.com/todoapp/notifier/internal/platform/postgres"
	"github.com/todoapp/notifier/internal/platform/redis"
	"github.com/todoapp/notifier/internal/redact"
	"github.com/todoapp/notifier/internal/service/auth"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		slog.Error("notifier exited with error", redact.ErrorAttr(err))
		os.Exit(1)
	}
}

// run parses flags, loads configuration, and either performs a one-off
// command (-migrate, -issue-token) or serves until SIGINT/SIGTERM.
func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("notifier", flag.ContinueOnError)
	migrateCmd := fs.String("migrate", "", "run a migration command and exit: up, down, status, version")
	issueToken := fs.String("issue-token", "", "print an access token for the given user ID and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database", redact.URL(cfg.Database.URL),
		"redis", cfg.Redis.Addr,
		"smtp_enabled", cfg.SMTP.Enabled(),
		"nats", redact.URL(cfg.NATS.URL))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *issueToken != "" {
		return issueAccessToken(ctx, cfg, *issueToken, stdout)
	}

	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database connection", "error", err)
		}
	}()

	if *migrateCmd != "" {
		return handleMigrations(ctx, db, *migrateCmd, log)
	}
	if cfg.Database.AutoMigrate {
		if err := handleMigrations(ctx, db, "up", log); err != nil {
			return err
		}
	}

	pool := redis.NewPool(cfg.Redis)
	defer func() { _ = pool.Close() }()
	if err := redis.Ping(ctx, pool); err != nil {
		// Cache reads fail open, so the service can still notify.
		log.Warn("redis unreachable at startup", redact.ErrorAttr(err))
	}

	deps, closeDeps, err := connectDependencies(cfg, db, pool, log)
	if err != nil {
		return err
	}
	defer closeDeps()

	app, err := newApplication(cfg, log, deps)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

// issueAccessToken prints a signed access token for userID. Operators use
// it to call the internal endpoints and to test websocket clients.
func issueAccessToken(ctx context.Context, cfg *config.Config, userID string, out io.Writer) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID %q: %w", userID, err)
	}
	svc, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return err
	}
	token, err := svc.GenerateToken(ctx, id)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
