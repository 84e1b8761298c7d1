package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	redigo "github.com/gomodule/redigo/redis"
	"github.com/nats-io/nats.go"

	"github.com/todoapp/notifier/internal/api"
	"github.com/todoapp/notifier/internal/config"
	"github.com/todoapp/notifier/internal/platform/natsbus"
	"github.com/todoapp/notifier/internal/platform/postgres"
	"github.com/todoapp/notifier/internal/platform/redis"
)

// connectDependencies builds the external dependencies of the application
// from open connections. The returned func closes what it opened here.
func connectDependencies(
	cfg *config.Config,
	db *sql.DB,
	pool *redigo.Pool,
	log *slog.Logger,
) (dependencies, func(), error) {
	deps := dependencies{
		tasks:    postgres.NewPostgresTaskStore(db),
		contacts: postgres.NewPostgresContactStore(db),
		kv:       redis.NewKV(pool),
		checks: map[string]api.Check{
			"database": db.PingContext,
			"cache":    func(ctx context.Context) error { return redis.Ping(ctx, pool) },
		},
	}
	closer := func() {}

	if cfg.NATS.URL != "" {
		nc, err := natsbus.Connect(cfg.NATS.URL, log)
		if err != nil {
			return dependencies{}, nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		deps.nats = nc
		deps.checks["nats"] = func(context.Context) error {
			if !nc.IsConnected() {
				return nats.ErrConnectionClosed
			}
			return nil
		}
		closer = func() {
			if err := nc.Drain(); err != nil {
				log.Error("error draining NATS connection", "error", err)
			}
		}
		log.Info("NATS mirror enabled")
	}

	return deps, closer, nil
}
