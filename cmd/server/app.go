package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/todoapp/notifier/internal/api"
	"github.com/todoapp/notifier/internal/cache"
	"github.com/todoapp/notifier/internal/config"
	"github.com/todoapp/notifier/internal/delivery"
	"github.com/todoapp/notifier/internal/events"
	"github.com/todoapp/notifier/internal/jobs"
	"github.com/todoapp/notifier/internal/metrics"
	"github.com/todoapp/notifier/internal/notify"
	"github.com/todoapp/notifier/internal/platform/natsbus"
	"github.com/todoapp/notifier/internal/platform/realtime"
	"github.com/todoapp/notifier/internal/platform/smtp"
	"github.com/todoapp/notifier/internal/service/auth"
	"github.com/todoapp/notifier/internal/store"
)

// dependencies are the external systems the application talks to. Tests
// substitute in-memory stores and miniredis.
type dependencies struct {
	tasks    store.TaskScanStore
	contacts store.ContactStore
	kv       cache.KV
	checks   map[string]api.Check

	// nats is optional; nil disables the mirror and the change listener.
	nats *nats.Conn
}

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	registry *prometheus.Registry
	metrics  *metrics.Metrics

	jwtService auth.JWTService

	scans        *cache.ScanCache
	dedup        *cache.DedupCache
	janitor      *cache.Janitor
	invalidation *cache.InvalidationHandler
	emitter      *events.Bus
	listener     *natsbus.ChangeListener
	nats         *nats.Conn

	hub      *realtime.Hub
	fanout   *delivery.Fanout
	reminder *notify.ReminderScheduler
	overdue  *notify.OverdueScheduler
	runner   *jobs.Runner

	checks map[string]api.Check
}

// newApplication wires every component. Nothing is started.
func newApplication(cfg *config.Config, log *slog.Logger, deps dependencies) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   log,
		registry: prometheus.NewRegistry(),
		nats:     deps.nats,
		checks:   deps.checks,
	}
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(app.registry)

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler timezone %q: %w", cfg.Scheduler.Timezone, err)
	}

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	// Caches
	app.scans = cache.NewScanCache(deps.kv, deps.tasks, cache.ScanCacheConfig{
		TTL:         cfg.Scheduler.ScanTTL,
		Granularity: time.Minute,
	}, log, app.metrics)
	app.dedup = cache.NewDedupCache(deps.kv, cfg.Scheduler.NotificationTTL, log, app.metrics)
	app.janitor = cache.NewJanitor(deps.kv, cfg.Scheduler.StaleAfter, log, app.metrics)

	// Invalidation: HTTP applies directly, NATS goes through the emitter
	app.invalidation = cache.NewInvalidationHandler(app.scans, log)
	app.emitter = events.NewBus(log)
	app.emitter.Subscribe(app.invalidation, events.TypeTaskChanged, events.TypeListChanged)

	// Delivery
	app.hub = realtime.NewHub(delivery.NewRegistry(), app.jwtService, log)
	var pusher delivery.Pusher = app.hub
	if deps.nats != nil {
		pusher = delivery.MultiPusher{app.hub, natsbus.NewPublisher(deps.nats, log)}
		app.listener = natsbus.NewChangeListener(app.emitter, log)
	}

	mailer, err := newMailer(cfg.SMTP, log)
	if err != nil {
		return nil, err
	}
	app.fanout = delivery.NewFanout(pusher, mailer, deps.contacts, log,
		delivery.WithLocation(loc),
		delivery.WithMetrics(app.metrics))

	// Schedulers
	dispatcher := notify.NewDispatcher(app.fanout, app.dedup, notify.DispatchConfig{
		Workers: cfg.Scheduler.DeliveryWorkers,
		Timeout: cfg.Scheduler.DeliveryTimeout,
	}, log)
	app.reminder = notify.NewReminderScheduler(app.scans, app.dedup, dispatcher, notify.ReminderConfig{
		Horizon:  cfg.Scheduler.ReminderHorizon,
		Cooldown: cfg.Scheduler.ReminderCooldown,
	}, log)
	app.overdue = notify.NewOverdueScheduler(app.scans, app.dedup, dispatcher, cfg.Scheduler.OverdueCooldown, log)

	app.runner = jobs.NewRunner(loc, log, app.metrics)
	if err := app.registerJobs(); err != nil {
		return nil, err
	}

	log.Info("application initialized",
		"timezone", loc.String(),
		"delivery_workers", cfg.Scheduler.DeliveryWorkers,
		"nats_mirror", deps.nats != nil)
	return app, nil
}

func newMailer(cfg config.SMTPConfig, log *slog.Logger) (delivery.Mailer, error) {
	if !cfg.Enabled() {
		log.Info("SMTP not configured, email delivery disabled")
		return delivery.Disabled{Logger: log}, nil
	}
	m, err := smtp.NewMailer(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}
	return m, nil
}

func (app *application) registerJobs() error {
	sc := app.config.Scheduler
	list := []jobs.Job{
		{
			Name:     jobs.JobReminder,
			Schedule: sc.ReminderSchedule,
			Run: func(ctx context.Context) error {
				_, err := app.reminder.Tick(ctx)
				return err
			},
		},
		{
			Name:     jobs.JobOverdue,
			Schedule: sc.OverdueSchedule,
			Run: func(ctx context.Context) error {
				_, err := app.overdue.Tick(ctx)
				return err
			},
		},
		{
			Name:     jobs.JobCleanup,
			Schedule: sc.CleanupSchedule,
			Run: func(ctx context.Context) error {
				_, err := app.janitor.Sweep(ctx)
				return err
			},
		},
	}
	if sc.KeepAliveURL != "" {
		list = append(list, jobs.Job{
			Name:     jobs.JobKeepAlive,
			Schedule: sc.KeepAliveSchedule,
			Run:      jobs.KeepAlive(sc.KeepAliveURL, &http.Client{Timeout: 10 * time.Second}),
		})
	}

	for _, job := range list {
		if err := app.runner.Add(job); err != nil {
			return fmt.Errorf("failed to register job %s: %w", job.Name, err)
		}
	}
	return nil
}

// Run starts the jobs, the change listener, and the HTTP server, and blocks
// until ctx is canceled or the server fails.
func (app *application) Run(ctx context.Context) error {
	if app.listener != nil {
		if err := app.listener.Start(app.nats); err != nil {
			return err
		}
	}
	app.runner.Start()

	err := app.startHTTPServer(ctx, app.setupRouter())
	app.cleanup()
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops background work. In-flight ticks get the shutdown timeout
// to finish.
func (app *application) cleanup() {
	if app.listener != nil {
		if err := app.listener.Stop(); err != nil {
			app.logger.Error("error stopping change listener", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout())
	defer cancel()
	if err := app.runner.Stop(ctx); err != nil {
		app.logger.Warn("jobs still running at shutdown", "error", err)
	}

	app.logger.Info("application shutdown completed")
}

func (app *application) shutdownTimeout() time.Duration {
	if d := app.config.Server.ShutdownTimeout; d > 0 {
		return d
	}
	return 15 * time.Second
}
