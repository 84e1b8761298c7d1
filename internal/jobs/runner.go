package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/todoapp/notifier/internal/metrics"
	"github.com/todoapp/notifier/internal/platform/logger"
)

// Job names.
const (
	JobReminder  = "reminder"
	JobOverdue   = "overdue"
	JobCleanup   = "cache-cleanup"
	JobKeepAlive = "keepalive"
)

// ErrUnknownJob is returned by Run for a name that was never added.
var ErrUnknownJob = errors.New("unknown job")

// Func is the body of a job.
type Func func(ctx context.Context) error

// Job is a named function on a cron schedule.
type Job struct {
	Name string
	// Schedule is a standard five-field cron expression or a descriptor
	// such as "@hourly" or "@every 10m".
	Schedule string
	Run      Func
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Runner schedules jobs.
type Runner struct {
	cron    *cron.Cron
	logger  *slog.Logger
	metrics *metrics.Metrics

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.RWMutex
	jobs map[string]Job
}

// NewRunner creates a Runner evaluating schedules in loc.
func NewRunner(loc *time.Location, log *slog.Logger, m *metrics.Metrics) *Runner {
	if log == nil {
		log = logger.Discard()
	}
	if loc == nil {
		loc = time.UTC
	}
	log = log.With("component", "job_runner")
	cl := cronLogger{logger: log}

	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		logger:  log,
		metrics: m,
		ctx:     ctx,
		cancel:  cancel,
		jobs:    make(map[string]Job),
	}
}

// Add registers job. Names must be unique.
func (r *Runner) Add(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("job needs a name and a function")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.jobs[job.Name]; dup {
		return fmt.Errorf("job %q already registered", job.Name)
	}

	schedule, err := parser.Parse(job.Schedule)
	if err != nil {
		return fmt.Errorf("job %q: invalid schedule %q: %w", job.Name, job.Schedule, err)
	}
	r.cron.Schedule(schedule, cron.FuncJob(func() {
		_ = r.execute(r.ctx, job)
	}))
	r.jobs[job.Name] = job

	r.logger.Info("scheduled job", "job", job.Name, "schedule", job.Schedule)
	return nil
}

// Start begins scheduling in the background.
func (r *Runner) Start() {
	r.cron.Start()
}

// Stop stops scheduling new runs and waits for running ones until ctx is
// done, after which their context is cancelled.
func (r *Runner) Stop(ctx context.Context) error {
	done := r.cron.Stop()
	defer r.cancel()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("jobs still running at shutdown: %w", ctx.Err())
	}
}

// Run executes the named job once, synchronously.
func (r *Runner) Run(ctx context.Context, name string) error {
	r.mu.RLock()
	job, ok := r.jobs[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}
	return r.execute(ctx, job)
}

func (r *Runner) execute(ctx context.Context, job Job) error {
	log := r.logger.With("job", job.Name)
	ctx = logger.WithLogger(ctx, log)

	start := time.Now()
	err := job.Run(ctx)
	elapsed := time.Since(start)
	r.metrics.JobRun(job.Name, elapsed, err)

	if err != nil {
		log.Error("job failed", "error", err, "duration", elapsed)
		return err
	}
	log.Debug("job finished", "duration", elapsed)
	return nil
}
