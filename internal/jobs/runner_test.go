package jobs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/todoapp/notifier/internal/metrics"
)

func TestRunner_Add(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	noop := func(context.Context) error { return nil }

	require.NoError(t, r.Add(Job{Name: JobReminder, Schedule: "*/10 * * * *", Run: noop}))
	require.NoError(t, r.Add(Job{Name: JobCleanup, Schedule: "@hourly", Run: noop}))

	err := r.Add(Job{Name: JobReminder, Schedule: "*/10 * * * *", Run: noop})
	assert.ErrorContains(t, err, "already registered")

	err = r.Add(Job{Name: JobOverdue, Schedule: "every half hour", Run: noop})
	assert.ErrorContains(t, err, "invalid schedule")

	err = r.Add(Job{Name: JobOverdue, Schedule: "*/30 * * * * *", Run: noop})
	assert.Error(t, err, "six-field schedules are rejected")

	assert.Error(t, r.Add(Job{Schedule: "@hourly", Run: noop}))
	assert.Len(t, r.cron.Entries(), 2)
}

func TestRunner_Run(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRunner(time.UTC, nil, metrics.New(reg))
	boom := errors.New("boom")

	var calls atomic.Int32
	require.NoError(t, r.Add(Job{Name: "ok", Schedule: "@daily", Run: func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}}))
	require.NoError(t, r.Add(Job{Name: "bad", Schedule: "@daily", Run: func(context.Context) error {
		return boom
	}}))

	require.NoError(t, r.Run(context.Background(), "ok"))
	assert.Equal(t, int32(1), calls.Load())
	assert.ErrorIs(t, r.Run(context.Background(), "bad"), boom)
	assert.ErrorIs(t, r.Run(context.Background(), "missing"), ErrUnknownJob)

	n, err := testutil.GatherAndCount(reg, "notifier_job_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRunner_StopWaitsForRunningJobs(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	require.NoError(t, r.Add(Job{Name: "slow", Schedule: "@every 1s", Run: func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		finished.Store(true)
		return nil
	}}))
	r.Start()

	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("job never started")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, r.Stop(ctx), "grace period expires while the job is blocked")

	close(release)
	assert.Eventually(t, finished.Load, time.Second, 10*time.Millisecond)
}

func TestRunner_StopIdle(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	r.Start()
	assert.NoError(t, r.Stop(context.Background()))
	assert.Error(t, r.ctx.Err(), "job context is cancelled after stop")
}

func TestKeepAlive(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "/api/ping", req.URL.Path)
		w.WriteHeader(status)
	}))
	defer srv.Close()

	job := KeepAlive(srv.URL+"/api/ping", srv.Client())
	require.NoError(t, job(context.Background()))

	status = http.StatusServiceUnavailable
	assert.ErrorContains(t, job(context.Background()), "503")

	srv.Close()
	assert.Error(t, job(context.Background()))
}
