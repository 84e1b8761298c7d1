package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redigo "github.com/gomodule/redigo/redis"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todoapp/notifier/internal/api"
	"github.com/todoapp/notifier/internal/cache"
	"github.com/todoapp/notifier/internal/config"
	"github.com/todoapp/notifier/internal/domain"
	"github.com/todoapp/notifier/internal/jobs"
	"github.com/todoapp/notifier/internal/platform/logger"
	"github.com/todoapp/notifier/internal/platform/redis"
	"github.com/todoapp/notifier/internal/store"
)

type memoryTasks struct {
	mu    sync.Mutex
	tasks []domain.Task
}

func (s *memoryTasks) FindEligibleTasks(_ context.Context, f store.TaskFilter) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Task
	for _, t := range s.tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

type memoryContacts map[uuid.UUID]domain.Contact

func (m memoryContacts) GetContact(_ context.Context, id uuid.UUID) (*domain.Contact, error) {
	c, ok := m[id]
	if !ok {
		return nil, store.ErrContactNotFound
	}
	return &c, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 0, LogLevel: "debug", ShutdownTimeout: time.Second},
		Auth:   config.AuthConfig{JWTSecret: strings.Repeat("s", 32)},
		Scheduler: config.SchedulerConfig{
			ReminderSchedule:  "*/10 * * * *",
			OverdueSchedule:   "*/30 * * * *",
			CleanupSchedule:   "0 * * * *",
			KeepAliveSchedule: "*/10 * * * *",
			ReminderHorizon:   30 * time.Minute,
			ReminderCooldown:  25 * time.Minute,
			OverdueCooldown:   60 * time.Minute,
			ScanTTL:           5 * time.Minute,
			NotificationTTL:   2 * time.Hour,
			StaleAfter:        2 * time.Hour,
			DeliveryWorkers:   2,
			DeliveryTimeout:   5 * time.Second,
			Timezone:          "Europe/Berlin",
		},
	}
}

type harness struct {
	app   *application
	tasks *memoryTasks
	redis *miniredis.Miniredis
	srv   *httptest.Server
}

func newHarness(t *testing.T, cfg *config.Config) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	pool := &redigo.Pool{
		Dial: func() (redigo.Conn, error) { return redigo.Dial("tcp", addr) },
	}
	t.Cleanup(func() { _ = pool.Close() })

	tasks := &memoryTasks{}
	app, err := newApplication(cfg, logger.Discard(), dependencies{
		tasks:    tasks,
		contacts: memoryContacts{},
		kv:       redis.NewKV(pool),
		checks: map[string]api.Check{
			"cache": func(ctx context.Context) error { return redis.Ping(ctx, pool) },
		},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(app.setupRouter())
	t.Cleanup(func() {
		app.hub.Close()
		srv.Close()
	})
	return &harness{app: app, tasks: tasks, redis: mr, srv: srv}
}

func TestNewApplication_RegistersJobs(t *testing.T) {
	h := newHarness(t, testConfig())
	ctx := context.Background()

	for _, name := range []string{jobs.JobReminder, jobs.JobOverdue, jobs.JobCleanup} {
		assert.NoError(t, h.app.runner.Run(ctx, name), name)
	}
	assert.ErrorIs(t, h.app.runner.Run(ctx, jobs.JobKeepAlive), jobs.ErrUnknownJob,
		"keepalive is only registered with a URL")
}

func TestNewApplication_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Scheduler.Timezone = "Mars/Olympus"
	_, err := newApplication(cfg, logger.Discard(), dependencies{})
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Scheduler.ReminderSchedule = "not a schedule"
	_, err = newApplication(cfg, logger.Discard(), dependencies{})
	assert.Error(t, err)
}

func TestRouter_Probes(t *testing.T) {
	h := newHarness(t, testConfig())

	resp, err := http.Get(h.srv.URL + "/api/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	resp, err = http.Get(h.srv.URL + "/api/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	h.redis.Close()
	resp, err = http.Get(h.srv.URL + "/api/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRouter_Metrics(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.app.runner.Run(context.Background(), jobs.JobOverdue))

	resp, err := http.Get(h.srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `notifier_job_runs_total{job="overdue",outcome="ok"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestRouter_InvalidateRequiresAuth(t *testing.T) {
	h := newHarness(t, testConfig())
	ctx := context.Background()
	url := h.srv.URL + "/api/internal/scans/invalidate"

	resp, err := http.Post(url, "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Populate one cached scan.
	_, err = h.app.scans.Overdue(ctx, time.Now())
	require.NoError(t, err)

	token, err := h.app.jwtService.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodPost, url, strings.NewReader(`{"type":"list.changed","entity":"list"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"invalidated":1}`, string(body))
}

func TestReminderJob_EndToEnd(t *testing.T) {
	h := newHarness(t, testConfig())
	ctx := context.Background()
	owner := uuid.New()

	task := domain.Task{
		ID:     uuid.New(),
		Title:  "Pay rent",
		DueAt:  time.Now().Add(10 * time.Minute),
		ListID: uuid.New(),
	}
	task.List = &domain.TaskList{ID: task.ListID, UserID: owner, Title: "Home"}
	h.tasks.tasks = []domain.Task{task}

	token, err := h.app.jwtService.GenerateToken(ctx, owner)
	require.NoError(t, err)

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(h.srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	require.NoError(t, ws.WriteJSON(map[string]string{"event": "authenticate", "token": token}))
	var ack struct {
		Event string `json:"event"`
	}
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, ws.ReadJSON(&ack))
	require.Equal(t, "authenticated", ack.Event)

	require.NoError(t, h.app.runner.Run(ctx, jobs.JobReminder))

	var got struct {
		Event string `json:"event"`
		Data  struct {
			Message    string `json:"message"`
			TotalTasks int    `json:"totalTasks"`
			Priority   string `json:"priority"`
		} `json:"data"`
	}
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, ws.ReadJSON(&got))
	assert.Equal(t, domain.EventTaskReminder, got.Event)
	assert.Equal(t, 1, got.Data.TotalTasks)
	assert.Contains(t, got.Data.Message, `"Pay rent"`)
	assert.Equal(t, "high", got.Data.Priority)

	assert.True(t, h.redis.Exists(cache.NotificationKey(domain.ChannelReminder, task.ID)))

	// A second tick inside the cooldown sends nothing.
	require.NoError(t, h.app.runner.Run(ctx, jobs.JobReminder))
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var again json.RawMessage
	assert.Error(t, ws.ReadJSON(&again))
}

func TestIssueAccessToken(t *testing.T) {
	cfg := testConfig()
	var out strings.Builder
	userID := uuid.New()

	require.NoError(t, issueAccessToken(context.Background(), cfg, userID.String(), &out))
	token := strings.TrimSpace(out.String())
	require.NotEmpty(t, token)

	h := newHarness(t, cfg)
	claims, err := h.app.jwtService.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	assert.Error(t, issueAccessToken(context.Background(), cfg, "not-a-uuid", &out))
}
