package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redigo "github.com/gomodule/redigo/redis"
	"github.com/google/uuid"
	"github.com/todoapp/notifier/internal/cache"
	"github.com/todoapp/notifier/internal/delivery"
	"github.com/todoapp/notifier/internal/domain"
	"github.com/todoapp/notifier/internal/notify"
	"github.com/todoapp/notifier/internal/platform/redis"
	"github.com/todoapp/notifier/internal/store"
)

var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type memoryStore struct {
	mu    sync.Mutex
	tasks []domain.Task
	err   error
}

func (s *memoryStore) FindEligibleTasks(_ context.Context, f store.TaskFilter) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.Task
	for _, t := range s.tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

type delivered struct {
	Notification domain.GroupedNotification
	Payload      any
	Deadline     bool
}

type recordingDeliverer struct {
	mu       sync.Mutex
	calls    []delivered
	failFor  map[uuid.UUID]bool
	inFlight int
	maxSeen  int
	delay    time.Duration
}

func (d *recordingDeliverer) Deliver(ctx context.Context, n domain.GroupedNotification, payload any) delivery.Result {
	d.mu.Lock()
	d.inFlight++
	d.maxSeen = max(d.maxSeen, d.inFlight)
	d.mu.Unlock()

	if d.delay > 0 {
		time.Sleep(d.delay)
	}

	_, hasDeadline := ctx.Deadline()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.inFlight--
	d.calls = append(d.calls, delivered{n, payload, hasDeadline})
	if d.failFor[n.RecipientID] {
		return delivery.Result{
			PushErr: domain.NewOpError("deliver.push", domain.ErrDeliveryFailed, errors.New("broken pipe")),
		}
	}
	return delivery.Result{Active: true}
}

func (d *recordingDeliverer) Calls() []delivered {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]delivered(nil), d.calls...)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type failingKV struct{}

var errCacheDown = errors.New("dial tcp: connection refused")

func (failingKV) Get(context.Context, string) ([]byte, error) { return nil, errCacheDown }
func (failingKV) SetEx(context.Context, string, []byte, time.Duration) error {
	return errCacheDown
}
func (failingKV) DeleteMatching(context.Context, string) (int, error) { return 0, errCacheDown }
func (failingKV) ListMatching(context.Context, string) ([]string, error) {
	return nil, errCacheDown
}
func (failingKV) DeleteMany(context.Context, []string) (int, error) { return 0, errCacheDown }

// harness wires real caches over kv with a recording deliverer.
type harness struct {
	clock     *fakeClock
	store     *memoryStore
	deliverer *recordingDeliverer
	dedup     *cache.DedupCache
	reminder  *notify.ReminderScheduler
	overdue   *notify.OverdueScheduler
}

func newHarness(t *testing.T, kv cache.KV, cfg notify.DispatchConfig) *harness {
	t.Helper()
	h := &harness{
		clock:     &fakeClock{now: testNow},
		store:     &memoryStore{},
		deliverer: &recordingDeliverer{failFor: map[uuid.UUID]bool{}},
	}
	scans := cache.NewScanCache(kv, h.store, cache.DefaultScanCacheConfig(), nil, nil)
	h.dedup = cache.NewDedupCache(kv, cache.DefaultNotificationTTL, nil, nil)
	h.dedup.SetTimeFunc(h.clock.Now)

	dispatcher := notify.NewDispatcher(h.deliverer, h.dedup, cfg, nil)
	h.reminder = notify.NewReminderScheduler(scans, h.dedup, dispatcher, notify.DefaultReminderConfig(), nil)
	h.reminder.SetTimeFunc(h.clock.Now)
	h.overdue = notify.NewOverdueScheduler(scans, h.dedup, dispatcher, notify.DefaultOverdueCooldown, nil)
	h.overdue.SetTimeFunc(h.clock.Now)
	return h
}

func newRedisKV(t *testing.T) (*redis.KV, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	pool := &redigo.Pool{
		Dial: func() (redigo.Conn, error) {
			return redigo.Dial("tcp", s.Addr())
		},
	}
	t.Cleanup(func() { _ = pool.Close() })
	return redis.NewKV(pool), s
}

func newTask(title string, due time.Time, owner uuid.UUID) domain.Task {
	listID := uuid.New()
	return domain.Task{
		ID:     uuid.New(),
		Title:  title,
		DueAt:  due,
		ListID: listID,
		List:   &domain.TaskList{ID: listID, UserID: owner, Title: "Home"},
	}
}
