package cache_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redigo "github.com/gomodule/redigo/redis"
	"github.com/google/uuid"
	"github.com/todoapp/notifier/internal/domain"
	"github.com/todoapp/notifier/internal/platform/redis"
	"github.com/todoapp/notifier/internal/store"
)

var errCacheDown = errors.New("connection refused")

// failingKV fails every call.
type failingKV struct{}

func (failingKV) Get(context.Context, string) ([]byte, error) { return nil, errCacheDown }
func (failingKV) SetEx(context.Context, string, []byte, time.Duration) error {
	return errCacheDown
}
func (failingKV) DeleteMatching(context.Context, string) (int, error) { return 0, errCacheDown }
func (failingKV) ListMatching(context.Context, string) ([]string, error) {
	return nil, errCacheDown
}
func (failingKV) DeleteMany(context.Context, []string) (int, error) { return 0, errCacheDown }

// countingStore is an in-memory TaskScanStore that records every query.
type countingStore struct {
	mu      sync.Mutex
	tasks   []domain.Task
	err     error
	calls   int
	filters []store.TaskFilter
}

func (s *countingStore) FindEligibleTasks(_ context.Context, f store.TaskFilter) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.filters = append(s.filters, f)
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.Task
	for _, t := range s.tasks {
		if t.List != nil && f.Matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *countingStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// newRedisKV returns a KV backed by a miniredis instance closed with t.
func newRedisKV(t *testing.T) (*redis.KV, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	addr := s.Addr()
	pool := &redigo.Pool{
		Dial: func() (redigo.Conn, error) {
			return redigo.Dial("tcp", addr)
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
		List:   &domain.TaskList{ID: listID, UserID: owner, Title: "Inbox"},
	}
}

// fakeClock is a settable time source.
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

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
