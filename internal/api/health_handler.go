package api

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/todoapp/notifier/internal/platform/logger"
	"github.com/todoapp/notifier/internal/redact"
)

const (
	statusOK       = "ok"
	statusDegraded = "degraded"

	checkTimeout = 2 * time.Second
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checks map[string]Check
}

// NewHealthHandler creates a HealthHandler. checks maps a dependency name,
// e.g. "database", to its probe.
func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Ping handles GET /api/ping. It is also the keep-alive target.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, StatusResponse{Status: statusOK})
}

// Ready handles GET /api/health. Every check runs concurrently; any failure
// yields 503 with the failing dependency marked.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	log := logger.FromContext(r.Context())
	results := make(map[string]string, len(h.checks))
	var mu sync.Mutex
	var wg sync.WaitGroup

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		check := h.checks[name]
		wg.Add(1)
		go func() {
			defer wg.Done()
			status := statusOK
			if err := check(ctx); err != nil {
				status = "unavailable"
				log.Warn("readiness check failed", "check", name, redact.ErrorAttr(err))
			}
			mu.Lock()
			results[name] = status
			mu.Unlock()
		}()
	}
	wg.Wait()

	resp := StatusResponse{Status: statusOK, Checks: results}
	code := http.StatusOK
	for _, status := range results {
		if status != statusOK {
			resp.Status = statusDegraded
			code = http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, r, code, resp)
}
