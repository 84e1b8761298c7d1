package jobs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/todoapp/notifier/internal/platform/logger"
)

// KeepAlive returns a job that GETs url and fails on a non-2xx answer. It
// keeps hosting platforms that idle inactive services from suspending the
// process between ticks.
func KeepAlive(url string, client *http.Client) Func {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("keepalive: build request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("keepalive: %w", err)
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("keepalive: %s answered %d", url, resp.StatusCode)
		}
		logger.FromContext(ctx).Debug("keepalive ok", "url", url, "status", resp.StatusCode)
		return nil
	}
}
