package middleware

import (
	"log/slog"
	"net/http"

	"github.com/todoapp/notifier/internal/api/shared"
	"github.com/todoapp/notifier/internal/platform/logger"
)

// maxTraceIDLength bounds an upstream trace ID before it is trusted.
const maxTraceIDLength = 64

// Trace adds a trace ID and a request-scoped logger to the request context.
// An upstream X-Trace-Id is reused when present. Apply it early in the chain.
func Trace(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if upstream := r.Header.Get(shared.TraceIDHeader); upstream != "" && len(upstream) <= maxTraceIDLength {
				ctx = shared.WithTraceID(ctx, upstream)
			} else {
				ctx = shared.SetTraceID(ctx)
			}
			traceID := shared.GetTraceID(ctx)

			log := base.With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, log)
			w.Header().Set(shared.TraceIDHeader, traceID)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
