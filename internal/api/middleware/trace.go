package middleware

import (
	"log/slog"
	"net/http"

	"github.com/daytask/daytask-api/internal/api/shared"
	"github.com/daytask/daytask-api/internal/platform/logger"
)

// NewTraceMiddleware returns middleware that adds a trace ID to the request
// context and attaches a trace-scoped child of the given logger for
// downstream handlers and stores. Apply it early in the middleware chain so
// all subsequent handlers see the trace ID.
func NewTraceMiddleware(baseLogger *slog.Logger) func(http.Handler) http.Handler {
	if baseLogger == nil {
		baseLogger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			traceID := shared.GetTraceID(ctx)

			log := baseLogger.With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, log)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TraceMiddleware adds a trace ID to the request context using the default
// logger. Prefer NewTraceMiddleware when a configured logger is available.
func TraceMiddleware(next http.Handler) http.Handler {
	return NewTraceMiddleware(slog.Default())(next)
}
