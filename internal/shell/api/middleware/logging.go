// Package middleware provides HTTP middleware for the inventory API.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// =============================================================================
// Logging Configuration
// =============================================================================

// LogConfig holds configuration for the request logging middleware.
type LogConfig struct {
	// Logger receives one record per request. Defaults to slog.Default().
	Logger *slog.Logger

	// SkipPaths are request paths that are not logged (e.g. health checks).
	SkipPaths []string
}

// =============================================================================
// Logging Middleware
// =============================================================================

// RequestLogger writes a structured log record for every finished request.
type RequestLogger struct {
	logger *slog.Logger
	skip   map[string]struct{}
}

// NewRequestLogger creates a new request logging middleware with the given config.
func NewRequestLogger(cfg LogConfig) *RequestLogger {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}
	return &RequestLogger{logger: cfg.Logger, skip: skip}
}

// Handler returns the middleware handler function.
// Server errors are logged at error level, client errors at warn, the rest at info.
func (m *RequestLogger) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := m.skip[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		m.logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}
