package slogx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/probatio/probatio/pkg/idx"
)

// HTTPMiddleware logs requests and attaches a contextual logger into request context.
func HTTPMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			// Generate a request ID if not provided via X-Request-ID header
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = idx.New().String()
			}

			// Create contextual logger. The path is logged without the token
			// segment: bearer tokens must never land in log storage.
			logger := base.With(
				"req_id", reqID,
				"method", r.Method,
				"path", redactTokenSegment(r.URL.Path),
				"remote_addr", r.RemoteAddr,
			)

			// Attach to context for downstream use
			ctx := WithContext(r.Context(), logger)
			r = r.WithContext(ctx)

			// Serve request
			next.ServeHTTP(rw, r)

			duration := time.Since(start).Milliseconds()
			logger.Info("http_request",
				"status", rw.status,
				"duration_ms", duration,
				"user_agent", r.UserAgent(),
			)
		})
	}
}

// redactTokenSegment masks the opaque token path segment on the public
// surfaces (/v1/sign/{token}/... and /v1/rebuttal/{token}/...).
func redactTokenSegment(path string) string {
	const mask = "{token}"

	for _, prefix := range []string{"/v1/sign/", "/v1/rebuttal/"} {
		if len(path) <= len(prefix) || path[:len(prefix)] != prefix {
			continue
		}
		rest := path[len(prefix):]
		for i := range len(rest) {
			if rest[i] == '/' {
				return prefix + mask + rest[i:]
			}
		}
		return prefix + mask
	}
	return path
}

type responseWriter struct {
	http.ResponseWriter

	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
