package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"gymhub/internal/adapters/http/perf"
)

// DefaultSlowRequest is the threshold above which requests log at WARN.
const DefaultSlowRequest = 200 * time.Millisecond

var requestIDCounter atomic.Uint64

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader records code and delegates to the wrapped writer.
func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Unwrap exposes the wrapped writer to http.ResponseController.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// Timing logs request duration and records it to collector when non-nil.
// Requests under /static/ are skipped. Requests at or above threshold log
// at WARN as slow_request, others at DEBUG.
func Timing(collector *perf.Collector, threshold time.Duration) func(http.Handler) http.Handler {
	if threshold <= 0 {
		threshold = DefaultSlowRequest
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if strings.HasPrefix(path, "/static/") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			elapsed := time.Since(start)
			durationMs := float64(elapsed.Microseconds()) / 1000.0
			attrs := []any{
				"request_id", requestIDCounter.Add(1),
				"method", r.Method,
				"path", path,
				"status", sw.status,
				"duration_ms", durationMs,
			}
			if elapsed >= threshold {
				slog.Warn("slow_request", attrs...)
			} else {
				slog.Debug("request", attrs...)
			}

			if collector != nil {
				collector.Record(perf.Entry{
					Kind:       perf.KindRequest,
					Path:       r.Method + " " + routeLabel(r),
					StatusCode: sw.status,
					DurationMs: durationMs,
					Timestamp:  start,
				})
			}
		})
	}
}

// routeLabel prefers the matched mux pattern so /classes/{id}/cancel
// groups together regardless of the id.
func routeLabel(r *http.Request) string {
	if r.Pattern != "" {
		if _, p, ok := strings.Cut(r.Pattern, " "); ok {
			return p
		}
		return r.Pattern
	}
	return r.URL.Path
}
