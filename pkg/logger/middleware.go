package logger

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/screwyprof/unstaker/pkg/httpkit"
)

// responseWriter captures status code and response size
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bytesOut   int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.bytesOut += size
	return size, err
}

// MiddlewareOption configures the access log middleware
type MiddlewareOption func(*middleware)

// WithQuietPaths logs successful requests to paths at debug level,
// e.g. frequent metrics scrapes.
func WithQuietPaths(paths ...string) MiddlewareOption {
	return func(m *middleware) {
		for _, p := range paths {
			m.quiet[p] = struct{}{}
		}
	}
}

type middleware struct {
	log   *slog.Logger
	quiet map[string]struct{}
}

// NewMiddleware creates HTTP request logging middleware
func NewMiddleware(log *slog.Logger, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	m := &middleware{log: log, quiet: make(map[string]struct{})}
	for _, opt := range opts {
		opt(m)
	}
	return m.wrap
}

func (m *middleware) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// handlers not built on httpkit.HandlerFunc still get error tracking
		r = r.WithContext(httpkit.WithErrorTracking(r.Context()))

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		attrs := []slog.Attr{
			slog.String("method", r.Method),
			slog.String("uri", r.RequestURI),
			slog.Int("status", rw.statusCode),
			slog.Duration("duration", time.Since(start)),
			slog.Int("bytes_in", max(0, int(r.ContentLength))),
			slog.Int("bytes_out", rw.bytesOut),
		}
		if err := httpkit.Error(r.Context()); err != nil {
			attrs = append(attrs, slog.String("error", errorMessage(err)))
		}

		m.log.LogAttrs(r.Context(), m.level(r, rw.statusCode), "HTTP", attrs...)
	})
}

func (m *middleware) level(r *http.Request, status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	}
	if _, ok := m.quiet[r.URL.Path]; ok {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// errorMessage prefers the detailed cause of HTTP errors
func errorMessage(err error) string {
	if httpErr, ok := err.(httpkit.HTTPError); ok {
		return httpErr.Cause().Error()
	}
	return err.Error()
}
