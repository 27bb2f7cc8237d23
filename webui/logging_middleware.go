// Package webui provides the web-based user interface for the editor.
// This file contains the LoggingMiddleware molecule for HTTP request logging.
package webui

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// RequestLogEntry describes one completed HTTP request.
type RequestLogEntry struct {
	// Timestamp when the request started
	Timestamp time.Time

	// Method is the HTTP method (GET, POST, etc.)
	Method string

	// Path is the URL path
	Path string

	// StatusCode is the HTTP response status code
	StatusCode int

	// Duration is how long the request took
	Duration time.Duration

	// RemoteAddr is the client's address, honoring proxy headers
	RemoteAddr string

	// UserAgent is the client's user agent string
	UserAgent string

	// ContentLength is the response size in bytes
	ContentLength int64
}

// RequestLogger receives one entry per logged request.
type RequestLogger interface {
	LogRequest(entry RequestLogEntry)
}

// ZapRequestLogger writes request entries through the service's structured
// logger, one Info line per request.
type ZapRequestLogger struct {
	Logger *zap.Logger
}

// LogRequest emits the entry as structured fields.
func (z *ZapRequestLogger) LogRequest(entry RequestLogEntry) {
	logger := z.Logger
	if logger == nil {
		logger = zap.L()
	}
	logger.Info("http request",
		zap.String("method", entry.Method),
		zap.String("path", entry.Path),
		zap.Int("status", entry.StatusCode),
		zap.Duration("duration", entry.Duration),
		zap.String("remote", entry.RemoteAddr),
		zap.Int64("bytes", entry.ContentLength),
	)
}

// NoopLogger discards all entries.
type NoopLogger struct{}

// LogRequest does nothing.
func (n *NoopLogger) LogRequest(entry RequestLogEntry) {}

// LoggingMiddleware is a molecule that logs every HTTP request with method,
// path, status code, duration, and client address. Safe for concurrent use.
type LoggingMiddleware struct {
	logger RequestLogger

	// skipPaths are exact paths excluded from logging, such as health probes
	skipPaths map[string]bool
}

// LoggingMiddlewareConfig holds configuration for the LoggingMiddleware.
type LoggingMiddlewareConfig struct {
	// Logger receives request entries; nil falls back to the global zap logger
	Logger RequestLogger

	// SkipPaths are paths to exclude from logging
	SkipPaths []string
}

// DefaultLoggingMiddlewareConfig returns the default configuration.
func DefaultLoggingMiddlewareConfig() LoggingMiddlewareConfig {
	return LoggingMiddlewareConfig{
		Logger: &ZapRequestLogger{},
	}
}

// NewLoggingMiddleware creates a LoggingMiddleware with default configuration.
func NewLoggingMiddleware() *LoggingMiddleware {
	return NewLoggingMiddlewareWithConfig(DefaultLoggingMiddlewareConfig())
}

// NewLoggingMiddlewareWithConfig creates a LoggingMiddleware with custom
// configuration.
func NewLoggingMiddlewareWithConfig(config LoggingMiddlewareConfig) *LoggingMiddleware {
	if config.Logger == nil {
		config.Logger = &ZapRequestLogger{}
	}

	skipPaths := make(map[string]bool)
	for _, path := range config.SkipPaths {
		skipPaths[path] = true
	}

	return &LoggingMiddleware{
		logger:    config.Logger,
		skipPaths: skipPaths,
	}
}

// Handler wraps an http.Handler with request logging.
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()

		wrapped := &responseWriterWrapper{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		m.logger.LogRequest(RequestLogEntry{
			Timestamp:     start,
			Method:        r.Method,
			Path:          r.URL.Path,
			StatusCode:    wrapped.statusCode,
			Duration:      time.Since(start),
			RemoteAddr:    getClientIP(r),
			UserAgent:     r.UserAgent(),
			ContentLength: wrapped.bytesWritten,
		})
	})
}

// HandlerFunc wraps an http.HandlerFunc with request logging.
func (m *LoggingMiddleware) HandlerFunc(next http.HandlerFunc) http.Handler {
	return m.Handler(next)
}

// responseWriterWrapper captures the status code and byte count. The first
// WriteHeader wins, matching net/http semantics.
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.statusCode = statusCode
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriterWrapper) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += int64(n)
	return n, err
}

// Flush forwards to the underlying writer when it supports streaming.
func (w *responseWriterWrapper) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// getClientIP extracts the client IP, preferring X-Forwarded-For and
// X-Real-IP so logs behind a reverse proxy show the real client.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	return r.RemoteAddr
}
