// Package middleware provides the HTTP middleware of the lesson services:
// the request observer pipeline and its structured request logger, body
// limiting and JSON parsing, request IDs, security headers and panic recovery.
package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dskow/lesson-services/internal/reqctx"
)

// ParseLogLevel converts a level string to a slog.Level.
// Returns slog.LevelInfo for empty or unknown strings.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewRequestLogger returns the JSON logger used for per-request records.
// It always logs at Info and leaves the timestamp to the record itself, so
// service log verbosity never suppresses request records.
func NewRequestLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// NewEventLogger returns a JSON logger for process events that must appear
// whatever the service log level, such as startup and health transitions.
func NewEventLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// RequestLogConfig holds the process facts stamped on every request record.
type RequestLogConfig struct {
	Hostname string
	Version  string

	// ProcessName is added as "process" when non-empty.
	ProcessName string

	// Headers adds the request headers, with credentials redacted.
	Headers bool
}

// RequestLog returns an Observer that writes one record per request with the
// arrival timestamp (RFC 3339, UTC, milliseconds), method, path, hostname and
// version. A field that cannot be computed is logged as "<unavailable>" and
// the record is still written.
func RequestLog(logger *slog.Logger, cfg RequestLogConfig) Observer {
	return func(r *http.Request) {
		attrs := []slog.Attr{
			safeAttr("timestamp", func() any { return Timestamp(reqctx.Arrival(r.Context())) }),
			slog.String("method", r.Method),
			safeAttr("path", func() any { return r.URL.Path }),
			slog.String("hostname", cfg.Hostname),
			slog.String("version", cfg.Version),
		}
		if cfg.ProcessName != "" {
			attrs = append(attrs, slog.String("process", cfg.ProcessName))
		}
		if id := GetRequestID(r.Context()); id != "" {
			attrs = append(attrs, slog.String("request_id", id))
		}
		if cfg.Headers {
			attrs = append(attrs, safeAttr("headers", func() any { return redactHeaders(reqctx.Headers(r.Header)) }))
		}
		logger.LogAttrs(r.Context(), slog.LevelInfo, "request", attrs...)
	}
}

// unavailable stands in for a record field that failed to compute.
const unavailable = "<unavailable>"

func safeAttr(key string, value func() any) (attr slog.Attr) {
	defer func() {
		if recover() != nil {
			attr = slog.String(key, unavailable)
		}
	}()
	return slog.Any(key, value())
}

// timestampLayout is ISO-8601 with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp formats t the way request records do.
func Timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// sensitiveHeaders are replaced with "***" in request records.
var sensitiveHeaders = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
}

func redactHeaders(h map[string]string) map[string]string {
	for k := range h {
		if sensitiveHeaders[k] {
			h[k] = "***"
		}
	}
	return h
}
