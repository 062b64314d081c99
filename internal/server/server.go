// Package server assembles a lesson service: the routes of one variant, the
// shared health cell and the middleware chain, and runs it with graceful
// shutdown.
package server

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/dskow/lesson-services/internal/admin"
	"github.com/dskow/lesson-services/internal/apierror"
	"github.com/dskow/lesson-services/internal/config"
	"github.com/dskow/lesson-services/internal/echo"
	"github.com/dskow/lesson-services/internal/health"
	"github.com/dskow/lesson-services/internal/middleware"
)

// Variant selects which lesson step is served.
type Variant int

const (
	// Echo serves /healthz, /info, /config and POST /echo.
	Echo Variant = iota
	// Log serves only the catch-all.
	Log
	// LogAdmin serves /healthz, the admin routes and the catch-all.
	LogAdmin
)

func (v Variant) String() string {
	switch v {
	case Echo:
		return "echo"
	case Log:
		return "log"
	case LogAdmin:
		return "log-admin"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// Defaults returns the environment fallbacks of the variant.
func (v Variant) Defaults() config.Defaults {
	if v == Echo {
		return config.EchoDefaults
	}
	return config.LogDefaults
}

// Options configures New.
type Options struct {
	Variant  Variant
	Snapshot config.Snapshot
	Server   config.ServerConfig

	// Cell is the health cell shared by the liveness probe and the break
	// route. A fresh cell is created when nil.
	Cell *health.Cell

	// Logger receives lifecycle and error lines, filtered by the service
	// log level.
	Logger *slog.Logger

	// EventLogger receives the health transition line, which is emitted
	// whatever the service log level. Defaults to Logger when nil.
	EventLogger *slog.Logger

	// RequestOutput receives one JSON line per request. Defaults to
	// io.Discard when nil.
	RequestOutput io.Writer
}

// Service is an assembled lesson service.
type Service struct {
	handler http.Handler
	cell    *health.Cell
}

// New wires the routes of opts.Variant behind the middleware chain:
// Recovery, RequestID, Observe (request log), SecurityHeaders, BodyLimit,
// JSONBody.
func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	events := opts.EventLogger
	if events == nil {
		events = logger
	}
	cell := opts.Cell
	if cell == nil {
		cell = health.NewCell(events)
	}
	out := opts.RequestOutput
	if out == nil {
		out = io.Discard
	}
	maxBody := opts.Server.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = config.DefaultMaxBodyBytes
	}

	mux := http.NewServeMux()
	logCfg := middleware.RequestLogConfig{
		Hostname: opts.Snapshot.Hostname,
		Version:  opts.Snapshot.AppVersion,
	}

	switch opts.Variant {
	case Echo:
		health.New(cell).RegisterRoutes(mux)
		echo.New(opts.Snapshot).RegisterRoutes(mux)
	case Log:
		logCfg.Headers = true
		echo.NewCatchAll(opts.Snapshot, false).RegisterRoutes(mux)
	case LogAdmin:
		logCfg.Headers = true
		logCfg.ProcessName = opts.Snapshot.ProcessName
		health.New(cell).RegisterRoutes(mux)
		admin.New(opts.Snapshot, cell, logger).RegisterRoutes(mux)
		echo.NewCatchAll(opts.Snapshot, true).RegisterRoutes(mux)
	}

	var handler http.Handler = jsonFallback(mux)
	handler = middleware.JSONBody()(handler)
	handler = middleware.BodyLimit(maxBody)(handler)
	handler = middleware.SecurityHeaders(opts.Server.SecurityHeadersEnabled())(handler)
	handler = middleware.Observe(logger,
		middleware.RequestLog(middleware.NewRequestLogger(out), logCfg),
	)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(logger)(handler)

	return &Service{handler: handler, cell: cell}
}

// Handler returns the root handler.
func (s *Service) Handler() http.Handler { return s.handler }

// Cell returns the health cell the service reports.
func (s *Service) Cell() *health.Cell { return s.cell }

// jsonFallback serves mux, replacing its plain-text 404 and 405 replies with
// JSON errors. The Allow header of a 405 is kept.
func jsonFallback(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, pattern := mux.Handler(r)
		if pattern != "" {
			mux.ServeHTTP(w, r)
			return
		}

		probe := &statusProbe{header: http.Header{}}
		h.ServeHTTP(probe, r)

		if probe.status == http.StatusMethodNotAllowed {
			if allow := probe.header.Get("Allow"); allow != "" {
				w.Header().Set("Allow", allow)
			}
			apierror.WriteJSON(w, r, http.StatusMethodNotAllowed, apierror.MethodNotAllowed, "method not allowed")
			return
		}
		apierror.WriteJSON(w, r, http.StatusNotFound, apierror.RouteNotFound, "route not found")
	})
}

// statusProbe records the status a fallback handler would have written.
type statusProbe struct {
	header http.Header
	status int
}

func (p *statusProbe) Header() http.Header         { return p.header }
func (p *statusProbe) Write(b []byte) (int, error) { return len(b), nil }
func (p *statusProbe) WriteHeader(status int)      { p.status = status }
