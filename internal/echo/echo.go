// Package echo provides the request-reflecting handlers of the lesson
// services: the day-1 info, config and echo routes, and the catch-all that
// answers every other request of the log service.
package echo

import (
	"encoding/json"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/dskow/lesson-services/internal/config"
	"github.com/dskow/lesson-services/internal/middleware"
	"github.com/dskow/lesson-services/internal/reqctx"
)

// Handler serves GET /info, GET /config and POST /echo.
type Handler struct {
	snap    config.Snapshot
	started time.Time
	now     func() time.Time
}

// New creates a Handler. Uptime is measured from the call to New.
func New(snap config.Snapshot) *Handler {
	return &Handler{
		snap:    snap,
		started: time.Now(),
		now:     time.Now,
	}
}

// RegisterRoutes adds the day-1 routes to the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /info", h.info)
	mux.HandleFunc("GET /config", h.safeConfig)
	mux.HandleFunc("POST /echo", h.echo)
}

type infoResponse struct {
	App     appInfo     `json:"app"`
	Runtime runtimeInfo `json:"runtime"`
}

type appInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type runtimeInfo struct {
	Go            string `json:"go"`
	PID           int    `json:"pid"`
	Hostname      string `json:"hostname"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

func (h *Handler) info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, infoResponse{
		App: appInfo{Name: h.snap.AppName, Version: h.snap.AppVersion},
		Runtime: runtimeInfo{
			Go:            runtime.Version(),
			PID:           os.Getpid(),
			Hostname:      h.snap.Hostname,
			UptimeSeconds: int64(h.now().Sub(h.started) / time.Second),
		},
	})
}

// safeConfig never includes API_KEY; see config.Snapshot.Safe.
func (h *Handler) safeConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.snap.Safe())
}

type echoResponse struct {
	Received any      `json:"received"`
	Meta     echoMeta `json:"meta"`
}

type echoMeta struct {
	Method    string `json:"method"`
	Path      string `json:"path"`
	Hostname  string `json:"hostname"`
	Timestamp string `json:"timestamp"`
}

func (h *Handler) echo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, echoResponse{
		Received: reqctx.Body(r.Context()),
		Meta: echoMeta{
			Method:    r.Method,
			Path:      r.URL.Path,
			Hostname:  h.snap.Hostname,
			Timestamp: middleware.Timestamp(h.now()),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
