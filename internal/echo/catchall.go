package echo

import (
	"net/http"

	"github.com/dskow/lesson-services/internal/config"
	"github.com/dskow/lesson-services/internal/reqctx"
)

// CatchAll answers any method on any path not claimed by a more specific
// route, reflecting the request back together with the service environment.
type CatchAll struct {
	snap        config.Snapshot
	showProcess bool
}

// NewCatchAll creates a CatchAll. With showProcess the environment block also
// reports the process name, even when it is empty.
func NewCatchAll(snap config.Snapshot, showProcess bool) *CatchAll {
	return &CatchAll{snap: snap, showProcess: showProcess}
}

// RegisterRoutes adds the catch-all pattern to the given mux.
func (c *CatchAll) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/", c)
}

type catchAllResponse struct {
	Message     string         `json:"message"`
	Received    reqctx.Request `json:"received"`
	Environment environment    `json:"environment"`
}

type environment struct {
	Hostname    string  `json:"hostname"`
	Version     string  `json:"version"`
	LogLevel    string  `json:"logLevel"`
	ProcessName *string `json:"processName,omitempty"`
}

// ServeHTTP implements http.Handler.
func (c *CatchAll) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	env := environment{
		Hostname: c.snap.Hostname,
		Version:  c.snap.AppVersion,
		LogLevel: c.snap.LogLevel,
	}
	if c.showProcess {
		name := c.snap.ProcessName
		env.ProcessName = &name
	}

	writeJSON(w, http.StatusOK, catchAllResponse{
		Message:     "Hello from log-service",
		Received:    reqctx.From(r, c.snap.Hostname),
		Environment: env,
	})
}
