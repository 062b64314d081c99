// Package health provides the process health cell and the liveness probe
// handler that reports it.
package health

import (
	"net/http"
)

// Pre-serialized probe responses avoid json.Encoder allocation.
var (
	okBody        = []byte(`{"status":"OK"}` + "\n")
	unhealthyBody = []byte(`{"status":"Unhealthy"}` + "\n")
)

// Handler serves the /healthz liveness probe.
type Handler struct {
	cell *Cell
}

// New creates a liveness Handler reading cell.
func New(cell *Cell) *Handler {
	return &Handler{cell: cell}
}

// RegisterRoutes adds the liveness route to the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.liveness)
}

func (h *Handler) liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if h.cell.Probe() == Unhealthy {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write(unhealthyBody)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(okBody)
}
