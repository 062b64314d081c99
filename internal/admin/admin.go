// Package admin provides the secret-gated admin endpoints: a redacted admin
// view and the break switch that marks the process unhealthy.
package admin

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"

	"github.com/dskow/lesson-services/internal/apierror"
	"github.com/dskow/lesson-services/internal/config"
	"github.com/dskow/lesson-services/internal/health"
)

// KeyHeader is the request header carrying the admin credential.
const KeyHeader = "X-API-KEY"

// Breaker is the part of the health cell the admin routes may touch.
type Breaker interface {
	Break()
}

// Handler provides admin API endpoints.
type Handler struct {
	apiKey string
	cell   Breaker
	logger *slog.Logger
}

// New creates an admin Handler. When snap.APIKey is empty the gate is open
// and every caller is treated as authorized.
func New(snap config.Snapshot, cell Breaker, logger *slog.Logger) *Handler {
	return &Handler{
		apiKey: snap.APIKey,
		cell:   cell,
		logger: logger,
	}
}

// RegisterRoutes adds admin routes to the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /admin", h.guard(h.viewHandler))
	mux.HandleFunc("POST /admin/break", h.guard(h.breakHandler))
}

// guard wraps a handler with the X-API-KEY check.
func (h *Handler) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.authorized(r.Header.Values(KeyHeader)) {
			h.logger.Warn("admin access denied",
				"client_ip", extractIP(r.RemoteAddr),
				"path", r.URL.Path,
				"key_present", r.Header.Get(KeyHeader) != "",
			)
			apierror.WriteJSON(w, r, http.StatusUnauthorized, apierror.Unauthorized, apierror.MsgUnauthorized)
			return
		}
		next(w, r)
	}
}

// authorized compares the supplied key with the configured one. The
// comparison is exact and case-sensitive, and a repeated header never
// matches.
func (h *Handler) authorized(supplied []string) bool {
	if h.apiKey == "" {
		return true
	}
	if len(supplied) != 1 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(supplied[0]), []byte(h.apiKey)) == 1
}

func extractIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

// viewResponse is the response type for GET /admin.
type viewResponse struct {
	Message string      `json:"message"`
	Secrets viewSecrets `json:"secrets"`
}

type viewSecrets struct {
	APIKey        string `json:"apiKey"`
	InternalState string `json:"internalState"`
}

func (h *Handler) viewHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewResponse{
		Message: "Admin access granted.",
		Secrets: viewSecrets{
			APIKey:        "****** (hidden)",
			InternalState: "secure",
		},
	})
}

func (h *Handler) breakHandler(w http.ResponseWriter, r *http.Request) {
	h.cell.Break()
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Application broken successfully. Good luck!",
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

var _ Breaker = (*health.Cell)(nil)
