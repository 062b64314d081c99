package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dskow/lesson-services/internal/reqctx"
)

// Observer inspects a request before it is dispatched. Observers must not
// write to the response or consume the body.
type Observer func(r *http.Request)

// Observe returns middleware that stamps the arrival time on the request and
// runs observers in order before calling next. A panicking observer is logged
// to logger and skipped; the request is always handled.
func Observe(logger *slog.Logger, observers ...Observer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = r.WithContext(reqctx.WithArrival(r.Context(), time.Now()))
			for i, observe := range observers {
				runObserver(logger, i, observe, r)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func runObserver(logger *slog.Logger, idx int, observe Observer, r *http.Request) {
	defer func() {
		if err := recover(); err != nil {
			logger.Error("request observer failed",
				"observer", idx,
				"error", fmt.Sprint(err),
				"method", r.Method,
				"path", r.URL.Path,
			)
		}
	}()
	observe(r)
}
