package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dskow/lesson-services/internal/reqctx"
)

// RequestIDHeader carries the request ID on requests and responses.
const RequestIDHeader = "X-Request-ID"

// RequestID returns middleware that ensures every request has an ID. An
// incoming X-Request-ID is preserved; otherwise a random UUID is generated.
// The ID goes on the response header and the request context only, so
// handlers reflecting the request headers see exactly what the client sent.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(reqctx.WithRequestID(r.Context(), id)))
	})
}

// GetRequestID extracts the request ID from a context. Returns empty string
// if no request ID is present.
func GetRequestID(ctx context.Context) string {
	return reqctx.RequestID(ctx)
}
