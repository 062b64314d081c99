// Package apierror provides the error response format shared by the lesson
// services. Every error body carries a human-readable "error" string and a
// stable machine-readable "error_code".
package apierror

import (
	"encoding/json"
	"net/http"

	"github.com/dskow/lesson-services/internal/reqctx"
)

// ErrorCode is a machine-readable error classification string.
type ErrorCode string

// Error codes. Clients and lesson scripts match on these; do not rename.
const (
	Unauthorized     ErrorCode = "UNAUTHORIZED"
	BodyTooLarge     ErrorCode = "BODY_TOO_LARGE"
	MalformedBody    ErrorCode = "MALFORMED_BODY"
	RouteNotFound    ErrorCode = "ROUTE_NOT_FOUND"
	MethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	InternalError    ErrorCode = "INTERNAL_ERROR"
)

// Fixed messages for errors whose wording is part of the lessons.
const (
	MsgUnauthorized = "Unauthorized. Missing or invalid X-API-KEY."
	MsgBodyTooLarge = "request body exceeds maximum allowed size"
	MsgInternal     = "an unexpected error occurred"
)

// ErrorResponse is the standardized error body.
type ErrorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteJSON writes a structured JSON error response. The request ID is taken
// from the request context, falling back to the X-Request-ID header when r
// never passed through the request ID middleware.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, code ErrorCode, message string) {
	requestID := ""
	if r != nil {
		requestID = reqctx.RequestID(r.Context())
		if requestID == "" {
			requestID = r.Header.Get("X-Request-ID")
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{ //nolint:errcheck
		Error:     message,
		ErrorCode: string(code),
		RequestID: requestID,
	})
}
