package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/dskow/lesson-services/internal/apierror"
	"github.com/dskow/lesson-services/internal/reqctx"
)

// BodyLimit returns middleware that limits the size of request bodies.
// Requests exceeding maxBytes receive a 413 JSON error. It checks
// Content-Length upfront for an early reject and also wraps the body with
// http.MaxBytesReader for chunked requests.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				WriteBodyLimitError(w, r)
				return
			}
			if r.Body != nil && r.ContentLength != 0 {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteBodyLimitError writes a 413 JSON error response.
func WriteBodyLimitError(w http.ResponseWriter, r *http.Request) {
	apierror.WriteJSON(w, r, http.StatusRequestEntityTooLarge, apierror.BodyTooLarge, apierror.MsgBodyTooLarge)
}

// JSONBody returns middleware that parses the request body as JSON and stores
// the result in the request context (see reqctx.Body). Only bodies declared
// as JSON are parsed; a missing or other content type leaves the body unread
// and the parsed body empty.
// An oversized body yields 413 and malformed JSON yields 400, in both cases
// before next runs. Numbers are kept as json.Number so they echo verbatim.
func JSONBody() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody || !isJSON(r.Header.Get("Content-Type")) {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := io.ReadAll(r.Body)
			if err != nil {
				var maxErr *http.MaxBytesError
				if errors.As(err, &maxErr) {
					WriteBodyLimitError(w, r)
					return
				}
				apierror.WriteJSON(w, r, http.StatusBadRequest, apierror.MalformedBody, "failed to read request body")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(raw))

			if len(bytes.TrimSpace(raw)) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			body, err := decodeJSON(raw)
			if err != nil {
				apierror.WriteJSON(w, r, http.StatusBadRequest, apierror.MalformedBody, "request body is not valid JSON")
				return
			}

			next.ServeHTTP(w, r.WithContext(reqctx.WithBody(r.Context(), body)))
		})
	}
}

func decodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}

// isJSON reports whether contentType is a JSON media type.
func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
