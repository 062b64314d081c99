// Package reqctx holds the per-request view shared by the request observers
// and the echo handlers: method, path, query, headers, parsed body, arrival
// time and host. Nothing in it outlives the request.
package reqctx

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type ctxKey int

const (
	bodyKey ctxKey = iota
	arrivalKey
	requestIDKey
)

// Request is the echoable projection of an inbound request.
type Request struct {
	Method   string            `json:"method"`
	Path     string            `json:"path"`
	Query    map[string]any    `json:"query"`
	Body     any               `json:"body"`
	Headers  map[string]string `json:"headers"`
	Arrived  time.Time         `json:"-"`
	Hostname string            `json:"-"`
}

// From builds the Request view of r. hostname is the host identifier of the
// serving process, not the Host header.
func From(r *http.Request, hostname string) Request {
	return Request{
		Method:   r.Method,
		Path:     r.URL.Path,
		Query:    Query(r.URL.Query()),
		Body:     Body(r.Context()),
		Headers:  Headers(r.Header),
		Arrived:  Arrival(r.Context()),
		Hostname: hostname,
	}
}

// WithBody stores the parsed JSON body in ctx.
func WithBody(ctx context.Context, body any) context.Context {
	return context.WithValue(ctx, bodyKey, bodyValue{v: body})
}

// Body returns the parsed JSON body, or an empty object when the request had
// none.
func Body(ctx context.Context) any {
	if b, ok := ctx.Value(bodyKey).(bodyValue); ok {
		return b.v
	}
	return map[string]any{}
}

// bodyValue wraps the body so a JSON null is still distinguishable from
// "no body".
type bodyValue struct{ v any }

// WithArrival records when the request arrived.
func WithArrival(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, arrivalKey, t)
}

// Arrival returns the arrival time recorded by WithArrival, or now.
func Arrival(ctx context.Context) time.Time {
	if t, ok := ctx.Value(arrivalKey).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithRequestID records the request ID in ctx. The inbound headers are left
// as the client sent them.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the ID recorded by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Headers flattens h into lower-cased keys. Repeated headers are joined with
// ", ".
func Headers(h http.Header) map[string]string {
	flat := make(map[string]string, len(h))
	for k, v := range h {
		flat[strings.ToLower(k)] = strings.Join(v, ", ")
	}
	return flat
}

// Query flattens v. A key given once maps to its string value; a repeated
// key maps to the list of values in order.
func Query(v url.Values) map[string]any {
	flat := make(map[string]any, len(v))
	for k, vals := range v {
		if len(vals) == 1 {
			flat[k] = vals[0]
			continue
		}
		flat[k] = append([]string(nil), vals...)
	}
	return flat
}
