package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dskow/lesson-services/internal/reqctx"
)

func TestObserve_RunsBeforeHandlerInOrder(t *testing.T) {
	var order []string
	first := func(r *http.Request) { order = append(order, "first") }
	second := func(r *http.Request) { order = append(order, "second") }

	handler := Observe(slog.Default(), first, second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if got := strings.Join(order, ","); got != "first,second,handler" {
		t.Errorf("order = %s, want first,second,handler", got)
	}
}

func TestObserve_PanickingObserverDoesNotAbortRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var laterRan bool
	broken := func(r *http.Request) { panic("observer exploded") }
	later := func(r *http.Request) { laterRan = true }

	handler := Observe(logger, broken, later)(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/x", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !laterRan {
		t.Error("expected later observers to still run")
	}
	if !strings.Contains(buf.String(), "request observer failed") || !strings.Contains(buf.String(), "observer exploded") {
		t.Errorf("expected observer failure to be logged, got %s", buf.String())
	}
}

func TestObserve_StampsArrival(t *testing.T) {
	before := time.Now()

	var seen, inHandler time.Time
	observer := func(r *http.Request) { seen = reqctx.Arrival(r.Context()) }
	handler := Observe(slog.Default(), observer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Millisecond)
		inHandler = reqctx.Arrival(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if seen.Before(before) {
		t.Errorf("arrival %v is before request start %v", seen, before)
	}
	if !inHandler.Equal(seen) {
		t.Errorf("handler saw arrival %v, observer saw %v", inHandler, seen)
	}
}
