package echo

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/dskow/lesson-services/internal/config"
	"github.com/dskow/lesson-services/internal/middleware"
)

func testSnapshot() config.Snapshot {
	return config.Snapshot{
		Port:         8080,
		AppName:      "echo-service",
		AppVersion:   "dev",
		FeatureFlagX: "on",
		LogLevel:     "debug",
		ProcessName:  "worker",
		Hostname:     "pod-1",
		APIKey:       "secret1",
	}
}

// newTestMux wires h behind the body parser the server uses.
func newTestMux(h interface{ RegisterRoutes(*http.ServeMux) }) http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return middleware.BodyLimit(1 << 20)(middleware.JSONBody()(mux))
}

func TestInfo(t *testing.T) {
	h := New(testSnapshot())
	h.started = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return h.started.Add(90*time.Second + 400*time.Millisecond) }

	rec := httptest.NewRecorder()
	newTestMux(h).ServeHTTP(rec, httptest.NewRequest("GET", "/info", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp infoResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.App.Name != "echo-service" || resp.App.Version != "dev" {
		t.Errorf("app = %+v", resp.App)
	}
	if resp.Runtime.Go != runtime.Version() {
		t.Errorf("runtime.go = %q, want %q", resp.Runtime.Go, runtime.Version())
	}
	if resp.Runtime.PID != os.Getpid() {
		t.Errorf("runtime.pid = %d, want %d", resp.Runtime.PID, os.Getpid())
	}
	if resp.Runtime.Hostname != "pod-1" {
		t.Errorf("runtime.hostname = %q, want pod-1", resp.Runtime.Hostname)
	}
	if resp.Runtime.UptimeSeconds != 90 {
		t.Errorf("runtime.uptimeSeconds = %d, want 90", resp.Runtime.UptimeSeconds)
	}
}

func TestConfig_NeverExposesAPIKey(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestMux(New(testSnapshot())).ServeHTTP(rec, httptest.NewRequest("GET", "/config", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret1") || strings.Contains(rec.Body.String(), "API_KEY") {
		t.Fatalf("API key leaked: %s", rec.Body.String())
	}

	var got map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	want := map[string]string{"APP_NAME": "echo-service", "APP_VERSION": "dev", "FEATURE_FLAG_X": "on"}
	if len(got) != len(want) {
		t.Fatalf("got %d keys, want %d: %v", len(got), len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestEcho_ReflectsBody(t *testing.T) {
	h := New(testSnapshot())
	h.now = func() time.Time { return time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC) }

	req := httptest.NewRequest("POST", "/echo", strings.NewReader(`{"a":1}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	newTestMux(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Received json.RawMessage `json:"received"`
		Meta     echoMeta        `json:"meta"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if string(resp.Received) != `{"a":1}` {
		t.Errorf("received = %s, want {\"a\":1}", resp.Received)
	}
	want := echoMeta{Method: "POST", Path: "/echo", Hostname: "pod-1", Timestamp: "2026-05-06T07:08:09.000Z"}
	if resp.Meta != want {
		t.Errorf("meta = %+v, want %+v", resp.Meta, want)
	}
}

func TestEcho_EmptyBody(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestMux(New(testSnapshot())).ServeHTTP(rec, httptest.NewRequest("POST", "/echo", nil))

	if !bytes.Contains(rec.Body.Bytes(), []byte(`"received":{}`)) {
		t.Errorf("expected empty object for missing body, got %s", rec.Body.String())
	}
}

func TestEcho_WrongMethod(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestMux(New(testSnapshot())).ServeHTTP(rec, httptest.NewRequest("GET", "/echo", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}
