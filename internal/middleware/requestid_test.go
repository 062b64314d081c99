package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestRequestID_GeneratesUUID(t *testing.T) {
	var capturedID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedID = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if _, err := uuid.Parse(capturedID); err != nil {
		t.Errorf("expected a UUID, got %q: %v", capturedID, err)
	}
	if respID := rec.Header().Get("X-Request-ID"); respID != capturedID {
		t.Errorf("response header %q != context ID %q", respID, capturedID)
	}
}

func TestRequestID_PreservesExisting(t *testing.T) {
	const existingID = "lesson-7-request"

	var capturedID, headerID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedID = GetRequestID(r.Context())
		headerID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", existingID)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if capturedID != existingID {
		t.Errorf("context ID = %q, want %q", capturedID, existingID)
	}
	if headerID != existingID {
		t.Errorf("request header = %q, want %q", headerID, existingID)
	}
	if respID := rec.Header().Get("X-Request-ID"); respID != existingID {
		t.Errorf("response header = %q, want %q", respID, existingID)
	}
}

func TestRequestID_LeavesInboundHeadersUntouched(t *testing.T) {
	var inbound string
	var present bool
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["X-Request-Id"]
		inbound = r.Header.Get(RequestIDHeader)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/x", nil))

	if present || inbound != "" {
		t.Errorf("generated ID leaked into request headers: %q", inbound)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected generated ID on the response")
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	ids := make(map[string]bool)
	handler := RequestID(okHandler())

	for i := 0; i < 100; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		id := rec.Header().Get("X-Request-ID")
		if ids[id] {
			t.Fatalf("duplicate request ID generated: %s", id)
		}
		ids[id] = true
	}
}

func TestGetRequestID_EmptyContext(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	if id := GetRequestID(req.Context()); id != "" {
		t.Errorf("expected empty string for context without request ID, got %q", id)
	}
}
