package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/dskow/lesson-services/internal/config"
)

func TestRun_ServesUntilCancelled(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	svc := New(Options{Variant: Echo, Snapshot: snapshot("")})
	srv := NewHTTPServer(0, svc.Handler(), config.ServerConfig{ReadTimeout: time.Second, WriteTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, srv, ln, time.Second, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewHTTPServer_Timeouts(t *testing.T) {
	cfg := config.ServerConfig{ReadTimeout: 3 * time.Second, WriteTimeout: 4 * time.Second}
	srv := NewHTTPServer(9090, http.NotFoundHandler(), cfg)

	if srv.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", srv.Addr)
	}
	if srv.ReadTimeout != 3*time.Second || srv.WriteTimeout != 4*time.Second {
		t.Errorf("timeouts = %v/%v", srv.ReadTimeout, srv.WriteTimeout)
	}
}
