package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/dskow/lesson-services/internal/config"
	"github.com/dskow/lesson-services/internal/middleware"
	"github.com/dskow/lesson-services/internal/server"
)

// app is a fully configured service that has not started listening yet.
type app struct {
	variant  server.Variant
	snap     config.Snapshot
	settings *config.Settings
	level    *slog.LevelVar
	logger   *slog.Logger
	events   *slog.Logger
	svc      *server.Service
}

// newApp resolves configuration and assembles the service. Log lines go to
// out.
func newApp(variant server.Variant, lookup config.LookupFunc, out io.Writer) (*app, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}

	snap, err := config.LoadSnapshot(lookup, variant.Defaults())
	if err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	settings, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	level := new(slog.LevelVar)
	level.Set(effectiveLevel(snap, settings))
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
	events := middleware.NewEventLogger(out)

	for _, w := range settings.Warnings {
		logger.Warn("settings warning", "message", w)
	}

	svc := server.New(server.Options{
		Variant:       variant,
		Snapshot:      snap,
		Server:        settings.Server,
		Logger:        logger,
		EventLogger:   events,
		RequestOutput: out,
	})

	return &app{
		variant:  variant,
		snap:     snap,
		settings: settings,
		level:    level,
		logger:   logger,
		events:   events,
		svc:      svc,
	}, nil
}

// effectiveLevel is the settings file level when set, else LOG_LEVEL.
func effectiveLevel(snap config.Snapshot, s *config.Settings) slog.Level {
	if s.Logging.Level != "" {
		return middleware.ParseLogLevel(s.Logging.Level)
	}
	return middleware.ParseLogLevel(snap.LogLevel)
}

func serve(ctx context.Context, variant server.Variant) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(variant, os.LookupEnv, os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewHTTPServer(a.snap.Port, a.svc.Handler(), a.settings.Server)
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		a.logger.Error("failed to listen", "addr", srv.Addr, "error", err)
		return fmt.Errorf("listening on %s: %w", srv.Addr, err)
	}

	a.events.Info("service started",
		"port", ln.Addr().(*net.TCPAddr).Port,
		"variant", a.variant.String(),
		"config", a.snap.Safe(),
		"admin_gate", a.snap.AdminGateEnabled(),
	)
	if a.variant == server.LogAdmin && !a.snap.AdminGateEnabled() {
		a.logger.Warn("API_KEY is empty; admin routes are open to every caller")
	}

	if cfgFile != "" {
		reloader := config.NewReloader(cfgFile, a.settings, a.logger)
		reloader.OnReload(func(s *config.Settings) {
			a.level.Set(effectiveLevel(a.snap, s))
		})
		reloader.Start()
		defer reloader.Stop()
	}

	if err := server.Run(ctx, srv, ln, a.settings.Server.ShutdownTimeout, a.logger); err != nil {
		a.logger.Error("server error", "error", err)
		return err
	}

	a.logger.Info("service stopped gracefully")
	return nil
}
