package config

import (
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the burst of events one editor save produces.
const reloadDebounce = 300 * time.Millisecond

// Reloader keeps the settings file live. A write to the file, or SIGHUP on
// Unix, re-reads it; a valid result replaces the current settings and is
// handed to every OnReload callback, an invalid one is logged and ignored.
// Only the log level is meant to change at runtime; server settings are
// reported and take effect on restart.
type Reloader struct {
	path   string
	logger *slog.Logger

	mu        sync.RWMutex
	settings  *Settings
	listeners []func(*Settings)

	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
}

// NewReloader returns a Reloader for the settings file at path, starting from
// initial. Call Start to begin watching.
func NewReloader(path string, initial *Settings, logger *slog.Logger) *Reloader {
	return &Reloader{
		path:     path,
		logger:   logger,
		settings: initial,
		done:     make(chan struct{}),
	}
}

// Current returns the settings in effect.
func (r *Reloader) Current() *Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings
}

// OnReload registers fn to receive every successfully reloaded Settings.
func (r *Reloader) OnReload(fn func(*Settings)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Start watches the settings file and, where available, SIGHUP. A watcher
// that cannot be set up is logged; the service keeps its current settings.
func (r *Reloader) Start() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		r.logger.Error("settings watcher unavailable", "error", err)
		return
	}
	if err := watcher.Add(r.path); err != nil {
		r.logger.Error("cannot watch settings file", "path", r.path, "error", err)
		watcher.Close()
		return
	}
	r.watcher = watcher
	r.logger.Info("watching settings file", "path", r.path)

	go r.watchLoop(watcher)
	r.registerSignalHandler()
}

// Stop ends watching. It may be called more than once.
func (r *Reloader) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
		if r.watcher != nil {
			r.watcher.Close()
		}
	})
}

// Reload re-reads the settings file and reports whether the new settings
// were applied.
func (r *Reloader) Reload() bool {
	next, err := Load(r.path)
	if err != nil {
		r.logger.Error("settings reload failed: invalid settings, keeping current",
			"path", r.path, "error", err)
		return false
	}

	r.mu.Lock()
	prev := r.settings
	r.settings = next
	listeners := append([](func(*Settings))(nil), r.listeners...)
	r.mu.Unlock()

	r.logChanges(prev, next)
	for _, fn := range listeners {
		fn(next)
	}

	r.logger.Info("settings reloaded", "path", r.path)
	return true
}

func (r *Reloader) watchLoop(watcher *fsnotify.Watcher) {
	var pending *time.Timer
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(reloadDebounce, func() { r.Reload() })
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.logger.Error("settings watcher error", "error", err)
		case <-r.done:
			return
		}
	}
}

func (r *Reloader) logChanges(prev, next *Settings) {
	if prev.Logging.Level != next.Logging.Level {
		r.logger.Info("log level changed",
			"old", prev.Logging.Level,
			"new", next.Logging.Level,
		)
	}
	if serverChanged(prev.Server, next.Server) {
		r.logger.Warn("server settings changed; restart required to apply")
	}
}

func serverChanged(a, b ServerConfig) bool {
	return a.ReadTimeout != b.ReadTimeout ||
		a.WriteTimeout != b.WriteTimeout ||
		a.ShutdownTimeout != b.ShutdownTimeout ||
		a.MaxBodyBytes != b.MaxBodyBytes ||
		a.SecurityHeadersEnabled() != b.SecurityHeadersEnabled()
}
