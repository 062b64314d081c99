//go:build !windows

package config

import (
	"os"
	"os/signal"
	"syscall"
)

// registerSignalHandler listens for SIGHUP and triggers a settings reload.
func (r *Reloader) registerSignalHandler() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	go func() {
		for {
			select {
			case <-sigCh:
				r.logger.Info("reloading settings on SIGHUP")
				r.Reload()
			case <-r.done:
				signal.Stop(sigCh)
				return
			}
		}
	}()

	r.logger.Debug("SIGHUP reloads settings")
}
