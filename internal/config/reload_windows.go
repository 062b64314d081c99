//go:build windows

package config

// registerSignalHandler does nothing on Windows, which has no SIGHUP; the
// file watcher alone triggers reloads.
func (r *Reloader) registerSignalHandler() {
	r.logger.Debug("no SIGHUP on this platform; settings reload on file change only")
}
