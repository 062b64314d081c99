package health

import (
	"log/slog"
	"sync/atomic"
)

// State is the liveness state reported by the probe endpoint.
type State int

const (
	Healthy   State = iota // Default; /healthz answers 200.
	Unhealthy              // Terminal; /healthz answers 500 until restart.
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Unhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Cell holds the process-wide health state. It starts Healthy and moves to
// Unhealthy at most once; there is no way back short of a process restart.
// The zero value is not usable; create one with NewCell.
type Cell struct {
	broken atomic.Bool
	logger *slog.Logger
}

// NewCell returns a healthy Cell that logs its transition to logger.
func NewCell(logger *slog.Logger) *Cell {
	return &Cell{logger: logger}
}

// Probe returns the current state.
func (c *Cell) Probe() State {
	if c.broken.Load() {
		return Unhealthy
	}
	return Healthy
}

// Break moves the cell to Unhealthy. Only the first call logs; later calls
// are no-ops.
func (c *Cell) Break() {
	if c.broken.CompareAndSwap(false, true) {
		c.logger.Info("application sabotaged, /healthz will now return 500",
			"state", Unhealthy.String(),
		)
	}
}
