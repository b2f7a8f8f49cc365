package engine

import (
	"time"

	"go.uber.org/zap"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithWorker registers a worker started by Run.
//
// Parameters:
//   - name: the worker's name in logs
//   - w: the worker
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWorker(name string, w Worker) EngineBuilderOption {
	return func(e *engine) {
		e.workers[name] = w
	}
}

// WithIntegrity sets the asset bundle checked once per iteration.
//
// Parameters:
//   - c: the bundle
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithIntegrity(c IntegrityChecker) EngineBuilderOption {
	return func(e *engine) {
		e.integrity = c
	}
}

// WithResizer forwards framebuffer resizes, usually to the Render Worker.
//
// Parameters:
//   - r: the receiver
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithResizer(r Resizer) EngineBuilderOption {
	return func(e *engine) {
		e.resizer = r
	}
}

// WithLogger sets the logger; the host logs under the "host" name.
//
// Parameters:
//   - log: the parent logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(log *zap.Logger) EngineBuilderOption {
	return func(e *engine) {
		if log != nil {
			e.log = log.Named("host")
		}
	}
}

// WithClock replaces the time source used for NextMainEvents.
func WithClock(now func() time.Time) EngineBuilderOption {
	return func(e *engine) {
		if now != nil {
			e.now = now
		}
	}
}
