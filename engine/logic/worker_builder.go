package logic

import (
	"github.com/Carmen-Shannon/millennium-run/engine/renderer"
	"github.com/Carmen-Shannon/millennium-run/engine/scene"
	"go.uber.org/zap"
)

// WorkerBuilderOption is a functional option applied to a worker during construction via NewWorker.
type WorkerBuilderOption func(*worker)

// WithLogger sets the logger; the worker logs under the "logic" name.
//
// Parameters:
//   - log: the parent logger
//
// Returns:
//   - WorkerBuilderOption: option function to apply
func WithLogger(log *zap.Logger) WorkerBuilderOption {
	return func(w *worker) {
		if log != nil {
			w.log = log.Named("logic")
		}
	}
}

// WithRenderClient gives scenes a way to reach the Render Worker.
//
// Parameters:
//   - c: the render client
//
// Returns:
//   - WorkerBuilderOption: option function to apply
func WithRenderClient(c *renderer.Client) WorkerBuilderOption {
	return func(w *worker) {
		w.ctx.Render = c
	}
}

// WithRegistry replaces the shared registry, usually one pre-filled with the asset
// bundle, settings and other startup values.
//
// Parameters:
//   - r: the registry
//
// Returns:
//   - WorkerBuilderOption: option function to apply
func WithRegistry(r *scene.Registry) WorkerBuilderOption {
	return func(w *worker) {
		if r != nil {
			w.ctx.Shared = r
		}
	}
}

// WithMaxUpdates bounds the fixed-step updates per frame. Values < 1 keep MaxUpdates.
func WithMaxUpdates(n int) WorkerBuilderOption {
	return func(w *worker) {
		if n >= 1 {
			w.maxUpdates = n
		}
	}
}
