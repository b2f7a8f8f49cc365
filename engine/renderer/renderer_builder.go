package renderer

import (
	"time"

	"github.com/Carmen-Shannon/millennium-run/engine/profiler"
	"go.uber.org/zap"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithLogger sets the logger used by the render worker.
//
// Parameters:
//   - log: the parent logger; the worker logs under the "render" name
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(log *zap.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if log != nil {
			r.log = log.Named("render")
		}
	}
}

// WithProfiler attaches a frame profiler ticked once per presented frame.
//
// Parameters:
//   - p: the profiler; nil disables profiling
//
// Returns:
//   - RendererBuilderOption: a function that applies the profiler option to a renderer
func WithProfiler(p *profiler.Profiler) RendererBuilderOption {
	return func(r *renderer) {
		r.profiler = p
	}
}

// WithCleanupInterval sets how often unused pool entries are swept.
//
// Parameters:
//   - d: the sweep interval; values <= 0 keep the default of one second
//
// Returns:
//   - RendererBuilderOption: a function that applies the interval option to a renderer
func WithCleanupInterval(d time.Duration) RendererBuilderOption {
	return func(r *renderer) {
		if d > 0 {
			r.cleanupEvery = d
		}
	}
}

// WithClock replaces the time source used for cleanup scheduling.
func WithClock(now func() time.Time) RendererBuilderOption {
	return func(r *renderer) {
		if now != nil {
			r.now = now
		}
	}
}
