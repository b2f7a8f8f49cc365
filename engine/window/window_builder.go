package window

import "go.uber.org/zap"

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the requested resolution; the window opens at the largest chain entry
// up to this size that fits the monitor.
//
// Parameters:
//   - size: the requested framebuffer size in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(size Size) WindowBuilderOption {
	return func(w *engineWindow) {
		w.requested = size
	}
}

// WithResolutions sets the downgrade chain. With no chain the requested size must fit
// the monitor as is.
//
// Parameters:
//   - chain: the supported resolutions
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithResolutions(chain []Size) WindowBuilderOption {
	return func(w *engineWindow) {
		w.chain = append([]Size(nil), chain...)
	}
}

// WithFullScreen opens the window in exclusive fullscreen on the primary monitor.
//
// Parameters:
//   - fullScreen: true for fullscreen
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithFullScreen(fullScreen bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.fullScreen = fullScreen
	}
}

// WithMinSize sets the smallest size the user can resize the window to.
//
// Parameters:
//   - width: minimum width in pixels
//   - height: minimum height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMinSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth, w.minHeight = width, height
	}
}

// WithLogger sets the logger used for window changes.
func WithLogger(log *zap.Logger) WindowBuilderOption {
	return func(w *engineWindow) {
		if log != nil {
			w.log = log.Named("window")
		}
	}
}
