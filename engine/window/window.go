package window

import (
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// Window provides platform windowing and input event handling.
// Every method must be called from the main thread, which owns the window.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetBeginFrameCallback sets the function called at the start of each message loop
	// iteration, before pending platform events are dispatched.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetBeginFrameCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetMoveCallback sets the function called when the window is moved.
	//
	// Parameters:
	//   - callback: function receiving the new top-left position in screen coordinates
	SetMoveCallback(callback func(x, y int))

	// SetScrollCallback sets the callback for mouse wheel events.
	//
	// Parameters:
	//   - callback: function receiving the horizontal and vertical scroll offsets
	SetScrollCallback(callback func(dx, dy float64))

	// SetKeyDownCallback sets the callback for key press and repeat events.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetMouseButtonCallback sets the callback for mouse button presses and releases.
	//
	// Parameters:
	//   - callback: function receiving the button index and whether it was pressed
	SetMouseButtonCallback(callback func(button int, pressed bool))

	// SetMouseMoveCallback sets the callback for cursor movement.
	//
	// Parameters:
	//   - callback: function receiving the cursor position in window coordinates
	SetMouseMoveCallback(callback func(x, y float64))

	// SetFocusCallback sets the callback for focus and iconify changes.
	//
	// Parameters:
	//   - callback: function receiving true when the window becomes active again
	SetFocusCallback(callback func(active bool))

	// SetCloseCallback sets the callback invoked when the user asks to close the window.
	SetCloseCallback(callback func())

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	IsRunning() bool

	// RequestClose makes ProcessMessages return after the current iteration.
	RequestClose()

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window was never created
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls the update callback each iteration.
	ProcessMessages()

	// Apply changes the title, screen mode and resolution. The resolution is fitted to the
	// monitor with the same downgrade chain used at creation.
	//
	// Parameters:
	//   - title: the new title
	//   - size: the requested resolution
	//   - fullScreen: true for exclusive fullscreen on the primary monitor
	//
	// Returns:
	//   - error: a *ResolutionError if nothing fits
	Apply(title string, size Size, fullScreen bool) error

	// MonitorSize returns the primary monitor's current video mode size.
	MonitorSize() Size

	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and event callbacks.
type engineWindow struct {
	title      string
	requested  Size
	chain      []Size
	fullScreen bool
	minWidth   int
	minHeight  int
	log        *zap.Logger

	// width and height are the framebuffer size, which differs from the window size on
	// high-DPI displays.
	width  int
	height int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	onBeginFrame  func()
	onUpdate      func()
	onResize      func(width, height int)
	onMove        func(x, y int)
	onScroll      func(dx, dy float64)
	onKeyDown     func(keyCode uint32)
	onKeyUp       func(keyCode uint32)
	onMouseButton func(button int, pressed bool)
	onMouseMove   func(x, y float64)
	onFocus       func(active bool)
	onClose       func()
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a window. The requested size is fitted to the primary
// monitor through the resolution chain before the window is created.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the created window
//   - error: a *ResolutionError if no resolution fits, or a platform error
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:     "Millennium Run",
		requested: Size{1280, 720},
		minWidth:  320,
		minHeight: 180,
		log:       zap.NewNop(),
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) { w.onUpdate = callback }

func (w *engineWindow) SetBeginFrameCallback(callback func()) { w.onBeginFrame = callback }

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) { w.onResize = callback }

func (w *engineWindow) SetMoveCallback(callback func(x, y int)) { w.onMove = callback }

func (w *engineWindow) SetScrollCallback(callback func(dx, dy float64)) { w.onScroll = callback }

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) { w.onKeyDown = callback }

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) { w.onKeyUp = callback }

func (w *engineWindow) SetMouseButtonCallback(callback func(button int, pressed bool)) {
	w.onMouseButton = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y float64)) { w.onMouseMove = callback }

func (w *engineWindow) SetFocusCallback(callback func(active bool)) { w.onFocus = callback }

func (w *engineWindow) SetCloseCallback(callback func()) { w.onClose = callback }

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if w.onBeginFrame != nil {
			w.onBeginFrame()
		}

		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Apply(title string, size Size, fullScreen bool) error {
	fitted, err := FitResolution(size, w.chain, w.MonitorSize())
	if err != nil {
		return err
	}
	w.title, w.requested, w.fullScreen = title, size, fullScreen
	platformApply(w, fitted)
	w.log.Info("window applied", zap.String("title", title), zap.Stringer("size", fitted),
		zap.Bool("fullscreen", fullScreen))
	return nil
}

func (w *engineWindow) MonitorSize() Size {
	return platformMonitorSize()
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
