// Package engine implements the Event Host: it owns the window on the main thread,
// runs the logic and render workers, translates window input into logic events and
// executes the AppCommands the workers post.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/Carmen-Shannon/millennium-run/engine/apperr"
	"github.com/Carmen-Shannon/millennium-run/engine/message"
	"github.com/Carmen-Shannon/millennium-run/engine/window"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Worker is a long-running loop the host starts on its own goroutine.
type Worker interface {
	Run(ctx context.Context) error
}

// IntegrityChecker is the part of the asset bundle the host polls each iteration.
type IntegrityChecker interface {
	CheckIntegrity() bool
	PoisonReason() string
}

// Terminator is a worker that takes ApplicationTerminate on its own channel; the
// Render Worker implements it.
type Terminator interface {
	Terminate()
}

// Resizer receives framebuffer sizes; the Render Worker implements it.
type Resizer interface {
	Resize(width, height int)
}

// engine implements the Engine interface.
type engine struct {
	window    window.Window
	fabric    *message.Fabric
	integrity IntegrityChecker
	resizer   Resizer
	workers   map[string]Worker
	log       *zap.Logger
	now       func() time.Time

	lastTick time.Time
	failure  *apperr.PanicMessage
}

// Engine is the Event Host.
type Engine interface {
	// Run starts the workers, runs the window message loop on the calling goroutine
	// until the window closes or a worker asks to stop, then waits for the workers.
	// It must be called from the main thread.
	//
	// Parameters:
	//   - ctx: cancels the workers
	//
	// Returns:
	//   - int: the process exit code, 0 on normal termination
	//   - error: the fatal error, as a *FatalError for posted panics
	Run(ctx context.Context) (int, error)
}

// FatalError carries the panic that aborted the process.
type FatalError struct {
	Message apperr.PanicMessage
}

func (e *FatalError) Error() string { return e.Message.String() }

// NewEngine creates an Event Host for win.
//
// Parameters:
//   - win: the main window
//   - fabric: the message fabric shared with the workers
//   - options: functional options
//
// Returns:
//   - Engine: the host
func NewEngine(win window.Window, fabric *message.Fabric, options ...EngineBuilderOption) Engine {
	e := &engine{
		window:  win,
		fabric:  fabric,
		workers: make(map[string]Worker),
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range options {
		opt(e)
	}
	e.wireWindow()
	return e
}

// wireWindow translates window callbacks into logic events.
func (e *engine) wireWindow() {
	send := func(ev message.LogicEvent) {
		_ = e.fabric.Logic.Send(ev)
	}
	e.window.SetResizeCallback(func(width, height int) {
		if e.resizer != nil {
			e.resizer.Resize(width, height)
		}
		send(message.WindowResizedEvent(width, height))
	})
	e.window.SetMoveCallback(func(x, y int) { send(message.WindowMovedEvent(float64(x), float64(y))) })
	e.window.SetKeyDownCallback(func(key uint32) { send(message.KeyPressedEvent(key)) })
	e.window.SetKeyUpCallback(func(key uint32) { send(message.KeyReleasedEvent(key)) })
	e.window.SetMouseMoveCallback(func(x, y float64) { send(message.CursorMovedEvent(x, y)) })
	e.window.SetScrollCallback(func(dx, dy float64) { send(message.MouseWheelEvent(dx, dy)) })
	e.window.SetMouseButtonCallback(func(button int, pressed bool) {
		if pressed {
			send(message.MousePressedEvent(button))
		} else {
			send(message.MouseReleasedEvent(button))
		}
	})
	e.window.SetFocusCallback(func(active bool) {
		if active {
			send(message.LogicEvent{Kind: message.ApplicationResumed})
		} else {
			send(message.LogicEvent{Kind: message.ApplicationPaused})
		}
	})
	e.window.SetCloseCallback(e.stop)
	e.window.SetBeginFrameCallback(e.beginFrame)
	e.window.SetUpdateCallback(e.iterate)
}

func (e *engine) Run(ctx context.Context) (int, error) {
	g, gctx := errgroup.WithContext(ctx)
	for name, w := range e.workers {
		g.Go(func() error {
			err := w.Run(gctx)
			if err != nil {
				e.log.Error("worker failed", zap.String("worker", name), zap.Error(err))
			}
			return err
		})
	}

	e.lastTick = e.now()
	e.log.Info("event host started", zap.Int("workers", len(e.workers)))
	e.window.ProcessMessages()

	e.stop()
	e.fabric.Logic.Close()
	werr := g.Wait()
	// anything posted while the workers wound down
	e.drainCommands()
	_ = e.window.Close()

	if e.failure != nil {
		e.log.Error("terminated by fatal error", zap.String("title", e.failure.Title),
			zap.String("detail", e.failure.Detail))
		return 1, &FatalError{Message: *e.failure}
	}
	if werr != nil && !errors.Is(werr, context.Canceled) {
		return 1, werr
	}
	e.log.Info("event host stopped")
	return 0, nil
}

// beginFrame ticks the timer and opens the frame before input callbacks fire.
func (e *engine) beginFrame() {
	now := e.now()
	elapsed := now.Sub(e.lastTick).Seconds()
	e.lastTick = now
	_ = e.fabric.Logic.Send(message.NextMainEventsEvent(elapsed))
}

// iterate runs once per message loop iteration, after input callbacks fired.
func (e *engine) iterate() {
	if !e.drainCommands() {
		return
	}

	if e.integrity != nil && !e.integrity.CheckIntegrity() {
		e.abort(apperr.PanicMessage{Title: "Asset file corruption detection", Detail: e.integrity.PoisonReason()})
		return
	}

	if !e.fabric.Running.IsRunning() {
		e.stop()
		return
	}
	_ = e.fabric.Logic.Send(message.MainEventsClearedEvent())
}

// drainCommands executes every queued AppCommand. It returns false once the host is
// shutting down.
func (e *engine) drainCommands() bool {
	for _, cmd := range e.fabric.Commands.Drain() {
		switch cmd.Kind {
		case message.CommandPanic:
			e.abort(cmd.Panic)
		case message.CommandTerminate:
			e.log.Info("terminate requested")
			e.stop()
		case message.CommandApplyWindow:
			e.applyWindow(cmd.Window)
		}
	}
	return e.window.IsRunning()
}

func (e *engine) applyWindow(req message.WindowRequest) {
	size := window.Size{Width: req.Width, Height: req.Height}
	if err := e.window.Apply(req.Title, size, req.FullScreen); err != nil {
		e.log.Warn("window change rejected", zap.Error(err))
	}
}

// abort records the first fatal error and stops.
func (e *engine) abort(msg apperr.PanicMessage) {
	if e.failure == nil {
		e.failure = &msg
		e.log.Error("fatal", zap.String("title", msg.Title), zap.String("detail", msg.Detail))
	}
	e.stop()
}

// stop posts ApplicationTerminate on the logic channel and to every Terminator, clears
// the running flag and ends the message loop.
// Safe to call more than once.
func (e *engine) stop() {
	if e.fabric.Running.Stop() {
		_ = e.fabric.Logic.Send(message.TerminateEvent())
		for _, w := range e.workers {
			if t, ok := w.(Terminator); ok {
				t.Terminate()
			}
		}
	}
	e.window.RequestClose()
}
