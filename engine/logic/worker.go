// Package logic implements the Logic Worker: a fixed-step scheduler that owns the
// scene stack and the shared registry and turns logic events into scene calls.
package logic

import (
	"context"
	"errors"

	"github.com/Carmen-Shannon/millennium-run/engine/apperr"
	"github.com/Carmen-Shannon/millennium-run/engine/message"
	"github.com/Carmen-Shannon/millennium-run/engine/scene"
	"go.uber.org/zap"
)

const (
	// Step is the fixed update length in seconds.
	Step = 1.0 / 60.0
	// MaxUpdates bounds the updates run for a single frame.
	MaxUpdates = 16
)

// Worker is the Logic Worker.
type Worker interface {
	// Run enters the initial scene and processes logic events until the running flag
	// clears, the channel closes, the stack empties or ctx ends. Every scene still on
	// the stack is exited before Run returns.
	//
	// Parameters:
	//   - ctx: cancels the blocking receive
	//
	// Returns:
	//   - error: nil on every orderly shutdown
	Run(ctx context.Context) error

	// Handle processes one event against the active scene.
	//
	// Parameters:
	//   - ev: the event
	//
	// Returns:
	//   - bool: false when the worker should stop
	Handle(ev message.LogicEvent) bool

	// Shared returns the registry scenes exchange values through.
	//
	// Returns:
	//   - *scene.Registry: the registry
	Shared() *scene.Registry

	// Stack returns the names of the scenes on the stack, bottom to top.
	Stack() []string
}

// worker is the implementation of the Worker interface.
type worker struct {
	fabric  *message.Fabric
	initial scene.Scene
	stack   Stack
	ctx     *scene.Context
	log     *zap.Logger

	step       float64
	maxUpdates int
	acc        float64
	entered    bool
}

var _ Worker = &worker{}

// NewWorker creates a Logic Worker that starts with initial on its stack.
//
// Parameters:
//   - fabric: the shared message fabric
//   - initial: the first scene
//   - options: functional options
//
// Returns:
//   - Worker: the worker
func NewWorker(fabric *message.Fabric, initial scene.Scene, options ...WorkerBuilderOption) Worker {
	w := &worker{
		fabric:     fabric,
		initial:    initial,
		log:        zap.NewNop(),
		step:       Step,
		maxUpdates: MaxUpdates,
		ctx: &scene.Context{
			Ctx:    context.Background(),
			Shared: scene.NewRegistry(),
			Fabric: fabric,
		},
	}
	for _, opt := range options {
		opt(w)
	}
	w.ctx.Log = w.log
	return w
}

func (w *worker) Shared() *scene.Registry { return w.ctx.Shared }

func (w *worker) Stack() []string { return w.stack.Names() }

func (w *worker) Run(ctx context.Context) error {
	w.ctx.Ctx = ctx
	defer w.shutdown()

	w.log.Info("logic worker started", zap.String("scene", w.initial.Name()))
	w.enterInitial()
	for w.fabric.Running.IsRunning() {
		ev, err := w.fabric.Logic.Recv(ctx)
		if err != nil {
			if !errors.Is(err, apperr.ChannelClosed) && ctx.Err() == nil {
				w.log.Warn("logic receive failed", zap.Error(err))
			}
			break
		}
		if !w.Handle(ev) {
			break
		}
	}
	w.log.Info("logic worker stopped")
	return nil
}

func (w *worker) enterInitial() {
	if w.entered || w.initial == nil {
		return
	}
	w.entered = true
	w.enter(w.initial)
	w.stack.Push(w.initial)
}

func (w *worker) Handle(ev message.LogicEvent) bool {
	w.enterInitial()
	if !w.fabric.Running.IsRunning() {
		return false
	}

	active, ok := w.stack.Pop()
	if !ok {
		w.terminate()
		return false
	}

	switch ev.Kind {
	case message.NextMainEvents:
		w.acc += ev.Elapsed
		w.stack.Push(active)
	case message.MainEventsCleared:
		w.frame(active)
	case message.ApplicationTerminate:
		w.stack.Push(active)
		return false
	default:
		w.check(active, active.HandleEvents(w.ctx, ev))
		w.stack.Push(active)
	}

	if w.stack.Len() == 0 {
		w.terminate()
		return false
	}
	return true
}

// frame runs the fixed-step updates owed, one render submission, then the active
// scene's transition request. The caller has popped active off the stack.
func (w *worker) frame(active scene.Scene) {
	updates := 0
	for w.acc >= w.step && updates < w.maxUpdates {
		w.acc -= w.step
		updates++
		w.check(active, active.Update(w.ctx, w.step))
	}
	if updates == w.maxUpdates {
		dropped := 0.0
		if w.acc >= w.step {
			dropped, w.acc = w.acc, 0
		}
		w.log.Warn("logic is falling behind",
			zap.Int("updates", updates), zap.Float64("dropped_seconds", dropped))
	}

	w.check(active, active.RenderSubmit(w.ctx))

	next := active.Next()
	switch next.Transition {
	case scene.Keep:
		w.stack.Push(active)
	case scene.Change:
		w.exit(active)
		w.enter(next.Scene)
		w.stack.Push(next.Scene)
	case scene.Push:
		w.stack.Push(active)
		w.enter(next.Scene)
		w.stack.Push(next.Scene)
	case scene.Pop:
		w.exit(active)
	}
	if next.Transition != scene.Keep {
		w.log.Debug("scene transition", zap.Stringer("transition", next.Transition),
			zap.Strings("stack", w.stack.Names()))
	}
}

func (w *worker) enter(s scene.Scene) {
	w.check(s, s.Enter(w.ctx))
}

func (w *worker) exit(s scene.Scene) {
	w.check(s, s.Exit(w.ctx))
}

// check reports a scene error as fatal. The loop keeps draining so the rest of the
// frame is not lost; the Event Host terminates on its next iteration.
func (w *worker) check(s scene.Scene, err error) {
	if err == nil {
		return
	}
	w.log.Error("scene error", zap.String("scene", s.Name()), zap.Error(err))
	w.fabric.Panic(apperr.PanicMessage{Title: "Scene error", Detail: s.Name() + ": " + err.Error()})
}

func (w *worker) terminate() {
	if w.fabric.Running.Stop() {
		w.log.Info("scene stack empty, terminating")
	}
	w.fabric.Terminate()
}

// shutdown exits every scene still on the stack, top first.
func (w *worker) shutdown() {
	for {
		s, ok := w.stack.Pop()
		if !ok {
			break
		}
		w.exit(s)
	}
	if n := w.ctx.Shared.Len(); n > 0 {
		w.log.Debug("shared registry at shutdown", zap.Strings("types", w.ctx.Shared.Types()))
	}
}
