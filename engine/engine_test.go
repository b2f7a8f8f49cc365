package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/millennium-run/engine/apperr"
	"github.com/Carmen-Shannon/millennium-run/engine/message"
	"github.com/Carmen-Shannon/millennium-run/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// fakeWindow runs the begin-frame and update callbacks in a loop and lets the test
// inject callbacks through script, which is called with the iteration index between
// the two.
type fakeWindow struct {
	running  bool
	closed   bool
	maxIters int
	script   func(i int, w *fakeWindow)
	applied  []window.Size

	onBegin  func()
	onUpdate func()
	onResize func(int, int)
	onKey    func(uint32)
	onClose  func()
}

func (w *fakeWindow) SetUpdateCallback(cb func())                  { w.onUpdate = cb }
func (w *fakeWindow) SetBeginFrameCallback(cb func())              { w.onBegin = cb }
func (w *fakeWindow) SetResizeCallback(cb func(int, int))          { w.onResize = cb }
func (w *fakeWindow) SetMoveCallback(func(int, int))               {}
func (w *fakeWindow) SetScrollCallback(func(float64, float64))     {}
func (w *fakeWindow) SetKeyDownCallback(cb func(uint32))           { w.onKey = cb }
func (w *fakeWindow) SetKeyUpCallback(func(uint32))                {}
func (w *fakeWindow) SetMouseButtonCallback(func(int, bool))       {}
func (w *fakeWindow) SetMouseMoveCallback(func(float64, float64))  {}
func (w *fakeWindow) SetFocusCallback(func(bool))                  {}
func (w *fakeWindow) SetCloseCallback(cb func())                   { w.onClose = cb }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor   { return nil }
func (w *fakeWindow) IsRunning() bool                              { return w.running }
func (w *fakeWindow) RequestClose()                                { w.running = false }
func (w *fakeWindow) Close() error                                 { w.closed = true; return nil }
func (w *fakeWindow) MonitorSize() window.Size                     { return window.Size{Width: 1920, Height: 1080} }
func (w *fakeWindow) Width() int                                   { return 1280 }
func (w *fakeWindow) Height() int                                  { return 720 }
func (w *fakeWindow) Apply(_ string, s window.Size, _ bool) error {
	w.applied = append(w.applied, s)
	return nil
}

func (w *fakeWindow) ProcessMessages() {
	for i := 0; w.running && i < w.maxIters; i++ {
		if w.onBegin != nil {
			w.onBegin()
		}
		if w.script != nil {
			w.script(i, w)
		}
		if !w.running {
			break
		}
		w.onUpdate()
		time.Sleep(time.Millisecond)
	}
}

// loopWorker stops when the running flag clears, like the real workers.
type loopWorker struct {
	fabric  *message.Fabric
	stopped atomic.Bool
}

func (l *loopWorker) Run(ctx context.Context) error {
	defer l.stopped.Store(true)
	for l.fabric.Running.IsRunning() {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Millisecond):
		}
	}
	return nil
}

// terminatingWorker records the terminate it is sent and exits on it.
type terminatingWorker struct {
	terminated chan struct{}
	once       sync.Once
}

func (w *terminatingWorker) Terminate() { w.once.Do(func() { close(w.terminated) }) }

func (w *terminatingWorker) Run(ctx context.Context) error {
	select {
	case <-w.terminated:
	case <-ctx.Done():
	}
	return nil
}

type fakeBundle struct{ ok bool }

func (b *fakeBundle) CheckIntegrity() bool { return b.ok }
func (b *fakeBundle) PoisonReason() string { return "static asset modified: shaders/quad.wgsl" }

type sizeRecorder struct{ sizes [][2]int }

func (r *sizeRecorder) Resize(w, h int) { r.sizes = append(r.sizes, [2]int{w, h}) }

func TestWindowCloseShutsDownCleanly(t *testing.T) {
	f := message.NewFabric()
	worker := &loopWorker{fabric: f}
	win := &fakeWindow{running: true, maxIters: 1000}
	win.script = func(i int, w *fakeWindow) {
		if i == 3 {
			w.onClose()
		}
	}
	e := NewEngine(win, f, WithWorker("render", worker), WithIntegrity(&fakeBundle{ok: true}))

	code, err := e.Run(context.Background())
	if code != 0 || err != nil {
		t.Fatalf("Run = (%d, %v), want (0, nil)", code, err)
	}
	if f.Running.IsRunning() {
		t.Error("running flag should be cleared")
	}
	if !worker.stopped.Load() {
		t.Error("worker did not exit")
	}
	if !win.closed {
		t.Error("window not closed")
	}

	var sawTerminate bool
	for _, ev := range f.Logic.Drain() {
		if ev.Kind == message.ApplicationTerminate {
			sawTerminate = true
		}
	}
	if !sawTerminate {
		t.Error("logic channel did not receive ApplicationTerminate")
	}
}

func TestIntegrityFailureAborts(t *testing.T) {
	f := message.NewFabric()
	win := &fakeWindow{running: true, maxIters: 100}
	e := NewEngine(win, f, WithIntegrity(&fakeBundle{ok: false}))

	code, err := e.Run(context.Background())
	if code == 0 {
		t.Fatal("integrity failure must give a non-zero exit code")
	}
	var fatal *FatalError
	if !errors.As(err, &fatal) || fatal.Message.Title != "Asset file corruption detection" {
		t.Errorf("err = %v, want an asset corruption FatalError", err)
	}
}

func TestPanicCommandAborts(t *testing.T) {
	f := message.NewFabric()
	win := &fakeWindow{running: true, maxIters: 100}
	win.script = func(i int, _ *fakeWindow) {
		if i == 2 {
			f.Panic(apperr.PanicMessage{Title: "Failed to get next frame", Detail: "surface lost"})
		}
	}
	e := NewEngine(win, f)

	code, err := e.Run(context.Background())
	var fatal *FatalError
	if code != 1 || !errors.As(err, &fatal) || fatal.Message.Title != "Failed to get next frame" {
		t.Errorf("Run = (%d, %v)", code, err)
	}
}

func TestTerminateCommandExitsZero(t *testing.T) {
	f := message.NewFabric()
	win := &fakeWindow{running: true, maxIters: 100}
	win.script = func(i int, _ *fakeWindow) {
		if i == 1 {
			f.Terminate()
		}
	}
	code, err := NewEngine(win, f).Run(context.Background())
	if code != 0 || err != nil {
		t.Errorf("Run = (%d, %v), want (0, nil)", code, err)
	}
}

func TestInputAndFrameEvents(t *testing.T) {
	f := message.NewFabric()
	resizes := &sizeRecorder{}
	win := &fakeWindow{running: true, maxIters: 2}
	win.script = func(i int, w *fakeWindow) {
		if i == 0 {
			w.onKey(265)
			w.onResize(800, 450)
			_ = f.Commands.Send(message.ApplyWindowCommand(message.WindowRequest{Title: "t", Width: 960, Height: 540}))
		}
	}
	e := NewEngine(win, f, WithResizer(resizes))
	if _, err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	var kinds []message.LogicEventKind
	for _, ev := range f.Logic.Drain() {
		kinds = append(kinds, ev.Kind)
	}
	want := []message.LogicEventKind{
		message.NextMainEvents, message.KeyPressed, message.WindowResized, message.MainEventsCleared,
		message.NextMainEvents, message.MainEventsCleared, message.ApplicationTerminate,
	}
	if len(kinds) != len(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("events = %v, want %v", kinds, want)
		}
	}
	if len(resizes.sizes) != 1 || resizes.sizes[0] != [2]int{800, 450} {
		t.Errorf("render resizes = %v", resizes.sizes)
	}
	if len(win.applied) != 1 || win.applied[0] != (window.Size{Width: 960, Height: 540}) {
		t.Errorf("applied = %v", win.applied)
	}
}

func TestStopTerminatesRenderChannel(t *testing.T) {
	f := message.NewFabric()
	render := &terminatingWorker{terminated: make(chan struct{})}
	win := &fakeWindow{running: true, maxIters: 1000}
	win.script = func(i int, w *fakeWindow) {
		if i == 2 {
			w.onClose()
		}
	}
	code, err := NewEngine(win, f, WithWorker("render", render)).Run(context.Background())
	if code != 0 || err != nil {
		t.Fatalf("Run = (%d, %v), want (0, nil)", code, err)
	}
	select {
	case <-render.terminated:
	default:
		t.Error("render worker was not sent a terminate")
	}
}
