// Package message holds the typed events and commands that couple the Event Host,
// the Logic Worker and the Render Worker, plus the process-wide running flag.
package message

import (
	"fmt"
	"sync/atomic"

	"github.com/Carmen-Shannon/millennium-run/engine/apperr"
)

// LogicEventKind identifies the variant carried by a LogicEvent.
type LogicEventKind int

const (
	NextMainEvents LogicEventKind = iota
	MainEventsCleared
	WindowResized
	WindowMoved
	ApplicationTerminate
	ApplicationResumed
	ApplicationPaused
	KeyPressed
	KeyReleased
	CursorMoved
	MouseWheel
	MousePressed
	MouseReleased
)

var logicEventNames = [...]string{
	"NextMainEvents", "MainEventsCleared", "WindowResized", "WindowMoved",
	"ApplicationTerminate", "ApplicationResumed", "ApplicationPaused",
	"KeyPressed", "KeyReleased", "CursorMoved", "MouseWheel",
	"MousePressed", "MouseReleased",
}

func (k LogicEventKind) String() string {
	if k < 0 || int(k) >= len(logicEventNames) {
		return fmt.Sprintf("LogicEventKind(%d)", int(k))
	}
	return logicEventNames[k]
}

// LogicEvent is posted by the Event Host and consumed by the Logic Worker.
// Only the fields relevant to Kind are set.
type LogicEvent struct {
	Kind LogicEventKind

	Elapsed float64 // NextMainEvents, seconds since the previous burst

	Width, Height int // WindowResized

	X, Y float64 // WindowMoved, CursorMoved, MouseWheel (horizontal, vertical)

	Key    uint32 // KeyPressed, KeyReleased
	Button int    // MousePressed, MouseReleased
}

// Constructors keep call sites on the host short.

func NextMainEventsEvent(elapsed float64) LogicEvent {
	return LogicEvent{Kind: NextMainEvents, Elapsed: elapsed}
}

func MainEventsClearedEvent() LogicEvent { return LogicEvent{Kind: MainEventsCleared} }

func WindowResizedEvent(width, height int) LogicEvent {
	return LogicEvent{Kind: WindowResized, Width: width, Height: height}
}

func WindowMovedEvent(x, y float64) LogicEvent { return LogicEvent{Kind: WindowMoved, X: x, Y: y} }

func TerminateEvent() LogicEvent { return LogicEvent{Kind: ApplicationTerminate} }

func KeyPressedEvent(key uint32) LogicEvent { return LogicEvent{Kind: KeyPressed, Key: key} }

func KeyReleasedEvent(key uint32) LogicEvent { return LogicEvent{Kind: KeyReleased, Key: key} }

func CursorMovedEvent(x, y float64) LogicEvent { return LogicEvent{Kind: CursorMoved, X: x, Y: y} }

func MouseWheelEvent(h, v float64) LogicEvent { return LogicEvent{Kind: MouseWheel, X: h, Y: v} }

func MousePressedEvent(button int) LogicEvent {
	return LogicEvent{Kind: MousePressed, Button: button}
}

func MouseReleasedEvent(button int) LogicEvent {
	return LogicEvent{Kind: MouseReleased, Button: button}
}

// AppCommandKind identifies the variant carried by an AppCommand.
type AppCommandKind int

const (
	// CommandPanic terminates the process with an error dialog.
	CommandPanic AppCommandKind = iota
	// CommandTerminate requests a normal exit.
	CommandTerminate
	// CommandApplyWindow asks the main thread to change window mode, size or title.
	CommandApplyWindow
)

// WindowRequest describes a window change executed on the main thread.
type WindowRequest struct {
	Title      string
	Width      int
	Height     int
	FullScreen bool
}

// AppCommand is posted by any thread and drained by the Event Host once per iteration.
type AppCommand struct {
	Kind   AppCommandKind
	Panic  apperr.PanicMessage
	Window WindowRequest
}

func PanicCommand(msg apperr.PanicMessage) AppCommand {
	return AppCommand{Kind: CommandPanic, Panic: msg}
}

func TerminateCommand() AppCommand { return AppCommand{Kind: CommandTerminate} }

func ApplyWindowCommand(req WindowRequest) AppCommand {
	return AppCommand{Kind: CommandApplyWindow, Window: req}
}

// RunningFlag is the process-wide stop signal. Clearing it makes every worker stop at
// the top of its next iteration.
type RunningFlag struct {
	v atomic.Bool
}

// NewRunningFlag returns a flag that is already set.
func NewRunningFlag() *RunningFlag {
	f := &RunningFlag{}
	f.v.Store(true)
	return f
}

func (f *RunningFlag) IsRunning() bool { return f.v.Load() }

// Stop clears the flag and reports whether this call changed it.
func (f *RunningFlag) Stop() bool { return f.v.CompareAndSwap(true, false) }

// Fabric bundles the host-facing channels shared by the workers.
type Fabric struct {
	Logic    *Queue[LogicEvent]
	Commands *Queue[AppCommand]
	Running  *RunningFlag
}

// NewFabric creates the logic event channel, the AppCommand queue and a set running flag.
//
// Returns:
//   - *Fabric: the new fabric
func NewFabric() *Fabric {
	return &Fabric{
		Logic:    NewQueue[LogicEvent](),
		Commands: NewQueue[AppCommand](),
		Running:  NewRunningFlag(),
	}
}

// Panic posts a panic command; errors from a closed queue are dropped because the
// host is already shutting down.
func (f *Fabric) Panic(msg apperr.PanicMessage) {
	_ = f.Commands.Send(PanicCommand(msg))
}

// Terminate posts a terminate command.
func (f *Fabric) Terminate() {
	_ = f.Commands.Send(TerminateCommand())
}
