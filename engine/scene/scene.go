// Package scene defines the contract between the Logic Worker and game scenes: the
// Scene lifecycle, transition requests, the per-frame Context and the shared
// resource registry scenes use to hand values to one another.
package scene

import (
	"context"
	"fmt"

	"github.com/Carmen-Shannon/millennium-run/engine/message"
	"github.com/Carmen-Shannon/millennium-run/engine/renderer"
	"go.uber.org/zap"
)

// Transition is the kind of stack change a scene requests after a frame.
type Transition int

const (
	// Keep leaves the stack unchanged.
	Keep Transition = iota
	// Change exits the current scene and replaces it with Next.Scene.
	Change
	// Push enters Next.Scene on top of the current scene, which stays entered.
	Push
	// Pop exits the current scene and resumes the one below it.
	Pop
)

func (t Transition) String() string {
	switch t {
	case Keep:
		return "Keep"
	case Change:
		return "Change"
	case Push:
		return "Push"
	case Pop:
		return "Pop"
	}
	return fmt.Sprintf("Transition(%d)", int(t))
}

// Next is a transition request. Scene is set for Change and Push.
type Next struct {
	Transition Transition
	Scene      Scene
}

// KeepNext requests no transition.
func KeepNext() Next { return Next{Transition: Keep} }

// ChangeTo requests replacing the current scene with s.
func ChangeTo(s Scene) Next { return Next{Transition: Change, Scene: s} }

// PushNext requests entering s on top of the current scene.
func PushNext(s Scene) Next { return Next{Transition: Push, Scene: s} }

// PopNext requests leaving the current scene.
func PopNext() Next { return Next{Transition: Pop} }

// Context is what every scene method receives. It is owned by the Logic Worker and
// only touched from the logic goroutine.
type Context struct {
	// Ctx is cancelled when the logic worker stops.
	Ctx context.Context
	// Shared carries values between scenes, keyed by type.
	Shared *Registry
	// Render sends commands and submission batches to the Render Worker. Nil in
	// headless tests.
	Render *renderer.Client
	// Fabric posts AppCommands to the Event Host.
	Fabric *message.Fabric
	// Log is the logic worker's logger.
	Log *zap.Logger
}

// Scene is one state of the game's scene stack.
//
// The Logic Worker calls Enter once before the first Update of each push or change,
// and Exit once before dropping the scene on Change or Pop. Next is consulted after
// Update and RenderSubmit, so a scene always renders the frame on which it asks to
// leave. Any returned error is posted as a fatal "Scene error".
type Scene interface {
	// Name identifies the scene in logs.
	Name() string

	// Enter acquires the scene's resources.
	//
	// Parameters:
	//   - c: the logic context
	//
	// Returns:
	//   - error: an error if the scene cannot start
	Enter(c *Context) error

	// Exit releases everything Enter acquired and returns borrowed values to the
	// registry.
	//
	// Parameters:
	//   - c: the logic context
	//
	// Returns:
	//   - error: an error if cleanup fails
	Exit(c *Context) error

	// HandleEvents receives every input or window event that is not a frame marker.
	//
	// Parameters:
	//   - c: the logic context
	//   - ev: the event
	//
	// Returns:
	//   - error: an error to report as fatal
	HandleEvents(c *Context, ev message.LogicEvent) error

	// Update advances the scene by one fixed step.
	//
	// Parameters:
	//   - c: the logic context
	//   - elapsed: the step length in seconds
	//
	// Returns:
	//   - error: an error to report as fatal
	Update(c *Context, elapsed float64) error

	// RenderSubmit builds and submits this frame's render batch.
	//
	// Parameters:
	//   - c: the logic context
	//
	// Returns:
	//   - error: an error to report as fatal
	RenderSubmit(c *Context) error

	// Next returns the transition requested for the end of this frame.
	//
	// Returns:
	//   - Next: the request; KeepNext() to stay
	Next() Next
}
