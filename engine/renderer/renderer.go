// Package renderer implements the Render Worker: it owns the GPU backend and the
// resource pools, executes render commands from the logic thread and presents the
// newest submission batch each frame.
package renderer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/millennium-run/engine/apperr"
	"github.com/Carmen-Shannon/millennium-run/engine/message"
	"github.com/Carmen-Shannon/millennium-run/engine/profiler"
	"go.uber.org/zap"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	backend  RendererBackend
	commands *message.Queue[Command]
	fabric   *message.Fabric
	log      *zap.Logger
	profiler *profiler.Profiler

	bindGroupLayouts *Pool[Resource]
	buffers          *Pool[Resource]
	pipelineLayouts  *Pool[Resource]
	pipelines        *Pool[Resource]
	shaderModules    *Pool[Resource]
	textures         *Pool[Resource]
	textureViews     *Pool[Resource]

	submissions submissionQueue
	terminated  bool

	// pendingSize packs width<<32 | height; zero means no resize is pending.
	pendingSize atomic.Uint64

	now          func() time.Time
	cleanupEvery time.Duration
	lastCleanup  time.Time

	presented atomic.Uint64
	dropped   atomic.Uint64
}

// Stats counts frames since the worker started.
type Stats struct {
	Presented uint64
	Dropped   uint64 // submission batches discarded by coalescing
}

// Renderer is the Render Worker. Run must be called from a single goroutine; Resize,
// Client and Stats are safe from any goroutine.
type Renderer interface {
	// Run executes the render loop until the running flag clears or ctx ends. The
	// backend and every pooled resource are released before it returns.
	//
	// Parameters:
	//   - ctx: cancels the loop
	//
	// Returns:
	//   - error: the fatal error that stopped the loop, or nil on normal shutdown
	Run(ctx context.Context) error

	// Step runs one iteration: execute pending commands, render one frame, sweep pools
	// when the cleanup interval has elapsed.
	//
	// Returns:
	//   - error: a fatal error; it has already been posted as a panic command
	Step() error

	// Resize records a framebuffer size applied at the start of the next frame.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// Terminate posts ApplicationTerminate on the render command channel; Run returns
	// after the commands sent before it have executed.
	Terminate()

	// Client returns the logic-side handle for sending commands.
	//
	// Returns:
	//   - *Client: the command client
	Client() *Client

	// CleanupUnusedItems sweeps every pool and returns how many objects were released.
	//
	// Returns:
	//   - int: the number of released objects
	CleanupUnusedItems() int

	// Stats returns the frame counters.
	//
	// Returns:
	//   - Stats: presented frames and dropped batches
	Stats() Stats
}

var _ Renderer = &renderer{}

// NewRenderer creates a Render Worker around backend.
//
// Parameters:
//   - backend: the GPU backend, already configured for the initial surface size
//   - fabric: the shared running flag and AppCommand queue
//   - opts: functional options
//
// Returns:
//   - Renderer: the worker
func NewRenderer(backend RendererBackend, fabric *message.Fabric, opts ...RendererBuilderOption) Renderer {
	r := &renderer{
		backend:          backend,
		commands:         message.NewQueue[Command](),
		fabric:           fabric,
		log:              zap.NewNop(),
		bindGroupLayouts: NewPool[Resource](KindBindGroupLayout),
		buffers:          NewPool[Resource](KindBuffer),
		pipelineLayouts:  NewPool[Resource](KindPipelineLayout),
		pipelines:        NewPool[Resource](KindRenderPipeline),
		shaderModules:    NewPool[Resource](KindShaderModule),
		textures:         NewPool[Resource](KindTexture),
		textureViews:     NewPool[Resource](KindTextureView),
		now:              time.Now,
		cleanupEvery:     time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.lastCleanup = r.now()
	return r
}

func (r *renderer) Client() *Client {
	return &Client{commands: r.commands}
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.pendingSize.Store(uint64(uint32(width))<<32 | uint64(uint32(height)))
}

func (r *renderer) Terminate() {
	_ = r.commands.Send(Terminate{})
}

func (r *renderer) Stats() Stats {
	return Stats{Presented: r.presented.Load(), Dropped: r.dropped.Load()}
}

func (r *renderer) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer r.shutdown()

	r.log.Info("render worker started")
	for r.fabric.Running.IsRunning() && !r.terminated {
		if err := ctx.Err(); err != nil {
			break
		}
		if err := r.Step(); err != nil {
			return err
		}
	}
	r.log.Info("render worker stopped", zap.Uint64("presented", r.presented.Load()),
		zap.Uint64("dropped", r.dropped.Load()))
	return nil
}

func (r *renderer) Step() error {
	for {
		cmd, ok := r.commands.TryRecv()
		if !ok {
			break
		}
		if err := r.execute(cmd); err != nil {
			return err
		}
		if r.terminated {
			return nil
		}
	}

	if err := r.renderFrame(); err != nil {
		return err
	}
	if r.profiler != nil {
		r.profiler.Tick()
	}

	if now := r.now(); now.Sub(r.lastCleanup) >= r.cleanupEvery {
		if n := r.CleanupUnusedItems(); n > 0 {
			r.log.Debug("released unused GPU objects", zap.Int("count", n))
		}
		r.lastCleanup = now
	}
	return nil
}

func (r *renderer) execute(cmd Command) error {
	reply := cmd.execute(r)
	respond(cmd, reply)
	if errors.Is(reply.Err, apperr.NotFound) {
		return r.fatal("Failed to get rendering object", reply.Err)
	}
	if reply.Err != nil {
		r.log.Warn("render command failed", zap.String("command", fmt.Sprintf("%T", cmd)), zap.Error(reply.Err))
	}
	return nil
}

func (r *renderer) renderFrame() error {
	if packed := r.pendingSize.Swap(0); packed != 0 {
		w, h := int(packed>>32), int(uint32(packed))
		r.backend.Resize(w, h)
		r.log.Debug("surface resized", zap.Int("width", w), zap.Int("height", h))
	}

	if err := r.backend.AcquireFrame(); err != nil {
		return r.fatal("Failed to get next frame", err)
	}

	batch, ok, dropped := r.submissions.takeLatest()
	if dropped > 0 {
		r.dropped.Add(uint64(dropped))
	}
	var passes []ResolvedPass
	if ok {
		var err error
		if passes, err = r.resolveBatch(batch); err != nil {
			r.backend.SubmitAndPresent()
			return r.fatal("Failed to get rendering object", err)
		}
		for _, w := range batch.Writes {
			buf, _ := r.buffers.Get(w.Buffer)
			if err := r.backend.WriteBuffer(buf, w.Offset, w.Data); err != nil {
				r.log.Warn("batch upload failed", zap.Stringer("buffer", w.Buffer), zap.Error(err))
			}
		}
	}
	if err := r.backend.Encode(passes); err != nil {
		r.backend.SubmitAndPresent()
		return r.fatal("Render device lost", err)
	}
	r.backend.SubmitAndPresent()
	r.presented.Add(1)
	return nil
}

func (r *renderer) resolveBatch(b Batch) ([]ResolvedPass, error) {
	for _, w := range b.Writes {
		if _, ok := r.buffers.Get(w.Buffer); !ok {
			return nil, lookupError(w.Buffer)
		}
	}
	passes := make([]ResolvedPass, 0, len(b.Passes))
	for _, p := range b.Passes {
		rp := ResolvedPass{
			Label:    p.Descriptor.Label,
			Color:    make([]ResolvedColor, 0, len(p.Descriptor.Color)),
			Commands: make([]ResolvedDraw, 0, len(p.Commands)),
		}
		for _, c := range p.Descriptor.Color {
			rc := ResolvedColor{Load: c.Load, Clear: c.Clear}
			if c.View.Valid() {
				v, ok := r.textureViews.Get(c.View)
				if !ok {
					return nil, lookupError(c.View)
				}
				rc.View = v
			}
			rp.Color = append(rp.Color, rc)
		}
		if d := p.Descriptor.Depth; d != nil {
			v, ok := r.textureViews.Get(d.View)
			if !ok {
				return nil, lookupError(d.View)
			}
			rp.Depth = &ResolvedDepth{View: v, Clear: d.Clear}
		}
		for _, cmd := range p.Commands {
			rd := ResolvedDraw{DrawCommand: cmd}
			switch cmd.Op {
			case OpSetPipeline:
				obj, ok := r.pipelines.Get(cmd.Pipeline)
				if !ok {
					return nil, lookupError(cmd.Pipeline)
				}
				rd.Pipeline = obj
			case OpSetVertexBuffer, OpSetIndexBuffer:
				obj, ok := r.buffers.Get(cmd.Buffer)
				if !ok {
					return nil, lookupError(cmd.Buffer)
				}
				rd.Buffer = obj
			}
			rp.Commands = append(rp.Commands, rd)
		}
		passes = append(passes, rp)
	}
	return passes, nil
}

// resolve looks up a buffer or texture for copy commands.
func (r *renderer) resolve(ref Ref) (Resource, error) {
	var (
		obj Resource
		ok  bool
	)
	switch ref.Kind() {
	case KindBuffer:
		obj, ok = r.buffers.Get(ref)
	case KindTexture:
		obj, ok = r.textures.Get(ref)
	}
	if !ok {
		return nil, lookupError(ref)
	}
	return obj, nil
}

func (r *renderer) pools() []*Pool[Resource] {
	// dependents first, so views go before textures and pipelines before layouts
	return []*Pool[Resource]{
		r.pipelines, r.pipelineLayouts, r.bindGroupLayouts, r.shaderModules,
		r.textureViews, r.textures, r.buffers,
	}
}

func (r *renderer) CleanupUnusedItems() int {
	n := 0
	for _, p := range r.pools() {
		n += p.CleanupUnusedItems()
	}
	return n
}

func (r *renderer) fatal(title string, err error) error {
	r.log.Error(title, zap.Error(err))
	r.fabric.Panic(apperr.PanicMessage{Title: title, Detail: err.Error()})
	r.fabric.Running.Stop()
	return fmt.Errorf("render: %s: %w", title, err)
}

// shutdown answers every command still queued so no caller blocks on its reply, then
// frees all GPU objects.
func (r *renderer) shutdown() {
	r.commands.Close()
	for _, cmd := range r.commands.Drain() {
		respond(cmd, Reply{Err: apperr.New(apperr.ChannelClosed, "render.shutdown", "")})
	}
	for _, p := range r.pools() {
		p.Clear()
	}
	r.backend.Release()
}

// respond delivers reply when the sender asked for one. Reply channels are buffered,
// so this never blocks the render worker.
func respond(cmd Command, reply Reply) {
	if ch := cmd.reply(); ch != nil {
		ch <- reply
	}
}

func lookupError(ref Ref) error {
	return apperr.New(apperr.NotFound, "render.lookup", ref.String())
}
