package renderer

import (
	"github.com/Carmen-Shannon/millennium-run/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// Reply is the result of a render command, delivered on the command's reply channel.
type Reply struct {
	Ref    Ref                // Create* commands
	Format wgpu.TextureFormat // QuerySwapchainFormat
	Err    error
}

// Command is a message on the render command channel. Each command carries a reply
// channel with capacity one; the worker sends exactly one Reply.
type Command interface {
	execute(r *renderer) Reply
	reply() chan<- Reply
}

type replyTo struct {
	Reply chan<- Reply
}

func (c replyTo) reply() chan<- Reply { return c.Reply }

// CreateBindGroupLayout allocates a bind group layout.
type CreateBindGroupLayout struct {
	replyTo
	Descriptor wgpu.BindGroupLayoutDescriptor
}

// CreateBuffer allocates an uninitialised buffer of Size bytes.
type CreateBuffer struct {
	replyTo
	Label string
	Size  uint64
	Usage wgpu.BufferUsage
}

// CreateBufferWithData allocates a buffer holding Data.
type CreateBufferWithData struct {
	replyTo
	Label string
	Data  []byte
	Usage wgpu.BufferUsage
}

// CreatePipelineLayout allocates a pipeline layout over previously created bind group layouts.
type CreatePipelineLayout struct {
	replyTo
	Label            string
	BindGroupLayouts []Ref
}

// CreateShaderModule compiles WGSL source.
type CreateShaderModule struct {
	replyTo
	Label string
	Code  string
}

// CreateRenderPipeline links shader modules and a layout into a render pipeline. A zero
// Fragment reuses the vertex module.
type CreateRenderPipeline struct {
	replyTo
	Layout     Ref
	Vertex     Ref
	Fragment   Ref
	Descriptor pipeline.Descriptor
}

// CreateTexture allocates a 2D texture, optionally uploading RGBA8 pixels.
type CreateTexture struct {
	replyTo
	Label  string
	Width  uint32
	Height uint32
	Format wgpu.TextureFormat
	Usage  wgpu.TextureUsage
	Pixels []byte
}

// CreateTextureView creates the default view of a texture.
type CreateTextureView struct {
	replyTo
	Texture Ref
}

// WriteBuffer uploads Data into an existing buffer at Offset.
type WriteBuffer struct {
	replyTo
	Buffer Ref
	Offset uint64
	Data   []byte
}

// CopyOp is one GPU-side copy. Buffer copies use the offsets and Size; texture copies
// copy Width x Height texels from origin to origin.
type CopyOp struct {
	Src, Dst             Ref
	SrcOffset, DstOffset uint64
	Size                 uint64
	Width, Height        uint32
}

// Copy executes copies synchronously and replies once they are submitted.
type Copy struct {
	replyTo
	Ops []CopyOp
}

// QuerySwapchainFormat replies with the surface color format.
type QuerySwapchainFormat struct {
	replyTo
}

// Submit queues a batch for the next frame and replies immediately.
type Submit struct {
	replyTo
	Batch Batch
}

// Terminate ends the render loop. Commands queued behind it are answered with
// ChannelClosed during shutdown.
type Terminate struct {
	replyTo
}

func (c CreateBindGroupLayout) execute(r *renderer) Reply {
	obj, err := r.backend.CreateBindGroupLayout(&c.Descriptor)
	if err != nil {
		return Reply{Err: err}
	}
	return Reply{Ref: r.bindGroupLayouts.Insert(obj)}
}

func (c CreateBuffer) execute(r *renderer) Reply {
	obj, err := r.backend.CreateBuffer(c.Label, c.Size, c.Usage, nil)
	if err != nil {
		return Reply{Err: err}
	}
	return Reply{Ref: r.buffers.Insert(obj)}
}

func (c CreateBufferWithData) execute(r *renderer) Reply {
	obj, err := r.backend.CreateBuffer(c.Label, uint64(len(c.Data)), c.Usage, c.Data)
	if err != nil {
		return Reply{Err: err}
	}
	return Reply{Ref: r.buffers.Insert(obj)}
}

func (c CreatePipelineLayout) execute(r *renderer) Reply {
	layouts := make([]Resource, 0, len(c.BindGroupLayouts))
	for _, ref := range c.BindGroupLayouts {
		l, ok := r.bindGroupLayouts.Get(ref)
		if !ok {
			return Reply{Err: lookupError(ref)}
		}
		layouts = append(layouts, l)
	}
	obj, err := r.backend.CreatePipelineLayout(c.Label, layouts)
	if err != nil {
		return Reply{Err: err}
	}
	return Reply{Ref: r.pipelineLayouts.Insert(obj)}
}

func (c CreateShaderModule) execute(r *renderer) Reply {
	obj, err := r.backend.CreateShaderModule(c.Label, c.Code)
	if err != nil {
		return Reply{Err: err}
	}
	return Reply{Ref: r.shaderModules.Insert(obj)}
}

func (c CreateRenderPipeline) execute(r *renderer) Reply {
	layout, ok := r.pipelineLayouts.Get(c.Layout)
	if !ok {
		return Reply{Err: lookupError(c.Layout)}
	}
	vs, ok := r.shaderModules.Get(c.Vertex)
	if !ok {
		return Reply{Err: lookupError(c.Vertex)}
	}
	fs := vs
	if c.Fragment.Valid() {
		if fs, ok = r.shaderModules.Get(c.Fragment); !ok {
			return Reply{Err: lookupError(c.Fragment)}
		}
	}
	obj, err := r.backend.CreateRenderPipeline(c.Descriptor, layout, vs, fs)
	if err != nil {
		return Reply{Err: err}
	}
	return Reply{Ref: r.pipelines.Insert(obj)}
}

func (c CreateTexture) execute(r *renderer) Reply {
	obj, err := r.backend.CreateTexture(TextureSpec{
		Label: c.Label, Width: c.Width, Height: c.Height,
		Format: c.Format, Usage: c.Usage, Pixels: c.Pixels,
	})
	if err != nil {
		return Reply{Err: err}
	}
	return Reply{Ref: r.textures.Insert(obj)}
}

func (c CreateTextureView) execute(r *renderer) Reply {
	tex, ok := r.textures.Get(c.Texture)
	if !ok {
		return Reply{Err: lookupError(c.Texture)}
	}
	obj, err := r.backend.CreateTextureView(tex)
	if err != nil {
		return Reply{Err: err}
	}
	return Reply{Ref: r.textureViews.Insert(obj)}
}

func (c WriteBuffer) execute(r *renderer) Reply {
	buf, ok := r.buffers.Get(c.Buffer)
	if !ok {
		return Reply{Err: lookupError(c.Buffer)}
	}
	return Reply{Err: r.backend.WriteBuffer(buf, c.Offset, c.Data)}
}

func (c Copy) execute(r *renderer) Reply {
	ops := make([]ResolvedCopy, 0, len(c.Ops))
	for _, op := range c.Ops {
		src, err := r.resolve(op.Src)
		if err != nil {
			return Reply{Err: err}
		}
		dst, err := r.resolve(op.Dst)
		if err != nil {
			return Reply{Err: err}
		}
		ops = append(ops, ResolvedCopy{CopyOp: op, Src: src, Dst: dst})
	}
	return Reply{Err: r.backend.Copy(ops)}
}

func (c QuerySwapchainFormat) execute(r *renderer) Reply {
	return Reply{Format: r.backend.SwapchainFormat()}
}

func (c Submit) execute(r *renderer) Reply {
	r.submissions.push(c.Batch)
	return Reply{}
}

func (c Terminate) execute(r *renderer) Reply {
	r.terminated = true
	return Reply{}
}
