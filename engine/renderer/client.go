package renderer

import (
	"context"

	"github.com/Carmen-Shannon/millennium-run/engine/apperr"
	"github.com/Carmen-Shannon/millennium-run/engine/message"
	"github.com/Carmen-Shannon/millennium-run/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// Client sends render commands from the logic thread. Every method except Submit
// blocks until the render worker replies or ctx ends.
type Client struct {
	commands *message.Queue[Command]
}

// call sends a command built around a fresh reply channel and waits for its reply.
func (c *Client) call(ctx context.Context, build func(replyTo) Command) (Reply, error) {
	ch := make(chan Reply, 1)
	if err := c.commands.Send(build(replyTo{Reply: ch})); err != nil {
		return Reply{}, err
	}
	select {
	case rep := <-ch:
		return rep, rep.Err
	case <-ctx.Done():
		return Reply{}, apperr.Wrap(apperr.Interrupted, "render.call", "", ctx.Err())
	}
}

func (c *Client) ref(ctx context.Context, build func(replyTo) Command) (Ref, error) {
	rep, err := c.call(ctx, build)
	if err != nil {
		return Ref{}, err
	}
	return rep.Ref, nil
}

// CreateBindGroupLayout allocates a bind group layout.
func (c *Client) CreateBindGroupLayout(ctx context.Context, desc wgpu.BindGroupLayoutDescriptor) (Ref, error) {
	return c.ref(ctx, func(r replyTo) Command { return CreateBindGroupLayout{replyTo: r, Descriptor: desc} })
}

// CreateBuffer allocates an uninitialised buffer.
func (c *Client) CreateBuffer(ctx context.Context, label string, size uint64, usage wgpu.BufferUsage) (Ref, error) {
	return c.ref(ctx, func(r replyTo) Command {
		return CreateBuffer{replyTo: r, Label: label, Size: size, Usage: usage}
	})
}

// CreateBufferWithData allocates a buffer initialised with data.
//
// Parameters:
//   - ctx: bounds the wait for the reply
//   - label: debug label
//   - data: the initial content; its length is the buffer size
//   - usage: buffer usage flags
//
// Returns:
//   - Ref: the buffer id, owned by the caller
//   - error: a Device error on allocation failure, ChannelClosed after shutdown
func (c *Client) CreateBufferWithData(ctx context.Context, label string, data []byte, usage wgpu.BufferUsage) (Ref, error) {
	return c.ref(ctx, func(r replyTo) Command {
		return CreateBufferWithData{replyTo: r, Label: label, Data: data, Usage: usage}
	})
}

// CreatePipelineLayout allocates a pipeline layout.
func (c *Client) CreatePipelineLayout(ctx context.Context, label string, layouts ...Ref) (Ref, error) {
	return c.ref(ctx, func(r replyTo) Command {
		return CreatePipelineLayout{replyTo: r, Label: label, BindGroupLayouts: layouts}
	})
}

// CreateShaderModule compiles WGSL source.
func (c *Client) CreateShaderModule(ctx context.Context, label, code string) (Ref, error) {
	return c.ref(ctx, func(r replyTo) Command { return CreateShaderModule{replyTo: r, Label: label, Code: code} })
}

// CreateRenderPipeline links a render pipeline. A zero fragment reuses the vertex module.
//
// Parameters:
//   - ctx: bounds the wait for the reply
//   - layout: the pipeline layout id
//   - vertex: the vertex shader module id
//   - fragment: the fragment shader module id, or a zero Ref
//   - desc: the fixed-function description
//
// Returns:
//   - Ref: the pipeline id
//   - error: a NotFound error for an unknown id, a Device error if linking fails
func (c *Client) CreateRenderPipeline(ctx context.Context, layout, vertex, fragment Ref, desc pipeline.Descriptor) (Ref, error) {
	return c.ref(ctx, func(r replyTo) Command {
		return CreateRenderPipeline{replyTo: r, Layout: layout, Vertex: vertex, Fragment: fragment, Descriptor: desc}
	})
}

// CreateTexture allocates a 2D texture with optional RGBA8 pixels.
func (c *Client) CreateTexture(ctx context.Context, spec TextureSpec) (Ref, error) {
	return c.ref(ctx, func(r replyTo) Command {
		return CreateTexture{
			replyTo: r, Label: spec.Label, Width: spec.Width, Height: spec.Height,
			Format: spec.Format, Usage: spec.Usage, Pixels: spec.Pixels,
		}
	})
}

// CreateTextureView creates the default view of a texture.
func (c *Client) CreateTextureView(ctx context.Context, texture Ref) (Ref, error) {
	return c.ref(ctx, func(r replyTo) Command { return CreateTextureView{replyTo: r, Texture: texture} })
}

// WriteBuffer uploads data into a buffer.
func (c *Client) WriteBuffer(ctx context.Context, buffer Ref, offset uint64, data []byte) error {
	_, err := c.call(ctx, func(r replyTo) Command {
		return WriteBuffer{replyTo: r, Buffer: buffer, Offset: offset, Data: data}
	})
	return err
}

// Copy runs GPU-side copies and waits until they are submitted.
func (c *Client) Copy(ctx context.Context, ops ...CopyOp) error {
	_, err := c.call(ctx, func(r replyTo) Command { return Copy{replyTo: r, Ops: ops} })
	return err
}

// SwapchainFormat asks the worker for the surface color format.
func (c *Client) SwapchainFormat(ctx context.Context) (wgpu.TextureFormat, error) {
	rep, err := c.call(ctx, func(r replyTo) Command { return QuerySwapchainFormat{replyTo: r} })
	return rep.Format, err
}

// Submit queues a batch for the next frame without waiting. If several batches arrive
// before a frame, only the newest is drawn.
//
// Parameters:
//   - batch: the passes to draw
//
// Returns:
//   - error: ChannelClosed after the worker has shut down
func (c *Client) Submit(batch Batch) error {
	return c.commands.Send(Submit{Batch: batch})
}
