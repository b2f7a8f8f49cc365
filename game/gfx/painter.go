// Package gfx turns a scene.Frame into a render batch: one instanced draw of
// colored quads through the quad shader.
package gfx

import (
	"context"
	"fmt"

	"github.com/Carmen-Shannon/millennium-run/common"
	"github.com/Carmen-Shannon/millennium-run/engine/assets"
	"github.com/Carmen-Shannon/millennium-run/engine/renderer"
	"github.com/Carmen-Shannon/millennium-run/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/millennium-run/engine/renderer/shader"
	"github.com/Carmen-Shannon/millennium-run/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// ShaderPath is the quad shader's manifest path.
const ShaderPath = "shaders/quad.wgsl"

// DefaultCapacity is the number of quads a painter draws per frame unless told otherwise.
// A 27x48 grid plus overlays fits comfortably.
const DefaultCapacity = 4096

// Instance is the per-quad vertex data; the layout matches InstanceQuad in the shader.
type Instance struct {
	Origin [2]float32
	Size   [2]float32
	Color  [4]float32
}

// InstanceSize is the byte stride of Instance.
const InstanceSize = 32

// corners are two triangles covering the unit square.
var corners = [6][2]float32{
	{0, 0}, {1, 0}, {0, 1},
	{0, 1}, {1, 0}, {1, 1},
}

// Painter owns the quad pipeline and its buffers on the render worker.
type Painter struct {
	capacity int
	log      *zap.Logger

	module    renderer.Ref
	layout    renderer.Ref
	pipeline  renderer.Ref
	corners   renderer.Ref
	instances renderer.Ref

	clipped bool
}

// LoadShader reads and decodes the quad shader from the bundle, then drops the
// cached bytes since the source is compiled once.
func LoadShader(b *assets.Bundle) (shader.Source, error) {
	h, err := b.Get(ShaderPath)
	if err != nil {
		return shader.Source{}, err
	}
	src, err := assets.Read[shader.Source](h, shader.Decoder{Label: "Quad"})
	b.Release(ShaderPath)
	return src, err
}

// NewPainter creates the pipeline and buffers for src.
//
// Parameters:
//   - ctx: bounds each render command round trip
//   - client: the render command client
//   - src: the decoded quad shader
//   - capacity: the most quads drawn per frame; non-positive means DefaultCapacity
//   - log: the logger, may be nil
//
// Returns:
//   - *Painter: the painter
//   - error: an error if any GPU object cannot be created
func NewPainter(ctx context.Context, client *renderer.Client, src shader.Source, capacity int, log *zap.Logger) (*Painter, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if log == nil {
		log = zap.NewNop()
	}
	if len(src.VertexBuffers) != 2 || src.VertexBuffers[1].ArrayStride != InstanceSize {
		return nil, fmt.Errorf("gfx: shader %s does not declare a corner and a %d-byte instance buffer",
			src.Label, InstanceSize)
	}
	p := &Painter{capacity: capacity, log: log}

	var err error
	if p.module, err = client.CreateShaderModule(ctx, src.Label, src.Code); err != nil {
		return nil, err
	}
	if p.layout, err = client.CreatePipelineLayout(ctx, src.Label); err != nil {
		p.Close()
		return nil, err
	}
	desc := pipeline.NewDescriptor(src.Label,
		pipeline.WithEntryPoints(src.VertexEntry, src.FragmentEntry),
		pipeline.WithVertexBuffers(src.VertexBuffers...))
	if p.pipeline, err = client.CreateRenderPipeline(ctx, p.layout, p.module, renderer.Ref{}, desc); err != nil {
		p.Close()
		return nil, err
	}
	if p.corners, err = client.CreateBufferWithData(ctx, "Quad Corners", common.SliceToBytes(corners[:]),
		wgpu.BufferUsageVertex); err != nil {
		p.Close()
		return nil, err
	}
	if p.instances, err = client.CreateBuffer(ctx, "Quad Instances", uint64(capacity*InstanceSize),
		wgpu.BufferUsageVertex|wgpu.BufferUsageCopyDst); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// Capacity returns the most quads drawn per frame.
func (p *Painter) Capacity() int { return p.capacity }

// Instances converts the frame's quads, dropping any beyond capacity.
func (p *Painter) Instances(f *scene.Frame) []Instance {
	quads := f.Quads
	if len(quads) > p.capacity {
		if !p.clipped {
			p.log.Warn("frame exceeds quad capacity, extra quads dropped",
				zap.Int("quads", len(quads)), zap.Int("capacity", p.capacity))
			p.clipped = true
		}
		quads = quads[:p.capacity]
	}
	out := make([]Instance, len(quads))
	for i, q := range quads {
		out[i] = Instance{
			Origin: [2]float32{q.X, q.Y},
			Size:   [2]float32{q.W, q.H},
			Color:  q.Color,
		}
	}
	return out
}

// Batch builds the render batch for f: an instance upload and a single pass that
// clears the swapchain and draws every quad.
func (p *Painter) Batch(f *scene.Frame) renderer.Batch {
	pass := renderer.Pass{
		Descriptor: renderer.PassDescriptor{
			Label: "Frame",
			Color: []renderer.ColorAttachment{{Clear: wgpu.Color{
				R: float64(f.Clear[0]), G: float64(f.Clear[1]), B: float64(f.Clear[2]), A: float64(f.Clear[3]),
			}}},
		},
	}
	inst := p.Instances(f)
	if len(inst) == 0 {
		return renderer.Batch{Passes: []renderer.Pass{pass}}
	}
	pass.Commands = []renderer.DrawCommand{
		renderer.SetPipeline(p.pipeline),
		renderer.SetVertexBuffer(0, p.corners),
		renderer.SetVertexBuffer(1, p.instances),
		renderer.Draw(0, uint32(len(corners)), 0, uint32(len(inst))),
	}
	return renderer.Batch{
		Writes: []renderer.BufferWrite{{Buffer: p.instances, Data: common.SliceToBytes(inst)}},
		Passes: []renderer.Pass{pass},
	}
}

// Submit sends the batch for f without waiting.
func (p *Painter) Submit(client *renderer.Client, f *scene.Frame) error {
	return client.Submit(p.Batch(f))
}

// Close releases every GPU object the painter holds. The render worker frees them
// on its next sweep.
func (p *Painter) Close() {
	for _, r := range []*renderer.Ref{&p.instances, &p.corners, &p.pipeline, &p.layout, &p.module} {
		if r.Valid() {
			r.Release()
			*r = renderer.Ref{}
		}
	}
}
