// Package pipeline describes render pipelines independently of the GPU objects that
// back them. The render worker turns a Descriptor plus resolved shader modules and a
// pipeline layout into a *wgpu.RenderPipeline.
package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Descriptor interface.
type pipeline struct {
	label string

	vertexEntry   string
	fragmentEntry string
	vertexBuffers []wgpu.VertexBufferLayout

	// format overrides the swapchain format for the single color target when non-zero.
	format wgpu.TextureFormat

	blendState *wgpu.BlendState
	writeMask  wgpu.ColorWriteMask
	cullMode   wgpu.CullMode
	topology   wgpu.PrimitiveTopology
	frontFace  wgpu.FrontFace

	depthFormat  wgpu.TextureFormat
	depthWrite   bool
	depthCompare wgpu.CompareFunction
	sampleCount  uint32
}

// Descriptor is the immutable description of a render pipeline: entry points, vertex
// buffer layouts and fixed-function state. It carries no GPU objects and may be shared
// freely between threads.
type Descriptor interface {
	// Label returns the debug label used for the pipeline and its layout.
	//
	// Returns:
	//   - string: the label
	Label() string

	// EntryPoints returns the vertex and fragment entry point names.
	//
	// Returns:
	//   - string: the vertex entry point
	//   - string: the fragment entry point
	EntryPoints() (vertex, fragment string)

	// VertexBuffers returns the vertex buffer layouts in slot order.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: one layout per vertex buffer slot
	VertexBuffers() []wgpu.VertexBufferLayout

	// ColorFormat returns the color target format, or wgpu.TextureFormatUndefined to use the
	// swapchain format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the override format
	ColorFormat() wgpu.TextureFormat

	// ColorTarget builds the color target state for the given resolved format.
	//
	// Parameters:
	//   - format: the format the target renders into
	//
	// Returns:
	//   - wgpu.ColorTargetState: the target state including blend and write mask
	ColorTarget(format wgpu.TextureFormat) wgpu.ColorTargetState

	// Primitive returns the primitive assembly state.
	//
	// Returns:
	//   - wgpu.PrimitiveState: topology, winding and culling
	Primitive() wgpu.PrimitiveState

	// DepthStencil returns the depth state, or nil when the pipeline has no depth attachment.
	//
	// Returns:
	//   - *wgpu.DepthStencilState: the depth state or nil
	DepthStencil() *wgpu.DepthStencilState

	// Multisample returns the multisample state.
	//
	// Returns:
	//   - wgpu.MultisampleState: the sample count and mask
	Multisample() wgpu.MultisampleState
}

var _ Descriptor = &pipeline{}

// AlphaBlending is the straight-alpha blend state used by every 2D pass.
var AlphaBlending = &wgpu.BlendState{
	Color: wgpu.BlendComponent{
		Operation: wgpu.BlendOperationAdd,
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
	},
	Alpha: wgpu.BlendComponent{
		Operation: wgpu.BlendOperationAdd,
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
	},
}

// NewDescriptor creates a render pipeline description with 2D defaults: triangle list,
// counter-clockwise front faces, no culling, alpha blending, no depth, one sample.
//
// Parameters:
//   - label: the debug label
//   - opts: functional options overriding the defaults
//
// Returns:
//   - Descriptor: the immutable description
func NewDescriptor(label string, opts ...PipelineBuilderOption) Descriptor {
	p := &pipeline{
		label:         label,
		vertexEntry:   "vs_main",
		fragmentEntry: "fs_main",
		blendState:    AlphaBlending,
		writeMask:     wgpu.ColorWriteMaskAll,
		cullMode:      wgpu.CullModeNone,
		topology:      wgpu.PrimitiveTopologyTriangleList,
		frontFace:     wgpu.FrontFaceCCW,
		depthCompare:  wgpu.CompareFunctionLess,
		sampleCount:   1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Label() string { return p.label }

func (p *pipeline) EntryPoints() (string, string) { return p.vertexEntry, p.fragmentEntry }

func (p *pipeline) VertexBuffers() []wgpu.VertexBufferLayout { return p.vertexBuffers }

func (p *pipeline) ColorFormat() wgpu.TextureFormat { return p.format }

func (p *pipeline) ColorTarget(format wgpu.TextureFormat) wgpu.ColorTargetState {
	return wgpu.ColorTargetState{
		Format:    format,
		Blend:     p.blendState,
		WriteMask: p.writeMask,
	}
}

func (p *pipeline) Primitive() wgpu.PrimitiveState {
	return wgpu.PrimitiveState{
		Topology:  p.topology,
		FrontFace: p.frontFace,
		CullMode:  p.cullMode,
	}
}

func (p *pipeline) DepthStencil() *wgpu.DepthStencilState {
	if p.depthFormat == wgpu.TextureFormatUndefined {
		return nil
	}
	return &wgpu.DepthStencilState{
		Format:            p.depthFormat,
		DepthWriteEnabled: p.depthWrite,
		DepthCompare:      p.depthCompare,
		StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
	}
}

func (p *pipeline) Multisample() wgpu.MultisampleState {
	return wgpu.MultisampleState{
		Count: p.sampleCount,
		Mask:  0xFFFFFFFF,
	}
}
