package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Descriptor during construction.
type PipelineBuilderOption func(*pipeline)

// WithEntryPoints sets the vertex and fragment entry point names.
//
// Parameters:
//   - vertex: the @vertex function name
//   - fragment: the @fragment function name
//
// Returns:
//   - PipelineBuilderOption: a function that sets the entry points
func WithEntryPoints(vertex, fragment string) PipelineBuilderOption {
	return func(p *pipeline) {
		if vertex != "" {
			p.vertexEntry = vertex
		}
		if fragment != "" {
			p.fragmentEntry = fragment
		}
	}
}

// WithVertexBuffers sets the vertex buffer layouts, one per slot.
//
// Parameters:
//   - layouts: the layouts in slot order
//
// Returns:
//   - PipelineBuilderOption: a function that sets the vertex buffer layouts
func WithVertexBuffers(layouts ...wgpu.VertexBufferLayout) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexBuffers = append([]wgpu.VertexBufferLayout(nil), layouts...)
	}
}

// WithColorFormat renders into format instead of the swapchain format.
//
// Parameters:
//   - format: the color target format
//
// Returns:
//   - PipelineBuilderOption: a function that sets the color format
func WithColorFormat(format wgpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.format = format
	}
}

// WithBlendState sets the blend state; nil disables blending.
//
// Parameters:
//   - blendState: the blend state to use, or nil
//
// Returns:
//   - PipelineBuilderOption: a function that sets the blend state
func WithBlendState(blendState *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendState = blendState
	}
}

// WithWriteMask sets the color write mask.
//
// Parameters:
//   - writeMask: the channels written by the pipeline
//
// Returns:
//   - PipelineBuilderOption: a function that sets the write mask
func WithWriteMask(writeMask wgpu.ColorWriteMask) PipelineBuilderOption {
	return func(p *pipeline) {
		p.writeMask = writeMask
	}
}

// WithCullMode sets the cull mode.
//
// Parameters:
//   - mode: wgpu.CullModeNone, wgpu.CullModeFront or wgpu.CullModeBack
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithTopology sets the primitive topology.
//
// Parameters:
//   - topology: e.g. wgpu.PrimitiveTopologyTriangleList or wgpu.PrimitiveTopologyLineList
//
// Returns:
//   - PipelineBuilderOption: a function that sets the topology
func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}

// WithFrontFace sets the front face winding order.
//
// Parameters:
//   - frontFace: wgpu.FrontFaceCCW or wgpu.FrontFaceCW
//
// Returns:
//   - PipelineBuilderOption: a function that sets the front face
func WithFrontFace(frontFace wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = frontFace
	}
}

// WithDepth attaches a depth target of the given format.
//
// Parameters:
//   - format: the depth texture format, e.g. wgpu.TextureFormatDepth24Plus
//   - write: whether fragments write depth
//   - compare: the depth comparison function
//
// Returns:
//   - PipelineBuilderOption: a function that enables depth
func WithDepth(format wgpu.TextureFormat, write bool, compare wgpu.CompareFunction) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthFormat = format
		p.depthWrite = write
		p.depthCompare = compare
	}
}

// WithSampleCount sets the multisample count; it must match the pass attachments.
//
// Parameters:
//   - count: 1 or 4
//
// Returns:
//   - PipelineBuilderOption: a function that sets the sample count
func WithSampleCount(count uint32) PipelineBuilderOption {
	return func(p *pipeline) {
		if count > 0 {
			p.sampleCount = count
		}
	}
}
