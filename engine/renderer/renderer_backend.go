package renderer

import (
	"github.com/Carmen-Shannon/millennium-run/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	PresentModeUncapped
)

// ParsePresentMode maps a config value ("vsync" or "uncapped") to a PresentMode.
func ParsePresentMode(s string) (PresentMode, bool) {
	switch s {
	case "vsync", "":
		return PresentModeVSync, true
	case "uncapped":
		return PresentModeUncapped, true
	}
	return PresentModeVSync, false
}

// TextureSpec describes a texture to create.
type TextureSpec struct {
	Label  string
	Width  uint32
	Height uint32
	Format wgpu.TextureFormat
	Usage  wgpu.TextureUsage
	Pixels []byte // optional RGBA8 upload, Width*4 bytes per row
}

// ResolvedColor is a color attachment with its view looked up. A nil View targets the
// frame's swapchain view.
type ResolvedColor struct {
	View  Resource
	Load  bool
	Clear wgpu.Color
}

// ResolvedDepth is a depth attachment with its view looked up.
type ResolvedDepth struct {
	View  Resource
	Clear float32
}

// ResolvedDraw is a DrawCommand whose pipeline or buffer id was looked up.
type ResolvedDraw struct {
	DrawCommand
	Pipeline Resource
	Buffer   Resource
}

// ResolvedPass is a Pass ready for encoding.
type ResolvedPass struct {
	Label    string
	Color    []ResolvedColor
	Depth    *ResolvedDepth
	Commands []ResolvedDraw
}

// ResolvedCopy is a CopyOp with both ends looked up.
type ResolvedCopy struct {
	CopyOp
	Src, Dst Resource
}

// RendererBackend is the GPU API used by the render worker. All methods are called from
// the render worker goroutine only.
type RendererBackend interface {
	// Resize reconfigures the surface for a new framebuffer size.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// SwapchainFormat returns the configured surface color format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the surface format
	SwapchainFormat() wgpu.TextureFormat

	CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (Resource, error)

	// CreateBuffer allocates a buffer and, when data is non-nil, uploads it.
	//
	// Parameters:
	//   - label: debug label
	//   - size: buffer size in bytes
	//   - usage: buffer usage flags
	//   - data: optional initial content
	//
	// Returns:
	//   - Resource: the buffer
	//   - error: an error if allocation fails
	CreateBuffer(label string, size uint64, usage wgpu.BufferUsage, data []byte) (Resource, error)

	CreatePipelineLayout(label string, bindGroupLayouts []Resource) (Resource, error)
	CreateShaderModule(label, code string) (Resource, error)

	// CreateRenderPipeline links the modules into a pipeline targeting the swapchain format
	// unless the descriptor overrides it.
	//
	// Parameters:
	//   - desc: the pipeline description
	//   - layout: the pipeline layout
	//   - vertex: the module holding the vertex entry point
	//   - fragment: the module holding the fragment entry point
	//
	// Returns:
	//   - Resource: the render pipeline
	//   - error: an error if linking fails
	CreateRenderPipeline(desc pipeline.Descriptor, layout, vertex, fragment Resource) (Resource, error)

	CreateTexture(spec TextureSpec) (Resource, error)
	CreateTextureView(texture Resource) (Resource, error)
	WriteBuffer(buffer Resource, offset uint64, data []byte) error

	// Copy records and submits GPU-side copies.
	Copy(ops []ResolvedCopy) error

	// AcquireFrame acquires the next swapchain texture.
	//
	// Returns:
	//   - error: an error if no texture could be acquired; the caller treats it as fatal
	AcquireFrame() error

	// Encode records passes into the acquired frame. With no passes the frame is cleared
	// to black.
	//
	// Parameters:
	//   - passes: the resolved passes of one batch, in order
	//
	// Returns:
	//   - error: an error if the command encoder could not be created
	Encode(passes []ResolvedPass) error

	// SubmitAndPresent submits the recorded commands and presents the frame.
	SubmitAndPresent()

	// Release frees the device, surface and instance.
	Release()
}
