package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/millennium-run/engine/apperr"
	"github.com/Carmen-Shannon/millennium-run/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuRendererBackendImpl struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	width, height int

	// frame state between AcquireFrame and SubmitAndPresent
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
	frameEncoder *wgpu.CommandEncoder
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// NewWGPUBackend creates the instance, surface, adapter, device and queue and configures
// the surface at the given size.
//
// Parameters:
//   - surfaceDescriptor: the platform surface, from window.Window.SurfaceDescriptor
//   - width, height: the initial framebuffer size
//   - mode: the present mode
//   - forceFallbackAdapter: request a software adapter
//
// Returns:
//   - RendererBackend: the ready backend
//   - error: a Device error if no adapter or device is available
func NewWGPUBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, mode PresentMode, forceFallbackAdapter bool) (RendererBackend, error) {
	b := &wgpuRendererBackendImpl{
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
	}
	if mode == PresentModeUncapped {
		b.presentMode = wgpu.PresentModeImmediate
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, apperr.Wrap(apperr.Device, "render.adapter", "", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{Label: "Main Device"})
	if err != nil {
		b.Release()
		return nil, apperr.Wrap(apperr.Device, "render.device", "", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	b.Resize(width, height)
	return b, nil
}

func (b *wgpuRendererBackendImpl) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	b.width, b.height = width, height

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]

	mode := b.presentMode
	supported := false
	for _, m := range capabilities.PresentModes {
		if m == mode {
			supported = true
			break
		}
	}
	if !supported {
		mode = wgpu.PresentModeFifo
	}

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: mode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
}

func (b *wgpuRendererBackendImpl) SwapchainFormat() wgpu.TextureFormat {
	return b.surfaceFormat
}

func (b *wgpuRendererBackendImpl) CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (Resource, error) {
	l, err := b.device.CreateBindGroupLayout(desc)
	if err != nil {
		return nil, apperr.Wrap(apperr.Device, "render.bind_group_layout", desc.Label, err)
	}
	return l, nil
}

func (b *wgpuRendererBackendImpl) CreateBuffer(label string, size uint64, usage wgpu.BufferUsage, data []byte) (Resource, error) {
	// queue writes must be 4-byte aligned
	aligned := (size + 3) &^ 3
	if aligned == 0 {
		aligned = 4
	}
	if data != nil {
		usage |= wgpu.BufferUsageCopyDst
	}
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  aligned,
		Usage: usage,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Device, "render.buffer", label, err)
	}
	if len(data) > 0 {
		b.queue.WriteBuffer(buf, 0, padded(data))
	}
	return buf, nil
}

func (b *wgpuRendererBackendImpl) CreatePipelineLayout(label string, bindGroupLayouts []Resource) (Resource, error) {
	layouts := make([]*wgpu.BindGroupLayout, 0, len(bindGroupLayouts))
	for _, l := range bindGroupLayouts {
		bgl, ok := l.(*wgpu.BindGroupLayout)
		if !ok {
			return nil, fmt.Errorf("render: pipeline layout %s: %T is not a bind group layout", label, l)
		}
		layouts = append(layouts, bgl)
	}
	pl, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Device, "render.pipeline_layout", label, err)
	}
	return pl, nil
}

func (b *wgpuRendererBackendImpl) CreateShaderModule(label, code string) (Resource, error) {
	m, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: code,
		},
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Device, "render.shader_module", label, err)
	}
	return m, nil
}

func (b *wgpuRendererBackendImpl) CreateRenderPipeline(desc pipeline.Descriptor, layout, vertex, fragment Resource) (Resource, error) {
	pl, ok1 := layout.(*wgpu.PipelineLayout)
	vs, ok2 := vertex.(*wgpu.ShaderModule)
	fs, ok3 := fragment.(*wgpu.ShaderModule)
	if !ok1 || !ok2 || !ok3 {
		return nil, fmt.Errorf("render: pipeline %s: unexpected resource types", desc.Label())
	}

	format := desc.ColorFormat()
	if format == wgpu.TextureFormatUndefined {
		format = b.surfaceFormat
	}
	vsEntry, fsEntry := desc.EntryPoints()

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label() + " Render Pipeline",
		Layout: pl,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vsEntry,
			Buffers:    desc.VertexBuffers(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fsEntry,
			Targets:    []wgpu.ColorTargetState{desc.ColorTarget(format)},
		},
		Primitive:    desc.Primitive(),
		DepthStencil: desc.DepthStencil(),
		Multisample:  desc.Multisample(),
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Device, "render.pipeline", desc.Label(), err)
	}
	return created, nil
}

func (b *wgpuRendererBackendImpl) CreateTexture(spec TextureSpec) (Resource, error) {
	usage := spec.Usage
	if spec.Pixels != nil {
		usage |= wgpu.TextureUsageCopyDst
	}
	format := spec.Format
	if format == wgpu.TextureFormatUndefined {
		format = wgpu.TextureFormatRGBA8UnormSrgb
	}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     spec.Label,
		Usage:     usage,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              spec.Width,
			Height:             spec.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Device, "render.texture", spec.Label, err)
	}

	if len(spec.Pixels) > 0 {
		b.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  tex,
				MipLevel: 0,
				Origin:   wgpu.Origin3D{},
				Aspect:   wgpu.TextureAspectAll,
			},
			spec.Pixels,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  spec.Width * 4,
				RowsPerImage: spec.Height,
			},
			&wgpu.Extent3D{
				Width:              spec.Width,
				Height:             spec.Height,
				DepthOrArrayLayers: 1,
			},
		)
	}
	return tex, nil
}

func (b *wgpuRendererBackendImpl) CreateTextureView(texture Resource) (Resource, error) {
	tex, ok := texture.(*wgpu.Texture)
	if !ok {
		return nil, fmt.Errorf("render: texture view: %T is not a texture", texture)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.Device, "render.texture_view", "", err)
	}
	return view, nil
}

func (b *wgpuRendererBackendImpl) WriteBuffer(buffer Resource, offset uint64, data []byte) error {
	buf, ok := buffer.(*wgpu.Buffer)
	if !ok {
		return fmt.Errorf("render: write buffer: %T is not a buffer", buffer)
	}
	if offset%4 != 0 {
		return fmt.Errorf("render: write buffer: offset %d is not 4-byte aligned", offset)
	}
	b.queue.WriteBuffer(buf, offset, padded(data))
	return nil
}

func (b *wgpuRendererBackendImpl) Copy(ops []ResolvedCopy) error {
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return apperr.Wrap(apperr.Device, "render.copy", "", err)
	}
	defer encoder.Release()

	for _, op := range ops {
		switch src := op.Src.(type) {
		case *wgpu.Buffer:
			dst, ok := op.Dst.(*wgpu.Buffer)
			if !ok {
				return fmt.Errorf("render: copy from buffer into %T", op.Dst)
			}
			encoder.CopyBufferToBuffer(src, op.SrcOffset, dst, op.DstOffset, op.Size)
		case *wgpu.Texture:
			dst, ok := op.Dst.(*wgpu.Texture)
			if !ok {
				return fmt.Errorf("render: copy from texture into %T", op.Dst)
			}
			encoder.CopyTextureToTexture(
				&wgpu.ImageCopyTexture{Texture: src, Aspect: wgpu.TextureAspectAll},
				&wgpu.ImageCopyTexture{Texture: dst, Aspect: wgpu.TextureAspectAll},
				&wgpu.Extent3D{Width: op.Width, Height: op.Height, DepthOrArrayLayers: 1},
			)
		default:
			return fmt.Errorf("render: cannot copy from %T", op.Src)
		}
	}

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return apperr.Wrap(apperr.Device, "render.copy", "", err)
	}
	defer commandBuffer.Release()
	b.queue.Submit(commandBuffer)
	return nil
}

func (b *wgpuRendererBackendImpl) AcquireFrame() error {
	if b.frameSurface != nil {
		return fmt.Errorf("render: previous frame not yet presented")
	}
	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackendImpl) Encode(passes []ResolvedPass) error {
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return apperr.Wrap(apperr.Device, "render.encode", "", err)
	}
	b.frameEncoder = encoder

	if len(passes) == 0 {
		passes = []ResolvedPass{{
			Label: "Clear",
			Color: []ResolvedColor{{Clear: wgpu.Color{R: 0, G: 0, B: 0, A: 1}}},
		}}
	}
	for _, p := range passes {
		if err := b.encodePass(encoder, p); err != nil {
			return err
		}
	}
	return nil
}

func (b *wgpuRendererBackendImpl) encodePass(encoder *wgpu.CommandEncoder, p ResolvedPass) error {
	desc := &wgpu.RenderPassDescriptor{Label: p.Label}
	for _, c := range p.Color {
		view := b.frameView
		if c.View != nil {
			v, ok := c.View.(*wgpu.TextureView)
			if !ok {
				return fmt.Errorf("render: pass %s: color attachment %T is not a texture view", p.Label, c.View)
			}
			view = v
		}
		loadOp := wgpu.LoadOpClear
		if c.Load {
			loadOp = wgpu.LoadOpLoad
		}
		desc.ColorAttachments = append(desc.ColorAttachments, wgpu.RenderPassColorAttachment{
			View:       view,
			LoadOp:     loadOp,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: c.Clear,
		})
	}
	if p.Depth != nil {
		v, ok := p.Depth.View.(*wgpu.TextureView)
		if !ok {
			return fmt.Errorf("render: pass %s: depth attachment %T is not a texture view", p.Label, p.Depth.View)
		}
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            v,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: p.Depth.Clear,
		}
	}

	pass := encoder.BeginRenderPass(desc)
	for _, cmd := range p.Commands {
		switch cmd.Op {
		case OpSetPipeline:
			rp, ok := cmd.Pipeline.(*wgpu.RenderPipeline)
			if !ok {
				pass.End()
				return fmt.Errorf("render: pass %s: %T is not a render pipeline", p.Label, cmd.Pipeline)
			}
			pass.SetPipeline(rp)
		case OpSetVertexBuffer, OpSetIndexBuffer:
			buf, ok := cmd.Buffer.(*wgpu.Buffer)
			if !ok {
				pass.End()
				return fmt.Errorf("render: pass %s: %T is not a buffer", p.Label, cmd.Buffer)
			}
			if cmd.Op == OpSetVertexBuffer {
				pass.SetVertexBuffer(cmd.Slot, buf, 0, wgpu.WholeSize)
			} else {
				pass.SetIndexBuffer(buf, cmd.IndexFormat, 0, wgpu.WholeSize)
			}
		case OpDraw:
			pass.Draw(cmd.Count, cmd.InstanceCount, cmd.First, cmd.FirstInstance)
		case OpDrawIndexed:
			pass.DrawIndexed(cmd.Count, cmd.InstanceCount, cmd.First, cmd.BaseVertex, cmd.FirstInstance)
		}
	}
	pass.End()
	return nil
}

func (b *wgpuRendererBackendImpl) SubmitAndPresent() {
	if b.frameEncoder != nil {
		commandBuffer, err := b.frameEncoder.Finish(nil)
		if err == nil {
			b.queue.Submit(commandBuffer)
			commandBuffer.Release()
		}
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}
	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) Release() {
	if b.queue != nil {
		b.queue.Release()
	}
	if b.device != nil {
		b.device.Release()
	}
	if b.adapter != nil {
		b.adapter.Release()
	}
	if b.surface != nil {
		b.surface.Release()
	}
	if b.instance != nil {
		b.instance.Release()
	}
}

func padded(data []byte) []byte {
	if len(data)%4 == 0 {
		return data
	}
	out := make([]byte, (len(data)+3)&^3)
	copy(out, data)
	return out
}
