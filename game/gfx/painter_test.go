package gfx

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Carmen-Shannon/millennium-run/engine/message"
	"github.com/Carmen-Shannon/millennium-run/engine/renderer"
	"github.com/Carmen-Shannon/millennium-run/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/millennium-run/engine/renderer/shader"
	"github.com/Carmen-Shannon/millennium-run/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

type fakeObject struct{ label string }

func (*fakeObject) Release() {}

type fakeBackend struct {
	encoded [][]renderer.ResolvedPass
	uploads [][]byte
	labels  []string
}

func (b *fakeBackend) obj(label string) (renderer.Resource, error) {
	b.labels = append(b.labels, label)
	return &fakeObject{label: label}, nil
}

func (b *fakeBackend) Resize(int, int)                     {}
func (b *fakeBackend) SwapchainFormat() wgpu.TextureFormat { return wgpu.TextureFormatBGRA8Unorm }
func (b *fakeBackend) Copy([]renderer.ResolvedCopy) error  { return nil }
func (b *fakeBackend) AcquireFrame() error                 { return nil }
func (b *fakeBackend) SubmitAndPresent()                   {}
func (b *fakeBackend) Release()                            {}
func (b *fakeBackend) CreateTextureView(renderer.Resource) (renderer.Resource, error) {
	return b.obj("view")
}
func (b *fakeBackend) CreateBindGroupLayout(*wgpu.BindGroupLayoutDescriptor) (renderer.Resource, error) {
	return b.obj("bgl")
}
func (b *fakeBackend) CreateBuffer(label string, _ uint64, _ wgpu.BufferUsage, _ []byte) (renderer.Resource, error) {
	return b.obj(label)
}
func (b *fakeBackend) CreatePipelineLayout(label string, _ []renderer.Resource) (renderer.Resource, error) {
	return b.obj(label)
}
func (b *fakeBackend) CreateShaderModule(label, _ string) (renderer.Resource, error) {
	return b.obj(label)
}
func (b *fakeBackend) CreateRenderPipeline(d pipeline.Descriptor, _, _, _ renderer.Resource) (renderer.Resource, error) {
	return b.obj(d.Label())
}
func (b *fakeBackend) CreateTexture(s renderer.TextureSpec) (renderer.Resource, error) {
	return b.obj(s.Label)
}
func (b *fakeBackend) WriteBuffer(_ renderer.Resource, _ uint64, data []byte) error {
	b.uploads = append(b.uploads, data)
	return nil
}
func (b *fakeBackend) Encode(p []renderer.ResolvedPass) error {
	b.encoded = append(b.encoded, p)
	return nil
}

func quadShader(t *testing.T) shader.Source {
	t.Helper()
	data, err := os.ReadFile("../../assets/shaders/quad.wgsl")
	if err != nil {
		t.Fatalf("reading shader: %v", err)
	}
	src, err := shader.Decoder{Label: "Quad"}.Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return src
}

// newPainter creates a painter while stepping the render worker so the create
// commands are answered.
func newPainter(t *testing.T, capacity int) (*Painter, renderer.Renderer, *fakeBackend) {
	t.Helper()
	b := &fakeBackend{}
	r := renderer.NewRenderer(b, message.NewFabric(), renderer.WithCleanupInterval(time.Hour))
	src := quadShader(t)

	type result struct {
		p   *Painter
		err error
	}
	done := make(chan result, 1)
	go func() {
		p, err := NewPainter(context.Background(), r.Client(), src, capacity, nil)
		done <- result{p, err}
	}()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case res := <-done:
			if res.err != nil {
				t.Fatalf("NewPainter failed: %v", res.err)
			}
			return res.p, r, b
		case <-deadline:
			t.Fatal("painter creation was never answered")
		default:
		}
		if err := r.Step(); err != nil {
			t.Fatalf("Step failed: %v", err)
		}
	}
}

func TestQuadShaderLayout(t *testing.T) {
	src := quadShader(t)
	if src.VertexEntry != "vs_main" || src.FragmentEntry != "fs_main" {
		t.Errorf("entry points = (%q, %q)", src.VertexEntry, src.FragmentEntry)
	}
	if len(src.VertexBuffers) != 2 {
		t.Fatalf("got %d vertex buffers, want 2", len(src.VertexBuffers))
	}
	if got := src.VertexBuffers[0].ArrayStride; got != 8 {
		t.Errorf("corner stride = %d, want 8", got)
	}
	inst := src.VertexBuffers[1]
	if inst.ArrayStride != InstanceSize || inst.StepMode != wgpu.VertexStepModeInstance {
		t.Errorf("instance layout = stride %d step %v", inst.ArrayStride, inst.StepMode)
	}
}

func TestPainterDrawsFrame(t *testing.T) {
	p, r, b := newPainter(t, 8)
	defer p.Close()

	var f scene.Frame
	f.Reset(scene.Color{0.1, 0.2, 0.3, 1})
	f.Rect(10, 20, 30, 40, scene.RGBA(255, 0, 0, 255))
	f.Rect(0, 0, 5, 5, scene.RGBA(0, 255, 0, 128))

	batch := p.Batch(&f)
	if len(batch.Writes) != 1 || len(batch.Writes[0].Data) != 2*InstanceSize {
		t.Fatalf("writes = %+v, want one upload of two instances", batch.Writes)
	}
	if err := r.Client().Submit(batch); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := r.Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	last := b.encoded[len(b.encoded)-1]
	if len(last) != 1 {
		t.Fatalf("encoded %d passes, want 1", len(last))
	}
	pass := last[0]
	if c := pass.Color[0].Clear; c.R < 0.09 || c.R > 0.11 || c.A != 1 {
		t.Errorf("clear color = %+v", c)
	}
	if len(pass.Commands) != 4 {
		t.Fatalf("got %d commands, want 4", len(pass.Commands))
	}
	draw := pass.Commands[3]
	if draw.Op != renderer.OpDraw || draw.Count != 6 || draw.InstanceCount != 2 {
		t.Errorf("draw = %+v, want 6 vertices and 2 instances", draw.DrawCommand)
	}
	if len(b.uploads) == 0 || len(b.uploads[len(b.uploads)-1]) != 2*InstanceSize {
		t.Error("instance data was not uploaded")
	}
}

func TestPainterEmptyFrameOnlyClears(t *testing.T) {
	p, _, _ := newPainter(t, 8)
	defer p.Close()

	var f scene.Frame
	batch := p.Batch(&f)
	if len(batch.Writes) != 0 || len(batch.Passes) != 1 || len(batch.Passes[0].Commands) != 0 {
		t.Errorf("batch = %+v, want a single clear pass", batch)
	}
}

func TestPainterClipsToCapacity(t *testing.T) {
	p, _, _ := newPainter(t, 3)
	defer p.Close()

	var f scene.Frame
	for i := range 10 {
		f.Rect(float32(i), 0, 1, 1, scene.Color{1, 1, 1, 1})
	}
	inst := p.Instances(&f)
	if len(inst) != 3 {
		t.Fatalf("got %d instances, want 3", len(inst))
	}
	if inst[2].Origin != [2]float32{2, 0} || inst[2].Size != [2]float32{1, 1} {
		t.Errorf("instance 2 = %+v", inst[2])
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		text  string
		quads int
		width float32
	}{
		{"1", 8, 3},
		{"10", 8 + 12, 7},
		{"a", 10, 3},
		{"?", 0, 3},
		{"", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			var f scene.Frame
			Text(&f, 0, 0, 1, tt.text, scene.Color{1, 1, 1, 1})
			if len(f.Quads) != tt.quads {
				t.Errorf("quads = %d, want %d", len(f.Quads), tt.quads)
			}
			if w := TextWidth(tt.text, 1); w != tt.width {
				t.Errorf("width = %v, want %v", w, tt.width)
			}
		})
	}
}

func TestTextScalesAndOffsets(t *testing.T) {
	var f scene.Frame
	Text(&f, 100, 50, 4, "-", scene.Color{1, 1, 1, 1})
	if len(f.Quads) != 3 {
		t.Fatalf("got %d quads, want 3", len(f.Quads))
	}
	q := f.Quads[0]
	if q.X != 100 || q.Y != 58 || q.W != 4 || q.H != 4 {
		t.Errorf("first quad = %+v", q)
	}
}
