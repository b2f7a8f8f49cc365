package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// DrawOp identifies a recorded draw command.
type DrawOp int

const (
	OpSetPipeline DrawOp = iota
	OpSetVertexBuffer
	OpSetIndexBuffer
	OpDraw
	OpDrawIndexed
)

// DrawCommand is one recorded render pass command. Only the fields relevant to Op are read.
type DrawCommand struct {
	Op DrawOp

	Pipeline Ref // OpSetPipeline
	Buffer   Ref // OpSetVertexBuffer, OpSetIndexBuffer

	Slot        uint32           // OpSetVertexBuffer
	IndexFormat wgpu.IndexFormat // OpSetIndexBuffer

	// First and Count select vertices (OpDraw) or indices (OpDrawIndexed).
	First, Count uint32
	// FirstInstance and InstanceCount select the instance range.
	FirstInstance, InstanceCount uint32
	BaseVertex                   int32 // OpDrawIndexed
}

// SetPipeline records a pipeline bind.
func SetPipeline(p Ref) DrawCommand { return DrawCommand{Op: OpSetPipeline, Pipeline: p} }

// SetVertexBuffer records a vertex buffer bind at slot.
func SetVertexBuffer(slot uint32, buf Ref) DrawCommand {
	return DrawCommand{Op: OpSetVertexBuffer, Slot: slot, Buffer: buf}
}

// SetIndexBuffer records an index buffer bind.
func SetIndexBuffer(buf Ref, format wgpu.IndexFormat) DrawCommand {
	return DrawCommand{Op: OpSetIndexBuffer, Buffer: buf, IndexFormat: format}
}

// Draw records a non-indexed draw of vertices [first, first+count) for instances
// [firstInstance, firstInstance+instances).
func Draw(first, count, firstInstance, instances uint32) DrawCommand {
	return DrawCommand{Op: OpDraw, First: first, Count: count, FirstInstance: firstInstance, InstanceCount: instances}
}

// DrawIndexed records an indexed draw.
func DrawIndexed(first, count uint32, baseVertex int32, firstInstance, instances uint32) DrawCommand {
	return DrawCommand{
		Op: OpDrawIndexed, First: first, Count: count, BaseVertex: baseVertex,
		FirstInstance: firstInstance, InstanceCount: instances,
	}
}

// ColorAttachment names a color target by id. A zero View targets the swapchain.
type ColorAttachment struct {
	View  Ref
	Load  bool // keep existing content instead of clearing
	Clear wgpu.Color
}

// DepthAttachment names a depth target by id.
type DepthAttachment struct {
	View  Ref
	Clear float32
}

// PassDescriptor describes the attachments of one render pass.
type PassDescriptor struct {
	Label string
	Color []ColorAttachment
	Depth *DepthAttachment
}

// Pass is a descriptor plus its ordered draw commands.
type Pass struct {
	Descriptor PassDescriptor
	Commands   []DrawCommand
}

// BufferWrite is an upload applied just before the batch's passes are encoded. Data
// must not be modified after Submit.
type BufferWrite struct {
	Buffer Ref
	Offset uint64
	Data   []byte
}

// Batch is everything logic wants drawn for one frame. Writes travel with the batch so
// a dropped batch drops its uploads too.
type Batch struct {
	Writes []BufferWrite
	Passes []Pass
}

// Refs returns every id referenced by the batch, uploads first.
func (b Batch) Refs() []Ref {
	var refs []Ref
	for _, w := range b.Writes {
		refs = append(refs, w.Buffer)
	}
	for _, p := range b.Passes {
		for _, c := range p.Descriptor.Color {
			if c.View.Valid() {
				refs = append(refs, c.View)
			}
		}
		if p.Descriptor.Depth != nil {
			refs = append(refs, p.Descriptor.Depth.View)
		}
		for _, cmd := range p.Commands {
			switch cmd.Op {
			case OpSetPipeline:
				refs = append(refs, cmd.Pipeline)
			case OpSetVertexBuffer, OpSetIndexBuffer:
				refs = append(refs, cmd.Buffer)
			}
		}
	}
	return refs
}

// submissionQueue holds batches between Submit and the next frame. It is touched only
// by the render worker goroutine.
type submissionQueue struct {
	batches []Batch
	dropped uint64
}

func (q *submissionQueue) push(b Batch) {
	q.batches = append(q.batches, b)
}

// takeLatest returns the newest batch and discards the rest. Dropped batches are
// discarded whole.
func (q *submissionQueue) takeLatest() (Batch, bool, int) {
	n := len(q.batches)
	if n == 0 {
		return Batch{}, false, 0
	}
	latest := q.batches[n-1]
	for i := range q.batches {
		q.batches[i] = Batch{}
	}
	q.batches = q.batches[:0]
	q.dropped += uint64(n - 1)
	return latest, true, n - 1
}

func (q *submissionQueue) len() int { return len(q.batches) }
