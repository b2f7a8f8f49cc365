package renderer

import (
	"fmt"
	"sync/atomic"
)

// ResourceKind names the pool a resource id belongs to.
type ResourceKind int

const (
	KindBindGroupLayout ResourceKind = iota
	KindBuffer
	KindPipelineLayout
	KindRenderPipeline
	KindShaderModule
	KindTexture
	KindTextureView
)

func (k ResourceKind) String() string {
	switch k {
	case KindBindGroupLayout:
		return "bind group layout"
	case KindBuffer:
		return "buffer"
	case KindPipelineLayout:
		return "pipeline layout"
	case KindRenderPipeline:
		return "render pipeline"
	case KindShaderModule:
		return "shader module"
	case KindTexture:
		return "texture"
	case KindTextureView:
		return "texture view"
	}
	return fmt.Sprintf("ResourceKind(%d)", int(k))
}

var nextID atomic.Uint64

type refState struct {
	id    uint64
	kind  ResourceKind
	count atomic.Int64
}

// Ref is a reference-counted identifier for a GPU resource owned by the render worker.
// The pool keeps one count; every Ref handed to logic code holds another. A resource is
// swept once only the pool's count remains. The zero Ref is invalid.
type Ref struct {
	s *refState
}

func newRef(kind ResourceKind) Ref {
	s := &refState{id: nextID.Add(1), kind: kind}
	s.count.Store(1)
	return Ref{s: s}
}

// ID returns the numeric id, or 0 for the zero Ref.
func (r Ref) ID() uint64 {
	if r.s == nil {
		return 0
	}
	return r.s.id
}

// Kind returns the pool the id belongs to.
func (r Ref) Kind() ResourceKind {
	if r.s == nil {
		return -1
	}
	return r.s.kind
}

// Valid reports whether r refers to a resource.
func (r Ref) Valid() bool { return r.s != nil }

// Clone adds an owner and returns r.
func (r Ref) Clone() Ref {
	if r.s != nil {
		r.s.count.Add(1)
	}
	return r
}

// Release drops one owner. Releasing more often than cloning is a programming error
// and panics.
func (r Ref) Release() {
	if r.s == nil {
		return
	}
	if r.s.count.Add(-1) < 1 {
		panic(fmt.Sprintf("renderer: %s #%d released by its last owner", r.s.kind, r.s.id))
	}
}

// RefCount returns the number of owners, the pool included.
func (r Ref) RefCount() int64 {
	if r.s == nil {
		return 0
	}
	return r.s.count.Load()
}

func (r Ref) String() string {
	if r.s == nil {
		return "ref(nil)"
	}
	return fmt.Sprintf("%s#%d", r.s.kind, r.s.id)
}
