package renderer

import (
	"sort"
	"sync"
)

// Resource is a GPU object owned by a pool. Every wgpu object type satisfies it.
type Resource interface {
	Release()
}

type poolEntry[T Resource] struct {
	ref Ref
	obj T
}

// Pool owns GPU objects of one kind, ordered by id for binary-search lookup. Its mutex
// is a leaf lock: nothing else is acquired while it is held.
type Pool[T Resource] struct {
	kind    ResourceKind
	mu      sync.Mutex
	entries []poolEntry[T]
}

// NewPool creates an empty pool for kind.
func NewPool[T Resource](kind ResourceKind) *Pool[T] {
	return &Pool[T]{kind: kind}
}

// Insert stores obj and returns a Ref owned by the caller. The pool keeps its own count.
//
// Parameters:
//   - obj: the GPU object to own
//
// Returns:
//   - Ref: the caller's reference; release it when done
func (p *Pool[T]) Insert(obj T) Ref {
	ref := newRef(p.kind)
	p.mu.Lock()
	defer p.mu.Unlock()

	// ids are allocated globally; the search keeps entries ordered.
	i := sort.Search(len(p.entries), func(i int) bool { return p.entries[i].ref.ID() >= ref.ID() })
	p.entries = append(p.entries, poolEntry[T]{})
	copy(p.entries[i+1:], p.entries[i:])
	p.entries[i] = poolEntry[T]{ref: ref, obj: obj}
	return ref.Clone()
}

// Get looks up the object for ref.
//
// Parameters:
//   - ref: a reference previously returned by Insert
//
// Returns:
//   - T: the object
//   - bool: false if ref is from another pool or was already swept
func (p *Pool[T]) Get(ref Ref) (T, bool) {
	var zero T
	if !ref.Valid() || ref.Kind() != p.kind {
		return zero, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	id := ref.ID()
	i := sort.Search(len(p.entries), func(i int) bool { return p.entries[i].ref.ID() >= id })
	if i < len(p.entries) && p.entries[i].ref.ID() == id {
		return p.entries[i].obj, true
	}
	return zero, false
}

// Len returns the number of live entries.
func (p *Pool[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// CleanupUnusedItems releases every object whose only remaining owner is the pool and
// returns how many were swept. Calling it twice in a row sweeps nothing the second time.
func (p *Pool[T]) CleanupUnusedItems() int {
	p.mu.Lock()
	var dead []T
	kept := p.entries[:0]
	for _, e := range p.entries {
		if e.ref.RefCount() <= 1 {
			dead = append(dead, e.obj)
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(p.entries); i++ {
		p.entries[i] = poolEntry[T]{}
	}
	p.entries = kept
	p.mu.Unlock()

	for _, obj := range dead {
		obj.Release()
	}
	return len(dead)
}

// Clear releases every object regardless of outstanding references.
func (p *Pool[T]) Clear() {
	p.mu.Lock()
	entries := p.entries
	p.entries = nil
	p.mu.Unlock()
	for _, e := range entries {
		e.obj.Release()
	}
}
