package assets

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/millennium-run/engine/apperr"
)

// Handle is a shared reference to one manifest entry. Handles are only issued by a
// Bundle and stop working once that bundle is poisoned.
type Handle struct {
	bundle *Bundle
	path   string // relative, slash-separated
	abs    string
	kind   Kind

	// generation is bumped by the watcher whenever the file changes on disk.
	generation atomic.Uint64

	mu        sync.Mutex
	cached    []byte
	cachedGen uint64
	hasCache  bool
}

func newHandle(b *Bundle, e Entry) *Handle {
	return &Handle{
		bundle: b,
		path:   e.Path,
		abs:    filepath.Join(b.root, filepath.FromSlash(e.Path)),
		kind:   e.Kind,
	}
}

// Path returns the asset path relative to the bundle root.
func (h *Handle) Path() string { return h.path }

// AbsPath returns the asset's location on disk.
func (h *Handle) AbsPath() string { return h.abs }

// Kind returns the declared kind.
func (h *Handle) Kind() Kind { return h.kind }

// Generation returns how many on-disk changes the watcher has observed.
func (h *Handle) Generation() uint64 { return h.generation.Load() }

func (h *Handle) bump() { h.generation.Add(1) }

// Exists reports whether the file is currently present on disk.
func (h *Handle) Exists() bool {
	info, err := os.Stat(h.abs)
	return err == nil && info.Mode().IsRegular()
}

// ReadBytes returns the file content, serving the cached copy while the generation
// is unchanged. The returned slice must not be modified.
func (h *Handle) ReadBytes() ([]byte, error) {
	if !h.bundle.CheckIntegrity() {
		return nil, apperr.New(apperr.DisabledHandle, "handle.read", h.path)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	gen := h.generation.Load()
	if h.hasCache && h.cachedGen == gen {
		return h.cached, nil
	}
	data, err := os.ReadFile(h.abs)
	if err != nil {
		return nil, apperr.FromIO("handle.read", h.path, err)
	}
	h.cached, h.cachedGen, h.hasCache = data, gen, true
	return data, nil
}

// WriteBytes atomically replaces the file content: the data is written to a temporary
// file in the same directory, synced, then renamed over the target.
func (h *Handle) WriteBytes(data []byte) error {
	if !h.kind.Writable() {
		return apperr.New(apperr.Unsupported, "handle.write", h.path)
	}
	if !h.bundle.CheckIntegrity() {
		return apperr.New(apperr.DisabledHandle, "handle.write", h.path)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	dir := filepath.Dir(h.abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.FromIO("handle.write", h.path, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(h.abs)+".*")
	if err != nil {
		return apperr.FromIO("handle.write", h.path, err)
	}
	tmpName := tmp.Name()
	cleanup := func(cause error) error {
		tmp.Close()
		os.Remove(tmpName)
		return apperr.FromIO("handle.write", h.path, cause)
	}
	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperr.FromIO("handle.write", h.path, err)
	}
	if err := os.Rename(tmpName, h.abs); err != nil {
		os.Remove(tmpName)
		return apperr.FromIO("handle.write", h.path, err)
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	h.cached, h.cachedGen, h.hasCache = cp, h.generation.Load(), true
	return nil
}

// release drops the cached content.
func (h *Handle) release() {
	h.mu.Lock()
	h.cached, h.hasCache = nil, false
	h.mu.Unlock()
}
