// Package assets implements the asset bundle: a manifest-driven, integrity-checked
// cache of file handles with a filesystem watcher.
package assets

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/millennium-run/engine/apperr"
	"go.uber.org/zap"
)

// Bundle owns the asset root, the handle map and the safety flag. A *Bundle is shared
// by every thread; the handle map is guarded by a leaf mutex and the safety flag is atomic.
type Bundle struct {
	root    string
	keysDir string

	candidates []string
	keysCands  []string
	workers    int
	watch      bool
	log        *zap.Logger

	mu      sync.Mutex
	handles map[string]*Handle

	safe   atomic.Bool
	reason atomic.Pointer[string]

	watcher *watcher
}

// NewBundle resolves the asset root, parses the manifest, verifies every Static asset
// against its sidecar and starts the watcher.
//
// Parameters:
//   - options: functional options (roots, keys dir, logger, workers, watch)
//
// Returns:
//   - *Bundle: the ready bundle
//   - error: NotFound (root or manifest missing), NotDirectory, NotFile (declared asset
//     missing), ParsingError (manifest) or InvalidKey (Static hash mismatch)
func NewBundle(options ...BundleBuilderOption) (*Bundle, error) {
	b := &Bundle{
		workers: runtime.NumCPU(),
		watch:   true,
		log:     zap.NewNop(),
		handles: make(map[string]*Handle),
	}
	for _, opt := range options {
		opt(b)
	}
	if len(b.candidates) == 0 {
		b.candidates = DefaultRoots()
	}

	root, err := resolveRoot(b.candidates)
	if err != nil {
		return nil, err
	}
	b.root = root
	if b.keysDir == "" {
		b.keysDir = resolveKeysDir(root, b.keysCands)
	}
	b.log = b.log.With(zap.String("root", b.root))

	f, err := os.Open(filepath.Join(root, ManifestName))
	if err != nil {
		return nil, apperr.FromIO("bundle.new", ManifestName, err)
	}
	entries, err := ParseManifest(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	var static []string
	for _, e := range entries {
		abs := filepath.Join(root, filepath.FromSlash(e.Path))
		info, statErr := os.Stat(abs)
		switch {
		case statErr == nil && !info.Mode().IsRegular():
			return nil, apperr.New(apperr.NotFile, "bundle.new", e.Path)
		case statErr != nil && e.Kind != Optional:
			return nil, apperr.Wrap(apperr.NotFile, "bundle.new", e.Path, statErr)
		}
		if e.Kind == Static {
			static = append(static, e.Path)
		}
	}

	if err := VerifyAll(root, b.keysDir, static, b.workers); err != nil {
		b.log.Error("static asset verification failed", zap.Error(err))
		return nil, err
	}

	b.safe.Store(true)
	for _, e := range entries {
		b.handles[e.Path] = newHandle(b, e)
	}

	if b.watch {
		w, err := newWatcher(b)
		if err != nil {
			return nil, err
		}
		b.watcher = w
	}

	b.log.Info("asset bundle ready",
		zap.Int("assets", len(entries)),
		zap.Int("static", len(static)),
		zap.String("keys", b.keysDir))
	return b, nil
}

// DefaultRoots lists the asset roots probed when none are configured, highest priority first.
func DefaultRoots() []string {
	var roots []string
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		roots = append(roots, filepath.Join(dir, "assets"), filepath.Join(dir, "..", "assets"))
	}
	return append(roots, "assets")
}

func resolveRoot(candidates []string) (string, error) {
	var notDir string
	for _, c := range candidates {
		abs, err := filepath.Abs(c)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			notDir = abs
			continue
		}
		return abs, nil
	}
	if notDir != "" {
		return "", apperr.New(apperr.NotDirectory, "bundle.root", notDir)
	}
	return "", apperr.New(apperr.NotFound, "bundle.root", "")
}

func resolveKeysDir(root string, candidates []string) string {
	if len(candidates) == 0 {
		candidates = []string{filepath.Join(root, "..", "keys"), filepath.Join(root, ".keys")}
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			abs, _ := filepath.Abs(c)
			return abs
		}
	}
	return filepath.Clean(candidates[0])
}

// Root returns the absolute asset root.
func (b *Bundle) Root() string { return b.root }

// KeysDir returns the sidecar directory.
func (b *Bundle) KeysDir() string { return b.keysDir }

// Get returns the handle for path.
//
// Parameters:
//   - path: the asset path relative to the root
//
// Returns:
//   - *Handle: the shared handle
//   - error: UnsafetyCache if the bundle is poisoned, NotFound if path is not in the manifest
func (b *Bundle) Get(path string) (*Handle, error) {
	if !b.CheckIntegrity() {
		return nil, apperr.New(apperr.UnsafetyCache, "bundle.get", path)
	}
	rel, err := CleanPath(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, "bundle.get", path, err)
	}
	b.mu.Lock()
	h, ok := b.handles[rel]
	b.mu.Unlock()
	if !ok {
		return nil, apperr.New(apperr.NotFound, "bundle.get", rel)
	}
	return h, nil
}

// Release drops the cached content of path; the handle stays valid.
func (b *Bundle) Release(path string) {
	rel, err := CleanPath(path)
	if err != nil {
		return
	}
	b.mu.Lock()
	h := b.handles[rel]
	b.mu.Unlock()
	if h != nil {
		h.release()
	}
}

// Paths returns every manifest path in sorted order.
func (b *Bundle) Paths() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.handles))
	for p := range b.handles {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (b *Bundle) lookup(rel string) *Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handles[rel]
}

// CheckIntegrity reports whether the bundle is still trusted. It returns false for
// good once any Static asset failed verification.
func (b *Bundle) CheckIntegrity() bool {
	return b.safe.Load()
}

// Poison marks the bundle untrusted, disabling every handle. Only the first reason is kept.
func (b *Bundle) Poison(reason string) {
	if b.safe.CompareAndSwap(true, false) {
		b.reason.Store(&reason)
		b.log.Error("asset bundle poisoned", zap.String("reason", reason))
	}
}

// PoisonReason returns why the bundle was poisoned, or "" while it is trusted.
func (b *Bundle) PoisonReason() string {
	if r := b.reason.Load(); r != nil {
		return *r
	}
	return ""
}

// Close stops the watcher.
func (b *Bundle) Close() error {
	if b.watcher == nil {
		return nil
	}
	return b.watcher.close()
}

// IsIntegrityError reports whether err means a Static asset cannot be trusted.
func IsIntegrityError(err error) bool {
	return errors.Is(err, apperr.InvalidKey) || errors.Is(err, apperr.UnsafetyCache) ||
		errors.Is(err, apperr.DisabledHandle)
}
