package assets

import "go.uber.org/zap"

// BundleBuilderOption is a functional option applied to a Bundle during NewBundle.
type BundleBuilderOption func(*Bundle)

// WithRoots sets the candidate asset roots, highest priority first.
//
// Parameters:
//   - roots: directories to probe; the first existing one becomes the root
//
// Returns:
//   - BundleBuilderOption: option function to apply
func WithRoots(roots ...string) BundleBuilderOption {
	return func(b *Bundle) {
		b.candidates = append([]string(nil), roots...)
	}
}

// WithKeysDir sets the sidecar directory explicitly.
//
// Parameters:
//   - dir: directory holding the SHA-256 sidecars
//
// Returns:
//   - BundleBuilderOption: option function to apply
func WithKeysDir(dir string) BundleBuilderOption {
	return func(b *Bundle) {
		b.keysDir = dir
	}
}

// WithKeysCandidates sets the sidecar directories probed when WithKeysDir is not used.
//
// Parameters:
//   - dirs: candidate directories, highest priority first
//
// Returns:
//   - BundleBuilderOption: option function to apply
func WithKeysCandidates(dirs ...string) BundleBuilderOption {
	return func(b *Bundle) {
		b.keysCands = append([]string(nil), dirs...)
	}
}

// WithLogger sets the logger used by the bundle and its watcher.
//
// Parameters:
//   - log: the parent logger; the bundle uses log.Named("assets")
//
// Returns:
//   - BundleBuilderOption: option function to apply
func WithLogger(log *zap.Logger) BundleBuilderOption {
	return func(b *Bundle) {
		if log != nil {
			b.log = log.Named("assets")
		}
	}
}

// WithWorkers sets how many workers verify Static assets at startup.
//
// Parameters:
//   - n: maximum concurrent hash workers
//
// Returns:
//   - BundleBuilderOption: option function to apply
func WithWorkers(n int) BundleBuilderOption {
	return func(b *Bundle) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithWatch enables or disables the filesystem watcher (enabled by default).
//
// Parameters:
//   - enabled: false to skip starting the watcher
//
// Returns:
//   - BundleBuilderOption: option function to apply
func WithWatch(enabled bool) BundleBuilderOption {
	return func(b *Bundle) {
		b.watch = enabled
	}
}
