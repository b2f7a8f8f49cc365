package assets

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/millennium-run/engine/apperr"
)

// KeySize is the length of a sidecar: the raw SHA-256 digest.
const KeySize = sha256.Size

// HashFile returns the SHA-256 digest of the file at path.
func HashFile(path string) ([KeySize]byte, error) {
	var sum [KeySize]byte
	f, err := os.Open(path)
	if err != nil {
		return sum, apperr.FromIO("integrity.hash", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return sum, apperr.FromIO("integrity.hash", path, err)
	}
	copy(sum[:], h.Sum(nil))
	return sum, nil
}

// SidecarPath returns where the sidecar of rel lives under keysDir.
func SidecarPath(keysDir, rel string) string {
	return filepath.Join(keysDir, filepath.FromSlash(rel))
}

// ReadSidecar loads the stored digest for rel. A missing or malformed sidecar is an
// InvalidKey error: a Static asset without a valid key cannot be trusted.
func ReadSidecar(keysDir, rel string) ([KeySize]byte, error) {
	var key [KeySize]byte
	data, err := os.ReadFile(SidecarPath(keysDir, rel))
	if err != nil {
		return key, apperr.Wrap(apperr.InvalidKey, "integrity.sidecar", rel, err)
	}
	if len(data) != KeySize {
		return key, apperr.Wrap(apperr.InvalidKey, "integrity.sidecar", rel,
			fmt.Errorf("sidecar is %d bytes, want %d", len(data), KeySize))
	}
	copy(key[:], data)
	return key, nil
}

// VerifyFile recomputes the digest of root/rel and compares it to its sidecar.
//
// Parameters:
//   - root: the asset root
//   - keysDir: the sidecar directory
//   - rel: the asset path relative to root
//
// Returns:
//   - error: InvalidKey on mismatch, or the I/O error from hashing
func VerifyFile(root, keysDir, rel string) error {
	want, err := ReadSidecar(keysDir, rel)
	if err != nil {
		return err
	}
	got, err := HashFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return err
	}
	if !bytes.Equal(got[:], want[:]) {
		return apperr.New(apperr.InvalidKey, "integrity.verify", rel)
	}
	return nil
}

// WriteSidecar hashes root/rel and writes the digest to its sidecar, creating directories.
func WriteSidecar(root, keysDir, rel string) error {
	sum, err := HashFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return err
	}
	dst := SidecarPath(keysDir, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return apperr.FromIO("integrity.sidecar", dst, err)
	}
	return apperr.FromIO("integrity.sidecar", dst, os.WriteFile(dst, sum[:], 0o644))
}

// ForEach runs fn for every path on a worker pool of the given size and returns the
// per-path errors in input order. A nil slice element means success.
//
// Parameters:
//   - paths: the relative asset paths to process
//   - workers: the maximum number of concurrent workers (<= 0 means 1)
//   - fn: the work applied to each path
//
// Returns:
//   - []error: one entry per path
func ForEach(paths []string, workers int, fn func(rel string) error) []error {
	errs := make([]error, len(paths))
	if len(paths) == 0 {
		return errs
	}
	if workers <= 0 {
		workers = 1
	}
	pool := worker.NewDynamicWorkerPool(workers, len(paths), time.Second)
	defer pool.Stop()

	var wg sync.WaitGroup
	wg.Add(len(paths))
	for i, rel := range paths {
		i, rel := i, rel
		pool.SubmitTask(worker.Task{
			ID:      i,
			Payload: rel,
			Do: func() (any, error) {
				defer wg.Done()
				errs[i] = fn(rel)
				return nil, errs[i]
			},
		})
	}
	wg.Wait()
	return errs
}

// VerifyAll checks every path against its sidecar in parallel and returns the first
// failure in input order.
func VerifyAll(root, keysDir string, paths []string, workers int) error {
	for _, err := range ForEach(paths, workers, func(rel string) error {
		return VerifyFile(root, keysDir, rel)
	}) {
		if err != nil {
			return err
		}
	}
	return nil
}
