package window

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/millennium-run/engine/apperr"
)

// Size is a width and height in pixels.
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Width, s.Height) }

// Fits reports whether s fits inside bounds.
func (s Size) Fits(bounds Size) bool {
	return s.Width <= bounds.Width && s.Height <= bounds.Height
}

// ResolutionError reports that no resolution of the downgrade chain fits the monitor.
type ResolutionError struct {
	Requested Size
	Monitor   Size
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("window: no resolution up to %s fits the %s monitor", e.Requested, e.Monitor)
}

// Is makes the error match apperr.Unsupported.
func (e *ResolutionError) Is(target error) bool {
	return target == apperr.Unsupported
}

// FitResolution walks the downgrade chain from requested and returns the largest
// entry that fits the monitor. Entries larger than requested in either dimension are
// never chosen.
//
// Parameters:
//   - requested: the configured resolution
//   - chain: the supported resolutions, in any order
//   - monitor: the monitor's current video mode size
//
// Returns:
//   - Size: the resolution to open the window at
//   - error: a *ResolutionError when nothing fits
func FitResolution(requested Size, chain []Size, monitor Size) (Size, error) {
	if len(chain) == 0 {
		if requested.Fits(monitor) {
			return requested, nil
		}
		return Size{}, &ResolutionError{Requested: requested, Monitor: monitor}
	}

	candidates := make([]Size, 0, len(chain))
	for _, s := range chain {
		if s.Fits(requested) {
			candidates = append(candidates, s)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Width*candidates[i].Height > candidates[j].Width*candidates[j].Height
	})
	for _, s := range candidates {
		if s.Fits(monitor) {
			return s, nil
		}
	}
	return Size{}, &ResolutionError{Requested: requested, Monitor: monitor}
}
