// Package save stores the player's best percent per actor in a small binary file.
package save

import (
	"encoding/binary"
	"fmt"

	"github.com/Carmen-Shannon/millennium-run/engine/apperr"
	"github.com/Carmen-Shannon/millennium-run/engine/assets"
	"github.com/Carmen-Shannon/millennium-run/game/stage"
)

// Path is the save asset's manifest path.
const Path = "user/save.bin"

// Size is the encoded length: one little-endian uint16 per actor, then the beginner flag.
const Size = 2*stage.NumActors + 1

// MaxPercent bounds every stored score.
const MaxPercent = 100

// Save is the persistent progress record.
type Save struct {
	Aris, Momoi, Midori, Yuzu uint16
	// Beginner is set until the player finishes a first round.
	Beginner bool
}

// Default is the record of a new player.
func Default() Save {
	return Save{Beginner: true}
}

func (s *Save) slot(a stage.Actor) *uint16 {
	switch a {
	case stage.Aris:
		return &s.Aris
	case stage.Momoi:
		return &s.Momoi
	case stage.Midori:
		return &s.Midori
	case stage.Yuzu:
		return &s.Yuzu
	}
	return nil
}

// Best returns the best percent for a.
func (s Save) Best(a stage.Actor) uint16 {
	if p := s.slot(a); p != nil {
		return *p
	}
	return 0
}

// Improve records percent for a if it beats the stored best and reports whether it did.
// Finishing any round clears Beginner.
func (s *Save) Improve(a stage.Actor, percent int) bool {
	s.Beginner = false
	p := s.slot(a)
	if p == nil || percent <= int(*p) {
		return false
	}
	if percent > MaxPercent {
		percent = MaxPercent
	}
	*p = uint16(percent)
	return true
}

// Codec encodes and decodes the binary layout. It satisfies assets.Decoder[Save] and
// assets.Encoder[Save].
type Codec struct{}

func (Codec) Encode(s Save) ([]byte, error) {
	out := make([]byte, Size)
	for i, a := range stage.Actors() {
		v := s.Best(a)
		if v > MaxPercent {
			return nil, fmt.Errorf("save: %s best %d exceeds %d", a, v, MaxPercent)
		}
		binary.LittleEndian.PutUint16(out[2*i:], v)
	}
	if s.Beginner {
		out[Size-1] = 1
	}
	return out, nil
}

func (Codec) Decode(data []byte) (Save, error) {
	if len(data) != Size {
		return Save{}, apperr.Wrap(apperr.UnexpectedEOF, "save.decode", Path,
			fmt.Errorf("got %d bytes, want %d", len(data), Size))
	}
	var s Save
	for i, a := range stage.Actors() {
		v := binary.LittleEndian.Uint16(data[2*i:])
		if v > MaxPercent {
			return Save{}, apperr.Wrap(apperr.ParsingError, "save.decode", Path,
				fmt.Errorf("%s best %d exceeds %d", a, v, MaxPercent))
		}
		*s.slot(a) = v
	}
	switch data[Size-1] {
	case 0:
	case 1:
		s.Beginner = true
	default:
		return Save{}, apperr.Wrap(apperr.ParsingError, "save.decode", Path,
			fmt.Errorf("beginner flag %d", data[Size-1]))
	}
	return s, nil
}

// Load reads the save asset, falling back to Default when the file does not exist yet.
func Load(h *assets.Handle) (Save, error) {
	if !h.Exists() {
		return Default(), nil
	}
	return assets.Read[Save](h, Codec{})
}

// Store writes s to the save asset.
func Store(h *assets.Handle, s Save) error {
	return assets.Write[Save](h, Codec{}, s)
}
