package save

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/millennium-run/engine/apperr"
	"github.com/Carmen-Shannon/millennium-run/engine/assets"
	"github.com/Carmen-Shannon/millennium-run/game/stage"
)

func TestCodecRoundTrip(t *testing.T) {
	in := Save{Aris: 81, Momoi: 0, Midori: 100, Yuzu: 42, Beginner: false}
	data, err := Codec{}.Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != Size {
		t.Fatalf("encoded %d bytes, want %d", len(data), Size)
	}
	if data[0] != 81 || data[1] != 0 || data[4] != 100 {
		t.Errorf("layout = %v, want little-endian uint16 per actor", data)
	}
	out, err := Codec{}.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestDecodeRejects(t *testing.T) {
	valid, _ := Codec{}.Encode(Default())
	tooHigh := append([]byte(nil), valid...)
	tooHigh[2] = 101
	badFlag := append([]byte(nil), valid...)
	badFlag[Size-1] = 7

	tests := []struct {
		name string
		data []byte
		want apperr.Kind
	}{
		{"short", valid[:5], apperr.UnexpectedEOF},
		{"long", append(append([]byte(nil), valid...), 0), apperr.UnexpectedEOF},
		{"percent over 100", tooHigh, apperr.ParsingError},
		{"beginner flag", badFlag, apperr.ParsingError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Codec{}.Decode(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestImprove(t *testing.T) {
	s := Default()
	if !s.Improve(stage.Momoi, 55) || s.Best(stage.Momoi) != 55 {
		t.Errorf("first score not recorded: %+v", s)
	}
	if s.Beginner {
		t.Error("Improve should clear Beginner")
	}
	if s.Improve(stage.Momoi, 40) || s.Best(stage.Momoi) != 55 {
		t.Errorf("lower score replaced best: %+v", s)
	}
	if !s.Improve(stage.Yuzu, 130) || s.Best(stage.Yuzu) != MaxPercent {
		t.Errorf("score not clamped: %+v", s)
	}
}

func TestLoadStoreThroughBundle(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "assets")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := Path + " Optional\n"
	if err := os.WriteFile(filepath.Join(root, assets.ManifestName), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	b, err := assets.NewBundle(assets.WithRoots(root), assets.WithKeysDir(filepath.Join(base, "keys")),
		assets.WithWatch(false))
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	h, err := b.Get(Path)
	if err != nil {
		t.Fatal(err)
	}

	s, err := Load(h)
	if err != nil || s != Default() {
		t.Fatalf("Load on missing file = %+v, %v", s, err)
	}
	s.Improve(stage.Aris, 77)
	if err := Store(h, s); err != nil {
		t.Fatal(err)
	}
	got, err := Load(h)
	if err != nil || got != s {
		t.Errorf("Load after Store = %+v, %v; want %+v", got, err, s)
	}
}
