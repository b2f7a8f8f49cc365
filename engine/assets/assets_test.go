package assets

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/millennium-run/engine/apperr"
)

type fixture struct {
	root string
	keys string
}

// newFixture lays out an asset root and keys dir. Files named in static get sidecars.
func newFixture(t *testing.T, manifest string, files map[string]string, static ...string) fixture {
	t.Helper()
	base := t.TempDir()
	f := fixture{root: filepath.Join(base, "assets"), keys: filepath.Join(base, "keys")}
	if err := os.MkdirAll(f.root, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(f.keys, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(f.root, ManifestName), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	for rel, content := range files {
		abs := filepath.Join(f.root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	for _, rel := range static {
		if err := WriteSidecar(f.root, f.keys, rel); err != nil {
			t.Fatalf("WriteSidecar(%s): %v", rel, err)
		}
	}
	return f
}

func (f fixture) open(t *testing.T, watch bool) (*Bundle, error) {
	t.Helper()
	b, err := NewBundle(WithRoots(f.root), WithKeysDir(f.keys), WithWorkers(2), WithWatch(watch))
	if err == nil {
		t.Cleanup(func() { b.Close() })
	}
	return b, err
}

const sampleManifest = `# assets
shaders/quad.wgsl   Static
user/save.dat       Dynamic   # best scores
user/settings.toml  Optional
`

func sampleFiles() map[string]string {
	return map[string]string{
		"shaders/quad.wgsl": "@vertex fn main() {}",
		"user/save.dat":     "0000",
	}
}

func TestParseManifest(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Entry
		wantErr bool
	}{
		{
			name:  "comments and blanks",
			input: "# header\n\n a.txt Static # trailing\nb/c.bin\tDynamic\n",
			want: []Entry{
				{Path: "a.txt", Kind: Static, Line: 3},
				{Path: "b/c.bin", Kind: Dynamic, Line: 4},
			},
		},
		{name: "unknown kind", input: "a.txt Frozen\n", wantErr: true},
		{name: "missing kind", input: "a.txt\n", wantErr: true},
		{name: "extra token", input: "a.txt Static extra\n", wantErr: true},
		{name: "duplicate", input: "a.txt Static\n./a.txt Dynamic\n", wantErr: true},
		{name: "escaping path", input: "../secret Static\n", wantErr: true},
		{name: "absolute path", input: "/etc/passwd Static\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseManifest(strings.NewReader(tt.input))
			if tt.wantErr {
				if !errors.Is(err, apperr.ParsingError) {
					t.Fatalf("expected ParsingError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d entries, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseManifestErrorNamesLine(t *testing.T) {
	_, err := ParseManifest(strings.NewReader("a.txt Static\n\nb.txt Bogus\n"))
	if err == nil || !strings.Contains(err.Error(), ManifestName+":3") {
		t.Fatalf("error should name line 3, got %v", err)
	}
}

func TestNewBundleLoadsAndReads(t *testing.T) {
	f := newFixture(t, sampleManifest, sampleFiles(), "shaders/quad.wgsl")
	b, err := f.open(t, false)
	if err != nil {
		t.Fatalf("NewBundle failed: %v", err)
	}
	if !b.CheckIntegrity() {
		t.Fatal("fresh bundle should be trusted")
	}

	h, err := b.Get("shaders/quad.wgsl")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	src, err := Read(h, Text)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if src != "@vertex fn main() {}" {
		t.Errorf("Read = %q", src)
	}

	if _, err := b.Get("shaders/missing.wgsl"); !errors.Is(err, apperr.NotFound) {
		t.Errorf("Get of undeclared path: want NotFound, got %v", err)
	}
	want := []string{"shaders/quad.wgsl", "user/save.dat", "user/settings.toml"}
	got := b.Paths()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Paths = %v, want %v", got, want)
	}
}

func TestNewBundleFailures(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		_, err := NewBundle(WithRoots(filepath.Join(t.TempDir(), "nope")), WithWatch(false))
		if !errors.Is(err, apperr.NotFound) {
			t.Fatalf("want NotFound, got %v", err)
		}
	})

	t.Run("missing dynamic asset", func(t *testing.T) {
		files := sampleFiles()
		delete(files, "user/save.dat")
		f := newFixture(t, sampleManifest, files, "shaders/quad.wgsl")
		if _, err := f.open(t, false); !errors.Is(err, apperr.NotFile) {
			t.Fatalf("want NotFile, got %v", err)
		}
	})

	t.Run("static hash mismatch", func(t *testing.T) {
		f := newFixture(t, sampleManifest, sampleFiles(), "shaders/quad.wgsl")
		abs := filepath.Join(f.root, "shaders", "quad.wgsl")
		if err := os.WriteFile(abs, []byte("tampered"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := f.open(t, false); !errors.Is(err, apperr.InvalidKey) {
			t.Fatalf("want InvalidKey, got %v", err)
		}
	})

	t.Run("static without sidecar", func(t *testing.T) {
		f := newFixture(t, sampleManifest, sampleFiles())
		if _, err := f.open(t, false); !errors.Is(err, apperr.InvalidKey) {
			t.Fatalf("want InvalidKey, got %v", err)
		}
	})
}

func TestHandleWriteRules(t *testing.T) {
	f := newFixture(t, sampleManifest, sampleFiles(), "shaders/quad.wgsl")
	b, err := f.open(t, false)
	if err != nil {
		t.Fatal(err)
	}

	static, _ := b.Get("shaders/quad.wgsl")
	if err := Write(static, EncoderFunc[string](func(s string) ([]byte, error) {
		return []byte(s), nil
	}), "x"); !errors.Is(err, apperr.Unsupported) {
		t.Errorf("write to Static: want Unsupported, got %v", err)
	}

	opt, _ := b.Get("user/settings.toml")
	if opt.Exists() {
		t.Fatal("optional asset should start missing")
	}
	if _, err := opt.ReadBytes(); !errors.Is(err, apperr.NotFound) {
		t.Errorf("read of missing optional: want NotFound, got %v", err)
	}
	if err := opt.WriteBytes([]byte("language = \"Korean\"\n")); err != nil {
		t.Fatalf("create optional: %v", err)
	}
	data, err := opt.ReadBytes()
	if err != nil || string(data) != "language = \"Korean\"\n" {
		t.Errorf("read back = %q, %v", data, err)
	}
	onDisk, err := os.ReadFile(opt.AbsPath())
	if err != nil || string(onDisk) != string(data) {
		t.Errorf("disk content = %q, %v", onDisk, err)
	}

	dyn, _ := b.Get("user/save.dat")
	if err := dyn.WriteBytes([]byte("1111")); err != nil {
		t.Fatalf("write dynamic: %v", err)
	}
	if got, _ := dyn.ReadBytes(); string(got) != "1111" {
		t.Errorf("dynamic read back = %q", got)
	}
}

func TestDecoderErrorIsParsing(t *testing.T) {
	f := newFixture(t, sampleManifest, sampleFiles(), "shaders/quad.wgsl")
	b, err := f.open(t, false)
	if err != nil {
		t.Fatal(err)
	}
	h, _ := b.Get("user/save.dat")
	_, err = Read(h, DecoderFunc[int](func(data []byte) (int, error) {
		return strconv.Atoi("x" + string(data))
	}))
	if !errors.Is(err, apperr.ParsingError) {
		t.Errorf("want ParsingError, got %v", err)
	}
}

func TestPoisonDisablesHandles(t *testing.T) {
	f := newFixture(t, sampleManifest, sampleFiles(), "shaders/quad.wgsl")
	b, err := f.open(t, false)
	if err != nil {
		t.Fatal(err)
	}
	h, _ := b.Get("user/save.dat")

	b.Poison("first")
	b.Poison("second")
	if b.CheckIntegrity() {
		t.Fatal("poisoned bundle reports integrity")
	}
	if b.PoisonReason() != "first" {
		t.Errorf("PoisonReason = %q, want first", b.PoisonReason())
	}
	if _, err := b.Get("user/save.dat"); !errors.Is(err, apperr.UnsafetyCache) {
		t.Errorf("Get after poison: want UnsafetyCache, got %v", err)
	}
	if _, err := h.ReadBytes(); !errors.Is(err, apperr.DisabledHandle) {
		t.Errorf("read after poison: want DisabledHandle, got %v", err)
	}
	if err := h.WriteBytes([]byte("x")); !errors.Is(err, apperr.DisabledHandle) {
		t.Errorf("write after poison: want DisabledHandle, got %v", err)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestWatcherPoisonsOnStaticChange(t *testing.T) {
	f := newFixture(t, sampleManifest, sampleFiles(), "shaders/quad.wgsl")
	b, err := f.open(t, true)
	if err != nil {
		t.Fatal(err)
	}
	abs := filepath.Join(f.root, "shaders", "quad.wgsl")
	if err := os.WriteFile(abs, []byte("@vertex fn evil() {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "bundle poison", func() bool { return !b.CheckIntegrity() })
	if !strings.Contains(b.PoisonReason(), "shaders/quad.wgsl") {
		t.Errorf("PoisonReason = %q", b.PoisonReason())
	}
}

func TestWatcherBumpsDynamicGeneration(t *testing.T) {
	f := newFixture(t, sampleManifest, sampleFiles(), "shaders/quad.wgsl")
	b, err := f.open(t, true)
	if err != nil {
		t.Fatal(err)
	}
	h, _ := b.Get("user/save.dat")
	if _, err := h.ReadBytes(); err != nil {
		t.Fatal(err)
	}
	before := h.Generation()
	if err := os.WriteFile(h.AbsPath(), []byte("2222"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "generation bump", func() bool { return h.Generation() > before })

	data, err := h.ReadBytes()
	if err != nil || string(data) != "2222" {
		t.Errorf("read after external change = %q, %v", data, err)
	}
	if !b.CheckIntegrity() {
		t.Error("dynamic change must not poison the bundle")
	}
}

func TestForEachRunsEveryPath(t *testing.T) {
	paths := []string{"a", "b", "c", "d", "e"}
	errs := ForEach(paths, 3, func(rel string) error {
		if rel == "c" {
			return apperr.New(apperr.InvalidKey, "test", rel)
		}
		return nil
	})
	for i, err := range errs {
		if (paths[i] == "c") != (err != nil) {
			t.Errorf("path %s: err = %v", paths[i], err)
		}
	}
}
