package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "assets")
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestBuildThenVerify(t *testing.T) {
	root := writeTree(t, map[string]string{
		"AssetLists.txt": "data/a.yaml Static\nuser/save.bin Dynamic\nuser/opt.toml Optional\n",
		"data/a.yaml":    "stages: []\n",
		"user/save.bin":  "x",
	})
	keys := filepath.Join(root, "..", "keys")

	n, err := build(root, keys, 2)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if n != 1 {
		t.Errorf("wrote %d sidecars, want 1 (Static only)", n)
	}
	if _, err := os.Stat(filepath.Join(keys, "user", "save.bin")); !os.IsNotExist(err) {
		t.Error("Dynamic assets must not get a sidecar")
	}

	bad, err := verify(root, keys, 2)
	if err != nil || len(bad) != 0 {
		t.Fatalf("verify = %v, %v; want clean", bad, err)
	}

	if err := os.WriteFile(filepath.Join(root, "data", "a.yaml"), []byte("tampered"), 0o644); err != nil {
		t.Fatal(err)
	}
	bad, err = verify(root, keys, 2)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if len(bad) != 1 {
		t.Errorf("bad = %v, want the tampered file", bad)
	}
}

func TestMissingManifest(t *testing.T) {
	if _, err := build(t.TempDir(), t.TempDir(), 1); err == nil {
		t.Error("build without a manifest should fail")
	}
}
