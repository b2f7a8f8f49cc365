package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if !cfg.Assets.Watch || cfg.Renderer.PresentMode != "vsync" || !cfg.Audio.Enabled {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launch.toml")
	content := `
[assets]
roots = ["/opt/run/assets", "assets"]
keys_dir = "/opt/run/keys"

[logging]
level = "debug"
format = "json"

[renderer]
profiler = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Assets.Roots) != 2 || cfg.Assets.Roots[0] != "/opt/run/assets" {
		t.Errorf("roots = %v", cfg.Assets.Roots)
	}
	if cfg.Assets.KeysDir != "/opt/run/keys" || cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if !cfg.Renderer.Profiler || cfg.Renderer.PresentMode != "vsync" {
		t.Errorf("renderer = %+v", cfg.Renderer)
	}
	if !cfg.Assets.Watch {
		t.Error("omitted key lost its default")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[logging\nlevel = 1", "parse config"},
		{"format", "[logging]\nformat = \"xml\"", "logging.format"},
		{"present mode", "[renderer]\npresent_mode = \"triple\"", "present_mode"},
		{"workers", "[assets]\nworkers = -2", "workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "launch.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestPathHonoursEnv(t *testing.T) {
	t.Setenv(EnvPath, "/tmp/custom.toml")
	if got := Path(); got != "/tmp/custom.toml" {
		t.Errorf("Path = %q", got)
	}
	t.Setenv(EnvPath, "")
	if got := Path(); got != DefaultPath {
		t.Errorf("Path = %q, want default", got)
	}
}
