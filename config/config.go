// Package config loads the launch configuration: where assets live, logging, and
// renderer options. Player-facing settings live in the settings asset instead.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

// EnvPath names the environment variable that overrides the config file location.
const EnvPath = "MILLENNIUM_RUN_CONFIG"

// DefaultPath is read when EnvPath is unset.
const DefaultPath = "config/launch.toml"

type Config struct {
	Assets   AssetsConfig   `toml:"assets"`
	Records  RecordsConfig  `toml:"records"`
	Logging  LoggingConfig  `toml:"logging"`
	Renderer RendererConfig `toml:"renderer"`
	Audio    AudioConfig    `toml:"audio"`
}

type AssetsConfig struct {
	Roots   []string `toml:"roots"`    // candidate asset roots, highest priority first; empty = built-in list
	KeysDir string   `toml:"keys_dir"` // integrity sidecar directory; empty = next to the root
	Watch   bool     `toml:"watch"`
	Workers int      `toml:"workers"` // hash workers at startup; 0 = NumCPU
}

type RecordsConfig struct {
	Path string `toml:"path"` // sqlite file; empty disables play history
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type RendererConfig struct {
	PresentMode     string `toml:"present_mode"` // "vsync" or "uncapped"
	Profiler        bool   `toml:"profiler"`
	CleanupInterval string `toml:"cleanup_interval"` // Go duration, e.g. "1s"
}

type AudioConfig struct {
	Enabled bool `toml:"enabled"`
}

// Path returns the config file location, honouring EnvPath.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the config at path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q: want json or console", c.Logging.Format)
	}
	switch c.Renderer.PresentMode {
	case "vsync", "uncapped":
	default:
		return fmt.Errorf("renderer.present_mode %q: want vsync or uncapped", c.Renderer.PresentMode)
	}
	if c.Assets.Workers < 0 {
		return fmt.Errorf("assets.workers must not be negative")
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Assets: AssetsConfig{
			Watch: true,
		},
		Records: RecordsConfig{
			Path: "records.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Renderer: RendererConfig{
			PresentMode:     "vsync",
			CleanupInterval: "1s",
		},
		Audio: AudioConfig{
			Enabled: true,
		},
	}
}
