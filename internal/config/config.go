// Package config loads simulator settings from a TOML file and merges
// them with built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/lcdsim/internal/font"
)

// Built-in defaults.
const (
	DefaultWidth        = 128
	DefaultHeight       = 64
	DefaultScale        = 1.0
	DefaultAspect       = 1.0
	DefaultPollInterval = 200 * time.Millisecond
	DefaultCacheSize    = 64
)

// ErrNoSource indicates that no drawing script was configured.
var ErrNoSource = errors.New("no source script configured")

// Duration wraps time.Duration so TOML strings like "200ms" parse.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the resolved simulator configuration.
type Config struct {
	// SourcePath is the user drawing script. Required.
	SourcePath string `toml:"source"`

	Display Display `toml:"display"`
	Reload  Reload  `toml:"reload"`
	Fonts   Fonts   `toml:"fonts"`
	Images  Images  `toml:"images"`

	// ExportDir receives screenshots and recordings. Empty means the
	// working directory.
	ExportDir string `toml:"export_dir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
}

// Display holds framebuffer and terminal-rendering settings.
type Display struct {
	Width  int     `toml:"width"`
	Height int     `toml:"height"`
	Scale  float64 `toml:"scale"`
	Aspect float64 `toml:"aspect"`
	Invert bool    `toml:"invert"`
}

// Reload holds change-detection settings.
type Reload struct {
	PollInterval Duration `toml:"poll_interval"`
}

// Fonts holds font-resolution settings.
type Fonts struct {
	// Root is the directory searched for BDF sources by name.
	Root string `toml:"root"`

	// CacheDir holds parsed-font disk cache entries. Defaults to the
	// fontcache directory under the working directory; an explicit
	// empty string disables the disk cache.
	CacheDir string `toml:"cache_dir"`
}

// Images holds decoded-bitmap cache settings.
type Images struct {
	// CacheSize is the maximum number of cached bitmaps.
	CacheSize int `toml:"cache_size"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Display: Display{
			Width:  DefaultWidth,
			Height: DefaultHeight,
			Scale:  DefaultScale,
			Aspect: DefaultAspect,
		},
		Reload: Reload{
			PollInterval: Duration(DefaultPollInterval),
		},
		Fonts: Fonts{
			CacheDir: font.DefaultCacheDir,
		},
		Images: Images{
			CacheSize: DefaultCacheSize,
		},
		LogLevel: "info",
	}
}

// Load reads a TOML configuration file over the defaults. A missing
// file is not an error; the defaults are returned unchanged so the
// simulator runs without any configuration on disk.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks for values the simulator cannot run with.
func (c Config) Validate() error {
	if c.SourcePath == "" {
		return ErrNoSource
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return fmt.Errorf("invalid display size %dx%d", c.Display.Width, c.Display.Height)
	}
	if c.Display.Scale <= 0 {
		return fmt.Errorf("invalid scale %v", c.Display.Scale)
	}
	if c.Display.Aspect <= 0 {
		return fmt.Errorf("invalid aspect %v", c.Display.Aspect)
	}
	if c.Reload.PollInterval <= 0 {
		return fmt.Errorf("invalid poll interval %v", c.Reload.PollInterval)
	}
	if c.Images.CacheSize <= 0 {
		return fmt.Errorf("invalid image cache size %d", c.Images.CacheSize)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return nil
}
