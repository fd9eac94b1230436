package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"github.com/softlens/blurcam-go/common"
	"github.com/softlens/blurcam-go/engine/renderer"
	"github.com/softlens/blurcam-go/engine/renderer/kernel"
)

// ErrInvalidConfig wraps any validation failure in a loaded configuration.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the top-level viewer configuration, loaded from a TOML file or
// assembled from defaults.
type Config struct {
	// Width and Height set the window and pipeline dimensions in pixels.
	Width  int `toml:"width"`
	Height int `toml:"height"`

	// PresentMode selects surface presentation: "vsync" or "uncapped".
	PresentMode string `toml:"present_mode"`

	// LogLevel is a logrus level name ("debug", "info", "warn", ...).
	LogLevel string `toml:"log_level"`

	Camera Camera `toml:"camera"`
	Kernel Kernel `toml:"kernel"`
}

// Camera configures the frame source.
type Camera struct {
	// Device is the OS capture device index.
	Device int `toml:"device"`

	// Synthetic replaces the hardware camera with a generated pattern,
	// one of "uniform", "impulse", "gradient".
	Synthetic bool   `toml:"synthetic"`
	Pattern   string `toml:"pattern"`
}

// Kernel configures the blur. Exactly one of the three forms must be set:
// sigma (Gaussian weights are derived), weights (explicit 1-D separable
// kernel), or table (explicit 2-D kernel in row-major order).
type Kernel struct {
	Radius  int       `toml:"radius"`
	Sigma   float64   `toml:"sigma"`
	Weights []float64 `toml:"weights"`
	Table   []float64 `toml:"table"`
}

// Default returns the configuration used when no file is given: a 1280x720
// vsync viewer with a radius-4 sigma-1.5 Gaussian reading camera 0.
func Default() Config {
	return Config{
		Width:       1280,
		Height:      720,
		PresentMode: "vsync",
		LogLevel:    "info",
		Camera:      Camera{Device: 0, Pattern: "uniform"},
		Kernel:      Kernel{Radius: 4, Sigma: 1.5},
	}
}

// Load reads a TOML configuration file and fills unset fields from the
// defaults. The file is parsed into a fresh Config rather than on top of
// Default(), so a file supplying explicit kernel weights or a table does not
// inherit the default Gaussian sigma alongside them.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - Config: the merged, validated configuration
//   - error: a read/parse error, or ErrInvalidConfig on validation failure
func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyDefaults fills fields the file left unset. The kernel section defaults
// field-wise: the default sigma only applies when the file set no weight rule
// at all, so exactly one rule survives the merge.
func (c *Config) applyDefaults() {
	def := Default()
	c.Width = common.Coalesce(c.Width, def.Width)
	c.Height = common.Coalesce(c.Height, def.Height)
	c.PresentMode = common.Coalesce(c.PresentMode, def.PresentMode)
	c.LogLevel = common.Coalesce(c.LogLevel, def.LogLevel)
	c.Camera.Pattern = common.Coalesce(c.Camera.Pattern, def.Camera.Pattern)

	if c.Kernel.Sigma == 0 && len(c.Kernel.Weights) == 0 && len(c.Kernel.Table) == 0 {
		c.Kernel.Sigma = def.Kernel.Sigma
	}
	c.Kernel.Radius = common.Coalesce(c.Kernel.Radius, def.Kernel.Radius)
}

// Validate checks the configuration for contradictions the pipeline cannot
// absorb. All errors wrap ErrInvalidConfig.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: dimensions must be positive, got %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if _, err := c.PresentModeValue(); err != nil {
		return err
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level %q: %v", ErrInvalidConfig, c.LogLevel, err)
	}
	if c.Camera.Synthetic {
		switch c.Camera.Pattern {
		case "uniform", "impulse", "gradient":
		default:
			return fmt.Errorf("%w: camera.pattern %q", ErrInvalidConfig, c.Camera.Pattern)
		}
	}
	if _, err := kernel.Resolve(c.KernelSpec()); err != nil {
		return fmt.Errorf("%w: kernel: %v", ErrInvalidConfig, err)
	}
	return nil
}

// KernelSpec converts the kernel section to the pipeline's kernel spec.
func (c Config) KernelSpec() common.KernelSpec {
	return common.KernelSpec{
		Radius:  c.Kernel.Radius,
		Sigma:   c.Kernel.Sigma,
		Weights: c.Kernel.Weights,
		Table:   c.Kernel.Table,
	}
}

// PresentModeValue maps the present_mode string to a renderer constant.
func (c Config) PresentModeValue() (renderer.PresentMode, error) {
	switch c.PresentMode {
	case "vsync":
		return renderer.PresentModeVSync, nil
	case "uncapped":
		return renderer.PresentModeUncapped, nil
	default:
		return renderer.PresentModeVSync, fmt.Errorf("%w: present_mode %q", ErrInvalidConfig, c.PresentMode)
	}
}

// Level returns the parsed logrus level. Validate must have passed.
func (c Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
