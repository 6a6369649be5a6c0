package engine

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/g3d/atlas"
	"github.com/gogpu/g3d/gpucore"
)

// Config configures a State and the frame loop driving it.
//
// Config is usually loaded from a TOML file:
//
//	width = 1280
//	height = 720
//	backend = "vulkan"
//	atlas_size = 512
//	font_size = 24
//	clear_color = [0.1, 0.1, 0.1, 1.0]
//	frames = 120
type Config struct {
	// Width and Height are the render target size in pixels.
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`

	// Backend names the GPU backend. Empty selects the best available.
	Backend string `toml:"backend"`

	// AtlasSize is the width and height of the glyph atlas texture.
	AtlasSize int `toml:"atlas_size"`

	// FontSize is the default menu font size.
	FontSize float32 `toml:"font_size"`

	// ClearColor is the RGBA clear color of every frame.
	ClearColor [4]float64 `toml:"clear_color"`

	// Frames is the number of frames a headless run renders.
	Frames int `toml:"frames"`

	// LineDepthTest hides lines behind depth-tested geometry.
	LineDepthTest bool `toml:"line_depth_test"`
}

// DefaultConfig returns a 1280x720 configuration with a 256x256 atlas,
// 30px menus and a dark grey background.
func DefaultConfig() Config {
	return Config{
		Width:         1280,
		Height:        720,
		AtlasSize:     256,
		FontSize:      30,
		ClearColor:    [4]float64{0.2, 0.2, 0.2, 1},
		Frames:        60,
		LineDepthTest: true,
	}
}

// Backends lists the backend names accepted by Validate.
var Backends = []string{"", "noop", "vulkan"}

// Validate checks that every field is usable.
func (c Config) Validate() error {
	if c.Width == 0 {
		return &ConfigError{Field: "Width", Reason: "must be positive"}
	}
	if c.Height == 0 {
		return &ConfigError{Field: "Height", Reason: "must be positive"}
	}
	if !slices.Contains(Backends, c.Backend) {
		return &ConfigError{Field: "Backend", Reason: fmt.Sprintf("unknown backend %q", c.Backend)}
	}
	if c.AtlasSize < 1 || c.AtlasSize > atlas.MaxSize {
		return &ConfigError{Field: "AtlasSize", Reason: fmt.Sprintf("must be in [1, %d]", atlas.MaxSize)}
	}
	fs := float64(c.FontSize)
	if math.IsNaN(fs) || math.IsInf(fs, 0) || fs <= 0 {
		return &ConfigError{Field: "FontSize", Reason: "must be positive and finite"}
	}
	for _, v := range c.ClearColor {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return &ConfigError{Field: "ClearColor", Reason: "components must be in [0, 1]"}
		}
	}
	if c.Frames < 0 {
		return &ConfigError{Field: "Frames", Reason: "must not be negative"}
	}
	return nil
}

// Clear returns ClearColor as a pass clear color.
func (c Config) Clear() gpucore.Color {
	return gpucore.Color{R: c.ClearColor[0], G: c.ClearColor[1], B: c.ClearColor[2], A: c.ClearColor[3]}
}

// ParseConfig decodes TOML over DefaultConfig and validates the result.
// Keys missing from data keep their defaults; unknown keys are an error.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("engine: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses the TOML file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("engine: load config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
