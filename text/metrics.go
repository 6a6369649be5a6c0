package text

import "math"

// Metrics holds the font size and line height of a text buffer, in pixels.
type Metrics struct {
	// FontSize is the font size in pixels per em.
	// Default: 30
	FontSize float32

	// LineHeight is the distance between consecutive baselines.
	// Default: 1.2 * FontSize
	LineHeight float32
}

// DefaultMetrics returns 30px text with a 36px line height.
func DefaultMetrics() Metrics {
	return NewMetrics(30)
}

// NewMetrics returns metrics for size with a line height of 1.2 * size.
func NewMetrics(size float32) Metrics {
	return Metrics{FontSize: size, LineHeight: size * 1.2}
}

// Validate checks if the metrics are usable for layout.
func (m Metrics) Validate() error {
	if !(m.FontSize > 0) || math.IsInf(float64(m.FontSize), 0) {
		return &MetricsError{Field: "FontSize", Reason: "must be positive and finite"}
	}
	if !(m.LineHeight > 0) || math.IsInf(float64(m.LineHeight), 0) {
		return &MetricsError{Field: "LineHeight", Reason: "must be positive and finite"}
	}
	return nil
}

// Color is a non-premultiplied 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Common colors.
var (
	Black = Color{0, 0, 0, 255}
	White = Color{255, 255, 255, 255}
)

// Pack returns the color as a little-endian RGBA word: R in the low byte.
// This matches unpack4x8unorm in WGSL.
func (c Color) Pack() uint32 {
	return uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16 | uint32(c.A)<<24
}

// ColorFromFloats converts components in [0, 1] to a Color.
func ColorFromFloats(r, g, b, a float32) Color {
	conv := func(v float32) uint8 {
		return uint8(math.Round(float64(min(max(v, 0), 1)) * 255))
	}
	return Color{conv(r), conv(g), conv(b), conv(a)}
}
