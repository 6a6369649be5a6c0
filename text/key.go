package text

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// FontID identifies a font registered in a FontSystem.
type FontID uint32

// SubpixelBins is the number of horizontal subpixel positions a glyph can
// be rasterized at.
const SubpixelBins = 4

// GlyphKey identifies one rasterized glyph image in the atlas.
type GlyphKey struct {
	// Font is the font the glyph comes from.
	Font FontID

	// Glyph is the glyph index within the font.
	Glyph uint32

	// Size is the font size in pixels per em.
	Size fixed.Int26_6

	// SubpixelX is the horizontal subpixel bin, in [0, SubpixelBins).
	SubpixelX uint8
}

// Offset returns the horizontal subpixel offset of the key in pixels.
func (k GlyphKey) Offset() float32 {
	return float32(k.SubpixelX) / SubpixelBins
}

// PhysicalGlyph is a glyph snapped to the pixel grid.
type PhysicalGlyph struct {
	Key GlyphKey

	// X and Y are the integer pen position. The fractional part of the
	// unsnapped X position is carried by Key.SubpixelX.
	X, Y int
}

// snapX splits a position into a whole pixel and a subpixel bin.
func snapX(x float32) (int, uint8) {
	whole := math.Floor(float64(x))
	bin := int(math.Round((float64(x) - whole) * SubpixelBins))
	if bin == SubpixelBins {
		return int(whole) + 1, 0
	}
	return int(whole), uint8(bin)
}

func sizeToFixed(size float32) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(float64(size) * 64))
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
