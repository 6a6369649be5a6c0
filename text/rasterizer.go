package text

import (
	"image"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/atlas"
)

// Rasterizer renders glyph outlines into 8-bit coverage masks.
//
// Rasterizer is safe for concurrent use.
type Rasterizer struct {
	fonts *FontSystem

	mu     sync.Mutex
	buf    sfnt.Buffer
	raster vector.Rasterizer
}

// NewRasterizer creates a rasterizer for fonts registered in fonts.
func NewRasterizer(fonts *FontSystem) *Rasterizer {
	return &Rasterizer{fonts: fonts}
}

// Rasterize renders the glyph identified by key. It reports false when the
// font is unknown or the glyph cannot be loaded, including color glyphs.
//
// Glyphs without outlines, such as spaces, yield an empty bitmap and true.
func (r *Rasterizer) Rasterize(key GlyphKey) (atlas.Bitmap, bool) {
	f, err := r.fonts.Font(key.Font)
	if err != nil {
		return atlas.Bitmap{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	segments, err := f.outlines.LoadGlyph(&r.buf, sfnt.GlyphIndex(key.Glyph), key.Size, nil)
	if err != nil {
		g3d.Logger().Debug("text: glyph not loaded", "font", key.Font, "glyph", key.Glyph, "err", err)
		return atlas.Bitmap{}, false
	}
	if len(segments) == 0 {
		return atlas.Bitmap{}, true
	}

	dx := key.Offset()
	minX, minY := float32(math.MaxFloat32), float32(math.MaxFloat32)
	maxX, maxY := float32(-math.MaxFloat32), float32(-math.MaxFloat32)
	for _, seg := range segments {
		for _, p := range seg.Args[:segmentPoints(seg.Op)] {
			x, y := fixedToFloat(p.X)+dx, fixedToFloat(p.Y)
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}

	// sfnt outlines have +Y down with the baseline at 0.
	left := int(math.Floor(float64(minX)))
	top := int(math.Floor(float64(minY)))
	width := int(math.Ceil(float64(maxX))) - left
	height := int(math.Ceil(float64(maxY))) - top
	if width <= 0 || height <= 0 {
		return atlas.Bitmap{}, true
	}

	ox, oy := dx-float32(left), -float32(top)
	pt := func(p fixed.Point26_6) (float32, float32) {
		return fixedToFloat(p.X) + ox, fixedToFloat(p.Y) + oy
	}

	r.raster.Reset(width, height)
	r.raster.DrawOp = draw.Src
	open := false
	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				r.raster.ClosePath()
			}
			r.raster.MoveTo(pt(seg.Args[0]))
			open = true
		case sfnt.SegmentOpLineTo:
			r.raster.LineTo(pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			r.raster.QuadTo(bx, by, cx, cy)
		case sfnt.SegmentOpCubeTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			ex, ey := pt(seg.Args[2])
			r.raster.CubeTo(bx, by, cx, cy, ex, ey)
		}
	}
	if open {
		r.raster.ClosePath()
	}

	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	r.raster.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	return atlas.Bitmap{
		Left:   left,
		Top:    -top,
		Width:  width,
		Height: height,
		Pixels: mask.Pix,
	}, true
}

// Advance returns the unhinted advance width of the glyph in pixels.
func (r *Rasterizer) Advance(key GlyphKey) (float32, error) {
	f, err := r.fonts.Font(key.Font)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	adv, err := f.outlines.GlyphAdvance(&r.buf, sfnt.GlyphIndex(key.Glyph), key.Size, 0)
	if err != nil {
		return 0, err
	}
	return fixedToFloat(adv), nil
}

func segmentPoints(op sfnt.SegmentOp) int {
	switch op {
	case sfnt.SegmentOpQuadTo:
		return 2
	case sfnt.SegmentOpCubeTo:
		return 3
	default:
		return 1
	}
}
