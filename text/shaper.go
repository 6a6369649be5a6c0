package text

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/g3d/internal/cache"
)

// shapeCacheSize is the number of shaped paragraphs a Shaper remembers.
const shapeCacheSize = 512

// Wrap selects how lines longer than the layout width are broken.
type Wrap uint8

const (
	// WrapNone never breaks lines.
	WrapNone Wrap = iota

	// WrapWord breaks lines at whitespace. A word longer than the width
	// overflows.
	WrapWord

	// WrapWordOrGlyph breaks lines at whitespace, or between glyphs when a
	// single word is longer than the width.
	WrapWordOrGlyph
)

// String returns the wrap mode name.
func (w Wrap) String() string {
	switch w {
	case WrapNone:
		return "None"
	case WrapWord:
		return "Word"
	case WrapWordOrGlyph:
		return "WordOrGlyph"
	default:
		return fmt.Sprintf("Wrap(%d)", w)
	}
}

// ShapedGlyph is one glyph of a shaped paragraph.
type ShapedGlyph struct {
	Glyph uint32

	// X is the pen position relative to the paragraph start, in pixels.
	X float32

	// XOffset and YOffset adjust the glyph origin from the pen position.
	// YOffset grows up.
	XOffset, YOffset float32

	// Advance is the horizontal pen advance in pixels.
	Advance float32

	// Start is the byte offset of the glyph's cluster in the paragraph.
	Start int
}

// LayoutGlyph is a shaped glyph placed on a line.
type LayoutGlyph struct {
	Font  FontID
	Glyph uint32
	Size  float32

	// X is the pen position from the line start, Y the offset from the
	// baseline (up is positive).
	X, Y float32

	// Advance is the horizontal pen advance in pixels.
	Advance float32

	// Start is the byte offset of the glyph's cluster in the laid out text.
	Start int
}

// Physical snaps the glyph, moved by (dx, dy), to the pixel grid.
func (g LayoutGlyph) Physical(dx, dy float32) PhysicalGlyph {
	x, bin := snapX(g.X + dx)
	return PhysicalGlyph{
		Key: GlyphKey{
			Font:      g.Font,
			Glyph:     g.Glyph,
			Size:      sizeToFixed(g.Size),
			SubpixelX: bin,
		},
		X: x,
		Y: int(math.Round(float64(g.Y + dy))),
	}
}

// Line is one laid out line of text.
type Line struct {
	Glyphs []LayoutGlyph

	// Width is the distance from the line start to the end of the last
	// glyph's advance.
	Width float32

	// Y is the distance from the top of the text down to the baseline.
	Y float32
}

type shapeKey struct {
	font FontID
	size fixed.Int26_6
	text string
}

// Shaper shapes text with HarfBuzz and lays it out in lines.
// Shaped paragraphs are memoised in an LRU cache.
//
// Shaper is safe for concurrent use.
type Shaper struct {
	fonts *FontSystem

	// shaperPool pools HarfbuzzShaper instances, which keep mutable state.
	shaperPool sync.Pool

	paragraphs *cache.Cache[shapeKey, []ShapedGlyph]
}

// NewShaper creates a shaper for fonts registered in fonts.
func NewShaper(fonts *FontSystem) *Shaper {
	return &Shaper{
		fonts: fonts,
		shaperPool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
		paragraphs: cache.New[shapeKey, []ShapedGlyph](shapeCacheSize),
	}
}

// Fonts returns the font registry used by the shaper.
func (s *Shaper) Fonts() *FontSystem {
	return s.fonts
}

// CacheStats returns statistics of the shaped paragraph cache.
func (s *Shaper) CacheStats() cache.Stats {
	return s.paragraphs.Stats()
}

// Shape shapes a single paragraph left to right. paragraph must not
// contain line breaks. The returned slice is shared and must not be
// modified.
func (s *Shaper) Shape(id FontID, size float32, paragraph string) ([]ShapedGlyph, error) {
	if paragraph == "" {
		return nil, nil
	}
	key := shapeKey{font: id, size: sizeToFixed(size), text: paragraph}
	if glyphs, ok := s.paragraphs.Get(key); ok {
		return glyphs, nil
	}

	f, err := s.fonts.Font(id)
	if err != nil {
		return nil, err
	}

	runes := []rune(paragraph)
	offsets := make([]int, 0, len(runes)+1)
	for i := range paragraph {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(paragraph))

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      gotext.NewFace(f.shaping),
		Size:      key.size,
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	hb := s.shaperPool.Get().(*shaping.HarfbuzzShaper)
	output := hb.Shape(input)
	s.shaperPool.Put(hb)

	glyphs := make([]ShapedGlyph, len(output.Glyphs))
	var x float32
	for i, g := range output.Glyphs {
		cluster := min(max(g.TextIndex(), 0), len(runes))
		glyphs[i] = ShapedGlyph{
			Glyph:   uint32(g.GlyphID),
			X:       x,
			XOffset: fixedToFloat(g.XOffset),
			YOffset: fixedToFloat(g.YOffset),
			Advance: fixedToFloat(g.Advance),
			Start:   offsets[cluster],
		}
		x += glyphs[i].Advance
	}

	s.paragraphs.Set(key, glyphs)
	return glyphs, nil
}

// Layout shapes text and breaks it into lines. Line breaks in text always
// start a new line; wrap and width control additional breaks. A width of
// zero or less disables wrapping.
func (s *Shaper) Layout(id FontID, text string, m Metrics, wrap Wrap, width float32) ([]Line, error) {
	if text == "" {
		return nil, nil
	}
	f, err := s.fonts.Font(id)
	if err != nil {
		return nil, err
	}

	ascent, descent := f.VerticalMetrics(m.FontSize)
	baseline := (m.LineHeight-(ascent+descent))/2 + ascent
	if width <= 0 {
		wrap = WrapNone
	}

	var lines []Line
	base := 0
	for _, paragraph := range strings.Split(text, "\n") {
		glyphs, err := s.Shape(id, m.FontSize, paragraph)
		if err != nil {
			return nil, err
		}

		start := 0
		for {
			end, next := len(glyphs), len(glyphs)
			if wrap != WrapNone {
				end, next = breakLine(glyphs, paragraph, start, width, wrap)
			}

			line := Line{Y: float32(len(lines))*m.LineHeight + baseline}
			if end > start {
				origin := glyphs[start].X
				line.Glyphs = make([]LayoutGlyph, 0, end-start)
				for _, g := range glyphs[start:end] {
					line.Glyphs = append(line.Glyphs, LayoutGlyph{
						Font:    id,
						Glyph:   g.Glyph,
						Size:    m.FontSize,
						X:       g.X - origin + g.XOffset,
						Y:       g.YOffset,
						Advance: g.Advance,
						Start:   base + g.Start,
					})
				}
				last := glyphs[end-1]
				line.Width = last.X + last.Advance - origin
			}
			lines = append(lines, line)

			if next >= len(glyphs) {
				break
			}
			start = next
		}
		base += len(paragraph) + 1
	}
	return lines, nil
}

// breakLine finds the end of the line starting at glyph start and the first
// glyph of the following line. Whitespace at a break belongs to neither line.
func breakLine(glyphs []ShapedGlyph, paragraph string, start int, width float32, wrap Wrap) (end, next int) {
	lastBreak := -1
	overflow := false
	prevSpace := false
	var pen float32
	for i := start; i < len(glyphs); i++ {
		space := isSpaceAt(paragraph, glyphs[i].Start)
		if space && !prevSpace && i > start {
			if overflow {
				return i, skipSpaces(glyphs, paragraph, i)
			}
			lastBreak = i
		}
		prevSpace = space
		pen += glyphs[i].Advance
		if pen <= width || space || i == start {
			continue
		}
		switch {
		case lastBreak > start:
			return lastBreak, skipSpaces(glyphs, paragraph, lastBreak)
		case wrap == WrapWordOrGlyph:
			return i, i
		default:
			overflow = true
		}
	}
	return len(glyphs), len(glyphs)
}

func skipSpaces(glyphs []ShapedGlyph, paragraph string, i int) int {
	for i < len(glyphs) && isSpaceAt(paragraph, glyphs[i].Start) {
		i++
	}
	return i
}

func isSpaceAt(s string, i int) bool {
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsSpace(r)
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if unicode.IsSpace(r) {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}
