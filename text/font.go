package text

import (
	"bytes"
	"fmt"
	"sync"

	gotext "github.com/go-text/typesetting/font"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"

	"github.com/gogpu/g3d"
)

// Font is a parsed font. It is immutable and safe for concurrent use.
type Font struct {
	id     FontID
	family string

	// shaping is the go-text font used by the Shaper.
	shaping *gotext.Font

	// outlines is the x/image font used by the Rasterizer.
	outlines *sfnt.Font
}

// ID returns the font's identifier.
func (f *Font) ID() FontID {
	return f.id
}

// Family returns the font family name, or an empty string when the font
// has none.
func (f *Font) Family() string {
	return f.family
}

// NumGlyphs returns the number of glyphs in the font.
func (f *Font) NumGlyphs() int {
	return f.outlines.NumGlyphs()
}

// VerticalMetrics returns the ascent and descent at size pixels per em,
// both positive.
func (f *Font) VerticalMetrics(size float32) (ascent, descent float32) {
	var buf sfnt.Buffer
	m, err := f.outlines.Metrics(&buf, sizeToFixed(size), xfont.HintingNone)
	if err != nil {
		return size * 0.8, size * 0.2
	}
	return fixedToFloat(m.Ascent), fixedToFloat(m.Descent)
}

// FontSystem is a registry of parsed fonts.
//
// FontSystem is safe for concurrent use.
type FontSystem struct {
	mu       sync.RWMutex
	fonts    []*Font
	byFamily map[string]FontID
}

// NewFontSystem creates an empty font registry.
func NewFontSystem() *FontSystem {
	return &FontSystem{byFamily: make(map[string]FontID)}
}

// Register parses TTF or OTF data and returns the new font's ID.
// The first registered font is the default font.
func (s *FontSystem) Register(data []byte) (FontID, error) {
	if len(data) == 0 {
		return 0, ErrEmptyFontData
	}

	face, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("text: parse font: %w", err)
	}
	outlines, err := sfnt.Parse(data)
	if err != nil {
		return 0, fmt.Errorf("text: parse font outlines: %w", err)
	}

	var buf sfnt.Buffer
	family, _ := outlines.Name(&buf, sfnt.NameIDFamily)

	s.mu.Lock()
	defer s.mu.Unlock()

	id := FontID(len(s.fonts))
	s.fonts = append(s.fonts, &Font{
		id:       id,
		family:   family,
		shaping:  face.Font,
		outlines: outlines,
	})
	if _, ok := s.byFamily[family]; !ok && family != "" {
		s.byFamily[family] = id
	}

	g3d.Logger().Info("text: font registered", "id", id, "family", family, "glyphs", outlines.NumGlyphs())
	return id, nil
}

// Font returns the font registered under id.
func (s *FontSystem) Font(id FontID) (*Font, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(id) >= len(s.fonts) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFont, id)
	}
	return s.fonts[id], nil
}

// Lookup returns the first font registered with the given family name.
func (s *FontSystem) Lookup(family string) (FontID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byFamily[family]
	return id, ok
}

// Default returns the first registered font.
func (s *FontSystem) Default() (FontID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return 0, len(s.fonts) > 0
}

// Len returns the number of registered fonts.
func (s *FontSystem) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fonts)
}
