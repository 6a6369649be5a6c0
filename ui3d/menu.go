package ui3d

import (
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/text"
)

// ErrFontSize is returned for a style whose font size is not a positive,
// finite number.
var ErrFontSize = errors.New("ui3d: font size must be positive and finite")

// Style controls the look of a menu.
type Style struct {
	MenuColor      mgl32.Vec4
	SelectionColor mgl32.Vec4
	TextColor      text.Color

	// FontSize is both the glyph size and the line height, in world units
	// before the menu transform.
	FontSize float32
}

// DefaultStyle returns a grey translucent panel with white 30px text.
func DefaultStyle() Style {
	return Style{
		MenuColor:      mgl32.Vec4{0.5, 0.5, 0.5, 0.7},
		SelectionColor: mgl32.Vec4{0.7, 0.7, 0.7, 0.8},
		TextColor:      text.White,
		FontSize:       30,
	}
}

// Validate checks the font size.
func (s Style) Validate() error {
	fs := float64(s.FontSize)
	if math.IsNaN(fs) || math.IsInf(fs, 0) || fs <= 0 {
		return ErrFontSize
	}
	return nil
}

// Menu is a vertical list of options with one selected entry.
type Menu struct {
	Options  []string
	Selected uint8
	Style    Style
}

// NewMenu returns a menu with DefaultStyle and the first option selected.
func NewMenu(options ...string) Menu {
	return Menu{Options: options, Style: DefaultStyle()}
}

// Text returns the options joined by newlines.
func (m Menu) Text() string {
	return strings.Join(m.Options, "\n")
}

// Size returns the panel size: FontSize per character of the longest
// option across, FontSize per option down.
func (m Menu) Size() mgl32.Vec2 {
	longest := 0
	for _, o := range m.Options {
		longest = max(longest, utf8.RuneCountInString(o))
	}
	fs := m.Style.FontSize
	return mgl32.Vec2{fs * float32(longest), fs * float32(len(m.Options))}
}

// SelectionRange returns the top and bottom of the selection band as
// fractions of the panel height. A selection past the last option is
// clamped to the band just below the panel, so nothing is highlighted.
func (m Menu) SelectionRange() mgl32.Vec2 {
	n := len(m.Options)
	if n == 0 {
		return mgl32.Vec2{}
	}
	sel := min(int(m.Selected), n)
	return mgl32.Vec2{float32(sel) / float32(n), float32(sel+1) / float32(n)}
}
