package text

import (
	"errors"
	"strings"
	"testing"
)

// advanceOf returns the advance of a single-glyph string.
func advanceOf(t *testing.T, s *Shaper, id FontID, r string) float32 {
	t.Helper()
	glyphs, err := s.Shape(id, 30, r)
	if err != nil || len(glyphs) != 1 {
		t.Fatalf("Shape(%q) = %v, %v", r, glyphs, err)
	}
	return glyphs[0].Advance
}

func TestShapeLatin(t *testing.T) {
	fonts, id := testFonts(t)
	s := NewShaper(fonts)

	glyphs, err := s.Shape(id, 30, "Hello")
	if err != nil {
		t.Fatalf("Shape() error = %v", err)
	}
	if len(glyphs) != 5 {
		t.Fatalf("len(Shape(Hello)) = %d, want 5", len(glyphs))
	}
	for i, g := range glyphs {
		if g.Advance <= 0 {
			t.Errorf("glyph %d: Advance = %v, want positive", i, g.Advance)
		}
		if g.Start != i {
			t.Errorf("glyph %d: Start = %d, want %d", i, g.Start, i)
		}
		if i > 0 && g.X != glyphs[i-1].X+glyphs[i-1].Advance {
			t.Errorf("glyph %d: X = %v, want %v", i, g.X, glyphs[i-1].X+glyphs[i-1].Advance)
		}
	}
	if glyphs[2].Glyph != glyphs[3].Glyph {
		t.Error("both l should map to the same glyph")
	}
}

func TestShapeByteOffsets(t *testing.T) {
	fonts, id := testFonts(t)
	s := NewShaper(fonts)

	glyphs, err := s.Shape(id, 30, "é!")
	if err != nil {
		t.Fatalf("Shape() error = %v", err)
	}
	if len(glyphs) != 2 {
		t.Fatalf("len = %d, want 2", len(glyphs))
	}
	if glyphs[1].Start != len("é") {
		t.Errorf("Start of ! = %d, want %d", glyphs[1].Start, len("é"))
	}
}

func TestShapeMemoised(t *testing.T) {
	fonts, id := testFonts(t)
	s := NewShaper(fonts)

	first, _ := s.Shape(id, 30, "cache me")
	second, _ := s.Shape(id, 30, "cache me")
	if &first[0] != &second[0] {
		t.Error("expected the memoised slice on the second call")
	}
	stats := s.CacheStats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit 1 miss", stats)
	}

	if _, err := s.Shape(id, 40, "cache me"); err != nil {
		t.Fatal(err)
	}
	if got := s.CacheStats().Len; got != 2 {
		t.Errorf("Len = %d, want 2 (size is part of the key)", got)
	}
}

func TestShapeUnknownFont(t *testing.T) {
	fonts, _ := testFonts(t)
	s := NewShaper(fonts)
	if _, err := s.Shape(7, 30, "x"); !errors.Is(err, ErrUnknownFont) {
		t.Errorf("Shape(unknown) error = %v, want ErrUnknownFont", err)
	}
	if _, err := s.Layout(7, "x", DefaultMetrics(), WrapNone, 0); !errors.Is(err, ErrUnknownFont) {
		t.Errorf("Layout(unknown) error = %v, want ErrUnknownFont", err)
	}
}

func TestLayoutLines(t *testing.T) {
	fonts, id := testFonts(t)
	s := NewShaper(fonts)
	m := DefaultMetrics()

	lines, err := s.Layout(id, "ab\n\ncd", m, WrapNone, 0)
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	if lines[0].Y <= 0 || lines[0].Y >= m.LineHeight {
		t.Errorf("first baseline %v should lie within the first line", lines[0].Y)
	}
	for i := 1; i < len(lines); i++ {
		if d := lines[i].Y - lines[i-1].Y; d != m.LineHeight {
			t.Errorf("line %d: baseline step %v, want %v", i, d, m.LineHeight)
		}
	}
	if len(lines[1].Glyphs) != 0 || lines[1].Width != 0 {
		t.Errorf("empty paragraph should give an empty line, got %+v", lines[1])
	}
	if got := lines[2].Glyphs[0].Start; got != 4 {
		t.Errorf("Start of c = %d, want 4", got)
	}
	if lines[2].Glyphs[0].X != 0 {
		t.Errorf("first glyph X = %v, want 0", lines[2].Glyphs[0].X)
	}

	empty, err := s.Layout(id, "", m, WrapNone, 0)
	if err != nil || len(empty) != 0 {
		t.Errorf("Layout(\"\") = %v, %v, want no lines", empty, err)
	}
}

func TestLayoutWidth(t *testing.T) {
	fonts, id := testFonts(t)
	s := NewShaper(fonts)
	adv := advanceOf(t, s, id, "a")

	lines, err := s.Layout(id, "aaa", DefaultMetrics(), WrapNone, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := lines[0].Width; got != 3*adv {
		t.Errorf("Width = %v, want %v", got, 3*adv)
	}
}

func TestLayoutWrap(t *testing.T) {
	fonts, id := testFonts(t)
	s := NewShaper(fonts)
	m := DefaultMetrics()
	adv := advanceOf(t, s, id, "a")

	prefix, err := s.Layout(id, "aaa bbb", m, WrapNone, 0)
	if err != nil {
		t.Fatal(err)
	}
	fit := prefix[0].Width + 0.5

	tests := []struct {
		name  string
		text  string
		wrap  Wrap
		width float32
		want  []int // glyphs per line
	}{
		{"word fits", "aaa bbb ccc", WrapWord, fit, []int{7, 3}},
		{"none ignores width", "aaa bbb ccc", WrapNone, fit, []int{11}},
		{"zero width disables wrap", "aaa bbb ccc", WrapWord, 0, []int{11}},
		{"long word overflows", "aaaaaa", WrapWord, 2 * adv, []int{6}},
		{"long word then break", "aaaaaa bb", WrapWord, 2 * adv, []int{6, 2}},
		{"glyph break", "aaaaaa", WrapWordOrGlyph, 3*adv + 0.1, []int{3, 3}},
		{"spaces collapse at break", "aaa   bbb", WrapWord, 3*adv + 0.1, []int{3, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := s.Layout(id, tt.text, m, tt.wrap, tt.width)
			if err != nil {
				t.Fatalf("Layout() error = %v", err)
			}
			got := make([]int, len(lines))
			for i, l := range lines {
				got[i] = len(l.Glyphs)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("glyphs per line = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("glyphs per line = %v, want %v", got, tt.want)
				}
			}
			for i, l := range lines {
				if len(l.Glyphs) > 0 && l.Glyphs[0].X != 0 {
					t.Errorf("line %d starts at X = %v, want 0", i, l.Glyphs[0].X)
				}
			}
		})
	}
}

func TestLayoutWrapStartOffsets(t *testing.T) {
	fonts, id := testFonts(t)
	s := NewShaper(fonts)
	adv := advanceOf(t, s, id, "a")

	text := "aaa bbb\nccc"
	lines, err := s.Layout(id, text, DefaultMetrics(), WrapWord, 3*adv+0.1)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for i, want := range []string{"b", "c"} {
		g := lines[i+1].Glyphs[0]
		if got := text[g.Start : g.Start+1]; got != want {
			t.Errorf("line %d starts with %q, want %q", i+1, got, want)
		}
	}
	if !strings.HasPrefix(text[lines[0].Glyphs[0].Start:], "aaa") {
		t.Error("first line should start at the text start")
	}
}

func TestPhysical(t *testing.T) {
	g := LayoutGlyph{Font: 2, Glyph: 40, Size: 30, X: 10.5, Y: -1.2}
	p := g.Physical(1, 0)
	if p.X != 11 || p.Y != -1 {
		t.Errorf("Physical() position = %d,%d, want 11,-1", p.X, p.Y)
	}
	want := GlyphKey{Font: 2, Glyph: 40, Size: 30 * 64, SubpixelX: 2}
	if p.Key != want {
		t.Errorf("Physical() key = %+v, want %+v", p.Key, want)
	}
	if p.Key.Offset() != 0.5 {
		t.Errorf("Offset() = %v, want 0.5", p.Key.Offset())
	}
}

func TestWrapString(t *testing.T) {
	if WrapWordOrGlyph.String() != "WordOrGlyph" || Wrap(9).String() != "Wrap(9)" {
		t.Error("unexpected Wrap names")
	}
}
