package text

import (
	"errors"
	"testing"

	"github.com/gogpu/g3d/atlas"
	"github.com/gogpu/g3d/gpucore"
	"github.com/gogpu/g3d/internal/gputest"
)

// glyphKey returns the key of the single glyph r shapes to at 30px.
func glyphKey(t *testing.T, fonts *FontSystem, id FontID, r string) GlyphKey {
	t.Helper()
	glyphs, err := NewShaper(fonts).Shape(id, 30, r)
	if err != nil || len(glyphs) != 1 {
		t.Fatalf("Shape(%q) = %v, %v", r, glyphs, err)
	}
	return GlyphKey{Font: id, Glyph: glyphs[0].Glyph, Size: sizeToFixed(30)}
}

func TestRasterize(t *testing.T) {
	fonts, id := testFonts(t)
	r := NewRasterizer(fonts)

	bmp, ok := r.Rasterize(glyphKey(t, fonts, id, "H"))
	if !ok {
		t.Fatal("Rasterize(H) reported no image")
	}
	if bmp.Width <= 0 || bmp.Height <= 0 {
		t.Fatalf("Rasterize(H) size = %dx%d", bmp.Width, bmp.Height)
	}
	if bmp.Width > 30 || bmp.Height > 30 {
		t.Errorf("Rasterize(H) size = %dx%d, too large for 30px", bmp.Width, bmp.Height)
	}
	if bmp.Top <= 0 {
		t.Errorf("Top = %d, H should sit above the baseline", bmp.Top)
	}
	if len(bmp.Pixels) != bmp.Width*bmp.Height {
		t.Fatalf("len(Pixels) = %d, want %d", len(bmp.Pixels), bmp.Width*bmp.Height)
	}
	var peak byte
	for _, p := range bmp.Pixels {
		peak = max(peak, p)
	}
	if peak < 200 {
		t.Errorf("peak coverage = %d, want solid stems", peak)
	}
}

func TestRasterizeEmptyAndMissing(t *testing.T) {
	fonts, id := testFonts(t)
	r := NewRasterizer(fonts)

	bmp, ok := r.Rasterize(glyphKey(t, fonts, id, " "))
	if !ok {
		t.Fatal("space should rasterize")
	}
	if bmp.Width != 0 || bmp.Height != 0 {
		t.Errorf("space bitmap = %dx%d, want empty", bmp.Width, bmp.Height)
	}

	f, _ := fonts.Font(id)
	if _, ok := r.Rasterize(GlyphKey{Font: id, Glyph: uint32(f.NumGlyphs()) + 10, Size: sizeToFixed(30)}); ok {
		t.Error("out of range glyph should have no image")
	}
	if _, ok := r.Rasterize(GlyphKey{Font: 9, Glyph: 1, Size: sizeToFixed(30)}); ok {
		t.Error("unknown font should have no image")
	}
}

func TestRasterizerAdvance(t *testing.T) {
	fonts, id := testFonts(t)
	r := NewRasterizer(fonts)
	adv, err := r.Advance(glyphKey(t, fonts, id, "H"))
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if adv <= 0 || adv > 30 {
		t.Errorf("Advance(H) = %v", adv)
	}
}

func newTestAtlas(t *testing.T, cfg atlas.Config) (*gputest.Adapter, *FontSystem, FontID, *Atlas) {
	t.Helper()
	fonts, id := testFonts(t)
	a := gputest.NewAdapter()
	at, err := NewAtlas(a, fonts, cfg)
	if err != nil {
		t.Fatalf("NewAtlas() error = %v", err)
	}
	return a, fonts, id, at
}

func TestNewAtlas(t *testing.T) {
	a, _, _, at := newTestAtlas(t, atlas.DefaultConfig())

	tex, ok := a.Textures[at.Texture()]
	if !ok {
		t.Fatal("atlas texture not created")
	}
	if tex.Desc.Width != 256 || tex.Desc.Height != 256 || tex.Desc.Format != gpucore.TextureFormatR8Unorm {
		t.Errorf("texture desc = %+v", tex.Desc)
	}
	group, ok := a.BindGroups[at.BindGroup()]
	if !ok {
		t.Fatal("atlas bind group not created")
	}
	if group.Layout != at.Layout() || len(group.Entries) != 2 {
		t.Errorf("bind group = %+v", group)
	}

	at.Release()
	if len(a.Textures) != 0 || len(a.BindGroups) != 0 || len(a.Samplers) != 0 {
		t.Error("Release should destroy every GPU object")
	}
}

func TestNewAtlasFailure(t *testing.T) {
	fonts, _ := testFonts(t)
	a := gputest.NewAdapter()
	a.FailCreate = true
	if _, err := NewAtlas(a, fonts, atlas.DefaultConfig()); !errors.Is(err, gputest.ErrInjected) {
		t.Errorf("NewAtlas() error = %v, want injected failure", err)
	}

	var cfgErr *atlas.ConfigError
	if _, err := NewAtlas(gputest.NewAdapter(), fonts, atlas.Config{Width: -1}); !errors.As(err, &cfgErr) {
		t.Errorf("NewAtlas(bad config) error = %v, want *atlas.ConfigError", err)
	}
}

func TestAtlasUseGlyphUploads(t *testing.T) {
	a, fonts, id, at := newTestAtlas(t, atlas.DefaultConfig())
	key := glyphKey(t, fonts, id, "H")

	if err := at.UseGlyph(key); err != nil {
		t.Fatalf("UseGlyph() error = %v", err)
	}
	data, ok := at.GlyphData(key)
	if !ok {
		t.Fatal("glyph not cached")
	}
	tex := a.Textures[at.Texture()]
	if len(tex.Writes) != 1 {
		t.Fatalf("texture writes = %d, want 1", len(tex.Writes))
	}
	w := tex.Writes[0]
	if w.Dx() != data.Width || w.Dy() != data.Height {
		t.Errorf("upload region %v does not match glyph %dx%d", w, data.Width, data.Height)
	}
	if data.UVEnd[0] <= data.UVStart[0] || data.UVEnd[1] <= data.UVStart[1] {
		t.Errorf("UV = %v..%v", data.UVStart, data.UVEnd)
	}

	var inked bool
	for y := w.Min.Y; y < w.Max.Y; y++ {
		for x := w.Min.X; x < w.Max.X; x++ {
			if tex.Pixels[y*256+x] > 0 {
				inked = true
			}
		}
	}
	if !inked {
		t.Error("uploaded region has no coverage")
	}

	if err := at.UseGlyph(key); err != nil {
		t.Fatal(err)
	}
	if len(tex.Writes) != 1 {
		t.Error("cached glyph should not upload again")
	}
	if !at.Cache().InUse(key) {
		t.Error("glyph should be in use")
	}
	at.PostRenderTrim()
	if at.Cache().InUseCount() != 0 {
		t.Error("PostRenderTrim should clear the in-use set")
	}
}

func TestAtlasUseGlyphErrors(t *testing.T) {
	_, fonts, id, at := newTestAtlas(t, atlas.DefaultConfig())
	f, _ := fonts.Font(id)

	err := at.UseGlyph(GlyphKey{Font: id, Glyph: uint32(f.NumGlyphs()) + 1, Size: sizeToFixed(30)})
	if !errors.Is(err, atlas.ErrNoGlyphImage) {
		t.Errorf("UseGlyph(missing) error = %v, want ErrNoGlyphImage", err)
	}

	_, fonts, id, small := newTestAtlas(t, atlas.Config{Width: 16, Height: 16})
	err = small.UseGlyph(glyphKey(t, fonts, id, "H"))
	if !errors.Is(err, atlas.ErrLRUStorage) {
		t.Errorf("UseGlyph(too large) error = %v, want ErrLRUStorage", err)
	}
}
