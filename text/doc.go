// Package text turns strings into textured glyph quads for the GPU.
//
// The pipeline has four stages:
//
//   - FontSystem: registered fonts, parsed once from TTF/OTF bytes
//   - Shaper: HarfBuzz shaping (go-text/typesetting) and line layout
//   - Rasterizer: glyph outlines to 8-bit coverage masks (golang.org/x/image)
//   - Atlas: the shared R8 texture holding cached glyph masks
//
// A Buffer owns one block of laid out text. Each frame its Prep method makes
// every glyph resident in the Atlas and rebuilds the vertex buffer only when
// a line changed:
//
//	fonts := text.NewFontSystem()
//	id, _ := fonts.Register(goregular.TTF)
//	atlas, _ := text.NewAtlas(adapter, fonts, atlas.DefaultConfig())
//	buf, _ := text.NewBuffer(adapter, text.NewShaper(fonts), id)
//	buf.Set("Hello\nWorld")
//	if _, err := buf.Prep(atlas); err != nil {
//	    return err
//	}
//	// draw buf.VertexBuffer() with buf.VertexCount() instances
//	atlas.PostRenderTrim()
//
// Text coordinates have +Y up. The first baseline lies below the origin.
package text
