// Package atlas provides the rectangle packer and the LRU glyph cache
// behind the text atlas texture.
//
// [Packer] tracks free space in a fixed-size texture with shelves split into
// buckets. [Cache] maps glyph keys to packed regions, uploads newly
// rasterized bitmaps through an [Uploader], and evicts the least recently
// used glyph when the packer is full, unless that glyph was used during the
// current frame:
//
//	cache, _ := atlas.NewCache[text.GlyphKey](atlas.DefaultConfig(), uploader)
//	for _, g := range glyphs {
//	    if err := cache.UseGlyph(g.Key, rasterize); err != nil {
//	        return err
//	    }
//	    data, _ := cache.GlyphData(g.Key)
//	    // build vertices from data.UVStart / data.UVEnd
//	}
//	// after the frame has been submitted:
//	cache.PostRenderTrim()
//
// The atlas never grows. When every resident glyph is in use,
// [Cache.UseGlyph] fails with [ErrOutOfSpace].
package atlas
