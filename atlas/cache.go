package atlas

import (
	"fmt"
	"image"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/gogpu/g3d"
)

// Bitmap is a rasterized glyph: a tightly packed 8-bit coverage mask plus
// its placement relative to the pen position.
type Bitmap struct {
	// Left is the horizontal offset from the pen position to the left edge.
	Left int
	// Top is the vertical offset from the baseline to the top edge (up is positive).
	Top int
	// Width and Height are the mask dimensions in pixels. Either may be zero
	// for glyphs without ink, such as spaces.
	Width  int
	Height int
	// Pixels holds Width*Height coverage bytes, row by row.
	Pixels []byte
}

// RasterizeFunc produces the bitmap for a key. It returns false when the
// glyph has no image.
type RasterizeFunc[K comparable] func(key K) (Bitmap, bool)

// Uploader copies a glyph mask into the atlas texture.
// rect is the destination region in texture pixels; pixels holds
// rect.Dx()*rect.Dy() bytes.
type Uploader interface {
	Upload(rect image.Rectangle, pixels []byte)
}

// GlyphData describes a cached glyph.
type GlyphData struct {
	// Alloc is the packer allocation backing the glyph.
	Alloc AllocID

	// UVStart and UVEnd are the normalized texture coordinates of the glyph's
	// region (top-left and bottom-right).
	UVStart [2]float32
	UVEnd   [2]float32

	// Left, Top, Width and Height are copied from the rasterized Bitmap.
	Left   int
	Top    int
	Width  int
	Height int
}

// Stats contains cache statistics.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Uploads   uint64
}

// Cache is an LRU glyph cache backed by a Packer.
//
// Every cached key owns exactly one packer allocation. Keys touched by
// UseGlyph are protected from eviction until PostRenderTrim is called,
// which must happen once per frame after all draws have been submitted.
//
// Cache is not safe for concurrent use.
type Cache[K comparable] struct {
	packer   *Packer
	lru      *simplelru.LRU[K, GlyphData]
	inUse    map[K]struct{}
	uploader Uploader
	stats    Stats
}

// NewCache creates a glyph cache for an atlas described by cfg.
// uploader may be nil, in which case bitmaps are not copied anywhere.
func NewCache[K comparable](cfg Config, uploader Uploader) (*Cache[K], error) {
	packer, err := NewPacker(cfg)
	if err != nil {
		return nil, err
	}

	c := &Cache[K]{
		packer:   packer,
		inUse:    make(map[K]struct{}),
		uploader: uploader,
	}

	// Each entry holds at least one pixel, so the packer always runs out
	// before the LRU's own size limit can evict anything.
	w, h := packer.Size()
	lru, err := simplelru.NewLRU[K, GlyphData](w*h, func(_ K, data GlyphData) {
		c.packer.Deallocate(data.Alloc)
	})
	if err != nil {
		return nil, fmt.Errorf("atlas: create lru: %w", err)
	}
	c.lru = lru
	return c, nil
}

// Packer returns the underlying packer.
func (c *Cache[K]) Packer() *Packer {
	return c.packer
}

// UseGlyph makes key resident in the atlas and marks it in use for the
// current frame.
//
// A cached key is only promoted. Otherwise rasterize is called, the bitmap
// is packed (evicting least recently used glyphs that are not in use) and
// uploaded. Errors wrap ErrNoGlyphImage, ErrOutOfSpace or ErrLRUStorage.
func (c *Cache[K]) UseGlyph(key K, rasterize RasterizeFunc[K]) error {
	if _, ok := c.lru.Get(key); ok {
		c.stats.Hits++
		c.inUse[key] = struct{}{}
		return nil
	}
	c.stats.Misses++

	bmp, ok := rasterize(key)
	if !ok {
		return fmt.Errorf("%w: %v", ErrNoGlyphImage, key)
	}

	alloc, err := c.allocate(bmp.Width, bmp.Height)
	if err != nil {
		return fmt.Errorf("%w: %v", err, key)
	}

	if c.uploader != nil && bmp.Width > 0 && bmp.Height > 0 {
		dst := image.Rect(alloc.Rect.Min.X, alloc.Rect.Min.Y,
			alloc.Rect.Min.X+bmp.Width, alloc.Rect.Min.Y+bmp.Height)
		c.uploader.Upload(dst, bmp.Pixels)
		c.stats.Uploads++
	}

	w, h := c.packer.Size()
	c.lru.Add(key, GlyphData{
		Alloc:   alloc.ID,
		UVStart: [2]float32{float32(alloc.Rect.Min.X) / float32(w), float32(alloc.Rect.Min.Y) / float32(h)},
		UVEnd:   [2]float32{float32(alloc.Rect.Max.X) / float32(w), float32(alloc.Rect.Max.Y) / float32(h)},
		Left:    bmp.Left,
		Top:     bmp.Top,
		Width:   bmp.Width,
		Height:  bmp.Height,
	})
	c.inUse[key] = struct{}{}
	return nil
}

// allocate packs a width x height region, evicting idle glyphs until it fits.
func (c *Cache[K]) allocate(width, height int) (Allocation, error) {
	for {
		if alloc, ok := c.packer.Allocate(width, height); ok {
			return alloc, nil
		}

		oldest, _, ok := c.lru.GetOldest()
		if !ok {
			return Allocation{}, ErrLRUStorage
		}
		if _, used := c.inUse[oldest]; used {
			return Allocation{}, ErrOutOfSpace
		}

		// The eviction callback releases the packer region.
		c.lru.RemoveOldest()
		c.stats.Evictions++
		g3d.Logger().Debug("atlas: evicted glyph", "key", oldest, "remaining", c.lru.Len())
	}
}

// GlyphData returns the cached record for key without changing its recency.
// It reports false if key is not cached.
func (c *Cache[K]) GlyphData(key K) (GlyphData, bool) {
	return c.lru.Peek(key)
}

// PostRenderTrim ends the frame: glyphs used this frame become evictable again.
func (c *Cache[K]) PostRenderTrim() {
	clear(c.inUse)
}

// Contains reports whether key is cached.
func (c *Cache[K]) Contains(key K) bool {
	return c.lru.Contains(key)
}

// InUse reports whether key was used since the last PostRenderTrim.
func (c *Cache[K]) InUse(key K) bool {
	_, ok := c.inUse[key]
	return ok
}

// InUseCount returns the number of glyphs used since the last PostRenderTrim.
func (c *Cache[K]) InUseCount() int {
	return len(c.inUse)
}

// Len returns the number of cached glyphs.
func (c *Cache[K]) Len() int {
	return c.lru.Len()
}

// Stats returns cache statistics.
func (c *Cache[K]) Stats() Stats {
	return c.stats
}

// Purge drops every cached glyph and releases all atlas space.
func (c *Cache[K]) Purge() {
	c.lru.Purge()
	c.packer.Clear()
	clear(c.inUse)
}
