package text

import (
	"fmt"
	"image"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/atlas"
	"github.com/gogpu/g3d/gpucore"
)

// Atlas is the shared glyph texture: an R8 coverage texture, its sampler
// and bind group, and the LRU cache deciding which glyphs are resident.
//
// Bind group layout: binding 0 sampled texture, binding 1 sampler, both
// visible to the fragment stage.
//
// Atlas is not safe for concurrent use.
type Atlas struct {
	adapter    gpucore.Adapter
	texture    gpucore.TextureID
	sampler    gpucore.SamplerID
	layout     gpucore.BindGroupLayoutID
	bindGroup  gpucore.BindGroupID
	cache      *atlas.Cache[GlyphKey]
	rasterizer *Rasterizer
	rasterize  atlas.RasterizeFunc[GlyphKey]
}

// NewAtlas creates the atlas texture and cache described by cfg.
// Zero fields in cfg take their atlas.DefaultConfig values.
func NewAtlas(adapter gpucore.Adapter, fonts *FontSystem, cfg atlas.Config) (*Atlas, error) {
	a := &Atlas{adapter: adapter, rasterizer: NewRasterizer(fonts)}
	a.rasterize = a.rasterizer.Rasterize

	cache, err := atlas.NewCache[GlyphKey](cfg, a)
	if err != nil {
		return nil, err
	}
	a.cache = cache
	width, height := cache.Packer().Size()

	if a.texture, err = adapter.CreateTexture(&gpucore.TextureDesc{
		Label:  "glyph_atlas",
		Width:  uint32(width),
		Height: uint32(height),
		Format: gpucore.TextureFormatR8Unorm,
		Usage:  gpucore.TextureUsageTextureBinding | gpucore.TextureUsageCopyDst,
	}); err != nil {
		return nil, fmt.Errorf("text: atlas texture: %w", err)
	}
	if a.sampler, err = adapter.CreateSampler(&gpucore.SamplerDesc{
		Label:  "glyph_atlas_sampler",
		Filter: gpucore.FilterLinear,
	}); err != nil {
		a.Release()
		return nil, fmt.Errorf("text: atlas sampler: %w", err)
	}
	if a.layout, err = adapter.CreateBindGroupLayout(&gpucore.BindGroupLayoutDesc{
		Label: "glyph_atlas_bind_group_layout",
		Entries: []gpucore.BindGroupLayoutEntry{
			{Binding: 0, Type: gpucore.BindingTypeSampledTexture, Visibility: gpucore.ShaderStageFragment},
			{Binding: 1, Type: gpucore.BindingTypeSampler, Visibility: gpucore.ShaderStageFragment},
		},
	}); err != nil {
		a.Release()
		return nil, fmt.Errorf("text: atlas layout: %w", err)
	}
	if a.bindGroup, err = adapter.CreateBindGroup(&gpucore.BindGroupDesc{
		Label:  "glyph_atlas_bind_group",
		Layout: a.layout,
		Entries: []gpucore.BindGroupEntry{
			{Binding: 0, Texture: a.texture},
			{Binding: 1, Sampler: a.sampler},
		},
	}); err != nil {
		a.Release()
		return nil, fmt.Errorf("text: atlas bind group: %w", err)
	}

	g3d.Logger().Info("text: atlas created", "width", width, "height", height)
	return a, nil
}

// Upload implements atlas.Uploader by writing the mask into the texture.
func (a *Atlas) Upload(rect image.Rectangle, pixels []byte) {
	a.adapter.WriteTexture(a.texture, rect, pixels, uint32(rect.Dx()))
}

// UseGlyph makes key resident and marks it in use for this frame.
// Errors wrap atlas.ErrNoGlyphImage, atlas.ErrOutOfSpace or
// atlas.ErrLRUStorage.
func (a *Atlas) UseGlyph(key GlyphKey) error {
	return a.cache.UseGlyph(key, a.rasterize)
}

// GlyphData returns the cached placement of key.
func (a *Atlas) GlyphData(key GlyphKey) (atlas.GlyphData, bool) {
	return a.cache.GlyphData(key)
}

// PostRenderTrim makes the glyphs used this frame evictable again.
// Call it once per frame after all text has been drawn.
func (a *Atlas) PostRenderTrim() {
	a.cache.PostRenderTrim()
}

// Cache returns the underlying glyph cache.
func (a *Atlas) Cache() *atlas.Cache[GlyphKey] {
	return a.cache
}

// Rasterizer returns the rasterizer producing glyph masks.
func (a *Atlas) Rasterizer() *Rasterizer {
	return a.rasterizer
}

// Texture returns the atlas texture.
func (a *Atlas) Texture() gpucore.TextureID {
	return a.texture
}

// Layout returns the atlas bind group layout.
func (a *Atlas) Layout() gpucore.BindGroupLayoutID {
	return a.layout
}

// BindGroup returns the atlas bind group.
func (a *Atlas) BindGroup() gpucore.BindGroupID {
	return a.bindGroup
}

// Release destroys the GPU objects and forgets every cached glyph.
func (a *Atlas) Release() {
	if a.bindGroup != gpucore.InvalidID {
		a.adapter.DestroyBindGroup(a.bindGroup)
		a.bindGroup = gpucore.InvalidID
	}
	if a.layout != gpucore.InvalidID {
		a.adapter.DestroyBindGroupLayout(a.layout)
		a.layout = gpucore.InvalidID
	}
	if a.sampler != gpucore.InvalidID {
		a.adapter.DestroySampler(a.sampler)
		a.sampler = gpucore.InvalidID
	}
	if a.texture != gpucore.InvalidID {
		a.adapter.DestroyTexture(a.texture)
		a.texture = gpucore.InvalidID
	}
	if a.cache != nil {
		a.cache.Purge()
	}
}
