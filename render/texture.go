// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	_ "golang.org/x/image/bmp" // register BMP decoder
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/gpucore"
)

// ErrEmptyImage is returned when a texture is created from an image
// without pixels.
var ErrEmptyImage = errors.New("render: empty image")

// DepthFormat is the format of depth attachments.
const DepthFormat = gpucore.TextureFormatDepth32Float

// Texture is a sampled RGBA texture with its sampler and bind group.
// A Texture is immutable once created.
type Texture struct {
	adapter   gpucore.Adapter
	id        gpucore.TextureID
	sampler   gpucore.SamplerID
	bindGroup gpucore.BindGroupID
	width     int
	height    int
}

// NewTextureFromImage uploads img as an sRGB RGBA8 texture.
func NewTextureFromImage(shared *SharedResources, label string, img image.Image) (*Texture, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrEmptyImage, label)
	}
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		xdraw.Draw(rgba, rgba.Bounds(), img, b.Min, xdraw.Src)
	}

	adapter := shared.Adapter()
	id, err := adapter.CreateTexture(&gpucore.TextureDesc{
		Label:  label,
		Width:  uint32(b.Dx()),
		Height: uint32(b.Dy()),
		Format: gpucore.TextureFormatRGBA8UnormSRGB,
		Usage:  gpucore.TextureUsageTextureBinding | gpucore.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("render: texture %s: %w", label, err)
	}
	adapter.WriteTexture(id, rgba.Rect, rgba.Pix, uint32(rgba.Stride))

	sampler, err := adapter.CreateSampler(&gpucore.SamplerDesc{Label: label, Filter: gpucore.FilterLinear})
	if err != nil {
		adapter.DestroyTexture(id)
		return nil, fmt.Errorf("render: texture %s sampler: %w", label, err)
	}
	group, err := shared.CreateTextureBindGroup(label, id, sampler)
	if err != nil {
		adapter.DestroySampler(sampler)
		adapter.DestroyTexture(id)
		return nil, fmt.Errorf("render: texture %s bind group: %w", label, err)
	}

	g3d.Logger().Debug("render: texture created", "label", label, "width", b.Dx(), "height", b.Dy())
	return &Texture{
		adapter:   adapter,
		id:        id,
		sampler:   sampler,
		bindGroup: group,
		width:     b.Dx(),
		height:    b.Dy(),
	}, nil
}

// NewTextureFromColor creates a 1x1 texture of a single color.
func NewTextureFromColor(shared *SharedResources, label string, c color.Color) (*Texture, error) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, c)
	return NewTextureFromImage(shared, label, img)
}

// NewTextureFromBytes decodes an encoded image (PNG, JPEG, BMP, TIFF or
// WebP) and uploads it.
func NewTextureFromBytes(shared *SharedResources, label string, data []byte) (*Texture, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("render: decode %s: %w", label, err)
	}
	g3d.Logger().Debug("render: image decoded", "label", label, "format", format)
	return NewTextureFromImage(shared, label, img)
}

// ID returns the GPU texture.
func (t *Texture) ID() gpucore.TextureID { return t.id }

// BindGroup returns the texture bind group for SharedResources.TextureLayout.
func (t *Texture) BindGroup() gpucore.BindGroupID { return t.bindGroup }

// Size returns the texture size in pixels.
func (t *Texture) Size() (width, height int) { return t.width, t.height }

// Release destroys the texture, its sampler and bind group.
func (t *Texture) Release() {
	t.adapter.DestroyBindGroup(t.bindGroup)
	t.adapter.DestroySampler(t.sampler)
	t.adapter.DestroyTexture(t.id)
	t.bindGroup, t.sampler, t.id = gpucore.InvalidID, gpucore.InvalidID, gpucore.InvalidID
}

// LoadedTexture is a shareable handle to a Texture. Renderers key their
// batches by ID, so two handles with the same ID must wrap the same Texture.
type LoadedTexture struct {
	ID      g3d.TextureID
	Texture *Texture
}

// LoadTexture issues a new TextureID for t.
func LoadTexture(t *Texture) LoadedTexture {
	return LoadedTexture{ID: g3d.NextTextureID(), Texture: t}
}

// NewDepthTexture creates a depth attachment of the given size.
func NewDepthTexture(adapter gpucore.Adapter, width, height uint32) (gpucore.TextureID, error) {
	id, err := adapter.CreateTexture(&gpucore.TextureDesc{
		Label:  "depth_texture",
		Width:  width,
		Height: height,
		Format: DepthFormat,
		Usage:  gpucore.TextureUsageRenderAttachment | gpucore.TextureUsageTextureBinding,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("render: depth texture: %w", err)
	}
	return id, nil
}
