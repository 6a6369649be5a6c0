// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/gpucore"
)

// ErrZeroSize is returned when a render target is created with a zero
// dimension.
var ErrZeroSize = errors.New("render: zero target size")

// RenderTarget defines where a frame is drawn.
//
// A RenderTarget is an abstraction over different rendering destinations:
//   - TextureTarget: offscreen color texture owned by the target
//   - SurfaceTarget: color texture provided by the host every frame
//
// Both own a depth attachment of matching size.
type RenderTarget interface {
	// Width returns the target width in pixels.
	Width() uint32

	// Height returns the target height in pixels.
	Height() uint32

	// Format returns the color format pipelines must be created with.
	Format() gpucore.TextureFormat

	// Color returns the color attachment.
	Color() gpucore.TextureID

	// Depth returns the depth attachment.
	Depth() gpucore.TextureID

	// Resize replaces the attachments. A zero dimension is ignored with a
	// warning and the current attachments stay valid.
	Resize(width, height uint32) error
}

// PassDesc returns a render pass descriptor clearing both attachments of t.
func PassDesc(t RenderTarget, label string, clear gpucore.Color) *gpucore.RenderPassDesc {
	return &gpucore.RenderPassDesc{
		Label:      label,
		Color:      t.Color(),
		ClearColor: clear,
		Depth:      t.Depth(),
	}
}

// depthAttachment is the depth texture shared by both target kinds.
type depthAttachment struct {
	adapter gpucore.Adapter
	width   uint32
	height  uint32
	depth   gpucore.TextureID
}

// resize creates the new depth texture before releasing the old one, so a
// failed resize leaves the previous attachment in place.
func (d *depthAttachment) resize(width, height uint32) (bool, error) {
	if width == 0 || height == 0 {
		g3d.Logger().Warn("render: ignoring zero-size resize", "width", width, "height", height)
		return false, nil
	}
	depth, err := NewDepthTexture(d.adapter, width, height)
	if err != nil {
		return false, err
	}
	if d.depth != gpucore.InvalidID {
		d.adapter.DestroyTexture(d.depth)
	}
	d.depth, d.width, d.height = depth, width, height
	return true, nil
}

func (d *depthAttachment) release() {
	if d.depth != gpucore.InvalidID {
		d.adapter.DestroyTexture(d.depth)
		d.depth = gpucore.InvalidID
	}
}

// TextureTarget is an offscreen render target. It owns a color texture that
// can be sampled after the frame and a depth texture.
type TextureTarget struct {
	depthAttachment
	format gpucore.TextureFormat
	color  gpucore.TextureID
}

// NewTextureTarget creates an offscreen target.
func NewTextureTarget(adapter gpucore.Adapter, width, height uint32, format gpucore.TextureFormat) (*TextureTarget, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrZeroSize, width, height)
	}
	t := &TextureTarget{depthAttachment: depthAttachment{adapter: adapter}, format: format}
	if err := t.Resize(width, height); err != nil {
		return nil, err
	}
	return t, nil
}

// Width returns the target width in pixels.
func (t *TextureTarget) Width() uint32 { return t.width }

// Height returns the target height in pixels.
func (t *TextureTarget) Height() uint32 { return t.height }

// Format returns the color format.
func (t *TextureTarget) Format() gpucore.TextureFormat { return t.format }

// Color returns the color texture.
func (t *TextureTarget) Color() gpucore.TextureID { return t.color }

// Depth returns the depth texture.
func (t *TextureTarget) Depth() gpucore.TextureID { return t.depth }

// Resize replaces both attachments. The contents are not preserved.
func (t *TextureTarget) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		_, err := t.resize(width, height)
		return err
	}
	color, err := t.adapter.CreateTexture(&gpucore.TextureDesc{
		Label:  "target_color",
		Width:  width,
		Height: height,
		Format: t.format,
		Usage:  gpucore.TextureUsageRenderAttachment | gpucore.TextureUsageTextureBinding | gpucore.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("render: target color: %w", err)
	}
	if _, err := t.resize(width, height); err != nil {
		t.adapter.DestroyTexture(color)
		return err
	}
	if t.color != gpucore.InvalidID {
		t.adapter.DestroyTexture(t.color)
	}
	t.color = color
	return nil
}

// Destroy releases GPU resources.
func (t *TextureTarget) Destroy() {
	t.release()
	if t.color != gpucore.InvalidID {
		t.adapter.DestroyTexture(t.color)
		t.color = gpucore.InvalidID
	}
}

// Ensure TextureTarget implements RenderTarget.
var _ RenderTarget = (*TextureTarget)(nil)

// SurfaceTarget draws into a color texture owned by the host application,
// typically the current swapchain image. SetColor must be called before
// each frame.
type SurfaceTarget struct {
	depthAttachment
	format gpucore.TextureFormat
	color  gpucore.TextureID
}

// NewSurfaceTarget creates a target for a host surface of the given size.
func NewSurfaceTarget(adapter gpucore.Adapter, width, height uint32, format gpucore.TextureFormat) (*SurfaceTarget, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrZeroSize, width, height)
	}
	t := &SurfaceTarget{depthAttachment: depthAttachment{adapter: adapter}, format: format}
	if _, err := t.resize(width, height); err != nil {
		return nil, err
	}
	return t, nil
}

// SetColor sets the host texture of the next frame.
func (t *SurfaceTarget) SetColor(color gpucore.TextureID) { t.color = color }

// Width returns the target width in pixels.
func (t *SurfaceTarget) Width() uint32 { return t.width }

// Height returns the target height in pixels.
func (t *SurfaceTarget) Height() uint32 { return t.height }

// Format returns the surface format.
func (t *SurfaceTarget) Format() gpucore.TextureFormat { return t.format }

// Color returns the host texture set by SetColor.
func (t *SurfaceTarget) Color() gpucore.TextureID { return t.color }

// Depth returns the depth texture.
func (t *SurfaceTarget) Depth() gpucore.TextureID { return t.depth }

// Resize replaces the depth attachment. The host resizes its own surface.
func (t *SurfaceTarget) Resize(width, height uint32) error {
	_, err := t.resize(width, height)
	return err
}

// Destroy releases the depth attachment. The host texture is not touched.
func (t *SurfaceTarget) Destroy() {
	t.release()
}

// Ensure SurfaceTarget implements RenderTarget.
var _ RenderTarget = (*SurfaceTarget)(nil)
