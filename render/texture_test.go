// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/gogpu/g3d/gpucore"
)

func TestNewTextureFromImage(t *testing.T) {
	f := newFixture(t)

	// A paletted sub-image exercises the conversion path.
	src := image.NewPaletted(image.Rect(0, 0, 8, 8), color.Palette{color.Black, color.RGBA{R: 255, A: 255}})
	src.SetColorIndex(3, 2, 1)
	sub := src.SubImage(image.Rect(2, 2, 6, 5))

	tex, err := NewTextureFromImage(f.shared, "sub", sub)
	if err != nil {
		t.Fatalf("NewTextureFromImage() error = %v", err)
	}
	if w, h := tex.Size(); w != 4 || h != 3 {
		t.Fatalf("Size() = %dx%d, want 4x3", w, h)
	}

	rec := f.adapter.Textures[tex.ID()]
	if rec.Desc.Format != gpucore.TextureFormatRGBA8UnormSRGB {
		t.Errorf("format = %v, want RGBA8UnormSRGB", rec.Desc.Format)
	}
	// (3,2) in the source is (1,0) in the texture.
	if got := rec.Pixels[1*4]; got != 255 {
		t.Errorf("red channel at (1,0) = %d, want 255", got)
	}
	if got := rec.Pixels[0]; got != 0 {
		t.Errorf("red channel at (0,0) = %d, want 0", got)
	}

	group := f.adapter.BindGroups[tex.BindGroup()]
	if group.Layout != f.shared.TextureLayout {
		t.Error("texture bind group should use the texture layout")
	}

	id := tex.ID()
	tex.Release()
	if _, ok := f.adapter.Textures[id]; ok {
		t.Error("texture not released")
	}
}

func TestNewTextureFromBytes(t *testing.T) {
	f := newFixture(t)

	img := image.NewNRGBA(image.Rect(0, 0, 2, 3))
	img.Set(1, 2, color.NRGBA{G: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}

	tex, err := NewTextureFromBytes(f.shared, "png", buf.Bytes())
	if err != nil {
		t.Fatalf("NewTextureFromBytes() error = %v", err)
	}
	if w, h := tex.Size(); w != 2 || h != 3 {
		t.Errorf("Size() = %dx%d, want 2x3", w, h)
	}

	if _, err := NewTextureFromBytes(f.shared, "garbage", []byte("not an image")); err == nil {
		t.Error("expected decode error")
	}
}

func TestNewTextureFromImageEmpty(t *testing.T) {
	f := newFixture(t)
	_, err := NewTextureFromImage(f.shared, "empty", image.NewRGBA(image.Rectangle{}))
	if !errors.Is(err, ErrEmptyImage) {
		t.Errorf("expected ErrEmptyImage, got %v", err)
	}
}

func TestNewDepthTexture(t *testing.T) {
	f := newFixture(t)
	id, err := NewDepthTexture(f.adapter, 320, 240)
	if err != nil {
		t.Fatalf("NewDepthTexture() error = %v", err)
	}
	desc := f.adapter.Textures[id].Desc
	if desc.Format != gpucore.TextureFormatDepth32Float {
		t.Errorf("format = %v, want Depth32Float", desc.Format)
	}
	if desc.Usage&gpucore.TextureUsageRenderAttachment == 0 {
		t.Error("depth texture must be a render attachment")
	}
}
