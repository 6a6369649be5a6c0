// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image/color"
	"testing"

	"github.com/gogpu/g3d/gpucore"
	"github.com/gogpu/g3d/internal/gputest"
)

func attrEnd(attrs []gpucore.VertexAttribute) uint64 {
	var end uint64
	for _, a := range attrs {
		end = max(end, a.Offset+a.Format.Size())
	}
	return end
}

type fixture struct {
	adapter  *gputest.Adapter
	shared   *SharedResources
	lighting *Lighting
	camera   *Camera
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	a := gputest.NewAdapter()
	shared, err := NewSharedResources(a)
	if err != nil {
		t.Fatalf("NewSharedResources() error = %v", err)
	}
	lighting, err := NewLighting(a)
	if err != nil {
		t.Fatalf("NewLighting() error = %v", err)
	}
	camera, err := shared.CreateCamera("camera")
	if err != nil {
		t.Fatalf("CreateCamera() error = %v", err)
	}
	return &fixture{adapter: a, shared: shared, lighting: lighting, camera: camera}
}

func (f *fixture) texture(t *testing.T, name string) LoadedTexture {
	t.Helper()
	tex, err := NewTextureFromColor(f.shared, name, color.White)
	if err != nil {
		t.Fatalf("NewTextureFromColor() error = %v", err)
	}
	return LoadTexture(tex)
}

func (f *fixture) cube(t *testing.T) LoadedMesh {
	t.Helper()
	mesh, err := NewCube(f.adapter, "cube")
	if err != nil {
		t.Fatalf("NewCube() error = %v", err)
	}
	return LoadMesh(mesh)
}
