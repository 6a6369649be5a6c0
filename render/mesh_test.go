// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"testing"

	"github.com/gogpu/g3d/internal/gputest"
)

func TestCubeGeometry(t *testing.T) {
	vertices, indices := CubeGeometry()
	if len(vertices) != 24 || len(indices) != 36 {
		t.Fatalf("expected 24 vertices and 36 indices, got %d and %d", len(vertices), len(indices))
	}

	for i, v := range vertices {
		if !approx(v.Normal.Len(), 1) {
			t.Errorf("vertex %d: normal %v is not unit length", i, v.Normal)
		}
		// Every vertex lies on the face plane of its normal.
		if !approx(v.Position.Dot(v.Normal), 0.5) {
			t.Errorf("vertex %d: position %v not on face %v", i, v.Position, v.Normal)
		}
	}

	for tri := 0; tri < len(indices); tri += 3 {
		a, b, c := vertices[indices[tri]], vertices[indices[tri+1]], vertices[indices[tri+2]]
		if a.Normal != b.Normal || b.Normal != c.Normal {
			t.Fatalf("triangle %d spans faces", tri/3)
		}
		// A counter-clockwise triangle seen from outside in a left-handed
		// frame has its right-handed cross product pointing inwards.
		cross := b.Position.Sub(a.Position).Cross(c.Position.Sub(a.Position))
		if cross.Dot(a.Normal) >= 0 {
			t.Errorf("triangle %d has inconsistent winding", tri/3)
		}
	}
}

func TestNewCube(t *testing.T) {
	a := gputest.NewAdapter()
	mesh, err := NewCube(a, "cube")
	if err != nil {
		t.Fatalf("NewCube() error = %v", err)
	}
	if mesh.IndexCount() != 36 {
		t.Errorf("IndexCount() = %d, want 36", mesh.IndexCount())
	}
	if got := a.Buffers[mesh.VertexBuffer()].Size; got != 24*modelVertexStride {
		t.Errorf("vertex buffer size = %d, want %d", got, 24*modelVertexStride)
	}
	if got := a.Buffers[mesh.IndexBuffer()].Size; got != 36*4 {
		t.Errorf("index buffer size = %d, want %d", got, 36*4)
	}

	mesh.Release()
	if len(a.Buffers) != 0 {
		t.Errorf("expected no buffers after Release, got %d", len(a.Buffers))
	}
}

func TestNewMeshEmpty(t *testing.T) {
	a := gputest.NewAdapter()
	if _, err := NewMesh(a, "empty", nil, []uint32{0}); !errors.Is(err, ErrEmptyMesh) {
		t.Errorf("expected ErrEmptyMesh, got %v", err)
	}
}

func TestLoadMeshIssuesDistinctIDs(t *testing.T) {
	a := gputest.NewAdapter()
	mesh, err := NewCube(a, "cube")
	if err != nil {
		t.Fatalf("NewCube() error = %v", err)
	}
	first, second := LoadMesh(mesh), LoadMesh(mesh)
	if first.ID == second.ID {
		t.Error("expected distinct mesh IDs")
	}
}

func TestVertexLayouts(t *testing.T) {
	tests := []struct {
		name   string
		stride uint64
		end    uint64
	}{
		{"model vertex", ModelVertexLayout.ArrayStride, attrEnd(ModelVertexLayout.Attributes)},
		{"model instance", ModelInstanceLayout.ArrayStride, attrEnd(ModelInstanceLayout.Attributes)},
		{"sprite instance", SpriteInstanceLayout.ArrayStride, attrEnd(SpriteInstanceLayout.Attributes)},
		{"line instance", LineInstanceLayout.ArrayStride, attrEnd(LineInstanceLayout.Attributes)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.end > tt.stride {
				t.Errorf("attributes end at %d, past stride %d", tt.end, tt.stride)
			}
		})
	}

	if last := ModelInstanceLayout.Attributes[len(ModelInstanceLayout.Attributes)-1]; last.ShaderLocation != 11 || last.Offset != 116 {
		t.Errorf("scale attribute at location %d offset %d, want 11 and 116", last.ShaderLocation, last.Offset)
	}
}
