// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/batch"
	"github.com/gogpu/g3d/gpucore"
)

// ErrEmptyMesh is returned when a mesh has no vertices or no indices.
var ErrEmptyMesh = errors.New("render: empty mesh")

// ModelVertex is one vertex of a Mesh. Shader locations 0 to 2.
type ModelVertex struct {
	Position mgl32.Vec3
	UV       mgl32.Vec2
	Normal   mgl32.Vec3
}

const modelVertexStride = 32

// ModelVertexLayout is the vertex buffer layout of ModelVertex.
var ModelVertexLayout = gpucore.VertexBufferLayout{
	ArrayStride: modelVertexStride,
	StepMode:    gpucore.VertexStepModeVertex,
	Attributes: gpucore.VertexAttributes(0,
		gpucore.VertexFormatFloat32x3,
		gpucore.VertexFormatFloat32x2,
		gpucore.VertexFormatFloat32x3,
	),
}

func appendModelVertex(dst []byte, v ModelVertex) []byte {
	dst = batch.AppendFloat32s(dst, v.Position[:]...)
	dst = batch.AppendFloat32s(dst, v.UV[:]...)
	return batch.AppendFloat32s(dst, v.Normal[:]...)
}

// Mesh is an indexed triangle list on the GPU. A Mesh is immutable once
// created.
type Mesh struct {
	adapter    gpucore.Adapter
	vertices   gpucore.BufferID
	indices    gpucore.BufferID
	indexCount uint32
}

// NewMesh uploads vertices and uint32 indices.
func NewMesh(adapter gpucore.Adapter, label string, vertices []ModelVertex, indices []uint32) (*Mesh, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyMesh, label)
	}

	vdata := batch.Encode(make([]byte, 0, len(vertices)*modelVertexStride), vertices, appendModelVertex)
	vb, err := adapter.CreateBuffer(label+"_vertices", uint64(len(vdata)),
		gpucore.BufferUsageVertex|gpucore.BufferUsageCopyDst)
	if err != nil {
		return nil, fmt.Errorf("render: mesh %s: %w", label, err)
	}
	adapter.WriteBuffer(vb, 0, vdata)

	idata := batch.AppendUint32s(make([]byte, 0, len(indices)*4), indices...)
	ib, err := adapter.CreateBuffer(label+"_indices", uint64(len(idata)),
		gpucore.BufferUsageIndex|gpucore.BufferUsageCopyDst)
	if err != nil {
		adapter.DestroyBuffer(vb)
		return nil, fmt.Errorf("render: mesh %s: %w", label, err)
	}
	adapter.WriteBuffer(ib, 0, idata)

	return &Mesh{adapter: adapter, vertices: vb, indices: ib, indexCount: uint32(len(indices))}, nil
}

// VertexBuffer returns the vertex buffer.
func (m *Mesh) VertexBuffer() gpucore.BufferID { return m.vertices }

// IndexBuffer returns the uint32 index buffer.
func (m *Mesh) IndexBuffer() gpucore.BufferID { return m.indices }

// IndexCount returns the number of indices.
func (m *Mesh) IndexCount() uint32 { return m.indexCount }

// Release destroys both buffers.
func (m *Mesh) Release() {
	m.adapter.DestroyBuffer(m.vertices)
	m.adapter.DestroyBuffer(m.indices)
	m.vertices, m.indices = gpucore.InvalidID, gpucore.InvalidID
}

// LoadedMesh is a shareable handle to a Mesh. Renderers key their batches
// by ID, so two handles with the same ID must wrap the same Mesh.
type LoadedMesh struct {
	ID   g3d.MeshID
	Mesh *Mesh
}

// LoadMesh issues a new MeshID for m.
func LoadMesh(m *Mesh) LoadedMesh {
	return LoadedMesh{ID: g3d.NextMeshID(), Mesh: m}
}

// CubeGeometry returns a unit cube centered on the origin: 24 vertices with
// per-face normals and UVs, and 36 indices wound counter-clockwise when seen from
// outside in a left-handed frame.
func CubeGeometry() ([]ModelVertex, []uint32) {
	faces := []struct{ normal, up mgl32.Vec3 }{
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, -1}},
	}

	vertices := make([]ModelVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		right := f.up.Cross(f.normal.Mul(-1))
		center := f.normal.Mul(0.5)
		up := f.up.Mul(0.5)
		r := right.Mul(0.5)

		base := uint32(len(vertices))
		vertices = append(vertices,
			ModelVertex{Position: center.Add(up).Sub(r), UV: mgl32.Vec2{0, 0}, Normal: f.normal},
			ModelVertex{Position: center.Add(up).Add(r), UV: mgl32.Vec2{1, 0}, Normal: f.normal},
			ModelVertex{Position: center.Sub(up).Sub(r), UV: mgl32.Vec2{0, 1}, Normal: f.normal},
			ModelVertex{Position: center.Sub(up).Add(r), UV: mgl32.Vec2{1, 1}, Normal: f.normal},
		)
		indices = append(indices, base, base+2, base+3, base, base+3, base+1)
	}
	return vertices, indices
}

// NewCube uploads CubeGeometry.
func NewCube(adapter gpucore.Adapter, label string) (*Mesh, error) {
	vertices, indices := CubeGeometry()
	return NewMesh(adapter, label, vertices, indices)
}
