// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/batch"
	"github.com/gogpu/g3d/gpucore"
)

// MeshTexture pairs a mesh with the texture it is drawn with.
type MeshTexture struct {
	Mesh    LoadedMesh
	Texture LoadedTexture
}

// Model is a drawable made of one or more textured meshes.
type Model struct {
	Meshes []MeshTexture
	Color  mgl32.Vec4
	Scale  mgl32.Vec3
}

// NewModel returns a white, unscaled model.
func NewModel(meshes ...MeshTexture) Model {
	return Model{
		Meshes: meshes,
		Color:  mgl32.Vec4{1, 1, 1, 1},
		Scale:  mgl32.Vec3{1, 1, 1},
	}
}

// ModelInstance is the per-instance record of the model pipeline.
// Shader locations 3 to 11.
type ModelInstance struct {
	Transform mgl32.Mat4
	Color     mgl32.Vec4
	// Normal is the rotation part of Transform, used to transform normals.
	Normal mgl32.Mat3
	Scale  mgl32.Vec3
}

// NewModelInstance derives the normal matrix from the rotation in transform.
// transform is expected to hold rotation and translation only; scale is
// applied separately in the vertex shader.
func NewModelInstance(transform mgl32.Mat4, color mgl32.Vec4, scale mgl32.Vec3) ModelInstance {
	m := transform.Mat3()
	normal := mgl32.Mat3FromCols(
		safeNormalize(m.Col(0)),
		safeNormalize(m.Col(1)),
		safeNormalize(m.Col(2)),
	)
	return ModelInstance{Transform: transform, Color: color, Normal: normal, Scale: scale}
}

func safeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	if v.Len() == 0 {
		return v
	}
	return v.Normalize()
}

const modelInstanceStride = 128

// ModelInstanceLayout is the instance buffer layout of ModelInstance.
var ModelInstanceLayout = gpucore.VertexBufferLayout{
	ArrayStride: modelInstanceStride,
	StepMode:    gpucore.VertexStepModeInstance,
	Attributes: gpucore.VertexAttributes(3,
		gpucore.VertexFormatFloat32x4,
		gpucore.VertexFormatFloat32x4,
		gpucore.VertexFormatFloat32x4,
		gpucore.VertexFormatFloat32x4,
		gpucore.VertexFormatFloat32x4,
		gpucore.VertexFormatFloat32x3,
		gpucore.VertexFormatFloat32x3,
		gpucore.VertexFormatFloat32x3,
		gpucore.VertexFormatFloat32x3,
	),
}

var modelInstanceSpec = batch.Spec[ModelInstance]{
	Label:  "model_instances",
	Stride: modelInstanceStride,
	Usage:  gpucore.BufferUsageVertex,
	Encode: func(dst []byte, v ModelInstance) []byte {
		dst = batch.AppendFloat32s(dst, v.Transform[:]...)
		dst = batch.AppendFloat32s(dst, v.Color[:]...)
		dst = batch.AppendFloat32s(dst, v.Normal[:]...)
		return batch.AppendFloat32s(dst, v.Scale[:]...)
	},
}

type modelKey struct {
	mesh    g3d.MeshID
	texture g3d.TextureID
}

func compareModelKeys(a, b modelKey) int {
	if c := cmp.Compare(a.mesh, b.mesh); c != 0 {
		return c
	}
	return cmp.Compare(a.texture, b.texture)
}

// ModelRenderer draws instanced, lit, textured meshes.
//
// Instances are batched per (mesh, texture) pair. Draws are grouped by mesh
// so each mesh's vertex and index buffers are bound once per frame.
type ModelRenderer struct {
	shared   *SharedResources
	lighting *Lighting
	pipeline gpucore.RenderPipelineID

	instances *batch.Resident[modelKey, ModelInstance]
	meshes    *batch.Storage[g3d.MeshID, *Mesh]
	textures  *batch.Storage[g3d.TextureID, *Texture]

	queued map[modelKey][]ModelInstance
	order  []modelKey
}

// NewModelRenderer creates the model pipeline: camera at group 0, lighting
// at group 1 and the mesh texture at group 2, with depth testing and
// back-face culling.
func NewModelRenderer(shared *SharedResources, lighting *Lighting, colorFormat gpucore.TextureFormat) (*ModelRenderer, error) {
	pipeline, err := CreatePipeline(shared.Adapter(), &PipelineDescriptor{
		Label:           "model_pipeline",
		Shader:          modelShaderWGSL,
		Layouts:         []gpucore.BindGroupLayoutID{shared.CameraLayout, lighting.Layout(), shared.TextureLayout},
		Buffers:         []gpucore.VertexBufferLayout{ModelVertexLayout, ModelInstanceLayout},
		ColorFormat:     colorFormat,
		DepthTest:       true,
		DepthWrite:      true,
		BackfaceCulling: true,
	})
	if err != nil {
		return nil, err
	}
	return &ModelRenderer{
		shared:    shared,
		lighting:  lighting,
		pipeline:  pipeline,
		instances: batch.NewResident[modelKey](shared.Adapter(), modelInstanceSpec),
		meshes:    batch.NewStorage[g3d.MeshID, *Mesh](nil),
		textures:  batch.NewStorage[g3d.TextureID, *Texture](nil),
		queued:    make(map[modelKey][]ModelInstance),
	}, nil
}

// Prep queues one instance of model at transform.
func (r *ModelRenderer) Prep(model Model, transform mgl32.Mat4) {
	instance := NewModelInstance(transform, model.Color, model.Scale)
	for _, mt := range model.Meshes {
		r.meshes.Use(mt.Mesh.ID, mt.Mesh.Mesh)
		r.textures.Use(mt.Texture.ID, mt.Texture.Texture)
		key := modelKey{mesh: mt.Mesh.ID, texture: mt.Texture.ID}
		r.queued[key] = append(r.queued[key], instance)
	}
}

// FinishPrep uploads the queued instances and drops meshes, textures and
// batches that were not referenced since the previous FinishPrep. The
// queue is consumed even when the upload fails.
func (r *ModelRenderer) FinishPrep() error {
	defer func() {
		r.meshes.Retain()
		r.textures.Retain()

		r.order = r.order[:0]
		for k := range r.queued {
			r.order = append(r.order, k)
		}
		slices.SortFunc(r.order, compareModelKeys)
		clear(r.queued)
	}()

	if err := r.instances.Reconcile(r.queued); err != nil {
		return fmt.Errorf("render: model instances: %w", err)
	}
	return nil
}

// Render records the draws of every resident batch.
func (r *ModelRenderer) Render(pass gpucore.RenderPass, camera *Camera) {
	if r.instances.Instances() == 0 {
		return
	}
	if camera == nil {
		cameraMissing("model")
		return
	}

	pass.SetPipeline(r.pipeline)
	pass.SetBindGroup(0, camera.BindGroup())
	pass.SetBindGroup(1, r.lighting.BindGroup())

	var bound *Mesh
	for _, key := range r.order {
		buf, ok := r.instances.Get(key)
		if !ok || buf.Count() == 0 {
			continue
		}
		mesh, _ := r.meshes.Get(key.mesh)
		texture, _ := r.textures.Get(key.texture)
		if mesh == nil || texture == nil {
			continue
		}
		if mesh != bound {
			pass.SetVertexBuffer(0, mesh.VertexBuffer())
			pass.SetIndexBuffer(mesh.IndexBuffer(), gpucore.IndexFormatUint32)
			bound = mesh
		}
		pass.SetBindGroup(2, texture.BindGroup())
		pass.SetVertexBuffer(1, buf.Buffer())
		pass.DrawIndexed(mesh.IndexCount(), buf.Count(), 0, 0, 0)
	}
}

// Stats returns the number of resident meshes, textures and instances.
func (r *ModelRenderer) Stats() (meshes, textures, instances int) {
	return r.meshes.Len(), r.textures.Len(), r.instances.Instances()
}

// Release destroys the pipeline and every instance buffer. Meshes and
// textures are owned by their creators and are not released.
func (r *ModelRenderer) Release() {
	r.instances.Release()
	r.meshes.Clear()
	r.textures.Clear()
	r.shared.Adapter().DestroyRenderPipeline(r.pipeline)
}
