// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/batch"
	"github.com/gogpu/g3d/gpucore"
)

// Sprite is a textured quad of Size world units centered on its position.
type Sprite struct {
	Texture LoadedTexture
	Color   mgl32.Vec4
	Size    mgl32.Vec2
}

// NewSprite returns a white sprite of the given size.
func NewSprite(texture LoadedTexture, size mgl32.Vec2) Sprite {
	return Sprite{Texture: texture, Color: mgl32.Vec4{1, 1, 1, 1}, Size: size}
}

// SpriteInstance is the per-instance record of the sprite pipeline.
// Shader locations 2 to 4; the record is padded to 48 bytes.
type SpriteInstance struct {
	Color    mgl32.Vec4
	Size     mgl32.Vec2
	Position mgl32.Vec3
}

const spriteInstanceStride = 48

// SpriteInstanceLayout is the instance buffer layout of SpriteInstance.
var SpriteInstanceLayout = gpucore.VertexBufferLayout{
	ArrayStride: spriteInstanceStride,
	StepMode:    gpucore.VertexStepModeInstance,
	Attributes: gpucore.VertexAttributes(2,
		gpucore.VertexFormatFloat32x4,
		gpucore.VertexFormatFloat32x2,
		gpucore.VertexFormatFloat32x3,
	),
}

var spriteInstanceSpec = batch.Spec[SpriteInstance]{
	Label:  "sprite_instances",
	Stride: spriteInstanceStride,
	Usage:  gpucore.BufferUsageVertex,
	Encode: func(dst []byte, v SpriteInstance) []byte {
		dst = batch.AppendFloat32s(dst, v.Color[:]...)
		dst = batch.AppendFloat32s(dst, v.Size[:]...)
		dst = batch.AppendFloat32s(dst, v.Position[:]...)
		return batch.Pad(dst, 12)
	},
}

// quadVertexLayout is a unit quad vertex: position vec2, uv vec2.
var quadVertexLayout = gpucore.VertexBufferLayout{
	ArrayStride: 16,
	StepMode:    gpucore.VertexStepModeVertex,
	Attributes:  gpucore.VertexAttributes(0, gpucore.VertexFormatFloat32x2, gpucore.VertexFormatFloat32x2),
}

var (
	quadVertices = []float32{
		-0.5, 0.5, 0, 0,
		-0.5, -0.5, 0, 1,
		0.5, 0.5, 1, 0,
		0.5, -0.5, 1, 1,
	}
	quadIndices = []uint16{0, 1, 3, 0, 3, 2}
)

// SpriteRenderer draws instanced textured quads batched per texture.
type SpriteRenderer struct {
	adapter  gpucore.Adapter
	pipeline gpucore.RenderPipelineID
	vertices gpucore.BufferID
	indices  gpucore.BufferID

	instances *batch.Resident[g3d.TextureID, SpriteInstance]
	textures  *batch.Storage[g3d.TextureID, *Texture]

	queued map[g3d.TextureID][]SpriteInstance
	order  []g3d.TextureID
}

// NewSpriteRenderer creates the sprite pipeline: camera at group 0 and the
// sprite texture at group 1, alpha blended with depth testing.
func NewSpriteRenderer(shared *SharedResources, colorFormat gpucore.TextureFormat) (*SpriteRenderer, error) {
	adapter := shared.Adapter()
	pipeline, err := CreatePipeline(adapter, &PipelineDescriptor{
		Label:       "sprite_pipeline",
		Shader:      spriteShaderWGSL,
		Layouts:     []gpucore.BindGroupLayoutID{shared.CameraLayout, shared.TextureLayout},
		Buffers:     []gpucore.VertexBufferLayout{quadVertexLayout, SpriteInstanceLayout},
		ColorFormat: colorFormat,
		Blend:       gpucore.BlendAlpha,
		DepthTest:   true,
		DepthWrite:  true,
	})
	if err != nil {
		return nil, err
	}

	r := &SpriteRenderer{
		adapter:   adapter,
		pipeline:  pipeline,
		instances: batch.NewResident[g3d.TextureID](adapter, spriteInstanceSpec),
		textures:  batch.NewStorage[g3d.TextureID, *Texture](nil),
		queued:    make(map[g3d.TextureID][]SpriteInstance),
	}
	if r.vertices, err = createStaticBuffer(adapter, "sprite_vertices", gpucore.BufferUsageVertex,
		batch.AppendFloat32s(nil, quadVertices...)); err != nil {
		r.Release()
		return nil, err
	}
	if r.indices, err = createStaticBuffer(adapter, "sprite_indices", gpucore.BufferUsageIndex,
		batch.AppendUint16s(nil, quadIndices...)); err != nil {
		r.Release()
		return nil, err
	}
	return r, nil
}

// Prep queues one instance of sprite at position.
func (r *SpriteRenderer) Prep(sprite Sprite, position mgl32.Vec3) {
	id := sprite.Texture.ID
	r.textures.Use(id, sprite.Texture.Texture)
	r.queued[id] = append(r.queued[id], SpriteInstance{
		Color:    sprite.Color,
		Size:     sprite.Size,
		Position: position,
	})
}

// FinishPrep uploads the queued instances and drops textures and batches
// not referenced since the previous FinishPrep. The queue is consumed even
// when the upload fails.
func (r *SpriteRenderer) FinishPrep() error {
	defer func() {
		r.textures.Retain()

		r.order = r.order[:0]
		for id := range r.queued {
			r.order = append(r.order, id)
		}
		slices.Sort(r.order)
		clear(r.queued)
	}()

	if err := r.instances.Reconcile(r.queued); err != nil {
		return fmt.Errorf("render: sprite instances: %w", err)
	}
	return nil
}

// Render records one indexed draw per texture.
func (r *SpriteRenderer) Render(pass gpucore.RenderPass, camera *Camera) {
	if r.instances.Instances() == 0 {
		return
	}
	if camera == nil {
		cameraMissing("sprite")
		return
	}

	pass.SetPipeline(r.pipeline)
	pass.SetBindGroup(0, camera.BindGroup())
	pass.SetVertexBuffer(0, r.vertices)
	pass.SetIndexBuffer(r.indices, gpucore.IndexFormatUint16)

	for _, id := range r.order {
		buf, ok := r.instances.Get(id)
		if !ok || buf.Count() == 0 {
			continue
		}
		texture, _ := r.textures.Get(id)
		if texture == nil {
			continue
		}
		pass.SetBindGroup(1, texture.BindGroup())
		pass.SetVertexBuffer(1, buf.Buffer())
		pass.DrawIndexed(uint32(len(quadIndices)), buf.Count(), 0, 0, 0)
	}
}

// Stats returns the number of resident textures and instances.
func (r *SpriteRenderer) Stats() (textures, instances int) {
	return r.textures.Len(), r.instances.Instances()
}

// Release destroys the pipeline, the quad buffers and every instance buffer.
func (r *SpriteRenderer) Release() {
	r.instances.Release()
	r.textures.Clear()
	r.adapter.DestroyBuffer(r.vertices)
	r.adapter.DestroyBuffer(r.indices)
	r.adapter.DestroyRenderPipeline(r.pipeline)
}

// createStaticBuffer creates a buffer holding data.
func createStaticBuffer(adapter gpucore.Adapter, label string, usage gpucore.BufferUsage, data []byte) (gpucore.BufferID, error) {
	id, err := adapter.CreateBuffer(label, uint64(len(data)), usage|gpucore.BufferUsageCopyDst)
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("render: %s: %w", label, err)
	}
	adapter.WriteBuffer(id, 0, data)
	return id, nil
}
