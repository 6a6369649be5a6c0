// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/batch"
	"github.com/gogpu/g3d/gpucore"
)

// LineInstance is one thick line segment. Shader locations 1 to 4; the
// record is padded to 48 bytes.
type LineInstance struct {
	Color     mgl32.Vec4
	Pos1      mgl32.Vec3
	Pos2      mgl32.Vec3
	Thickness float32
}

// DefaultLine returns a white line from (1,1,1) to the origin, 2 units thick.
func DefaultLine() LineInstance {
	return LineInstance{
		Color:     mgl32.Vec4{1, 1, 1, 1},
		Pos1:      mgl32.Vec3{1, 1, 1},
		Thickness: 2,
	}
}

const lineInstanceStride = 48

// LineInstanceLayout is the instance buffer layout of LineInstance.
var LineInstanceLayout = gpucore.VertexBufferLayout{
	ArrayStride: lineInstanceStride,
	StepMode:    gpucore.VertexStepModeInstance,
	Attributes: gpucore.VertexAttributes(1,
		gpucore.VertexFormatFloat32x4,
		gpucore.VertexFormatFloat32x3,
		gpucore.VertexFormatFloat32x3,
		gpucore.VertexFormatFloat32,
	),
}

var lineInstanceSpec = batch.Spec[LineInstance]{
	Label:  "line_instances",
	Stride: lineInstanceStride,
	Usage:  gpucore.BufferUsageVertex,
	Encode: func(dst []byte, v LineInstance) []byte {
		dst = batch.AppendFloat32s(dst, v.Color[:]...)
		dst = batch.AppendFloat32s(dst, v.Pos1[:]...)
		dst = batch.AppendFloat32s(dst, v.Pos2[:]...)
		dst = batch.AppendFloat32s(dst, v.Thickness)
		return batch.Pad(dst, 4)
	},
}

var lineVertexLayout = gpucore.VertexBufferLayout{
	ArrayStride: 12,
	StepMode:    gpucore.VertexStepModeVertex,
	Attributes:  gpucore.VertexAttributes(0, gpucore.VertexFormatFloat32x3),
}

// Vertices 0-3 belong to Pos1, 4-7 to Pos2.
var (
	lineVertices = []float32{
		-0.5, 0, 0,
		0.5, 0, 0,
		0, -0.5, 0,
		0, 0.5, 0,
		-0.5, 0, 0,
		0.5, 0, 0,
		0, -0.5, 0,
		0, 0.5, 0,
	}
	lineIndices = []uint16{0, 4, 5, 0, 5, 1, 2, 6, 7, 2, 7, 3}
)

// LineRendererOptions configures a LineRenderer.
type LineRendererOptions struct {
	ColorFormat gpucore.TextureFormat

	// DepthTest hides lines behind depth-tested geometry.
	DepthTest bool
}

// LineRenderer draws every queued line with a single instanced draw.
type LineRenderer struct {
	adapter   gpucore.Adapter
	pipeline  gpucore.RenderPipelineID
	vertices  gpucore.BufferID
	indices   gpucore.BufferID
	instances *batch.InstanceBuffer[LineInstance]
	toPrep    []LineInstance
}

// NewLineRenderer creates the alpha-blended line pipeline with the camera at
// group 0.
func NewLineRenderer(shared *SharedResources, opts LineRendererOptions) (*LineRenderer, error) {
	adapter := shared.Adapter()
	pipeline, err := CreatePipeline(adapter, &PipelineDescriptor{
		Label:       "line_pipeline",
		Shader:      lineShaderWGSL,
		Layouts:     []gpucore.BindGroupLayoutID{shared.CameraLayout},
		Buffers:     []gpucore.VertexBufferLayout{lineVertexLayout, LineInstanceLayout},
		ColorFormat: opts.ColorFormat,
		Blend:       gpucore.BlendAlpha,
		DepthTest:   opts.DepthTest,
		DepthWrite:  opts.DepthTest,
	})
	if err != nil {
		return nil, err
	}

	r := &LineRenderer{adapter: adapter, pipeline: pipeline}
	if r.instances, err = batch.NewInstanceBuffer(adapter, lineInstanceSpec, nil); err != nil {
		r.Release()
		return nil, err
	}
	if r.vertices, err = createStaticBuffer(adapter, "line_vertices", gpucore.BufferUsageVertex,
		batch.AppendFloat32s(nil, lineVertices...)); err != nil {
		r.Release()
		return nil, err
	}
	if r.indices, err = createStaticBuffer(adapter, "line_indices", gpucore.BufferUsageIndex,
		batch.AppendUint16s(nil, lineIndices...)); err != nil {
		r.Release()
		return nil, err
	}
	return r, nil
}

// PrepLines queues lines for the current frame.
func (r *LineRenderer) PrepLines(lines ...LineInstance) {
	r.toPrep = append(r.toPrep, lines...)
}

// FinishPrep uploads the queued lines. The queue is consumed even when the
// upload fails.
func (r *LineRenderer) FinishPrep() error {
	defer func() { r.toPrep = r.toPrep[:0] }()
	if err := r.instances.Update(r.toPrep); err != nil {
		return fmt.Errorf("render: line instances: %w", err)
	}
	return nil
}

// Count returns the number of uploaded lines.
func (r *LineRenderer) Count() uint32 {
	return r.instances.Count()
}

// Render records a single draw of every uploaded line.
func (r *LineRenderer) Render(pass gpucore.RenderPass, camera *Camera) {
	if r.instances.Count() == 0 {
		return
	}
	if camera == nil {
		cameraMissing("line")
		return
	}
	pass.SetPipeline(r.pipeline)
	pass.SetBindGroup(0, camera.BindGroup())
	pass.SetVertexBuffer(0, r.vertices)
	pass.SetVertexBuffer(1, r.instances.Buffer())
	pass.SetIndexBuffer(r.indices, gpucore.IndexFormatUint16)
	pass.DrawIndexed(uint32(len(lineIndices)), r.instances.Count(), 0, 0, 0)
}

// Release destroys the pipeline and buffers.
func (r *LineRenderer) Release() {
	if r.instances != nil {
		r.instances.Release()
	}
	r.adapter.DestroyBuffer(r.vertices)
	r.adapter.DestroyBuffer(r.indices)
	r.adapter.DestroyRenderPipeline(r.pipeline)
}
