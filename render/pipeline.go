// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/gpucore"
)

// PipelineDescriptor collects the switches renderers vary between their
// pipelines. The zero value draws a triangle list without depth testing,
// culling or blending.
type PipelineDescriptor struct {
	Label   string
	Shader  string
	Layouts []gpucore.BindGroupLayoutID
	Buffers []gpucore.VertexBufferLayout

	Topology gpucore.PrimitiveTopology

	// ColorFormat is the format of the color attachment.
	ColorFormat gpucore.TextureFormat

	Blend gpucore.BlendMode

	// DepthTest enables depth testing against DepthFormat.
	DepthTest bool

	// DepthWrite writes depth when DepthTest is set.
	DepthWrite bool

	// DepthCompare defaults to CompareLess.
	DepthCompare gpucore.CompareFunction

	BackfaceCulling bool
}

// Desc converts d to an adapter pipeline descriptor.
func (d *PipelineDescriptor) Desc() *gpucore.RenderPipelineDesc {
	desc := &gpucore.RenderPipelineDesc{
		Label:            d.Label,
		Source:           d.Shader,
		BindGroupLayouts: d.Layouts,
		Buffers:          d.Buffers,
		Topology:         d.Topology,
		ColorFormat:      d.ColorFormat,
		Blend:            d.Blend,
	}
	if d.BackfaceCulling {
		desc.CullMode = gpucore.CullBack
	}
	if d.DepthTest {
		compare := d.DepthCompare
		if compare == 0 {
			compare = gpucore.CompareLess
		}
		desc.DepthStencil = &gpucore.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: d.DepthWrite,
			DepthCompare:      compare,
		}
	}
	return desc
}

// CreatePipeline creates the render pipeline described by d.
func CreatePipeline(adapter gpucore.Adapter, d *PipelineDescriptor) (gpucore.RenderPipelineID, error) {
	id, err := adapter.CreateRenderPipeline(d.Desc())
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("render: pipeline %s: %w", d.Label, err)
	}
	g3d.Logger().Info("render: pipeline created", "label", d.Label)
	return id, nil
}
