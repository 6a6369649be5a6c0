// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/gpucore"
)

// SharedResources holds the bind group layouts every renderer agrees on.
//
// Bind group layouts:
//   - CameraLayout: binding 0 uniform buffer, vertex and fragment
//   - TextureLayout: binding 0 sampled texture, binding 1 sampler, fragment
type SharedResources struct {
	adapter gpucore.Adapter

	CameraLayout  gpucore.BindGroupLayoutID
	TextureLayout gpucore.BindGroupLayoutID
}

// NewSharedResources creates the shared bind group layouts.
func NewSharedResources(adapter gpucore.Adapter) (*SharedResources, error) {
	camera, err := adapter.CreateBindGroupLayout(&gpucore.BindGroupLayoutDesc{
		Label: "camera_bind_group_layout",
		Entries: []gpucore.BindGroupLayoutEntry{
			{Binding: 0, Type: gpucore.BindingTypeUniformBuffer, Visibility: gpucore.ShaderStageVertex | gpucore.ShaderStageFragment},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("render: camera layout: %w", err)
	}

	texture, err := adapter.CreateBindGroupLayout(&gpucore.BindGroupLayoutDesc{
		Label: "texture_bind_group_layout",
		Entries: []gpucore.BindGroupLayoutEntry{
			{Binding: 0, Type: gpucore.BindingTypeSampledTexture, Visibility: gpucore.ShaderStageFragment},
			{Binding: 1, Type: gpucore.BindingTypeSampler, Visibility: gpucore.ShaderStageFragment},
		},
	})
	if err != nil {
		adapter.DestroyBindGroupLayout(camera)
		return nil, fmt.Errorf("render: texture layout: %w", err)
	}

	g3d.Logger().Info("render: shared resources created")
	return &SharedResources{
		adapter:       adapter,
		CameraLayout:  camera,
		TextureLayout: texture,
	}, nil
}

// Adapter returns the adapter the resources were created on.
func (s *SharedResources) Adapter() gpucore.Adapter {
	return s.adapter
}

// CreateTextureBindGroup binds a texture and sampler to TextureLayout.
func (s *SharedResources) CreateTextureBindGroup(label string, texture gpucore.TextureID, sampler gpucore.SamplerID) (gpucore.BindGroupID, error) {
	return s.adapter.CreateBindGroup(&gpucore.BindGroupDesc{
		Label:  label,
		Layout: s.TextureLayout,
		Entries: []gpucore.BindGroupEntry{
			{Binding: 0, Texture: texture},
			{Binding: 1, Sampler: sampler},
		},
	})
}

// Release destroys the layouts.
func (s *SharedResources) Release() {
	s.adapter.DestroyBindGroupLayout(s.CameraLayout)
	s.adapter.DestroyBindGroupLayout(s.TextureLayout)
	s.CameraLayout = gpucore.InvalidID
	s.TextureLayout = gpucore.InvalidID
}
