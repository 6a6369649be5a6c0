// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/batch"
	"github.com/gogpu/g3d/gpucore"
)

// LightingGlobals is the scene-wide ambient term.
type LightingGlobals struct {
	AmbientColor    mgl32.Vec3
	AmbientStrength float32
}

// DefaultLightingGlobals returns a dim white ambient light.
func DefaultLightingGlobals() LightingGlobals {
	return LightingGlobals{AmbientColor: mgl32.Vec3{1, 1, 1}, AmbientStrength: 0.05}
}

// LightInstance is one light in the lights storage buffer.
// Direction.W selects the kind: 0 for a point light, 1 for a directional one.
type LightInstance struct {
	Position  mgl32.Vec4
	Direction mgl32.Vec4
	Diffuse   mgl32.Vec4
	Specular  mgl32.Vec4
}

// globalsUniformSize is ambient_color (12) + ambient_strength (4) +
// light_count (4) + pad (12).
const globalsUniformSize = 32

var lightSpec = batch.Spec[LightInstance]{
	Label:  "lights_buffer",
	Stride: 64,
	Usage:  gpucore.BufferUsageStorage,
	Encode: func(dst []byte, l LightInstance) []byte {
		dst = batch.AppendFloat32s(dst, l.Position[:]...)
		dst = batch.AppendFloat32s(dst, l.Direction[:]...)
		dst = batch.AppendFloat32s(dst, l.Diffuse[:]...)
		return batch.AppendFloat32s(dst, l.Specular[:]...)
	},
}

// Lighting owns the lighting bind group: binding 0 is the globals uniform,
// binding 1 the read-only lights storage buffer, both visible to fragment
// shaders.
//
// The storage buffer always holds at least one record; an empty light list
// uploads a single zero light and sets the light count to 0.
type Lighting struct {
	adapter   gpucore.Adapter
	layout    gpucore.BindGroupLayoutID
	globals   gpucore.BufferID
	lights    *batch.InstanceBuffer[LightInstance]
	bindGroup gpucore.BindGroupID
	bound     gpucore.BufferID

	current LightingGlobals
	count   uint32
	scratch []byte
}

// NewLighting creates the lighting resources with default globals and no
// lights.
func NewLighting(adapter gpucore.Adapter) (*Lighting, error) {
	layout, err := adapter.CreateBindGroupLayout(&gpucore.BindGroupLayoutDesc{
		Label: "lighting_bind_group_layout",
		Entries: []gpucore.BindGroupLayoutEntry{
			{Binding: 0, Type: gpucore.BindingTypeUniformBuffer, Visibility: gpucore.ShaderStageFragment},
			{Binding: 1, Type: gpucore.BindingTypeReadOnlyStorageBuffer, Visibility: gpucore.ShaderStageFragment},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("render: lighting layout: %w", err)
	}
	l := &Lighting{adapter: adapter, layout: layout, current: DefaultLightingGlobals()}

	l.globals, err = adapter.CreateBuffer("lighting_globals", globalsUniformSize,
		gpucore.BufferUsageUniform|gpucore.BufferUsageCopyDst)
	if err != nil {
		l.Release()
		return nil, fmt.Errorf("render: lighting globals: %w", err)
	}
	l.lights, err = batch.NewInstanceBuffer(adapter, lightSpec, []LightInstance{{}})
	if err != nil {
		l.Release()
		return nil, fmt.Errorf("render: lights: %w", err)
	}
	l.writeGlobals()
	if err := l.rebind(); err != nil {
		l.Release()
		return nil, err
	}
	return l, nil
}

// Layout returns the lighting bind group layout.
func (l *Lighting) Layout() gpucore.BindGroupLayoutID {
	return l.layout
}

// BindGroup returns the current lighting bind group.
func (l *Lighting) BindGroup() gpucore.BindGroupID {
	return l.bindGroup
}

// Globals returns the current globals.
func (l *Lighting) Globals() LightingGlobals {
	return l.current
}

// LightCount returns the number of lights set by the last UpdateLights.
func (l *Lighting) LightCount() uint32 {
	return l.count
}

// UpdateGlobals writes new ambient globals.
func (l *Lighting) UpdateGlobals(g LightingGlobals) {
	l.current = g
	l.writeGlobals()
}

// UpdateLights replaces the light list. The bind group is recreated when
// the storage buffer had to be reallocated.
func (l *Lighting) UpdateLights(lights []LightInstance) error {
	data := lights
	if len(data) == 0 {
		data = []LightInstance{{}}
	}
	if err := l.lights.Update(data); err != nil {
		return fmt.Errorf("render: update lights: %w", err)
	}
	l.count = uint32(len(lights))
	l.writeGlobals()
	if l.lights.Buffer() != l.bound {
		return l.rebind()
	}
	return nil
}

// Release destroys every lighting resource.
func (l *Lighting) Release() {
	if l.bindGroup != gpucore.InvalidID {
		l.adapter.DestroyBindGroup(l.bindGroup)
		l.bindGroup = gpucore.InvalidID
	}
	if l.lights != nil {
		l.lights.Release()
	}
	if l.globals != gpucore.InvalidID {
		l.adapter.DestroyBuffer(l.globals)
		l.globals = gpucore.InvalidID
	}
	l.adapter.DestroyBindGroupLayout(l.layout)
	l.layout = gpucore.InvalidID
}

func (l *Lighting) writeGlobals() {
	b := batch.AppendFloat32s(l.scratch[:0], l.current.AmbientColor[:]...)
	b = batch.AppendFloat32s(b, l.current.AmbientStrength)
	b = batch.AppendUint32s(b, l.count)
	l.scratch = batch.Pad(b, 12)
	l.adapter.WriteBuffer(l.globals, 0, l.scratch)
}

func (l *Lighting) rebind() error {
	group, err := l.adapter.CreateBindGroup(&gpucore.BindGroupDesc{
		Label:  "lighting_bind_group",
		Layout: l.layout,
		Entries: []gpucore.BindGroupEntry{
			{Binding: 0, Buffer: l.globals},
			{Binding: 1, Buffer: l.lights.Buffer()},
		},
	})
	if err != nil {
		return fmt.Errorf("render: lighting bind group: %w", err)
	}
	if l.bindGroup != gpucore.InvalidID {
		l.adapter.DestroyBindGroup(l.bindGroup)
	}
	l.bindGroup = group
	l.bound = l.lights.Buffer()
	return nil
}
