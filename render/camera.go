// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/batch"
	"github.com/gogpu/g3d/gpucore"
)

// cameraUniformSize is view_projection (64) + camera_position (12) + pad (4).
const cameraUniformSize = 80

// Projection computes a view-projection matrix for a camera placed at
// position with the given orientation. Clip-space depth is in [0, 1].
//
// The coordinate system is left-handed: +X right, +Y up, +Z forward.
type Projection interface {
	ViewProjection(position mgl32.Vec3, rotation mgl32.Quat) mgl32.Mat4

	// SetSize adapts the projection to a new viewport size in pixels.
	SetSize(width, height uint32)
}

// PerspectiveCamera is a perspective projection looking along the rotated +Z
// axis.
type PerspectiveCamera struct {
	Up     mgl32.Vec3
	Aspect float32
	// FovY is the vertical field of view in degrees.
	FovY  float32
	ZNear float32
	ZFar  float32
}

// DefaultPerspective returns a 16:9 camera with a 45 degree field of view.
func DefaultPerspective() PerspectiveCamera {
	return PerspectiveCamera{
		Up:     mgl32.Vec3{0, 1, 0},
		Aspect: 16.0 / 9.0,
		FovY:   45,
		ZNear:  0.1,
		ZFar:   1_000_000,
	}
}

// ViewProjection implements Projection.
func (c *PerspectiveCamera) ViewProjection(position mgl32.Vec3, rotation mgl32.Quat) mgl32.Mat4 {
	forward := rotation.Rotate(mgl32.Vec3{0, 0, 1})
	view := lookAtLH(position, position.Add(forward), c.Up)
	proj := perspectiveLH(mgl32.DegToRad(c.FovY), c.Aspect, c.ZNear, c.ZFar)
	return proj.Mul4(view)
}

// SetSize implements Projection. A zero height keeps the current aspect.
func (c *PerspectiveCamera) SetSize(width, height uint32) {
	if height == 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// OrthographicCamera is an orthographic projection. The view is the inverse
// of the camera's rotation and translation.
type OrthographicCamera struct {
	Left, Right float32
	Bottom, Top float32
	ZNear, ZFar float32
}

// DefaultOrthographic returns a 1920x1080 projection with the origin in the
// bottom-left corner.
func DefaultOrthographic() OrthographicCamera {
	return NewSizedOrthographic(1920, 1080)
}

// NewSizedOrthographic returns a projection spanning [0, width] x [0, height].
func NewSizedOrthographic(width, height float32) OrthographicCamera {
	return OrthographicCamera{Right: width, Top: height, ZFar: 1_000_000}
}

// NewCenteredOrthographic returns a projection spanning
// [-halfWidth, halfWidth] x [-halfHeight, halfHeight].
func NewCenteredOrthographic(halfWidth, halfHeight float32) OrthographicCamera {
	return OrthographicCamera{
		Left: -halfWidth, Right: halfWidth,
		Bottom: -halfHeight, Top: halfHeight,
		ZFar: 1_000_000,
	}
}

// ViewProjection implements Projection.
func (c *OrthographicCamera) ViewProjection(position mgl32.Vec3, rotation mgl32.Quat) mgl32.Mat4 {
	world := mgl32.Translate3D(position.X(), position.Y(), position.Z()).Mul4(rotation.Normalize().Mat4())
	proj := orthographicLH(c.Left, c.Right, c.Bottom, c.Top, c.ZNear, c.ZFar)
	return proj.Mul4(world.Inv())
}

// SetSize implements Projection. The projection becomes centered on the
// camera with the viewport's extent.
func (c *OrthographicCamera) SetSize(width, height uint32) {
	hw, hh := float32(width)/2, float32(height)/2
	c.Left, c.Right = -hw, hw
	c.Bottom, c.Top = -hh, hh
}

func perspectiveLH(fovY, aspect, near, far float32) mgl32.Mat4 {
	h := 1 / math32.Tan(fovY/2)
	w := h / aspect
	r := far / (far - near)
	return mgl32.Mat4{
		w, 0, 0, 0,
		0, h, 0, 0,
		0, 0, r, 1,
		0, 0, -r * near, 0,
	}
}

func orthographicLH(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	rl := 1 / (right - left)
	tb := 1 / (top - bottom)
	fn := 1 / (far - near)
	return mgl32.Mat4{
		2 * rl, 0, 0, 0,
		0, 2 * tb, 0, 0,
		0, 0, fn, 0,
		-(left + right) * rl, -(top + bottom) * tb, -near * fn, 1,
	}
}

func lookAtLH(eye, center, up mgl32.Vec3) mgl32.Mat4 {
	f := center.Sub(eye).Normalize()
	s := up.Cross(f).Normalize()
	u := f.Cross(s)
	return mgl32.Mat4{
		s.X(), u.X(), f.X(), 0,
		s.Y(), u.Y(), f.Y(), 0,
		s.Z(), u.Z(), f.Z(), 0,
		-s.Dot(eye), -u.Dot(eye), -f.Dot(eye), 1,
	}
}

// Camera is the GPU side of a camera: a uniform buffer holding the
// view-projection matrix and the camera position, bound through
// SharedResources.CameraLayout.
type Camera struct {
	adapter   gpucore.Adapter
	buffer    gpucore.BufferID
	bindGroup gpucore.BindGroupID
	scratch   []byte
}

// CreateCamera creates a camera uniform initialised to the identity
// transform at the origin.
func (s *SharedResources) CreateCamera(label string) (*Camera, error) {
	buffer, err := s.adapter.CreateBuffer(label, cameraUniformSize,
		gpucore.BufferUsageUniform|gpucore.BufferUsageCopyDst)
	if err != nil {
		return nil, fmt.Errorf("render: camera buffer: %w", err)
	}
	group, err := s.adapter.CreateBindGroup(&gpucore.BindGroupDesc{
		Label:   label,
		Layout:  s.CameraLayout,
		Entries: []gpucore.BindGroupEntry{{Binding: 0, Buffer: buffer}},
	})
	if err != nil {
		s.adapter.DestroyBuffer(buffer)
		return nil, fmt.Errorf("render: camera bind group: %w", err)
	}
	c := &Camera{adapter: s.adapter, buffer: buffer, bindGroup: group}
	c.Update(mgl32.Ident4(), mgl32.Vec3{})
	return c, nil
}

// Update writes the view-projection matrix and position to the GPU.
func (c *Camera) Update(viewProjection mgl32.Mat4, position mgl32.Vec3) {
	b := batch.AppendFloat32s(c.scratch[:0], viewProjection[:]...)
	b = batch.AppendFloat32s(b, position[:]...)
	c.scratch = batch.Pad(b, 4)
	c.adapter.WriteBuffer(c.buffer, 0, c.scratch)
}

// UpdateFrom computes the view-projection of proj and writes it.
func (c *Camera) UpdateFrom(proj Projection, position mgl32.Vec3, rotation mgl32.Quat) {
	c.Update(proj.ViewProjection(position, rotation), position)
}

// Buffer returns the uniform buffer.
func (c *Camera) Buffer() gpucore.BufferID {
	return c.buffer
}

// BindGroup returns the camera bind group.
func (c *Camera) BindGroup() gpucore.BindGroupID {
	return c.bindGroup
}

// Release destroys the uniform buffer and bind group.
func (c *Camera) Release() {
	c.adapter.DestroyBindGroup(c.bindGroup)
	c.adapter.DestroyBuffer(c.buffer)
	c.bindGroup = gpucore.InvalidID
	c.buffer = gpucore.InvalidID
}

// cameraMissing logs the skipped draw of a renderer without a camera.
func cameraMissing(renderer string) {
	g3d.Logger().Warn("render: no camera, skipping draw", "renderer", renderer)
}
