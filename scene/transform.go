package scene

import "github.com/go-gl/mathgl/mgl32"

// Transform is a translation, rotation and scale, applied scale first.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// IdentityTransform returns a transform that changes nothing.
func IdentityTransform() Transform {
	return Transform{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
}

// FromTranslation returns an unrotated, unscaled transform at t.
func FromTranslation(t mgl32.Vec3) Transform {
	tr := IdentityTransform()
	tr.Translation = t
	return tr
}

// WithRotation returns t rotated by q.
func (t Transform) WithRotation(q mgl32.Quat) Transform {
	t.Rotation = q
	return t
}

// WithScale returns t with scale s.
func (t Transform) WithScale(s mgl32.Vec3) Transform {
	t.Scale = s
	return t
}

// Matrix returns the affine matrix of t. A zero Rotation is treated as the
// identity.
func (t Transform) Matrix() mgl32.Mat4 {
	m := mgl32.Translate3D(t.Translation[0], t.Translation[1], t.Translation[2])
	if t.Rotation.Len() > 0 {
		m = m.Mul4(t.Rotation.Normalize().Mat4())
	}
	return m.Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// GlobalTransform is the world matrix of an entity, written by
// UpdateGlobalTransforms and PropagateHierarchy.
type GlobalTransform struct {
	Matrix mgl32.Mat4
}

// IdentityGlobal returns a GlobalTransform at the origin.
func IdentityGlobal() GlobalTransform {
	return GlobalTransform{Matrix: mgl32.Ident4()}
}

// Translation returns the world position.
func (g GlobalTransform) Translation() mgl32.Vec3 {
	return g.Matrix.Col(3).Vec3()
}

// Rotation returns the world orientation with scale removed.
func (g GlobalTransform) Rotation() mgl32.Quat {
	m := g.Matrix.Mat3()
	cols := [3]mgl32.Vec3{m.Col(0), m.Col(1), m.Col(2)}
	for i, c := range cols {
		if l := c.Len(); l > 0 {
			cols[i] = c.Mul(1 / l)
		}
	}
	r := mgl32.Mat3FromCols(cols[0], cols[1], cols[2])
	return mgl32.Mat4ToQuat(r.Mat4()).Normalize()
}

// LocalTransform places an entity relative to its parent. The entity's
// GlobalTransform becomes the parent's GlobalTransform times Transform.
type LocalTransform struct {
	Parent    Entity
	Transform Transform
}
