package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/render"
	"github.com/gogpu/g3d/ui3d"
)

// Model draws textured meshes at the entity's GlobalTransform.
type Model = render.Model

// Menu draws a 3D menu with its top-left corner at the entity's
// GlobalTransform.
type Menu = ui3d.Menu

// Sprite is a camera-independent textured quad. Offset is added to the
// translation of the entity's GlobalTransform, or used as the position
// when the entity has none.
type Sprite struct {
	render.Sprite
	Offset mgl32.Vec3
}

// Light is a point or directional light fed to the lighting storage buffer.
type Light = render.LightInstance

// LineBundle is a set of world-space line segments.
type LineBundle struct {
	Lines []render.LineInstance
}

// Camera views the world from the entity's GlobalTransform. The lowest
// entity with a Camera is the active one.
type Camera struct {
	Projection render.Projection
}

// NewPerspectiveCamera returns a camera using render.DefaultPerspective.
func NewPerspectiveCamera() Camera {
	p := render.DefaultPerspective()
	return Camera{Projection: &p}
}
