package scene

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d"
)

// UpdateGlobalTransforms writes the matrix of every Transform into the
// GlobalTransform of the same entity.
func UpdateGlobalTransforms(w *World) {
	Each2(w, func(_ Entity, t *Transform, g *GlobalTransform) {
		g.Matrix = t.Matrix()
	})
}

// PropagateHierarchy resolves LocalTransform chains. Every entity with a
// LocalTransform gets its parent's GlobalTransform times its own local
// transform. Chains start at roots: parents that have no LocalTransform
// themselves. A root without a GlobalTransform is treated as the identity
// with a warning. Entities on a parent cycle are never reached.
//
// Run it after UpdateGlobalTransforms.
func PropagateHierarchy(w *World) {
	children := make(map[Entity][]Entity)
	Each(w, func(e Entity, l *LocalTransform) {
		children[l.Parent] = append(children[l.Parent], e)
	})
	if len(children) == 0 {
		return
	}

	var roots []Entity
	for parent := range children {
		if !Has[LocalTransform](w, parent) {
			roots = append(roots, parent)
		}
	}
	slices.Sort(roots)

	type frame struct {
		entity Entity
		parent mgl32.Mat4
	}
	var stack []frame
	for _, root := range roots {
		base := mgl32.Ident4()
		if g, ok := Get[GlobalTransform](w, root); ok {
			base = g.Matrix
		} else {
			g3d.Logger().Warn("scene: hierarchy root has no GlobalTransform",
				"root", root, "children", len(children[root]))
		}

		kids := children[root]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{entity: kids[i], parent: base})
		}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			m := f.parent
			if l, ok := Get[LocalTransform](w, f.entity); ok {
				m = m.Mul4(l.Transform.Matrix())
			}
			if g, ok := Get[GlobalTransform](w, f.entity); ok {
				g.Matrix = m
			}
			kids := children[f.entity]
			for i := len(kids) - 1; i >= 0; i-- {
				stack = append(stack, frame{entity: kids[i], parent: m})
			}
		}
	}
}

// Update runs UpdateGlobalTransforms then PropagateHierarchy.
func Update(w *World) {
	UpdateGlobalTransforms(w)
	PropagateHierarchy(w)
}
