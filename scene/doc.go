// Package scene is a small entity store for 3D scenes.
//
// A World holds entities and one component map per Go type. Components are
// attached with Insert and visited with Each or Each2, always in ascending
// entity order:
//
//	w := scene.NewWorld()
//	cube := w.Spawn()
//	scene.Insert(w, cube, scene.FromTranslation(mgl32.Vec3{0, 0, 5}))
//	scene.Insert(w, cube, scene.IdentityGlobal())
//	scene.Insert(w, cube, render.NewModel(meshes...))
//
//	scene.Update(w) // Transform -> GlobalTransform, then hierarchies
//
// Entities with a LocalTransform follow their parent. The engine package
// reads Model, Sprite, LineBundle, Menu and Camera components to drive the
// renderers.
package scene
