// Package engine glues a scene.World to the renderers.
//
// A State owns the GPU resources every pipeline shares. A Renderer runs a
// priority-ordered list of Pipelines over the world once per frame:
//
//	state, err := engine.NewState(adapter, target, cfg)
//	r := engine.NewRenderer(state)
//	if err := r.AddDefaults(); err != nil {
//		return err
//	}
//	for range cfg.Frames {
//		scene.Update(world)
//		if err := r.Frame(world); err != nil {
//			return err
//		}
//	}
//
// The camera is taken from the lowest entity with a scene.Camera. Config
// can be loaded from TOML with LoadConfig.
package engine
