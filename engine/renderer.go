package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/gpucore"
	"github.com/gogpu/g3d/render"
	"github.com/gogpu/g3d/scene"
)

type managedPipeline struct {
	name     string
	priority int
	pipeline Pipeline
}

// Renderer runs a priority-ordered list of pipelines against a world.
//
// Renderer is not safe for concurrent use.
type Renderer struct {
	state     *State
	pipelines []managedPipeline
	lights    []scene.Light
	synced    bool
	frames    uint64
}

// NewRenderer creates a renderer without pipelines.
func NewRenderer(state *State) *Renderer {
	return &Renderer{state: state}
}

// State returns the shared state.
func (r *Renderer) State() *State {
	return r.state
}

// Add registers p under name. Pipelines run in ascending priority; equal
// priorities keep their registration order.
func (r *Renderer) Add(name string, priority int, p Pipeline) {
	r.pipelines = append(r.pipelines, managedPipeline{name: name, priority: priority, pipeline: p})
	slices.SortStableFunc(r.pipelines, func(a, b managedPipeline) int {
		return a.priority - b.priority
	})
	g3d.Logger().Info("engine: pipeline added", "name", name, "priority", priority)
}

// Pipelines returns the registered pipeline names in execution order.
func (r *Renderer) Pipelines() []string {
	names := make([]string, len(r.pipelines))
	for i, m := range r.pipelines {
		names[i] = m.name
	}
	return names
}

// AddDefaults registers the model, sprite, line and menu pipelines.
func (r *Renderer) AddDefaults() error {
	models, err := NewModelPipeline(r.state)
	if err != nil {
		return err
	}
	r.Add("models", PriorityModels, models)

	sprites, err := NewSpritePipeline(r.state)
	if err != nil {
		return err
	}
	r.Add("sprites", PrioritySprites, sprites)

	lines, err := NewLinePipeline(r.state)
	if err != nil {
		return err
	}
	r.Add("lines", PriorityLines, lines)

	menus, err := NewMenuPipeline(r.state)
	if err != nil {
		return err
	}
	r.Add("menus", PriorityMenus, menus)
	return nil
}

// Prep updates the camera and lights from w, then preps every pipeline.
// A failing pipeline does not stop the others; all errors are returned
// joined.
func (r *Renderer) Prep(w *scene.World) error {
	r.state.updateCamera(w)

	var errs []error
	if err := r.updateLights(w); err != nil {
		errs = append(errs, err)
	}
	for _, m := range r.pipelines {
		if err := m.pipeline.Prep(r.state, w); err != nil {
			errs = append(errs, fmt.Errorf("engine: %s: %w", m.name, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Renderer) updateLights(w *scene.World) error {
	var lights []scene.Light
	scene.Each(w, func(_ scene.Entity, l *scene.Light) {
		lights = append(lights, *l)
	})
	if r.synced && slices.Equal(lights, r.lights) {
		return nil
	}
	if err := r.state.lighting.UpdateLights(lights); err != nil {
		return fmt.Errorf("engine: lights: %w", err)
	}
	r.lights = lights
	r.synced = true
	return nil
}

// Render records every pipeline into pass.
func (r *Renderer) Render(pass gpucore.RenderPass, w *scene.World) {
	for _, m := range r.pipelines {
		m.pipeline.Render(pass, r.state, w)
	}
}

// Frame preps, records and submits one frame into the state's target.
// Post-render work such as the atlas trim runs even when the pass fails.
func (r *Renderer) Frame(w *scene.World) error {
	prepErr := r.Prep(w)
	defer r.postRender()

	pass, err := r.state.adapter.BeginRenderPass(
		render.PassDesc(r.state.target, "frame", r.state.config.Clear()))
	if err != nil {
		return errors.Join(prepErr, fmt.Errorf("engine: begin pass: %w", err))
	}
	r.Render(pass, w)
	if err := pass.End(); err != nil {
		return errors.Join(prepErr, fmt.Errorf("engine: end pass: %w", err))
	}
	r.frames++
	return prepErr
}

func (r *Renderer) postRender() {
	for _, m := range r.pipelines {
		if pr, ok := m.pipeline.(PostRenderer); ok {
			pr.PostRender(r.state)
		}
	}
}

// Frames returns the number of submitted frames.
func (r *Renderer) Frames() uint64 {
	return r.frames
}

// Resize resizes the target, adapts every camera projection in w and
// notifies the pipelines. A zero dimension is ignored.
func (r *Renderer) Resize(width, height uint32, w *scene.World) error {
	if width == 0 || height == 0 {
		return r.state.Resize(width, height)
	}
	if err := r.state.Resize(width, height); err != nil {
		return err
	}
	scene.Each(w, func(_ scene.Entity, c *scene.Camera) {
		if c.Projection != nil {
			c.Projection.SetSize(width, height)
		}
	})
	for _, m := range r.pipelines {
		m.pipeline.Resize(r.state)
	}
	return nil
}

// Stats returns the resident counts reported by the pipelines.
func (r *Renderer) Stats() []slog.Attr {
	attrs := []slog.Attr{
		slog.Uint64("frames", r.frames),
		slog.Int("glyphs", r.state.atlas.Cache().Len()),
	}
	for _, m := range r.pipelines {
		if sr, ok := m.pipeline.(StatsReporter); ok {
			attrs = append(attrs, sr.Stats()...)
		}
	}
	return attrs
}

// Release destroys every pipeline in reverse order. The state is owned by
// the caller.
func (r *Renderer) Release() {
	for i := len(r.pipelines) - 1; i >= 0; i-- {
		r.pipelines[i].pipeline.Release()
	}
	r.pipelines = nil
}
