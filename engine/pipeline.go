package engine

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/gpucore"
	"github.com/gogpu/g3d/render"
	"github.com/gogpu/g3d/scene"
	"github.com/gogpu/g3d/ui3d"
)

// Pipeline turns components of a world into draws.
//
// Every frame the Renderer calls Prep on all pipelines, then Render on all
// pipelines inside a single render pass, both in priority order.
type Pipeline interface {
	// Prep reads the world and uploads this frame's data.
	Prep(s *State, w *scene.World) error

	// Render records the draws of the last Prep.
	Render(pass gpucore.RenderPass, s *State, w *scene.World)

	// Resize is called after the target was resized.
	Resize(s *State)

	// Release destroys the pipeline's GPU resources.
	Release()
}

// PostRenderer is implemented by pipelines that need a call after the
// frame was submitted.
type PostRenderer interface {
	PostRender(s *State)
}

// StatsReporter is implemented by pipelines that report resident counts.
type StatsReporter interface {
	Stats() []slog.Attr
}

// Built-in pipeline priorities. Lower priorities render first.
const (
	PriorityModels  = 0
	PrioritySprites = 10
	PriorityLines   = 20
	PriorityMenus   = 30
)

// ModelPipeline draws every entity with a Model and a GlobalTransform.
type ModelPipeline struct {
	r *render.ModelRenderer
}

// NewModelPipeline creates the model renderer.
func NewModelPipeline(s *State) (*ModelPipeline, error) {
	r, err := render.NewModelRenderer(s.shared, s.lighting, s.target.Format())
	if err != nil {
		return nil, err
	}
	return &ModelPipeline{r: r}, nil
}

// Prep implements Pipeline.
func (p *ModelPipeline) Prep(_ *State, w *scene.World) error {
	scene.Each2(w, func(_ scene.Entity, m *scene.Model, g *scene.GlobalTransform) {
		p.r.Prep(*m, g.Matrix)
	})
	return p.r.FinishPrep()
}

// Render implements Pipeline.
func (p *ModelPipeline) Render(pass gpucore.RenderPass, s *State, _ *scene.World) {
	p.r.Render(pass, s.Camera())
}

// Resize implements Pipeline.
func (p *ModelPipeline) Resize(*State) {}

// Release implements Pipeline.
func (p *ModelPipeline) Release() { p.r.Release() }

// Stats implements StatsReporter.
func (p *ModelPipeline) Stats() []slog.Attr {
	meshes, textures, instances := p.r.Stats()
	return []slog.Attr{
		slog.Int("meshes", meshes),
		slog.Int("model_textures", textures),
		slog.Int("model_instances", instances),
	}
}

// SpritePipeline draws every entity with a Sprite.
type SpritePipeline struct {
	r *render.SpriteRenderer
}

// NewSpritePipeline creates the sprite renderer.
func NewSpritePipeline(s *State) (*SpritePipeline, error) {
	r, err := render.NewSpriteRenderer(s.shared, s.target.Format())
	if err != nil {
		return nil, err
	}
	return &SpritePipeline{r: r}, nil
}

// Prep implements Pipeline.
func (p *SpritePipeline) Prep(_ *State, w *scene.World) error {
	scene.Each(w, func(e scene.Entity, sp *scene.Sprite) {
		pos := sp.Offset
		if g, ok := scene.Get[scene.GlobalTransform](w, e); ok {
			pos = pos.Add(g.Translation())
		}
		p.r.Prep(sp.Sprite, pos)
	})
	return p.r.FinishPrep()
}

// Render implements Pipeline.
func (p *SpritePipeline) Render(pass gpucore.RenderPass, s *State, _ *scene.World) {
	p.r.Render(pass, s.Camera())
}

// Resize implements Pipeline.
func (p *SpritePipeline) Resize(*State) {}

// Release implements Pipeline.
func (p *SpritePipeline) Release() { p.r.Release() }

// Stats implements StatsReporter.
func (p *SpritePipeline) Stats() []slog.Attr {
	textures, instances := p.r.Stats()
	return []slog.Attr{slog.Int("sprite_textures", textures), slog.Int("sprites", instances)}
}

// LinePipeline draws the lines of every LineBundle.
type LinePipeline struct {
	r *render.LineRenderer
}

// NewLinePipeline creates the line renderer. Lines are depth tested when
// Config.LineDepthTest is set.
func NewLinePipeline(s *State) (*LinePipeline, error) {
	r, err := render.NewLineRenderer(s.shared, render.LineRendererOptions{
		ColorFormat: s.target.Format(),
		DepthTest:   s.config.LineDepthTest,
	})
	if err != nil {
		return nil, err
	}
	return &LinePipeline{r: r}, nil
}

// Prep implements Pipeline.
func (p *LinePipeline) Prep(_ *State, w *scene.World) error {
	scene.Each(w, func(_ scene.Entity, b *scene.LineBundle) {
		p.r.PrepLines(b.Lines...)
	})
	return p.r.FinishPrep()
}

// Render implements Pipeline.
func (p *LinePipeline) Render(pass gpucore.RenderPass, s *State, _ *scene.World) {
	p.r.Render(pass, s.Camera())
}

// Resize implements Pipeline.
func (p *LinePipeline) Resize(*State) {}

// Release implements Pipeline.
func (p *LinePipeline) Release() { p.r.Release() }

// Stats implements StatsReporter.
func (p *LinePipeline) Stats() []slog.Attr {
	return []slog.Attr{slog.Int("lines", int(p.r.Count()))}
}

// MenuPipeline draws every entity with a Menu at its GlobalTransform.
type MenuPipeline struct {
	r *ui3d.Renderer[scene.Entity]
}

// NewMenuPipeline creates the menu renderer on the state's glyph atlas.
func NewMenuPipeline(s *State) (*MenuPipeline, error) {
	r, err := ui3d.NewRenderer[scene.Entity](s.shared, s.atlas, s.shaper, s.font, s.target.Format())
	if err != nil {
		return nil, err
	}
	return &MenuPipeline{r: r}, nil
}

// Prep implements Pipeline. A menu with a zero Style uses
// ui3d.DefaultStyle at Config.FontSize. Prep errors are logged and do not
// stop the frame.
func (p *MenuPipeline) Prep(s *State, w *scene.World) error {
	scene.Each(w, func(e scene.Entity, m *scene.Menu) {
		menu := *m
		if menu.Style == (ui3d.Style{}) {
			menu.Style = ui3d.DefaultStyle()
			menu.Style.FontSize = s.config.FontSize
		}
		transform := mgl32.Ident4()
		if g, ok := scene.Get[scene.GlobalTransform](w, e); ok {
			transform = g.Matrix
		}
		if err := p.r.Prep(e, menu, transform); err != nil {
			g3d.Logger().Warn("engine: menu prep failed", "entity", e, "error", err)
		}
	})
	p.r.FinishPrep()
	return nil
}

// Render implements Pipeline.
func (p *MenuPipeline) Render(pass gpucore.RenderPass, s *State, _ *scene.World) {
	p.r.Render(pass, s.Camera())
}

// PostRender implements PostRenderer.
func (p *MenuPipeline) PostRender(*State) { p.r.PostRenderTrim() }

// Resize implements Pipeline.
func (p *MenuPipeline) Resize(*State) {}

// Release implements Pipeline.
func (p *MenuPipeline) Release() { p.r.Release() }

// Stats implements StatsReporter.
func (p *MenuPipeline) Stats() []slog.Attr {
	return []slog.Attr{slog.Int("menus", p.r.Len())}
}
