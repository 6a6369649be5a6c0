package engine

import (
	"fmt"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/atlas"
	"github.com/gogpu/g3d/gpucore"
	"github.com/gogpu/g3d/render"
	"github.com/gogpu/g3d/scene"
	"github.com/gogpu/g3d/text"
)

// State holds the GPU resources shared by every pipeline: the render
// target, the shared layouts, lighting, the camera uniform and the text
// stack used by menus.
type State struct {
	config  Config
	adapter gpucore.Adapter
	target  render.RenderTarget

	shared   *render.SharedResources
	lighting *render.Lighting
	camera   *render.Camera
	viewing  bool

	fonts  *text.FontSystem
	font   text.FontID
	shaper *text.Shaper
	atlas  *text.Atlas
}

// NewState creates the shared resources for target. Go Regular is
// registered as the default font.
func NewState(adapter gpucore.Adapter, target render.RenderTarget, cfg Config) (*State, error) {
	if target == nil {
		return nil, ErrNoTarget
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &State{config: cfg, adapter: adapter, target: target}

	var err error
	if s.shared, err = render.NewSharedResources(adapter); err != nil {
		return nil, err
	}
	if s.lighting, err = render.NewLighting(adapter); err != nil {
		s.Release()
		return nil, err
	}
	if s.camera, err = s.shared.CreateCamera("camera_uniform"); err != nil {
		s.Release()
		return nil, err
	}

	s.fonts = text.NewFontSystem()
	if s.font, err = s.fonts.Register(goregular.TTF); err != nil {
		s.Release()
		return nil, fmt.Errorf("engine: default font: %w", err)
	}
	s.shaper = text.NewShaper(s.fonts)
	s.atlas, err = text.NewAtlas(adapter, s.fonts, atlas.Config{Width: cfg.AtlasSize, Height: cfg.AtlasSize})
	if err != nil {
		s.Release()
		return nil, err
	}

	g3d.Logger().Info("engine: state created",
		"width", target.Width(), "height", target.Height(), "format", target.Format())
	return s, nil
}

// Config returns the configuration the state was created with.
func (s *State) Config() Config { return s.config }

// Adapter returns the GPU adapter.
func (s *State) Adapter() gpucore.Adapter { return s.adapter }

// Target returns the render target.
func (s *State) Target() render.RenderTarget { return s.target }

// Shared returns the shared bind group layouts.
func (s *State) Shared() *render.SharedResources { return s.shared }

// Lighting returns the lighting resources.
func (s *State) Lighting() *render.Lighting { return s.lighting }

// Fonts returns the font system. Fonts registered here can be used by
// custom pipelines.
func (s *State) Fonts() *text.FontSystem { return s.fonts }

// Atlas returns the glyph atlas.
func (s *State) Atlas() *text.Atlas { return s.atlas }

// Camera returns the camera uniform, or nil when the world had no usable
// camera in the last Prep.
func (s *State) Camera() *render.Camera {
	if !s.viewing {
		return nil
	}
	return s.camera
}

// Resize resizes the target. A zero dimension is ignored with a warning.
func (s *State) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		g3d.Logger().Warn("engine: ignoring zero-size resize", "width", width, "height", height)
		return nil
	}
	if err := s.target.Resize(width, height); err != nil {
		return fmt.Errorf("engine: resize: %w", err)
	}
	s.config.Width, s.config.Height = width, height
	return nil
}

// updateCamera writes the view of the lowest entity with a Camera.
func (s *State) updateCamera(w *scene.World) {
	e, cam, ok := scene.First[scene.Camera](w)
	if !ok || cam.Projection == nil {
		if s.viewing {
			g3d.Logger().Warn("engine: no camera in the world")
		}
		s.viewing = false
		return
	}
	g := scene.IdentityGlobal()
	if gt, ok := scene.Get[scene.GlobalTransform](w, e); ok {
		g = *gt
	}
	s.camera.UpdateFrom(cam.Projection, g.Translation(), g.Rotation())
	s.viewing = true
}

// Release destroys everything NewState created. The target and adapter
// are owned by the caller.
func (s *State) Release() {
	if s.atlas != nil {
		s.atlas.Release()
		s.atlas = nil
	}
	if s.camera != nil {
		s.camera.Release()
		s.camera = nil
	}
	if s.lighting != nil {
		s.lighting.Release()
		s.lighting = nil
	}
	if s.shared != nil {
		s.shared.Release()
		s.shared = nil
	}
	s.viewing = false
}
