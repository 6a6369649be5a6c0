// Command g3ddemo renders a small scene offscreen: a spinning cube, a
// sprite, coordinate axes and a menu whose selection moves every few
// frames.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"os"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/backend"
	_ "github.com/gogpu/g3d/backend/native"
	"github.com/gogpu/g3d/engine"
	"github.com/gogpu/g3d/gpucore"
	"github.com/gogpu/g3d/render"
	"github.com/gogpu/g3d/scene"
	"github.com/gogpu/g3d/ui3d"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML config file")
		frames     = flag.Int("frames", -1, "number of frames to render (overrides config)")
		backendArg = flag.String("backend", "", "GPU backend: noop or vulkan (default: best available)")
		verbose    = flag.Bool("v", false, "verbose logging")
		validate   = flag.Bool("validate", false, "validate the built-in shaders and exit")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	g3d.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *validate {
		if err := render.ValidateShaders(); err != nil {
			log.Fatalf("Shader validation failed: %v", err)
		}
		log.Println("All shaders valid")
		return
	}

	cfg := engine.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = engine.LoadConfig(*configPath); err != nil {
			log.Fatal(err)
		}
	}
	if *frames >= 0 {
		cfg.Frames = *frames
	}
	if *backendArg != "" {
		cfg.Backend = *backendArg
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("Failed: %v", err)
	}
}

func openDevice(name string) (backend.Device, error) {
	if name == "" {
		return backend.OpenDefault()
	}
	return backend.Open(name)
}

func run(cfg engine.Config) error {
	dev, err := openDevice(cfg.Backend)
	if err != nil {
		return err
	}
	defer dev.Close()
	log.Printf("Using %s (available: %v)", dev.Name(), backend.Available())

	adapter := dev.Adapter()
	target, err := render.NewTextureTarget(adapter, cfg.Width, cfg.Height, gpucore.TextureFormatBGRA8Unorm)
	if err != nil {
		return err
	}
	defer target.Destroy()

	state, err := engine.NewState(adapter, target, cfg)
	if err != nil {
		return err
	}
	defer state.Release()

	renderer := engine.NewRenderer(state)
	defer renderer.Release()
	if err := renderer.AddDefaults(); err != nil {
		return err
	}

	w := scene.NewWorld()
	cube, menu, err := buildScene(w, state)
	if err != nil {
		return err
	}
	if err := renderer.Resize(cfg.Width, cfg.Height, w); err != nil {
		return err
	}

	for i := 0; i < cfg.Frames; i++ {
		if t, ok := scene.Get[scene.Transform](w, cube); ok {
			t.Rotation = mgl32.QuatRotate(float32(i)*0.05, mgl32.Vec3{0, 1, 0})
		}
		if m, ok := scene.Get[scene.Menu](w, menu); ok {
			m.Selected = uint8((i / 10) % len(m.Options))
		}
		scene.Update(w)

		if err := renderer.Frame(w); err != nil {
			g3d.Logger().Warn("frame failed", "frame", i, "error", err)
		}
	}

	attrs := make([]any, 0, 8)
	for _, a := range renderer.Stats() {
		attrs = append(attrs, a)
	}
	g3d.Logger().Info("done", attrs...)
	return nil
}

// buildScene spawns the demo entities and returns the cube and menu.
func buildScene(w *scene.World, state *engine.State) (cube, menu scene.Entity, err error) {
	mesh, err := render.NewCube(state.Adapter(), "cube")
	if err != nil {
		return 0, 0, err
	}
	orange, err := render.NewTextureFromColor(state.Shared(), "orange", color.RGBA{R: 255, G: 140, A: 255})
	if err != nil {
		return 0, 0, err
	}
	white, err := render.NewTextureFromColor(state.Shared(), "white", color.White)
	if err != nil {
		return 0, 0, err
	}

	insert := func(e scene.Entity, insertFn ...func(scene.Entity) error) {
		for _, fn := range insertFn {
			if err == nil {
				err = fn(e)
			}
		}
	}
	with := func(c any) func(scene.Entity) error {
		return func(e scene.Entity) error {
			switch c := c.(type) {
			case scene.Transform:
				return scene.Insert(w, e, c)
			case scene.GlobalTransform:
				return scene.Insert(w, e, c)
			case scene.Camera:
				return scene.Insert(w, e, c)
			case scene.Model:
				return scene.Insert(w, e, c)
			case scene.Sprite:
				return scene.Insert(w, e, c)
			case scene.LineBundle:
				return scene.Insert(w, e, c)
			case scene.Menu:
				return scene.Insert(w, e, c)
			case scene.Light:
				return scene.Insert(w, e, c)
			}
			return fmt.Errorf("unsupported component %T", c)
		}
	}

	insert(w.Spawn(), with(scene.NewPerspectiveCamera()),
		with(scene.FromTranslation(mgl32.Vec3{0, 1, -10})), with(scene.IdentityGlobal()))

	insert(w.Spawn(), with(scene.Light{
		Position: mgl32.Vec4{3, 5, -5, 1},
		Diffuse:  mgl32.Vec4{1, 1, 1, 1},
		Specular: mgl32.Vec4{0.5, 0.5, 0.5, 1},
	}))

	cube = w.Spawn()
	insert(cube,
		with(render.NewModel(render.MeshTexture{Mesh: render.LoadMesh(mesh), Texture: render.LoadTexture(orange)})),
		with(scene.IdentityTransform()), with(scene.IdentityGlobal()))

	insert(w.Spawn(), with(scene.Sprite{
		Sprite: render.NewSprite(render.LoadTexture(white), mgl32.Vec2{0.5, 0.5}),
		Offset: mgl32.Vec3{-3, 2, 0},
	}))

	axes := scene.LineBundle{}
	for i, c := range []mgl32.Vec4{{1, 0, 0, 1}, {0, 1, 0, 1}, {0, 0, 1, 1}} {
		l := render.DefaultLine()
		l.Color = c
		l.Pos1 = mgl32.Vec3{}
		l.Pos2[i] = 2
		axes.Lines = append(axes.Lines, l)
	}
	insert(w.Spawn(), with(axes))

	menu = w.Spawn()
	m := ui3d.NewMenu("Resume", "Options", "Quit")
	m.Style.FontSize = state.Config().FontSize
	insert(menu, with(m),
		with(scene.FromTranslation(mgl32.Vec3{2, 0, 0}).WithScale(mgl32.Vec3{0.01, 0.01, 0.01})),
		with(scene.IdentityGlobal()))

	return cube, menu, err
}
