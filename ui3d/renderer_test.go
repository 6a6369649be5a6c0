package ui3d

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/g3d/atlas"
	"github.com/gogpu/g3d/gpucore"
	"github.com/gogpu/g3d/internal/gputest"
	"github.com/gogpu/g3d/render"
	"github.com/gogpu/g3d/text"
)

type fixture struct {
	adapter *gputest.Adapter
	shared  *render.SharedResources
	atlas   *text.Atlas
	camera  *render.Camera
	ui      *Renderer[string]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	a := gputest.NewAdapter()
	shared, err := render.NewSharedResources(a)
	if err != nil {
		t.Fatalf("NewSharedResources() error = %v", err)
	}
	camera, err := shared.CreateCamera("camera")
	if err != nil {
		t.Fatalf("CreateCamera() error = %v", err)
	}
	fonts := text.NewFontSystem()
	font, err := fonts.Register(goregular.TTF)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	at, err := text.NewAtlas(a, fonts, atlas.DefaultConfig())
	if err != nil {
		t.Fatalf("NewAtlas() error = %v", err)
	}
	ui, err := NewRenderer[string](shared, at, text.NewShaper(fonts), font, gpucore.TextureFormatBGRA8Unorm)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	return &fixture{adapter: a, shared: shared, atlas: at, camera: camera, ui: ui}
}

// frame preps menus in order and finishes the frame.
func (f *fixture) frame(t *testing.T, ids []string, menus ...Menu) {
	t.Helper()
	for i, id := range ids {
		if err := f.ui.Prep(id, menus[i], mgl32.Translate3D(float32(i), 0, 0)); err != nil {
			t.Fatalf("Prep(%q) error = %v", id, err)
		}
	}
	f.ui.FinishPrep()
}

// buffersLabelled returns the live buffers created with label.
func (f *fixture) buffersLabelled(label string) []*gputest.Buffer {
	var out []*gputest.Buffer
	for _, b := range f.adapter.Buffers {
		if b.Label == label {
			out = append(out, b)
		}
	}
	return out
}

func floats(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}

func pipelineNamed(t *testing.T, a *gputest.Adapter, label string) gpucore.RenderPipelineDesc {
	t.Helper()
	for _, d := range a.Pipelines {
		if d.Label == label {
			return d
		}
	}
	t.Fatalf("pipeline %q not created", label)
	return gpucore.RenderPipelineDesc{}
}

func TestNewRendererPipelines(t *testing.T) {
	f := newFixture(t)
	if len(f.adapter.Pipelines) != 2 {
		t.Fatalf("pipelines = %d, want 2", len(f.adapter.Pipelines))
	}
	for _, label := range []string{"ui3d_panel_pipeline", "ui3d_text_pipeline"} {
		d := pipelineNamed(t, f.adapter, label)
		if d.Topology != gpucore.TopologyTriangleStrip {
			t.Errorf("%s: topology = %v, want strip", label, d.Topology)
		}
		if d.Blend != gpucore.BlendAlpha {
			t.Errorf("%s: blend = %v, want alpha", label, d.Blend)
		}
		if d.CullMode != gpucore.CullNone {
			t.Errorf("%s: menus should not be culled", label)
		}
		if d.DepthStencil == nil || d.DepthStencil.DepthWriteEnabled || d.DepthStencil.DepthCompare != gpucore.CompareAlways {
			t.Errorf("%s: depth = %+v, want always without writes", label, d.DepthStencil)
		}
		if len(d.BindGroupLayouts) != 3 || d.BindGroupLayouts[0] != f.shared.CameraLayout {
			t.Errorf("%s: layouts = %v", label, d.BindGroupLayouts)
		}
	}
	txt := pipelineNamed(t, f.adapter, "ui3d_text_pipeline")
	if txt.BindGroupLayouts[1] != f.atlas.Layout() {
		t.Error("text pipeline should bind the glyph atlas at group 1")
	}
	if len(txt.Buffers) != 1 || txt.Buffers[0].ArrayStride != text.VertexSize {
		t.Errorf("text buffers = %+v", txt.Buffers)
	}

	f.ui.Release()
	if len(f.adapter.Pipelines) != 0 {
		t.Error("Release should destroy both pipelines")
	}
}

func TestNewRendererFailure(t *testing.T) {
	f := newFixture(t)
	layouts := len(f.adapter.BindGroupLayouts)
	f.adapter.FailCreate = true
	if _, err := NewRenderer[int](f.shared, f.atlas, nil, 0, gpucore.TextureFormatBGRA8Unorm); !errors.Is(err, gputest.ErrInjected) {
		t.Errorf("NewRenderer() error = %v, want injected failure", err)
	}
	if len(f.adapter.BindGroupLayouts) != layouts {
		t.Error("failed NewRenderer should not leak layouts")
	}
}

func TestPrepWritesUniforms(t *testing.T) {
	f := newFixture(t)
	m := NewMenu("Resume", "Options", "Quit")
	m.Selected = 1
	f.frame(t, []string{"pause"}, m)

	panels := f.buffersLabelled("ui3d_panel")
	if len(panels) != 1 {
		t.Fatalf("panel buffers = %d, want 1", len(panels))
	}
	got := floats(panels[0].Data)
	want := []float32{
		210, 90, 0, 0,
		0.5, 0.5, 0.5, 0.7,
		0.7, 0.7, 0.7, 0.8,
		1.0 / 3, 2.0 / 3, 0, 0,
	}
	if len(got) != len(want) {
		t.Fatalf("panel uniform = %d floats, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("panel uniform[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	positions := f.buffersLabelled("ui3d_position")
	if len(positions) != 1 {
		t.Fatalf("position buffers = %d, want 1", len(positions))
	}
	tr := mgl32.Translate3D(0, 0, 0)
	for i, v := range floats(positions[0].Data) {
		if v != tr[i] {
			t.Fatalf("transform[%d] = %v, want %v", i, v, tr[i])
		}
	}

	size, ok := f.ui.Size("pause")
	if !ok || size != (mgl32.Vec2{210, 90}) {
		t.Errorf("Size() = %v, %v", size, ok)
	}
	buf, _ := f.ui.Text("pause")
	if buf.Text() != "Resume\nOptions\nQuit" {
		t.Errorf("text = %q", buf.Text())
	}
	if buf.Metrics() != (text.Metrics{FontSize: 30, LineHeight: 30}) {
		t.Errorf("metrics = %+v", buf.Metrics())
	}
	if buf.Color() != text.White {
		t.Errorf("text color = %v", buf.Color())
	}
}

func TestPrepSkipsUnchangedUploads(t *testing.T) {
	f := newFixture(t)
	m := NewMenu("Resume", "Quit")
	f.frame(t, []string{"pause"}, m)
	f.ui.PostRenderTrim()

	panel := f.buffersLabelled("ui3d_panel")[0]
	position := f.buffersLabelled("ui3d_position")[0]
	vertices := f.buffersLabelled("text_vertices")[0]
	pw, tw, vw := panel.Writes, position.Writes, vertices.Writes

	f.frame(t, []string{"pause"}, m)
	if panel.Writes != pw || position.Writes != tw || vertices.Writes != vw {
		t.Errorf("writes = %d/%d/%d, want %d/%d/%d", panel.Writes, position.Writes, vertices.Writes, pw, tw, vw)
	}

	m.Selected = 1
	f.frame(t, []string{"pause"}, m)
	if panel.Writes != pw+1 {
		t.Error("selection change should rewrite the panel uniform")
	}
	if vertices.Writes != vw {
		t.Error("selection change should not rebuild the text")
	}

	m.Options = []string{"Resume", "Exit"}
	f.frame(t, []string{"pause"}, m)
	if vertices.Writes == vw {
		t.Error("changed option should rebuild the text")
	}
}

func TestRenderDrawsPanelsThenText(t *testing.T) {
	f := newFixture(t)
	f.frame(t, []string{"b", "a"}, NewMenu("Resume", "Quit"), NewMenu("Go"))

	pass := gputest.NewPass()
	f.ui.Render(pass, f.camera)

	draws := pass.Ops("Draw")
	if len(draws) != 4 {
		t.Fatalf("draws = %d, want 4", len(draws))
	}
	for i := range 2 {
		if draws[i].Args[0] != 4 || draws[i].Args[1] != 1 {
			t.Errorf("panel draw %d = %v, want 4 vertices 1 instance", i, draws[i].Args)
		}
	}
	if draws[2].Args[1] != 10 || draws[3].Args[1] != 2 {
		t.Errorf("text instances = %d, %d, want 10, 2 in prep order", draws[2].Args[1], draws[3].Args[1])
	}

	pipelines := pass.Ops("SetPipeline")
	if len(pipelines) != 2 {
		t.Errorf("pipeline switches = %d, want 2", len(pipelines))
	}
	var atlasBound bool
	for _, c := range pass.Ops("SetBindGroup") {
		if c.Args[0] == 1 && c.Args[1] == int64(f.atlas.BindGroup()) {
			atlasBound = true
		}
	}
	if !atlasBound {
		t.Error("text pass should bind the atlas at group 1")
	}
}

func TestRenderSkipsEmptyMenu(t *testing.T) {
	f := newFixture(t)
	f.frame(t, []string{"empty"}, NewMenu())

	pass := gputest.NewPass()
	f.ui.Render(pass, f.camera)
	if pass.DrawCount() != 0 {
		t.Errorf("draws = %d, want 0", pass.DrawCount())
	}
}

func TestRenderWithoutCamera(t *testing.T) {
	f := newFixture(t)
	f.frame(t, []string{"pause"}, NewMenu("Quit"))

	pass := gputest.NewPass()
	f.ui.Render(pass, nil)
	if len(pass.Commands) != 0 {
		t.Errorf("commands = %d, want none without a camera", len(pass.Commands))
	}
}

func TestFinishPrepReleasesUnused(t *testing.T) {
	f := newFixture(t)
	f.frame(t, []string{"a", "b"}, NewMenu("One"), NewMenu("Two"))
	if f.ui.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", f.ui.Len())
	}

	f.frame(t, []string{"a"}, NewMenu("One"))
	if f.ui.Len() != 1 {
		t.Errorf("Len() = %d, want 1", f.ui.Len())
	}
	if _, ok := f.ui.Size("b"); ok {
		t.Error("b should be released")
	}
	if n := len(f.buffersLabelled("ui3d_panel")); n != 1 {
		t.Errorf("live panel buffers = %d, want 1", n)
	}
	if n := len(f.buffersLabelled("text_vertices")); n != 1 {
		t.Errorf("live text buffers = %d, want 1", n)
	}

	pass := gputest.NewPass()
	f.ui.Render(pass, f.camera)
	if pass.DrawCount() != 2 {
		t.Errorf("draws = %d, want 2", pass.DrawCount())
	}

	f.ui.FinishPrep()
	if f.ui.Len() != 0 {
		t.Errorf("Len() = %d after an empty frame, want 0", f.ui.Len())
	}
}

func TestPrepRejectsBadStyle(t *testing.T) {
	f := newFixture(t)
	m := NewMenu("x")
	m.Style.FontSize = 0
	if err := f.ui.Prep("x", m, mgl32.Ident4()); !errors.Is(err, ErrFontSize) {
		t.Errorf("Prep() error = %v, want ErrFontSize", err)
	}
	if f.ui.Len() != 0 {
		t.Error("rejected menu should not be registered")
	}
}
