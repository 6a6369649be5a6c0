package ui3d

import (
	"bytes"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/batch"
	"github.com/gogpu/g3d/gpucore"
	"github.com/gogpu/g3d/render"
	"github.com/gogpu/g3d/text"
)

// uniformSize is the size of both the panel and the position uniform.
const uniformSize = 64

// widget holds the GPU state of one menu.
type widget struct {
	panel         gpucore.BufferID
	panelGroup    gpucore.BindGroupID
	position      gpucore.BufferID
	positionGroup gpucore.BindGroupID

	size  mgl32.Vec2
	label *text.Buffer

	panelBytes    []byte
	positionBytes []byte
}

// Renderer draws menus keyed by ID.
//
// Renderer is not safe for concurrent use.
type Renderer[ID comparable] struct {
	adapter gpucore.Adapter
	atlas   *text.Atlas
	shaper  *text.Shaper
	font    text.FontID

	panelLayout    gpucore.BindGroupLayoutID
	positionLayout gpucore.BindGroupLayoutID
	panelPipeline  gpucore.RenderPipelineID
	textPipeline   gpucore.RenderPipelineID

	widgets *batch.Storage[ID, *widget]
	prepped map[ID]struct{}
	order   []ID
	drawn   []ID
	scratch []byte
}

// NewRenderer creates the panel and text pipelines. Both draw a 4-vertex
// triangle strip with alpha blending, ignore depth and do not cull, so a
// menu is readable from either side.
//
// Bind groups: camera at 0, the panel uniform or the glyph atlas at 1 and
// the menu transform at 2.
func NewRenderer[ID comparable](shared *render.SharedResources, atlas *text.Atlas, shaper *text.Shaper, font text.FontID, colorFormat gpucore.TextureFormat) (*Renderer[ID], error) {
	adapter := shared.Adapter()
	r := &Renderer[ID]{
		adapter:        adapter,
		atlas:          atlas,
		shaper:         shaper,
		font:           font,
		panelLayout:    gpucore.InvalidID,
		positionLayout: gpucore.InvalidID,
		panelPipeline:  gpucore.InvalidID,
		textPipeline:   gpucore.InvalidID,
		prepped:        make(map[ID]struct{}),
	}
	r.widgets = batch.NewStorage(func(_ ID, w *widget) { r.releaseWidget(w) })

	var err error
	r.panelLayout, err = adapter.CreateBindGroupLayout(&gpucore.BindGroupLayoutDesc{
		Label: "ui3d_panel_bind_group_layout",
		Entries: []gpucore.BindGroupLayoutEntry{
			{Binding: 0, Type: gpucore.BindingTypeUniformBuffer, Visibility: gpucore.ShaderStageVertex | gpucore.ShaderStageFragment},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ui3d: panel layout: %w", err)
	}
	r.positionLayout, err = adapter.CreateBindGroupLayout(&gpucore.BindGroupLayoutDesc{
		Label: "ui3d_position_bind_group_layout",
		Entries: []gpucore.BindGroupLayoutEntry{
			{Binding: 0, Type: gpucore.BindingTypeUniformBuffer, Visibility: gpucore.ShaderStageVertex},
		},
	})
	if err != nil {
		r.Release()
		return nil, fmt.Errorf("ui3d: position layout: %w", err)
	}

	r.panelPipeline, err = render.CreatePipeline(adapter, &render.PipelineDescriptor{
		Label:        "ui3d_panel_pipeline",
		Shader:       render.PanelShader(),
		Layouts:      []gpucore.BindGroupLayoutID{shared.CameraLayout, r.panelLayout, r.positionLayout},
		Topology:     gpucore.TopologyTriangleStrip,
		ColorFormat:  colorFormat,
		Blend:        gpucore.BlendAlpha,
		DepthTest:    true,
		DepthCompare: gpucore.CompareAlways,
	})
	if err != nil {
		r.Release()
		return nil, err
	}
	r.textPipeline, err = render.CreatePipeline(adapter, &render.PipelineDescriptor{
		Label:        "ui3d_text_pipeline",
		Shader:       render.TextShader(),
		Layouts:      []gpucore.BindGroupLayoutID{shared.CameraLayout, atlas.Layout(), r.positionLayout},
		Buffers:      []gpucore.VertexBufferLayout{text.VertexLayout},
		Topology:     gpucore.TopologyTriangleStrip,
		ColorFormat:  colorFormat,
		Blend:        gpucore.BlendAlpha,
		DepthTest:    true,
		DepthCompare: gpucore.CompareAlways,
	})
	if err != nil {
		r.Release()
		return nil, err
	}
	return r, nil
}

// Prep updates the menu registered as id, creating it on first use, and
// makes its glyphs resident in the atlas. transform places the top-left
// corner of the panel in the world; the panel extends along +X and -Y.
func (r *Renderer[ID]) Prep(id ID, menu Menu, transform mgl32.Mat4) error {
	if err := menu.Style.Validate(); err != nil {
		return err
	}
	w, ok := r.widgets.Get(id)
	if !ok {
		var err error
		if w, err = r.newWidget(); err != nil {
			return err
		}
	}
	r.widgets.Use(id, w)
	if _, seen := r.prepped[id]; !seen {
		r.prepped[id] = struct{}{}
		r.order = append(r.order, id)
	}

	fs := menu.Style.FontSize
	if err := w.label.SetMetrics(text.Metrics{FontSize: fs, LineHeight: fs}); err != nil {
		return err
	}
	w.label.SetColor(menu.Style.TextColor)
	w.label.Set(menu.Text())
	if _, err := w.label.Prep(r.atlas); err != nil {
		return fmt.Errorf("ui3d: menu text: %w", err)
	}

	r.scratch = batch.AppendFloat32s(r.scratch[:0], transform[:]...)
	w.positionBytes = r.write(w.position, w.positionBytes)

	w.size = menu.Size()
	rng := menu.SelectionRange()
	b := batch.AppendFloat32s(r.scratch[:0], w.size[0], w.size[1], 0, 0)
	b = batch.AppendFloat32s(b, menu.Style.MenuColor[:]...)
	b = batch.AppendFloat32s(b, menu.Style.SelectionColor[:]...)
	r.scratch = batch.AppendFloat32s(b, rng[0], rng[1], 0, 0)
	w.panelBytes = r.write(w.panel, w.panelBytes)
	return nil
}

// write uploads r.scratch to buffer unless it equals last, and returns the
// bytes now held by buffer.
func (r *Renderer[ID]) write(buffer gpucore.BufferID, last []byte) []byte {
	if bytes.Equal(r.scratch, last) {
		return last
	}
	r.adapter.WriteBuffer(buffer, 0, r.scratch)
	return append(last[:0], r.scratch...)
}

// FinishPrep releases every menu that was not prepped since the previous
// FinishPrep. Menus draw in the order they were first prepped this frame.
func (r *Renderer[ID]) FinishPrep() {
	r.widgets.Retain()
	r.drawn, r.order = r.order, r.drawn[:0]
	clear(r.prepped)
}

// Render records the panels, then the text of every menu.
func (r *Renderer[ID]) Render(pass gpucore.RenderPass, camera *render.Camera) {
	if len(r.drawn) == 0 {
		return
	}
	if camera == nil {
		g3d.Logger().Warn("ui3d: no camera, skipping draw")
		return
	}

	pass.SetPipeline(r.panelPipeline)
	pass.SetBindGroup(0, camera.BindGroup())
	for _, id := range r.drawn {
		w, ok := r.widgets.Get(id)
		if !ok || w.size[0] == 0 || w.size[1] == 0 {
			continue
		}
		pass.SetBindGroup(1, w.panelGroup)
		pass.SetBindGroup(2, w.positionGroup)
		pass.Draw(4, 1, 0, 0)
	}

	pass.SetPipeline(r.textPipeline)
	pass.SetBindGroup(0, camera.BindGroup())
	pass.SetBindGroup(1, r.atlas.BindGroup())
	for _, id := range r.drawn {
		w, ok := r.widgets.Get(id)
		if !ok || w.label.VertexCount() == 0 {
			continue
		}
		pass.SetVertexBuffer(0, w.label.VertexBuffer())
		pass.SetBindGroup(2, w.positionGroup)
		pass.Draw(4, w.label.VertexCount(), 0, 0)
	}
}

// PostRenderTrim lets the atlas evict glyphs that were not drawn this
// frame. Call it after the frame is submitted.
func (r *Renderer[ID]) PostRenderTrim() {
	r.atlas.PostRenderTrim()
}

// Len returns the number of live menus.
func (r *Renderer[ID]) Len() int {
	return r.widgets.Len()
}

// Size returns the panel size of the menu registered as id.
func (r *Renderer[ID]) Size(id ID) (mgl32.Vec2, bool) {
	w, ok := r.widgets.Get(id)
	if !ok {
		return mgl32.Vec2{}, false
	}
	return w.size, true
}

// Text returns the text buffer of the menu registered as id.
func (r *Renderer[ID]) Text(id ID) (*text.Buffer, bool) {
	w, ok := r.widgets.Get(id)
	if !ok {
		return nil, false
	}
	return w.label, true
}

// Release destroys every menu, both pipelines and the layouts. The atlas
// is owned by the caller.
func (r *Renderer[ID]) Release() {
	if r.widgets != nil {
		r.widgets.Clear()
	}
	r.order = r.order[:0]
	r.drawn = r.drawn[:0]
	clear(r.prepped)
	if r.textPipeline != gpucore.InvalidID {
		r.adapter.DestroyRenderPipeline(r.textPipeline)
		r.textPipeline = gpucore.InvalidID
	}
	if r.panelPipeline != gpucore.InvalidID {
		r.adapter.DestroyRenderPipeline(r.panelPipeline)
		r.panelPipeline = gpucore.InvalidID
	}
	if r.positionLayout != gpucore.InvalidID {
		r.adapter.DestroyBindGroupLayout(r.positionLayout)
		r.positionLayout = gpucore.InvalidID
	}
	if r.panelLayout != gpucore.InvalidID {
		r.adapter.DestroyBindGroupLayout(r.panelLayout)
		r.panelLayout = gpucore.InvalidID
	}
}

func (r *Renderer[ID]) newWidget() (*widget, error) {
	w := &widget{
		panel:         gpucore.InvalidID,
		panelGroup:    gpucore.InvalidID,
		position:      gpucore.InvalidID,
		positionGroup: gpucore.InvalidID,
	}
	var err error
	if w.panel, w.panelGroup, err = r.uniform("ui3d_panel", r.panelLayout); err != nil {
		return nil, err
	}
	if w.position, w.positionGroup, err = r.uniform("ui3d_position", r.positionLayout); err != nil {
		r.releaseWidget(w)
		return nil, err
	}
	if w.label, err = text.NewBuffer(r.adapter, r.shaper, r.font); err != nil {
		r.releaseWidget(w)
		return nil, fmt.Errorf("ui3d: text buffer: %w", err)
	}
	w.label.SetWrap(text.WrapNone)
	return w, nil
}

// uniform creates a uniform buffer and binds it to layout.
func (r *Renderer[ID]) uniform(label string, layout gpucore.BindGroupLayoutID) (gpucore.BufferID, gpucore.BindGroupID, error) {
	buffer, err := r.adapter.CreateBuffer(label, uniformSize, gpucore.BufferUsageUniform|gpucore.BufferUsageCopyDst)
	if err != nil {
		return gpucore.InvalidID, gpucore.InvalidID, fmt.Errorf("ui3d: %s buffer: %w", label, err)
	}
	group, err := r.adapter.CreateBindGroup(&gpucore.BindGroupDesc{
		Label:   label,
		Layout:  layout,
		Entries: []gpucore.BindGroupEntry{{Binding: 0, Buffer: buffer}},
	})
	if err != nil {
		r.adapter.DestroyBuffer(buffer)
		return gpucore.InvalidID, gpucore.InvalidID, fmt.Errorf("ui3d: %s bind group: %w", label, err)
	}
	return buffer, group, nil
}

func (r *Renderer[ID]) releaseWidget(w *widget) {
	if w.label != nil {
		w.label.Release()
	}
	for _, g := range []gpucore.BindGroupID{w.panelGroup, w.positionGroup} {
		if g != gpucore.InvalidID {
			r.adapter.DestroyBindGroup(g)
		}
	}
	for _, b := range []gpucore.BufferID{w.panel, w.position} {
		if b != gpucore.InvalidID {
			r.adapter.DestroyBuffer(b)
		}
	}
}
