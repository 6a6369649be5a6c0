// Package gputest provides a recording gpucore.Adapter for tests.
//
// The adapter keeps every live resource in plain maps so tests can assert
// on buffer contents, texture pixels and recorded draw commands without a
// GPU.
package gputest

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/g3d/gpucore"
)

// ErrInjected is returned by create calls after FailCreate is set.
var ErrInjected = errors.New("gputest: injected failure")

// Buffer is a recorded GPU buffer.
type Buffer struct {
	Label string
	Size  uint64
	Usage gpucore.BufferUsage
	Data  []byte

	// Writes counts WriteBuffer calls.
	Writes int
}

// Texture is a recorded GPU texture.
type Texture struct {
	Desc   gpucore.TextureDesc
	Pixels []byte

	// Writes records the regions passed to WriteTexture.
	Writes []image.Rectangle
}

// Command is a recorded render pass command.
type Command struct {
	Op   string
	Args []int64
}

// Pass is a recorded render pass.
type Pass struct {
	Desc     gpucore.RenderPassDesc
	Commands []Command
	Ended    bool
}

// Adapter is a recording gpucore.Adapter. It is not safe for concurrent use.
type Adapter struct {
	nextID uint64

	Buffers          map[gpucore.BufferID]*Buffer
	Textures         map[gpucore.TextureID]*Texture
	Samplers         map[gpucore.SamplerID]gpucore.SamplerDesc
	BindGroupLayouts map[gpucore.BindGroupLayoutID]gpucore.BindGroupLayoutDesc
	BindGroups       map[gpucore.BindGroupID]gpucore.BindGroupDesc
	Pipelines        map[gpucore.RenderPipelineID]gpucore.RenderPipelineDesc
	Passes           []*Pass

	BuffersCreated   int
	BuffersDestroyed int

	// FailCreate makes every subsequent Create* call fail with ErrInjected.
	FailCreate bool

	// FailBeginPass makes BeginRenderPass fail with ErrInjected.
	FailBeginPass bool
}

var _ gpucore.Adapter = (*Adapter)(nil)

// NewAdapter creates an empty recording adapter.
func NewAdapter() *Adapter {
	return &Adapter{
		Buffers:          make(map[gpucore.BufferID]*Buffer),
		Textures:         make(map[gpucore.TextureID]*Texture),
		Samplers:         make(map[gpucore.SamplerID]gpucore.SamplerDesc),
		BindGroupLayouts: make(map[gpucore.BindGroupLayoutID]gpucore.BindGroupLayoutDesc),
		BindGroups:       make(map[gpucore.BindGroupID]gpucore.BindGroupDesc),
		Pipelines:        make(map[gpucore.RenderPipelineID]gpucore.RenderPipelineDesc),
	}
}

func (a *Adapter) newID() uint64 {
	a.nextID++
	return a.nextID
}

// CreateBuffer records a new zero-filled buffer.
func (a *Adapter) CreateBuffer(label string, size uint64, usage gpucore.BufferUsage) (gpucore.BufferID, error) {
	if a.FailCreate {
		return gpucore.InvalidID, ErrInjected
	}
	if size == 0 {
		return gpucore.InvalidID, fmt.Errorf("gputest: buffer %q has zero size", label)
	}
	id := gpucore.BufferID(a.newID())
	a.Buffers[id] = &Buffer{Label: label, Size: size, Usage: usage, Data: make([]byte, size)}
	a.BuffersCreated++
	return id, nil
}

// WriteBuffer copies data into the recorded buffer. Writes past the end
// panic, mirroring a validation error on a real device.
func (a *Adapter) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) {
	b, ok := a.Buffers[id]
	if !ok {
		panic(fmt.Sprintf("gputest: write to unknown buffer %d", id))
	}
	if offset+uint64(len(data)) > b.Size {
		panic(fmt.Sprintf("gputest: write of %d bytes at %d overflows buffer %q of %d bytes",
			len(data), offset, b.Label, b.Size))
	}
	copy(b.Data[offset:], data)
	b.Writes++
}

// DestroyBuffer forgets the buffer.
func (a *Adapter) DestroyBuffer(id gpucore.BufferID) {
	if _, ok := a.Buffers[id]; ok {
		delete(a.Buffers, id)
		a.BuffersDestroyed++
	}
}

// CreateTexture records a new zero-filled texture.
func (a *Adapter) CreateTexture(desc *gpucore.TextureDesc) (gpucore.TextureID, error) {
	if a.FailCreate {
		return gpucore.InvalidID, ErrInjected
	}
	if desc.Width == 0 || desc.Height == 0 {
		return gpucore.InvalidID, fmt.Errorf("gputest: texture %q has zero size", desc.Label)
	}
	id := gpucore.TextureID(a.newID())
	size := int(desc.Width) * int(desc.Height) * desc.Format.BytesPerPixel()
	a.Textures[id] = &Texture{Desc: *desc, Pixels: make([]byte, size)}
	return id, nil
}

// WriteTexture copies rows of data into the recorded texture.
func (a *Adapter) WriteTexture(id gpucore.TextureID, region image.Rectangle, data []byte, bytesPerRow uint32) {
	t, ok := a.Textures[id]
	if !ok {
		panic(fmt.Sprintf("gputest: write to unknown texture %d", id))
	}
	bounds := image.Rect(0, 0, int(t.Desc.Width), int(t.Desc.Height))
	if !region.In(bounds) {
		panic(fmt.Sprintf("gputest: region %v outside texture %v", region, bounds))
	}
	bpp := t.Desc.Format.BytesPerPixel()
	stride := int(t.Desc.Width) * bpp
	rowBytes := region.Dx() * bpp
	for y := 0; y < region.Dy(); y++ {
		src := data[y*int(bytesPerRow) : y*int(bytesPerRow)+rowBytes]
		dst := (region.Min.Y+y)*stride + region.Min.X*bpp
		copy(t.Pixels[dst:dst+rowBytes], src)
	}
	t.Writes = append(t.Writes, region)
}

// DestroyTexture forgets the texture.
func (a *Adapter) DestroyTexture(id gpucore.TextureID) {
	delete(a.Textures, id)
}

// CreateSampler records a sampler.
func (a *Adapter) CreateSampler(desc *gpucore.SamplerDesc) (gpucore.SamplerID, error) {
	if a.FailCreate {
		return gpucore.InvalidID, ErrInjected
	}
	id := gpucore.SamplerID(a.newID())
	a.Samplers[id] = *desc
	return id, nil
}

// DestroySampler forgets the sampler.
func (a *Adapter) DestroySampler(id gpucore.SamplerID) {
	delete(a.Samplers, id)
}

// CreateBindGroupLayout records a layout.
func (a *Adapter) CreateBindGroupLayout(desc *gpucore.BindGroupLayoutDesc) (gpucore.BindGroupLayoutID, error) {
	if a.FailCreate {
		return gpucore.InvalidID, ErrInjected
	}
	id := gpucore.BindGroupLayoutID(a.newID())
	a.BindGroupLayouts[id] = *desc
	return id, nil
}

// DestroyBindGroupLayout forgets the layout.
func (a *Adapter) DestroyBindGroupLayout(id gpucore.BindGroupLayoutID) {
	delete(a.BindGroupLayouts, id)
}

// CreateBindGroup records a bind group after checking that its layout and
// resources exist.
func (a *Adapter) CreateBindGroup(desc *gpucore.BindGroupDesc) (gpucore.BindGroupID, error) {
	if a.FailCreate {
		return gpucore.InvalidID, ErrInjected
	}
	if _, ok := a.BindGroupLayouts[desc.Layout]; !ok {
		return gpucore.InvalidID, fmt.Errorf("gputest: bind group layout %d not found", desc.Layout)
	}
	for _, e := range desc.Entries {
		switch {
		case e.Buffer != gpucore.InvalidID:
			if _, ok := a.Buffers[e.Buffer]; !ok {
				return gpucore.InvalidID, fmt.Errorf("gputest: buffer %d not found", e.Buffer)
			}
		case e.Texture != gpucore.InvalidID:
			if _, ok := a.Textures[e.Texture]; !ok {
				return gpucore.InvalidID, fmt.Errorf("gputest: texture %d not found", e.Texture)
			}
		case e.Sampler != gpucore.InvalidID:
			if _, ok := a.Samplers[e.Sampler]; !ok {
				return gpucore.InvalidID, fmt.Errorf("gputest: sampler %d not found", e.Sampler)
			}
		}
	}
	id := gpucore.BindGroupID(a.newID())
	a.BindGroups[id] = *desc
	return id, nil
}

// DestroyBindGroup forgets the bind group.
func (a *Adapter) DestroyBindGroup(id gpucore.BindGroupID) {
	delete(a.BindGroups, id)
}

// CreateRenderPipeline records a pipeline.
func (a *Adapter) CreateRenderPipeline(desc *gpucore.RenderPipelineDesc) (gpucore.RenderPipelineID, error) {
	if a.FailCreate {
		return gpucore.InvalidID, ErrInjected
	}
	if desc.Source == "" {
		return gpucore.InvalidID, fmt.Errorf("gputest: pipeline %q has no shader source", desc.Label)
	}
	id := gpucore.RenderPipelineID(a.newID())
	a.Pipelines[id] = *desc
	return id, nil
}

// DestroyRenderPipeline forgets the pipeline.
func (a *Adapter) DestroyRenderPipeline(id gpucore.RenderPipelineID) {
	delete(a.Pipelines, id)
}

// BeginRenderPass starts recording a pass.
func (a *Adapter) BeginRenderPass(desc *gpucore.RenderPassDesc) (gpucore.RenderPass, error) {
	if a.FailBeginPass {
		return nil, ErrInjected
	}
	p := &Pass{Desc: *desc}
	a.Passes = append(a.Passes, p)
	return p, nil
}

// LastPass returns the most recently started pass, or nil.
func (a *Adapter) LastPass() *Pass {
	if len(a.Passes) == 0 {
		return nil
	}
	return a.Passes[len(a.Passes)-1]
}

// NewPass returns a standalone recording pass.
func NewPass() *Pass {
	return &Pass{}
}

func (p *Pass) record(op string, args ...int64) {
	if p.Ended {
		panic("gputest: command recorded after End")
	}
	p.Commands = append(p.Commands, Command{Op: op, Args: args})
}

// SetPipeline records the pipeline change.
func (p *Pass) SetPipeline(id gpucore.RenderPipelineID) {
	p.record("SetPipeline", int64(id))
}

// SetBindGroup records the bind group change.
func (p *Pass) SetBindGroup(index uint32, id gpucore.BindGroupID) {
	p.record("SetBindGroup", int64(index), int64(id))
}

// SetVertexBuffer records the vertex buffer change.
func (p *Pass) SetVertexBuffer(slot uint32, id gpucore.BufferID) {
	p.record("SetVertexBuffer", int64(slot), int64(id))
}

// SetIndexBuffer records the index buffer change.
func (p *Pass) SetIndexBuffer(id gpucore.BufferID, format gpucore.IndexFormat) {
	p.record("SetIndexBuffer", int64(id), int64(format))
}

// Draw records a draw.
func (p *Pass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.record("Draw", int64(vertexCount), int64(instanceCount), int64(firstVertex), int64(firstInstance))
}

// DrawIndexed records an indexed draw.
func (p *Pass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.record("DrawIndexed", int64(indexCount), int64(instanceCount), int64(firstIndex), int64(baseVertex), int64(firstInstance))
}

// End marks the pass as submitted.
func (p *Pass) End() error {
	if p.Ended {
		return errors.New("gputest: pass already ended")
	}
	p.Ended = true
	return nil
}

// Ops returns the recorded commands named op.
func (p *Pass) Ops(op string) []Command {
	var out []Command
	for _, c := range p.Commands {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// DrawCount returns the number of Draw and DrawIndexed commands.
func (p *Pass) DrawCount() int {
	return len(p.Ops("Draw")) + len(p.Ops("DrawIndexed"))
}
