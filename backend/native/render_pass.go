//go:build !nogpu

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g3d/gpucore"
)

// maxBindGroups is the highest bind group index accepted by SetBindGroup plus one.
const maxBindGroups = 4

// BeginRenderPass creates a command encoder and begins a render pass on it.
// The pass is submitted by End.
func (a *HALAdapter) BeginRenderPass(desc *gpucore.RenderPassDesc) (gpucore.RenderPass, error) {
	if desc == nil {
		return nil, fmt.Errorf("nil render pass descriptor")
	}

	a.mu.RLock()
	color, ok := a.textures[desc.Color]
	var depth *halTexture
	if ok && desc.Depth != gpucore.InvalidID {
		depth, ok = a.textures[desc.Depth]
	}
	a.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: render pass attachment", ErrUnknownResource)
	}

	encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: desc.Label + "_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(desc.Label); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	rpDesc := &hal.RenderPassDescriptor{
		Label: desc.Label,
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    color.view,
			LoadOp:  gputypes.LoadOpClear,
			StoreOp: gputypes.StoreOpStore,
			ClearValue: gputypes.Color{
				R: desc.ClearColor.R,
				G: desc.ClearColor.G,
				B: desc.ClearColor.B,
				A: desc.ClearColor.A,
			},
		}},
	}
	if depth != nil {
		rpDesc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:            depth.view,
			DepthLoadOp:     gputypes.LoadOpClear,
			DepthStoreOp:    gputypes.StoreOpStore,
			DepthClearValue: 1.0,
		}
	}

	return &halRenderPass{
		adapter: a,
		encoder: encoder,
		pass:    encoder.BeginRenderPass(rpDesc),
	}, nil
}

// halRenderPass implements gpucore.RenderPass.
//
// It is NOT safe for concurrent use. Unknown IDs are skipped so a pass
// never records a nil resource.
type halRenderPass struct {
	adapter *HALAdapter
	encoder hal.CommandEncoder
	pass    hal.RenderPassEncoder
	ended   bool
}

// SetPipeline sets the active render pipeline.
func (p *halRenderPass) SetPipeline(id gpucore.RenderPipelineID) {
	if p.ended {
		return
	}
	p.adapter.mu.RLock()
	pipeline, ok := p.adapter.pipelines[id]
	p.adapter.mu.RUnlock()

	if ok {
		p.pass.SetPipeline(pipeline.pipeline)
	}
}

// SetBindGroup sets a bind group at the specified index.
func (p *halRenderPass) SetBindGroup(index uint32, id gpucore.BindGroupID) {
	if p.ended || index >= maxBindGroups {
		return
	}
	p.adapter.mu.RLock()
	group, ok := p.adapter.bindGroups[id]
	p.adapter.mu.RUnlock()

	if ok {
		p.pass.SetBindGroup(index, group, nil)
	}
}

// SetVertexBuffer binds a vertex buffer to slot.
func (p *halRenderPass) SetVertexBuffer(slot uint32, id gpucore.BufferID) {
	if p.ended {
		return
	}
	p.adapter.mu.RLock()
	buffer, ok := p.adapter.buffers[id]
	p.adapter.mu.RUnlock()

	if ok {
		p.pass.SetVertexBuffer(slot, buffer, 0)
	}
}

// SetIndexBuffer binds the index buffer.
func (p *halRenderPass) SetIndexBuffer(id gpucore.BufferID, format gpucore.IndexFormat) {
	if p.ended {
		return
	}
	p.adapter.mu.RLock()
	buffer, ok := p.adapter.buffers[id]
	p.adapter.mu.RUnlock()

	if !ok {
		return
	}
	f := gputypes.IndexFormatUint16
	if format == gpucore.IndexFormatUint32 {
		f = gputypes.IndexFormatUint32
	}
	p.pass.SetIndexBuffer(buffer, f, 0)
}

// Draw draws primitives.
func (p *halRenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	if p.ended || vertexCount == 0 || instanceCount == 0 {
		return
	}
	p.pass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

// DrawIndexed draws indexed primitives.
func (p *halRenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	if p.ended || indexCount == 0 || instanceCount == 0 {
		return
	}
	p.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

// End finishes the pass and submits the command buffer without a fence.
func (p *halRenderPass) End() error {
	if p.ended {
		return ErrPassEnded
	}
	p.ended = true
	p.pass.End()

	cmdBuffer, err := p.encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer p.adapter.device.FreeCommandBuffer(cmdBuffer)

	// Submit without fence (fire and forget)
	if _, err := p.adapter.queue.Submit([]hal.CommandBuffer{cmdBuffer}); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	return nil
}
