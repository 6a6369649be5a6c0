package gpucore

import "image"

// Adapter abstracts over GPU backend implementations.
//
// Resource lifecycle:
//   - Resources are created via Create* methods
//   - Resources must be explicitly destroyed via Destroy* methods
//   - Destroying an unknown or already destroyed ID is a no-op
//   - IDs become invalid after destruction and are never reused
type Adapter interface {
	// CreateBuffer creates a GPU buffer of size bytes.
	CreateBuffer(label string, size uint64, usage BufferUsage) (BufferID, error)

	// WriteBuffer copies data into the buffer at offset.
	WriteBuffer(id BufferID, offset uint64, data []byte)

	// DestroyBuffer releases a GPU buffer.
	DestroyBuffer(id BufferID)

	// CreateTexture creates a 2D texture with a default view.
	CreateTexture(desc *TextureDesc) (TextureID, error)

	// WriteTexture copies data into region of the texture. bytesPerRow is the
	// stride of data.
	WriteTexture(id TextureID, region image.Rectangle, data []byte, bytesPerRow uint32)

	// DestroyTexture releases a texture and its view.
	DestroyTexture(id TextureID)

	// CreateSampler creates a texture sampler.
	CreateSampler(desc *SamplerDesc) (SamplerID, error)

	// DestroySampler releases a sampler.
	DestroySampler(id SamplerID)

	// CreateBindGroupLayout creates a bind group layout.
	CreateBindGroupLayout(desc *BindGroupLayoutDesc) (BindGroupLayoutID, error)

	// DestroyBindGroupLayout releases a bind group layout.
	DestroyBindGroupLayout(id BindGroupLayoutID)

	// CreateBindGroup binds resources to a layout.
	CreateBindGroup(desc *BindGroupDesc) (BindGroupID, error)

	// DestroyBindGroup releases a bind group.
	DestroyBindGroup(id BindGroupID)

	// CreateRenderPipeline compiles desc.Source and creates a render pipeline.
	CreateRenderPipeline(desc *RenderPipelineDesc) (RenderPipelineID, error)

	// DestroyRenderPipeline releases a render pipeline.
	DestroyRenderPipeline(id RenderPipelineID)

	// BeginRenderPass starts recording a render pass. The pass is submitted
	// by RenderPass.End.
	BeginRenderPass(desc *RenderPassDesc) (RenderPass, error)
}

// RenderPass records draw commands.
//
// Usage:
//  1. Obtain a pass from Adapter.BeginRenderPass
//  2. Set pipeline, bind groups and buffers
//  3. Draw
//  4. Call End to submit
//
// A pass is single-use and cannot be reused after End.
type RenderPass interface {
	SetPipeline(id RenderPipelineID)
	SetBindGroup(index uint32, id BindGroupID)
	SetVertexBuffer(slot uint32, id BufferID)
	SetIndexBuffer(id BufferID, format IndexFormat)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)

	// End finishes the pass and submits it without waiting for completion.
	End() error
}
