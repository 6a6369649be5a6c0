// Package gpucore provides the backend-neutral GPU abstraction used by the
// g3d renderers.
//
// This package defines the [Adapter] interface for resource management and
// the [RenderPass] interface for draw recording. Renderers only ever talk to
// these interfaces, so the same batching code runs on:
//   - gogpu/wgpu HAL devices (backend/native)
//   - the recording fake used by the package tests (internal/gputest)
//
// # Resource Management
//
// GPU resources are managed via opaque IDs ([BufferID], [TextureID], etc.).
// The [Adapter] interface provides creation and destruction methods for
// each resource type. Adapters are responsible for tracking the mapping
// between IDs and actual GPU resources. [InvalidID] is never issued.
//
// # Vertex Layouts
//
// [VertexAttributes] builds tightly packed attribute lists the way WGSL
// structs are declared, assigning consecutive shader locations:
//
//	layout := gpucore.VertexBufferLayout{
//	    ArrayStride: 40,
//	    StepMode:    gpucore.VertexStepModeInstance,
//	    Attributes: gpucore.VertexAttributes(3,
//	        gpucore.VertexFormatFloat32x4, // color
//	        gpucore.VertexFormatFloat32x2, // size
//	        gpucore.VertexFormatFloat32x3, // position
//	    ),
//	}
package gpucore
