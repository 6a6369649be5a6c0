// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render provides the GPU resources and instanced renderers of g3d.
//
// Everything in this package talks to the GPU through a gpucore.Adapter, so
// the same code runs on the wgpu HAL backend and on the recording adapter
// used in tests.
//
// # Shared resources
//
//   - SharedResources: bind group layouts for cameras and textures
//   - Camera: view-projection uniform plus its bind group
//   - Lighting: ambient globals uniform plus a storage buffer of lights
//   - Texture, Mesh: immutable GPU objects referenced by LoadedTexture and
//     LoadedMesh handles
//   - TextureTarget: offscreen color and depth attachments
//
// # Renderers
//
//   - ModelRenderer: textured, lit meshes batched per (mesh, texture)
//   - SpriteRenderer: camera-facing quads batched per texture
//   - LineRenderer: thick line segments in a single instance buffer
//
// Each renderer follows the same frame protocol:
//
//	r.Prep(...)         // queue instances, any number of times
//	r.FinishPrep()      // reconcile GPU buffers with the queued instances
//	r.Render(pass, cam) // record draws; no work when nothing is resident
//
// Instance buffers are managed by package batch: buffers are reused while
// the data fits, reallocated to the exact size otherwise, and released when
// their key disappears.
package render
