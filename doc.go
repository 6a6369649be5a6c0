// Package g3d is a lightweight real-time 3D rendering framework built on
// gogpu/wgpu.
//
// # Overview
//
// g3d draws a small entity scene (models, sprites, lines and 3D UI menus)
// with per-frame instance batching. Every renderer follows the same
// prep → diff → upload → render cycle: the frame's desired instances are
// grouped by resource key, reconciled against the GPU buffers left over from
// the previous frame, and drawn in priority order.
//
// Text drawn by the UI renderer goes through a glyph atlas: a single R8
// texture managed by a bucketed rectangle packer and an LRU cache that
// evicts glyphs not used in the current frame when space runs out.
//
// # Architecture
//
// The module is organized into:
//   - atlas: rectangle packer and generic glyph atlas cache
//   - batch: instance buffers and the per-frame diff engine
//   - gpucore: backend-neutral GPU resource IDs and interfaces
//   - backend/native: gpucore implementation on gogpu/wgpu/hal
//   - render: camera, lighting, meshes, textures, model/sprite/line renderers
//   - text: fonts, shaping, rasterization, text atlas and text buffers
//   - ui3d: vertical menu panels rendered in world space
//   - scene: entity store and transform propagation
//   - engine: renderer state and priority-ordered pipelines
//
// # Logging
//
// g3d is silent by default. Use [SetLogger] to route diagnostics to any
// [log/slog] handler.
package g3d
