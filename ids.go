package g3d

import "sync/atomic"

// MeshID identifies a loaded mesh for the lifetime of the process.
type MeshID uint32

// TextureID identifies a loaded texture for the lifetime of the process.
type TextureID uint32

var (
	meshCounter    atomic.Uint32
	textureCounter atomic.Uint32
)

// NextMeshID returns a new, never before issued MeshID.
// Safe for concurrent use.
func NextMeshID() MeshID {
	return MeshID(meshCounter.Add(1) - 1)
}

// NextTextureID returns a new, never before issued TextureID.
// Safe for concurrent use.
func NextTextureID() TextureID {
	return TextureID(textureCounter.Add(1) - 1)
}
