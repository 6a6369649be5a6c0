package atlas

import "errors"

// Glyph cache errors.
var (
	// ErrNoGlyphImage is returned when the rasterizer produced no bitmap
	// for a requested glyph.
	ErrNoGlyphImage = errors.New("atlas: no glyph image")

	// ErrOutOfSpace is returned when the atlas has no free region and the
	// least recently used glyph is still in use this frame.
	ErrOutOfSpace = errors.New("atlas: out of space")

	// ErrLRUStorage is returned when allocation keeps failing although the
	// cache has nothing left to evict. It indicates that the packer and the
	// cache disagree about the atlas contents.
	ErrLRUStorage = errors.New("atlas: lru storage exhausted")
)

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "atlas: invalid config." + e.Field + ": " + e.Reason
}
