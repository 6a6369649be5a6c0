package native

import "errors"

// Package errors for the native backend.
var (
	// ErrNoGPU is returned when no GPU adapter is available.
	ErrNoGPU = errors.New("native: no GPU adapter available")

	// ErrZeroSize is returned when a buffer or texture has a zero dimension.
	ErrZeroSize = errors.New("native: zero-sized resource")

	// ErrTooLarge is returned when a buffer exceeds the device limit.
	ErrTooLarge = errors.New("native: resource exceeds device limits")

	// ErrUnknownResource is returned when an ID does not name a live resource.
	ErrUnknownResource = errors.New("native: unknown resource")

	// ErrEmptyShader is returned when a pipeline has no shader source.
	ErrEmptyShader = errors.New("native: empty shader source")

	// ErrPassEnded is returned when End is called twice on a render pass.
	ErrPassEnded = errors.New("native: render pass has already ended")
)
