package backend

import (
	"errors"

	"github.com/gogpu/g3d/gpucore"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Well-known backend names, in selection priority order.
const (
	BackendVulkan = "vulkan"
	BackendNoop   = "noop"
)

// Device is an opened GPU device.
//
// Backends must be registered via Register() and are opened via
// Open() or OpenDefault().
type Device interface {
	// Name returns the adapter name reported by the driver.
	Name() string

	// Adapter returns the resource interface used by renderers.
	Adapter() gpucore.Adapter

	// Close releases all device resources.
	// The device should not be used after Close is called.
	Close()
}
