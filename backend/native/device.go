//go:build !nogpu

package native

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	// Registers the Vulkan HAL backend via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/backend"
	"github.com/gogpu/g3d/gpucore"
)

// Backend names registered by this package.
const (
	BackendNoop   = "noop"
	BackendVulkan = "vulkan"
)

func init() {
	backend.Register(BackendNoop, func() (backend.Device, error) { return OpenNoop() })
	backend.Register(BackendVulkan, func() (backend.Device, error) { return OpenVulkan() })
}

// Device is an opened HAL device wrapped in a HALAdapter.
type Device struct {
	*HALAdapter

	name     string
	instance hal.Instance
	owned    bool
}

var _ backend.Device = (*Device)(nil)

// Name returns the adapter name reported by the driver.
func (d *Device) Name() string {
	return d.name
}

// Adapter returns the gpucore view of the device.
func (d *Device) Adapter() gpucore.Adapter {
	return d.HALAdapter
}

// Close releases every tracked resource, then the device and instance when
// they were created by this package.
func (d *Device) Close() {
	d.HALAdapter.Close()
	if d.owned {
		d.device.Destroy()
	}
	if d.instance != nil {
		d.instance.Destroy()
	}
}

// OpenNoop opens the HAL noop device. Commands are accepted and discarded.
func OpenNoop() (*Device, error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("create noop instance: %w", err)
	}
	return openFirst(instance, "noop")
}

// OpenVulkan opens a standalone Vulkan device, preferring discrete and
// integrated GPUs over software adapters.
func OpenVulkan() (*Device, error) {
	b, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not available", ErrNoGPU)
	}
	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	return openFirst(instance, "vulkan")
}

func openFirst(instance hal.Instance, kind string) (*Device, error) {
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoGPU
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	limits := gputypes.DefaultLimits()
	openDev, err := selected.Adapter.Open(gputypes.Features(0), limits)
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}

	name := selected.Info.Name
	if name == "" {
		name = kind
	}
	g3d.Logger().Info("native: device opened", "backend", kind, "adapter", name)

	return &Device{
		HALAdapter: NewHALAdapter(openDev.Device, openDev.Queue, &limits),
		name:       name,
		instance:   instance,
		owned:      true,
	}, nil
}

// FromProvider wraps a device owned by the host application. The provider
// must also expose its HAL objects through HalDevice and HalQueue.
// Close on the result releases only resources created through the adapter.
func FromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("native: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("native: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("native: provider HalQueue is not hal.Queue")
	}

	return &Device{
		HALAdapter: NewHALAdapter(device, queue, nil),
		name:       "external",
	}, nil
}
