package batch

import (
	"fmt"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/gpucore"
)

// Spec describes the records stored in an InstanceBuffer.
type Spec[T any] struct {
	// Label is the debug label of created buffers.
	Label string

	// Stride is the encoded size of one record in bytes.
	Stride uint64

	// Usage is the buffer usage. CopyDst is always added.
	Usage gpucore.BufferUsage

	// Encode appends one record.
	Encode Encoder[T]
}

// InstanceBuffer is a GPU buffer sized for a number of records plus the
// number of records currently valid in it.
//
// An empty InstanceBuffer owns no GPU buffer: Buffer returns
// gpucore.InvalidID and Count returns 0.
type InstanceBuffer[T any] struct {
	adapter  gpucore.Adapter
	spec     Spec[T]
	id       gpucore.BufferID
	capacity int
	count    int
	scratch  []byte
}

// NewInstanceBuffer creates a buffer holding data.
func NewInstanceBuffer[T any](adapter gpucore.Adapter, spec Spec[T], data []T) (*InstanceBuffer[T], error) {
	if spec.Stride == 0 {
		return nil, fmt.Errorf("batch: %s: zero stride", spec.Label)
	}
	spec.Usage |= gpucore.BufferUsageCopyDst
	b := &InstanceBuffer[T]{adapter: adapter, spec: spec}
	if err := b.Update(data); err != nil {
		return nil, err
	}
	return b, nil
}

// Update replaces the buffer contents with data.
//
//   - empty data releases the GPU buffer and sets the count to 0
//   - data that fits within the capacity overwrites the front of the buffer
//   - otherwise the buffer is reallocated sized exactly to data
func (b *InstanceBuffer[T]) Update(data []T) error {
	if len(data) == 0 {
		b.release()
		b.count = 0
		return nil
	}

	b.scratch = Encode(b.scratch[:0], data, b.spec.Encode)
	if want := uint64(len(data)) * b.spec.Stride; uint64(len(b.scratch)) != want {
		return fmt.Errorf("%w: %s: got %d bytes for %d records of %d",
			ErrStrideMismatch, b.spec.Label, len(b.scratch), len(data), b.spec.Stride)
	}

	if len(data) <= b.capacity {
		b.adapter.WriteBuffer(b.id, 0, b.scratch)
		b.count = len(data)
		return nil
	}

	id, err := b.adapter.CreateBuffer(b.spec.Label, uint64(len(b.scratch)), b.spec.Usage)
	if err != nil {
		return fmt.Errorf("batch: %s: %w", b.spec.Label, err)
	}
	g3d.Logger().Debug("batch: buffer reallocated",
		"label", b.spec.Label, "old_capacity", b.capacity, "capacity", len(data))
	b.release()
	b.adapter.WriteBuffer(id, 0, b.scratch)
	b.id = id
	b.capacity = len(data)
	b.count = len(data)
	return nil
}

// Buffer returns the GPU buffer, or gpucore.InvalidID when empty.
func (b *InstanceBuffer[T]) Buffer() gpucore.BufferID {
	return b.id
}

// Count returns the number of valid records.
func (b *InstanceBuffer[T]) Count() uint32 {
	return uint32(b.count)
}

// Capacity returns the number of records the GPU buffer can hold.
func (b *InstanceBuffer[T]) Capacity() int {
	return b.capacity
}

// Release destroys the GPU buffer. The InstanceBuffer stays usable and
// reallocates on the next non-empty Update.
func (b *InstanceBuffer[T]) Release() {
	b.release()
	b.count = 0
}

func (b *InstanceBuffer[T]) release() {
	if b.id != gpucore.InvalidID {
		b.adapter.DestroyBuffer(b.id)
		b.id = gpucore.InvalidID
	}
	b.capacity = 0
}
