package batch

import (
	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/gpucore"
)

// Resident holds one InstanceBuffer per resource key and reconciles them
// against each frame's desired instances.
//
// Resident is not safe for concurrent use.
type Resident[K comparable, T any] struct {
	adapter  gpucore.Adapter
	spec     Spec[T]
	buffers  map[K]*InstanceBuffer[T]
	previous map[K]struct{}
}

// NewResident creates an empty resident set whose buffers follow spec.
func NewResident[K comparable, T any](adapter gpucore.Adapter, spec Spec[T]) *Resident[K, T] {
	return &Resident[K, T]{
		adapter:  adapter,
		spec:     spec,
		buffers:  make(map[K]*InstanceBuffer[T]),
		previous: make(map[K]struct{}),
	}
}

// Reconcile makes the resident key set equal to the key set of desired.
//
// Keys already resident get their buffer updated in place, new keys get a
// fresh buffer, and keys absent from desired have their buffer released. A
// key with no instances counts as absent, so every resident key is backed
// by a GPU buffer.
// The cost is proportional to the number of desired plus previously
// resident keys. On error the keys processed so far are updated and the
// remaining previous keys stay resident.
func (r *Resident[K, T]) Reconcile(desired map[K][]T) error {
	clear(r.previous)
	for k := range r.buffers {
		r.previous[k] = struct{}{}
	}

	created := 0
	for k, data := range desired {
		if len(data) == 0 {
			continue
		}
		delete(r.previous, k)
		if b, ok := r.buffers[k]; ok {
			if err := b.Update(data); err != nil {
				return err
			}
			continue
		}
		b, err := NewInstanceBuffer(r.adapter, r.spec, data)
		if err != nil {
			return err
		}
		r.buffers[k] = b
		created++
	}

	for k := range r.previous {
		r.buffers[k].Release()
		delete(r.buffers, k)
	}

	if created > 0 || len(r.previous) > 0 {
		g3d.Logger().Debug("batch: reconciled",
			"label", r.spec.Label, "created", created, "released", len(r.previous), "resident", len(r.buffers))
	}
	return nil
}

// Get returns the buffer of key.
func (r *Resident[K, T]) Get(key K) (*InstanceBuffer[T], bool) {
	b, ok := r.buffers[key]
	return b, ok
}

// Len returns the number of resident keys.
func (r *Resident[K, T]) Len() int {
	return len(r.buffers)
}

// Instances returns the total record count across all keys.
func (r *Resident[K, T]) Instances() int {
	n := 0
	for _, b := range r.buffers {
		n += int(b.Count())
	}
	return n
}

// Range calls fn for every resident key until fn returns false.
func (r *Resident[K, T]) Range(fn func(key K, buf *InstanceBuffer[T]) bool) {
	for k, b := range r.buffers {
		if !fn(k, b) {
			return
		}
	}
}

// Release destroys every buffer.
func (r *Resident[K, T]) Release() {
	for k, b := range r.buffers {
		b.Release()
		delete(r.buffers, k)
	}
}
