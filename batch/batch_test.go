package batch

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gogpu/g3d/gpucore"
	"github.com/gogpu/g3d/internal/gputest"
)

type rec struct{ A, B float32 }

var recSpec = Spec[rec]{
	Label:  "rec",
	Stride: 8,
	Usage:  gpucore.BufferUsageVertex,
	Encode: func(dst []byte, v rec) []byte { return AppendFloat32s(dst, v.A, v.B) },
}

func recs(n int) []rec {
	out := make([]rec, n)
	for i := range out {
		out[i] = rec{A: float32(i), B: float32(i) * 2}
	}
	return out
}

func floatAt(data []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
}

func TestInstanceBufferCreate(t *testing.T) {
	a := gputest.NewAdapter()
	b, err := NewInstanceBuffer(a, recSpec, recs(3))
	if err != nil {
		t.Fatalf("NewInstanceBuffer: %v", err)
	}
	if b.Count() != 3 || b.Capacity() != 3 {
		t.Fatalf("expected count 3 capacity 3, got %d %d", b.Count(), b.Capacity())
	}
	buf := a.Buffers[b.Buffer()]
	if buf == nil {
		t.Fatal("expected live GPU buffer")
	}
	if buf.Size != 24 {
		t.Errorf("expected 24 bytes, got %d", buf.Size)
	}
	if buf.Usage&gpucore.BufferUsageCopyDst == 0 {
		t.Error("expected CopyDst usage")
	}
	if got := floatAt(buf.Data, 5); got != 4 {
		t.Errorf("expected record 2 B=4, got %v", got)
	}
}

func TestInstanceBufferUpdateFits(t *testing.T) {
	a := gputest.NewAdapter()
	b, _ := NewInstanceBuffer(a, recSpec, recs(4))
	id := b.Buffer()

	if err := b.Update([]rec{{A: 9, B: 9}}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if b.Buffer() != id {
		t.Error("expected buffer reuse when data fits")
	}
	if b.Count() != 1 || b.Capacity() != 4 {
		t.Errorf("expected count 1 capacity 4, got %d %d", b.Count(), b.Capacity())
	}
	if got := floatAt(a.Buffers[id].Data, 0); got != 9 {
		t.Errorf("expected front overwritten, got %v", got)
	}
	if a.BuffersCreated != 1 {
		t.Errorf("expected 1 buffer created, got %d", a.BuffersCreated)
	}
}

func TestInstanceBufferUpdateGrowsExactly(t *testing.T) {
	a := gputest.NewAdapter()
	b, _ := NewInstanceBuffer(a, recSpec, recs(2))
	old := b.Buffer()

	if err := b.Update(recs(5)); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if b.Buffer() == old {
		t.Error("expected reallocation")
	}
	if _, ok := a.Buffers[old]; ok {
		t.Error("expected old buffer destroyed")
	}
	if got := a.Buffers[b.Buffer()].Size; got != 40 {
		t.Errorf("expected exact size 40, got %d", got)
	}
	if b.Capacity() != 5 {
		t.Errorf("expected capacity 5, got %d", b.Capacity())
	}
}

func TestInstanceBufferUpdateEmpty(t *testing.T) {
	a := gputest.NewAdapter()
	b, _ := NewInstanceBuffer(a, recSpec, recs(2))

	if err := b.Update(nil); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if b.Count() != 0 || b.Buffer() != gpucore.InvalidID {
		t.Errorf("expected empty buffer, got count %d id %d", b.Count(), b.Buffer())
	}
	if len(a.Buffers) != 0 {
		t.Errorf("expected no live buffers, got %d", len(a.Buffers))
	}

	if err := b.Update(recs(1)); err != nil {
		t.Fatalf("Update after empty: %v", err)
	}
	if b.Count() != 1 || b.Buffer() == gpucore.InvalidID {
		t.Error("expected buffer recreated after empty")
	}
}

func TestInstanceBufferStrideMismatch(t *testing.T) {
	a := gputest.NewAdapter()
	spec := recSpec
	spec.Stride = 12
	if _, err := NewInstanceBuffer(a, spec, recs(1)); !errors.Is(err, ErrStrideMismatch) {
		t.Errorf("expected ErrStrideMismatch, got %v", err)
	}
}

func TestInstanceBufferCreateError(t *testing.T) {
	a := gputest.NewAdapter()
	a.FailCreate = true
	if _, err := NewInstanceBuffer(a, recSpec, recs(1)); !errors.Is(err, gputest.ErrInjected) {
		t.Errorf("expected injected error, got %v", err)
	}
}

func TestResidentReconcile(t *testing.T) {
	a := gputest.NewAdapter()
	r := NewResident[string](a, recSpec)

	if err := r.Reconcile(map[string][]rec{"a": recs(1), "b": recs(2)}); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if r.Len() != 2 || r.Instances() != 3 {
		t.Fatalf("expected 2 keys 3 instances, got %d %d", r.Len(), r.Instances())
	}
	bufA, _ := r.Get("a")
	idA := bufA.Buffer()

	// b disappears, c appears, a is updated in place.
	if err := r.Reconcile(map[string][]rec{"a": {{A: 7}}, "c": recs(4)}); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if _, ok := r.Get("b"); ok {
		t.Error("expected b released")
	}
	if _, ok := r.Get("c"); !ok {
		t.Error("expected c resident")
	}
	bufA, _ = r.Get("a")
	if bufA.Buffer() != idA {
		t.Error("expected a to keep its buffer")
	}
	if len(a.Buffers) != 2 {
		t.Errorf("expected 2 live GPU buffers, got %d", len(a.Buffers))
	}

	if err := r.Reconcile(nil); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if r.Len() != 0 || len(a.Buffers) != 0 {
		t.Errorf("expected everything released, got %d keys %d buffers", r.Len(), len(a.Buffers))
	}
	if a.BuffersCreated != a.BuffersDestroyed {
		t.Errorf("expected balanced create/destroy, got %d/%d", a.BuffersCreated, a.BuffersDestroyed)
	}
}

func TestResidentKeySetMatchesDesired(t *testing.T) {
	a := gputest.NewAdapter()
	r := NewResident[int](a, recSpec)

	frames := []map[int][]rec{
		{1: recs(1), 2: recs(1), 3: recs(1)},
		{2: recs(3)},
		{4: recs(1), 2: recs(1)},
		{},
		{5: recs(2)},
	}
	for i, desired := range frames {
		if err := r.Reconcile(desired); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if r.Len() != len(desired) {
			t.Errorf("frame %d: expected %d keys, got %d", i, len(desired), r.Len())
		}
		for k, data := range desired {
			b, ok := r.Get(k)
			if !ok {
				t.Errorf("frame %d: key %d missing", i, k)
				continue
			}
			if int(b.Count()) != len(data) {
				t.Errorf("frame %d: key %d expected count %d, got %d", i, k, len(data), b.Count())
			}
		}
	}
}

func TestResidentDropsEmptyKeys(t *testing.T) {
	a := gputest.NewAdapter()
	r := NewResident[string](a, recSpec)
	if err := r.Reconcile(map[string][]rec{"a": recs(2), "empty": nil}); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if _, ok := r.Get("empty"); ok {
		t.Error("a key without instances should not be resident")
	}
	if r.Len() != 1 || len(a.Buffers) != 1 {
		t.Errorf("expected 1 key and 1 buffer, got %d keys %d buffers", r.Len(), len(a.Buffers))
	}

	// A resident key whose instances drop to zero is released.
	if err := r.Reconcile(map[string][]rec{"a": {}, "b": recs(1)}); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if _, ok := r.Get("a"); ok {
		t.Error("expected a released once it has no instances")
	}
	if len(a.Buffers) != 1 {
		t.Errorf("expected 1 live GPU buffer, got %d", len(a.Buffers))
	}

	seen := 0
	r.Range(func(key string, buf *InstanceBuffer[rec]) bool {
		if key != "b" || buf.Buffer() == gpucore.InvalidID {
			t.Errorf("unexpected key %q with buffer %d", key, buf.Buffer())
		}
		seen++
		return true
	})
	if seen != 1 {
		t.Errorf("expected 1 key visited, got %d", seen)
	}
}

func TestStorageRetain(t *testing.T) {
	var released []string
	s := NewStorage(func(k string, _ int) { released = append(released, k) })

	if !s.Use("mesh", 1) {
		t.Error("expected first Use to register")
	}
	if s.Use("mesh", 2) {
		t.Error("expected second Use to keep the existing item")
	}
	if v, _ := s.Get("mesh"); v != 1 {
		t.Errorf("expected original value 1, got %d", v)
	}
	s.Use("tex", 3)
	s.Retain()
	if s.Len() != 2 {
		t.Fatalf("expected both items kept, got %d", s.Len())
	}

	s.Use("mesh", 1)
	s.Retain()
	if _, ok := s.Get("tex"); ok {
		t.Error("expected unused tex dropped")
	}
	if len(released) != 1 || released[0] != "tex" {
		t.Errorf("expected tex released, got %v", released)
	}

	s.Clear()
	if s.Len() != 0 || len(released) != 2 {
		t.Errorf("expected all released, got len %d released %v", s.Len(), released)
	}
}

func TestAppendHelpers(t *testing.T) {
	b := AppendFloat32s(nil, 1, 2)
	b = AppendUint32s(b, 7)
	b = AppendUint16s(b, 1, 2)
	b = Pad(b, 2)
	if len(b) != 16 {
		t.Fatalf("expected 16 bytes, got %d", len(b))
	}
	if got := binary.LittleEndian.Uint32(b[8:]); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
}
