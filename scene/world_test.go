package scene

import (
	"errors"
	"slices"
	"testing"
)

type health struct{ hp int }
type tag string

func TestWorldSpawnDespawn(t *testing.T) {
	w := NewWorld()
	a, b := w.Spawn(), w.Spawn()
	if a == b {
		t.Fatal("Spawn returned the same entity twice")
	}
	if w.Len() != 2 || !w.Alive(a) {
		t.Fatalf("Len() = %d, Alive(a) = %v", w.Len(), w.Alive(a))
	}

	if err := Insert(w, a, health{hp: 3}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if !w.Despawn(a) {
		t.Error("Despawn(a) = false, want true")
	}
	if w.Despawn(a) {
		t.Error("second Despawn(a) = true, want false")
	}
	if Has[health](w, a) {
		t.Error("despawned entity kept its component")
	}
	if err := Insert(w, a, health{}); !errors.Is(err, ErrNoEntity) {
		t.Errorf("Insert(despawned) error = %v, want ErrNoEntity", err)
	}
	if c := w.Spawn(); c == a {
		t.Error("entities must not be reused")
	}
}

func TestWorldComponents(t *testing.T) {
	w := NewWorld()
	e := w.Spawn()
	_ = Insert(w, e, health{hp: 10})
	_ = Insert(w, e, tag("player"))

	h, ok := Get[health](w, e)
	if !ok || h.hp != 10 {
		t.Fatalf("Get[health]() = %v, %v", h, ok)
	}
	h.hp = 4
	if h2, _ := Get[health](w, e); h2.hp != 4 {
		t.Error("Get should return a pointer into the store")
	}

	_ = Insert(w, e, health{hp: 7})
	if h3, _ := Get[health](w, e); h3.hp != 7 {
		t.Error("Insert should replace an existing component")
	}
	if Count[health](w) != 1 {
		t.Errorf("Count[health]() = %d, want 1", Count[health](w))
	}

	if !Remove[tag](w, e) || Remove[tag](w, e) {
		t.Error("Remove should report true once")
	}
	if Has[tag](w, e) || !Has[health](w, e) {
		t.Error("Remove should only drop the named type")
	}
}

func TestWorldDeterministicOrder(t *testing.T) {
	w := NewWorld()
	var es []Entity
	for i := range 20 {
		e := w.Spawn()
		es = append(es, e)
		_ = Insert(w, e, health{hp: i})
		if i%2 == 0 {
			_ = Insert(w, e, tag("even"))
		}
	}

	var seen []Entity
	Each(w, func(e Entity, _ *health) { seen = append(seen, e) })
	if !slices.Equal(seen, es) {
		t.Errorf("Each order = %v, want %v", seen, es)
	}

	var both []Entity
	Each2(w, func(e Entity, h *health, _ *tag) {
		if h.hp%2 != 0 {
			t.Errorf("entity %d has an odd hp and a tag", e)
		}
		both = append(both, e)
	})
	if len(both) != 10 || !slices.IsSorted(both) {
		t.Errorf("Each2 visited %v", both)
	}

	first, h, ok := First[health](w)
	if !ok || first != es[0] || h.hp != 0 {
		t.Errorf("First() = %d, %v, %v", first, h, ok)
	}
	if _, _, ok := First[struct{}](w); ok {
		t.Error("First of an unused type should report false")
	}
	if got := w.Entities(); !slices.Equal(got, es) {
		t.Errorf("Entities() = %v", got)
	}
}

func TestEachSkipsRemoved(t *testing.T) {
	w := NewWorld()
	a, b := w.Spawn(), w.Spawn()
	_ = Insert(w, a, health{})
	_ = Insert(w, b, health{})

	visits := 0
	Each(w, func(e Entity, _ *health) {
		visits++
		w.Despawn(b)
	})
	if visits != 1 {
		t.Errorf("visits = %d, want 1", visits)
	}
}
