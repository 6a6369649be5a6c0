package scene

import (
	"errors"
	"maps"
	"reflect"
	"slices"
)

// ErrNoEntity is returned when a component is attached to an entity that
// was never spawned or has been despawned.
var ErrNoEntity = errors.New("scene: no such entity")

// Entity identifies an object in a World. Entities are never reused, so a
// despawned Entity stays invalid.
type Entity uint32

// storage holds the components of one type.
type storage[T any] struct {
	items map[Entity]*T
}

// remover drops an entity from a storage of unknown component type.
type remover interface {
	remove(e Entity)
}

func (s *storage[T]) remove(e Entity) {
	delete(s.items, e)
}

// World is a minimal entity store with one component map per type.
//
// Iteration always visits entities in ascending order so that frames are
// reproducible. World is not safe for concurrent use.
type World struct {
	last     Entity
	alive    map[Entity]struct{}
	storages map[reflect.Type]remover
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{
		alive:    make(map[Entity]struct{}),
		storages: make(map[reflect.Type]remover),
	}
}

// Spawn creates an entity without components.
func (w *World) Spawn() Entity {
	w.last++
	w.alive[w.last] = struct{}{}
	return w.last
}

// Despawn removes e and all its components. It reports whether e was alive.
func (w *World) Despawn(e Entity) bool {
	if _, ok := w.alive[e]; !ok {
		return false
	}
	for _, s := range w.storages {
		s.remove(e)
	}
	delete(w.alive, e)
	return true
}

// Alive reports whether e was spawned and not despawned.
func (w *World) Alive(e Entity) bool {
	_, ok := w.alive[e]
	return ok
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return len(w.alive)
}

// Entities returns the live entities in ascending order.
func (w *World) Entities() []Entity {
	return slices.Sorted(maps.Keys(w.alive))
}

func storageOf[T any](w *World) *storage[T] {
	t := reflect.TypeFor[T]()
	if s, ok := w.storages[t]; ok {
		return s.(*storage[T])
	}
	s := &storage[T]{items: make(map[Entity]*T)}
	w.storages[t] = s
	return s
}

// Insert attaches c to e, replacing any component of the same type.
func Insert[T any](w *World, e Entity, c T) error {
	if !w.Alive(e) {
		return ErrNoEntity
	}
	storageOf[T](w).items[e] = &c
	return nil
}

// Get returns the component of type T attached to e.
func Get[T any](w *World, e Entity) (*T, bool) {
	c, ok := storageOf[T](w).items[e]
	return c, ok
}

// Has reports whether e has a component of type T.
func Has[T any](w *World, e Entity) bool {
	_, ok := storageOf[T](w).items[e]
	return ok
}

// Remove detaches the component of type T from e. It reports whether there
// was one.
func Remove[T any](w *World, e Entity) bool {
	s := storageOf[T](w)
	if _, ok := s.items[e]; !ok {
		return false
	}
	delete(s.items, e)
	return true
}

// Count returns the number of entities with a component of type T.
func Count[T any](w *World) int {
	return len(storageOf[T](w).items)
}

// Each calls fn for every entity with a component of type T. Components
// removed by fn before their turn are skipped.
func Each[T any](w *World, fn func(Entity, *T)) {
	s := storageOf[T](w)
	for _, e := range slices.Sorted(maps.Keys(s.items)) {
		if c, ok := s.items[e]; ok {
			fn(e, c)
		}
	}
}

// Each2 calls fn for every entity with components of both types A and B.
func Each2[A, B any](w *World, fn func(Entity, *A, *B)) {
	sa, sb := storageOf[A](w), storageOf[B](w)
	for _, e := range slices.Sorted(maps.Keys(sa.items)) {
		a, okA := sa.items[e]
		b, okB := sb.items[e]
		if okA && okB {
			fn(e, a, b)
		}
	}
}

// First returns the lowest entity with a component of type T.
func First[T any](w *World) (Entity, *T, bool) {
	s := storageOf[T](w)
	if len(s.items) == 0 {
		return 0, nil, false
	}
	e := slices.Min(slices.Collect(maps.Keys(s.items)))
	return e, s.items[e], true
}
