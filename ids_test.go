package g3d

import (
	"sync"
	"testing"
)

func TestNextMeshIDMonotonic(t *testing.T) {
	a := NextMeshID()
	b := NextMeshID()
	if b <= a {
		t.Errorf("expected increasing ids, got %d then %d", a, b)
	}
}

func TestNextTextureIDIndependentOfMeshes(t *testing.T) {
	tex := NextTextureID()
	NextMeshID()
	NextMeshID()
	if next := NextTextureID(); next != tex+1 {
		t.Errorf("expected texture id %d, got %d", tex+1, next)
	}
}

func TestNextIDConcurrentUnique(t *testing.T) {
	const goroutines = 16
	const perGoroutine = 200

	var (
		mu   sync.Mutex
		seen = make(map[TextureID]struct{}, goroutines*perGoroutine)
		wg   sync.WaitGroup
	)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]TextureID, 0, perGoroutine)
			for range perGoroutine {
				local = append(local, NextTextureID())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range local {
				if _, dup := seen[id]; dup {
					t.Errorf("duplicate texture id %d", id)
				}
				seen[id] = struct{}{}
			}
		}()
	}
	wg.Wait()

	if len(seen) != goroutines*perGoroutine {
		t.Errorf("expected %d ids, got %d", goroutines*perGoroutine, len(seen))
	}
}
