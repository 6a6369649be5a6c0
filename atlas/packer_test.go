package atlas

import (
	"errors"
	"image"
	"math/rand/v2"
	"testing"
)

func newTestPacker(t *testing.T, cfg Config) *Packer {
	t.Helper()
	p, err := NewPacker(cfg)
	if err != nil {
		t.Fatalf("NewPacker() error = %v", err)
	}
	return p
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
		field   string
	}{
		{"default", func(*Config) {}, false, ""},
		{"zero width", func(c *Config) { c.Width = 0 }, true, "Width"},
		{"huge width", func(c *Config) { c.Width = MaxSize + 1 }, true, "Width"},
		{"negative height", func(c *Config) { c.Height = -1 }, true, "Height"},
		{"huge height", func(c *Config) { c.Height = MaxSize * 2 }, true, "Height"},
		{"zero alignment", func(c *Config) { c.ShelfAlignment = 0 }, true, "ShelfAlignment"},
		{"zero bucket", func(c *Config) { c.BucketWidth = 0 }, true, "BucketWidth"},
		{"non power of two", func(c *Config) { c.Width = 300; c.Height = 100 }, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, cfgErr.Field)
			}
		})
	}
}

func TestNewPackerZeroConfigUsesDefaults(t *testing.T) {
	p := newTestPacker(t, Config{})
	w, h := p.Size()
	if w != 256 || h != 256 {
		t.Errorf("expected 256x256, got %dx%d", w, h)
	}
}

func TestPackerDisjointAndReuse(t *testing.T) {
	p := newTestPacker(t, DefaultConfig())

	a, ok := p.Allocate(10, 10)
	if !ok {
		t.Fatal("Allocate(10, 10) failed")
	}
	b, ok := p.Allocate(20, 20)
	if !ok {
		t.Fatal("Allocate(20, 20) failed")
	}
	if a.Rect.Overlaps(b.Rect) {
		t.Fatalf("allocations overlap: %v and %v", a.Rect, b.Rect)
	}
	if a.Rect.Dx() != 10 || a.Rect.Dy() != 10 {
		t.Errorf("expected 10x10 region, got %v", a.Rect)
	}

	p.Deallocate(a.ID)
	if got := p.Allocated(); got != 1 {
		t.Errorf("expected 1 live allocation, got %d", got)
	}

	c, ok := p.Allocate(10, 10)
	if !ok {
		t.Fatal("Allocate(10, 10) after free failed")
	}
	if c.Rect.Overlaps(b.Rect) {
		t.Errorf("reused region %v overlaps %v", c.Rect, b.Rect)
	}
	if c.Rect != a.Rect {
		t.Errorf("expected freed region %v to be reused, got %v", a.Rect, c.Rect)
	}
	if want := 256*256 - 100 - 400; p.FreeArea() != want {
		t.Errorf("expected free area %d, got %d", want, p.FreeArea())
	}
}

func TestPackerClampsZeroSize(t *testing.T) {
	p := newTestPacker(t, DefaultConfig())
	a, ok := p.Allocate(0, 0)
	if !ok {
		t.Fatal("Allocate(0, 0) failed")
	}
	if a.Rect.Dx() != 1 || a.Rect.Dy() != 1 {
		t.Errorf("expected 1x1 region, got %v", a.Rect)
	}
}

func TestPackerRejectsOversize(t *testing.T) {
	p := newTestPacker(t, DefaultConfig())
	if _, ok := p.Allocate(257, 1); ok {
		t.Error("expected Allocate(257, 1) to fail")
	}
	if _, ok := p.Allocate(1, 257); ok {
		t.Error("expected Allocate(1, 257) to fail")
	}
	if _, ok := p.Allocate(256, 256); !ok {
		t.Fatal("expected full-size allocation to succeed")
	}
	if _, ok := p.Allocate(1, 1); ok {
		t.Error("expected allocation in a full packer to fail")
	}
}

func TestPackerBucketCursorRollback(t *testing.T) {
	p := newTestPacker(t, DefaultConfig())
	a, _ := p.Allocate(8, 8)
	b, _ := p.Allocate(8, 8)
	if b.Rect.Min.X != a.Rect.Max.X || b.Rect.Min.Y != a.Rect.Min.Y {
		t.Fatalf("expected second item next to first, got %v and %v", a.Rect, b.Rect)
	}

	p.Deallocate(b.ID)
	c, ok := p.Allocate(8, 8)
	if !ok {
		t.Fatal("Allocate failed")
	}
	if c.Rect != b.Rect {
		t.Errorf("expected %v to be reused, got %v", b.Rect, c.Rect)
	}
}

func TestPackerReleasesTopShelf(t *testing.T) {
	p := newTestPacker(t, DefaultConfig())
	a, _ := p.Allocate(10, 10)
	p.Deallocate(a.ID)

	if p.nextY != 0 || len(p.shelves) != 0 {
		t.Fatalf("expected packer to be empty, nextY=%d shelves=%d", p.nextY, len(p.shelves))
	}
	if _, ok := p.Allocate(10, 250); !ok {
		t.Error("expected tall allocation to fit once the top shelf is released")
	}
}

func TestPackerSplitsEmptyShelf(t *testing.T) {
	p := newTestPacker(t, DefaultConfig())
	tall, _ := p.Allocate(10, 30)  // shelf [0,32)
	small, _ := p.Allocate(10, 10) // shelf [32,48)
	p.Deallocate(tall.ID)

	top := p.nextY
	a, ok := p.Allocate(10, 8)
	if !ok {
		t.Fatal("Allocate(10, 8) failed")
	}
	if a.Rect.Min.Y != 0 {
		t.Errorf("expected the empty shelf at y=0 to be reused, got %v", a.Rect)
	}
	b, ok := p.Allocate(10, 20)
	if !ok {
		t.Fatal("Allocate(10, 20) failed")
	}
	if b.Rect.Min.Y != 8 {
		t.Errorf("expected the split remainder at y=8 to be reused, got %v", b.Rect)
	}
	if p.nextY != top {
		t.Errorf("expected no new shelves, nextY moved from %d to %d", top, p.nextY)
	}
	for _, r := range []image.Rectangle{a.Rect, b.Rect} {
		if r.Overlaps(small.Rect) {
			t.Errorf("%v overlaps live region %v", r, small.Rect)
		}
	}
}

func TestPackerStaleDeallocateIgnored(t *testing.T) {
	p := newTestPacker(t, DefaultConfig())
	a, _ := p.Allocate(10, 10)
	p.Deallocate(a.ID)
	p.Deallocate(a.ID)
	p.Deallocate(AllocID{slot: 99})

	if got := p.Allocated(); got != 0 {
		t.Errorf("expected 0 live allocations, got %d", got)
	}
	if got := p.FreeArea(); got != 256*256 {
		t.Errorf("expected full free area, got %d", got)
	}
}

func TestPackerClear(t *testing.T) {
	p := newTestPacker(t, DefaultConfig())
	var ids []AllocID
	for range 20 {
		a, ok := p.Allocate(12, 12)
		if !ok {
			t.Fatal("Allocate failed")
		}
		ids = append(ids, a.ID)
	}

	p.Clear()
	if p.Allocated() != 0 || p.FreeArea() != 256*256 {
		t.Fatalf("expected empty packer, allocated=%d free=%d", p.Allocated(), p.FreeArea())
	}

	// Ids issued before Clear are stale.
	fresh, _ := p.Allocate(12, 12)
	for _, id := range ids {
		p.Deallocate(id)
	}
	if p.Allocated() != 1 {
		t.Errorf("stale ids released a live allocation: allocated=%d", p.Allocated())
	}
	p.Deallocate(fresh.ID)
	if p.Allocated() != 0 {
		t.Errorf("expected 0 allocations, got %d", p.Allocated())
	}
}

func TestPackerRandomNoOverlap(t *testing.T) {
	p := newTestPacker(t, DefaultConfig())
	rng := rand.New(rand.NewPCG(1, 2))
	bounds := image.Rect(0, 0, 256, 256)

	live := make([]Allocation, 0, 512)
	for step := range 2000 {
		if len(live) > 0 && rng.IntN(3) == 0 {
			i := rng.IntN(len(live))
			p.Deallocate(live[i].ID)
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
			continue
		}
		a, ok := p.Allocate(1+rng.IntN(24), 1+rng.IntN(24))
		if !ok {
			continue
		}
		if !a.Rect.In(bounds) {
			t.Fatalf("step %d: %v outside atlas", step, a.Rect)
		}
		for _, other := range live {
			if a.Rect.Overlaps(other.Rect) {
				t.Fatalf("step %d: %v overlaps %v", step, a.Rect, other.Rect)
			}
		}
		live = append(live, a)
	}

	if p.Allocated() != len(live) {
		t.Errorf("expected %d live allocations, got %d", len(live), p.Allocated())
	}
	for _, a := range live {
		p.Deallocate(a.ID)
	}
	if p.FreeArea() != 256*256 || len(p.shelves) != 0 {
		t.Errorf("expected fully released packer, free=%d shelves=%d", p.FreeArea(), len(p.shelves))
	}
}
