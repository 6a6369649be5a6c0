package atlas

import (
	"image"

	"github.com/gogpu/g3d"
)

// AllocID identifies a live allocation. It is only meaningful to the
// Packer that returned it and must be passed back to Deallocate exactly once.
type AllocID struct {
	slot   uint32
	gen    uint32
	offset uint16
	width  uint16
	height uint16
}

// Allocation is the result of a successful Packer.Allocate.
type Allocation struct {
	// ID releases the region through Packer.Deallocate.
	ID AllocID

	// Rect is the allocated region in texture pixels.
	Rect image.Rectangle
}

// shelf is a horizontal band of the texture. Non-empty shelves hold items
// of a single height class.
type shelf struct {
	y       int
	height  int
	nextX   int      // start of the unused tail of the shelf
	buckets []uint32 // bucket slots ordered by x
}

func (s *shelf) empty() bool { return len(s.buckets) == 0 }

// bucket is a column range of a shelf. Items are bump-allocated left to
// right and the bucket is reclaimed as a whole once its last item is gone.
type bucket struct {
	shelf  *shelf
	x      int
	width  int
	cursor int
	refs   int
	gen    uint32
	live   bool
}

// Packer is a bucketed rectangle allocator for a fixed-size texture.
//
// The texture is split into shelves stacked from the top. Shelf heights
// are rounded up to Config.ShelfAlignment so glyphs of similar height share
// a shelf. Each shelf is split lazily into buckets of at least
// Config.BucketWidth pixels. Freeing the last item of a bucket makes the
// bucket reusable; freeing the last bucket of a shelf makes the shelf
// reusable by any smaller height class.
//
// Packer is not safe for concurrent use.
type Packer struct {
	width       int
	height      int
	align       int
	bucketWidth int

	shelves   []*shelf
	buckets   []bucket
	freeSlots []uint32
	nextY     int

	allocCount int
	usedArea   int
}

// NewPacker creates a packer for a texture of cfg.Width x cfg.Height.
// Zero fields in cfg take their DefaultConfig values.
func NewPacker(cfg Config) (*Packer, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Packer{
		width:       cfg.Width,
		height:      cfg.Height,
		align:       cfg.ShelfAlignment,
		bucketWidth: cfg.BucketWidth,
		shelves:     make([]*shelf, 0, 16),
	}, nil
}

// Size returns the packer dimensions.
func (p *Packer) Size() (width, height int) {
	return p.width, p.height
}

// Allocated returns the number of live allocations.
func (p *Packer) Allocated() int {
	return p.allocCount
}

// FreeArea returns the number of pixels not covered by live allocations.
// Space lost to fragmentation counts as free.
func (p *Packer) FreeArea() int {
	return p.width*p.height - p.usedArea
}

// Allocate reserves a width x height region. Sizes below 1 are clamped to 1.
// It returns false when no free region fits; the texture never grows.
func (p *Packer) Allocate(width, height int) (Allocation, bool) {
	width = max(width, 1)
	height = max(height, 1)
	if width > p.width || height > p.height {
		return Allocation{}, false
	}

	class := min(roundUp(height, p.align), p.height)

	for _, s := range p.shelves {
		if s.empty() || s.height != class {
			continue
		}
		if a, ok := p.allocateInShelf(s, width, height); ok {
			return a, true
		}
	}

	for i, s := range p.shelves {
		if !s.empty() || s.height < class {
			continue
		}
		p.splitShelf(i, class)
		if a, ok := p.allocateInShelf(s, width, height); ok {
			return a, true
		}
	}

	h := min(class, p.height-p.nextY)
	if h < height {
		return Allocation{}, false
	}
	s := &shelf{y: p.nextY, height: h}
	p.shelves = append(p.shelves, s)
	p.nextY += h
	g3d.Logger().Debug("atlas: new shelf", "y", s.y, "height", h, "shelves", len(p.shelves))

	return p.allocateInShelf(s, width, height)
}

// Deallocate releases a region returned by Allocate. Stale or foreign IDs
// are ignored.
func (p *Packer) Deallocate(id AllocID) {
	if int(id.slot) >= len(p.buckets) {
		g3d.Logger().Debug("atlas: deallocate of unknown id", "slot", id.slot)
		return
	}
	b := &p.buckets[id.slot]
	if !b.live || b.gen != id.gen || b.refs == 0 {
		g3d.Logger().Debug("atlas: deallocate of stale id", "slot", id.slot)
		return
	}

	b.refs--
	p.allocCount--
	p.usedArea -= int(id.width) * int(id.height)

	if b.refs > 0 {
		if int(id.offset)+int(id.width) == b.cursor {
			b.cursor = int(id.offset)
		}
		return
	}

	// Bucket is empty: reset it and invalidate every id issued from it.
	b.cursor = 0
	b.gen++
	p.releaseTrailing(b.shelf)
}

// Clear releases every allocation. Outstanding IDs become stale.
func (p *Packer) Clear() {
	for i := range p.buckets {
		if p.buckets[i].live {
			p.freeSlot(uint32(i))
		}
	}
	p.shelves = p.shelves[:0]
	p.nextY = 0
	p.allocCount = 0
	p.usedArea = 0
}

// allocateInShelf places an item in an existing bucket of s or opens a new
// bucket in the shelf's unused tail.
func (p *Packer) allocateInShelf(s *shelf, width, height int) (Allocation, bool) {
	for _, slot := range s.buckets {
		b := &p.buckets[slot]
		if b.width-b.cursor >= width {
			return p.place(slot, width, height), true
		}
	}

	bw := min(roundUp(width, p.bucketWidth), p.width-s.nextX)
	if bw < width {
		return Allocation{}, false
	}
	slot := p.newBucket(s, s.nextX, bw)
	s.nextX += bw
	s.buckets = append(s.buckets, slot)
	return p.place(slot, width, height), true
}

func (p *Packer) place(slot uint32, width, height int) Allocation {
	b := &p.buckets[slot]
	off := b.cursor
	b.cursor += width
	b.refs++
	p.allocCount++
	p.usedArea += width * height

	x := b.x + off
	return Allocation{
		ID: AllocID{
			slot:   slot,
			gen:    b.gen,
			offset: uint16(off),
			width:  uint16(width),
			height: uint16(height),
		},
		Rect: image.Rect(x, b.shelf.y, x+width, b.shelf.y+height),
	}
}

func (p *Packer) newBucket(s *shelf, x, width int) uint32 {
	var slot uint32
	if n := len(p.freeSlots); n > 0 {
		slot = p.freeSlots[n-1]
		p.freeSlots = p.freeSlots[:n-1]
	} else {
		slot = uint32(len(p.buckets))
		p.buckets = append(p.buckets, bucket{})
	}
	b := &p.buckets[slot]
	b.shelf = s
	b.x = x
	b.width = width
	b.cursor = 0
	b.refs = 0
	b.live = true
	return slot
}

func (p *Packer) freeSlot(slot uint32) {
	b := &p.buckets[slot]
	b.live = false
	b.shelf = nil
	b.refs = 0
	b.cursor = 0
	b.gen++
	p.freeSlots = append(p.freeSlots, slot)
}

// releaseTrailing drops empty buckets from the right end of s, then the
// shelf itself when nothing is left in it.
func (p *Packer) releaseTrailing(s *shelf) {
	for len(s.buckets) > 0 {
		last := s.buckets[len(s.buckets)-1]
		if p.buckets[last].refs > 0 {
			break
		}
		s.nextX = p.buckets[last].x
		s.buckets = s.buckets[:len(s.buckets)-1]
		p.freeSlot(last)
	}
	if s.empty() {
		s.nextX = 0
		p.releaseShelf(s)
	}
}

// releaseShelf merges an empty shelf with its empty neighbours and trims
// empty shelves from the bottom of the used area.
func (p *Packer) releaseShelf(s *shelf) {
	i := p.shelfIndex(s)
	if i < 0 {
		return
	}
	if i+1 < len(p.shelves) && p.shelves[i+1].empty() {
		s.height += p.shelves[i+1].height
		p.shelves = append(p.shelves[:i+1], p.shelves[i+2:]...)
	}
	if i > 0 && p.shelves[i-1].empty() {
		p.shelves[i-1].height += s.height
		p.shelves = append(p.shelves[:i], p.shelves[i+1:]...)
	}
	for n := len(p.shelves); n > 0 && p.shelves[n-1].empty(); n-- {
		p.nextY = p.shelves[n-1].y
		p.shelves = p.shelves[:n-1]
	}
}

// splitShelf shrinks the empty shelf at index i to height and inserts the
// remainder as a new empty shelf below it.
func (p *Packer) splitShelf(i, height int) {
	s := p.shelves[i]
	if s.height <= height {
		return
	}
	rest := &shelf{y: s.y + height, height: s.height - height}
	s.height = height
	p.shelves = append(p.shelves, nil)
	copy(p.shelves[i+2:], p.shelves[i+1:])
	p.shelves[i+1] = rest
}

func (p *Packer) shelfIndex(s *shelf) int {
	for i, candidate := range p.shelves {
		if candidate == s {
			return i
		}
	}
	return -1
}

func roundUp(v, multiple int) int {
	return (v + multiple - 1) / multiple * multiple
}
