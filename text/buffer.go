package text

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"hash/fnv"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/atlas"
	"github.com/gogpu/g3d/batch"
	"github.com/gogpu/g3d/gpucore"
)

// VertexSize is the encoded size of a Vertex in bytes.
const VertexSize = 36

// Vertex is one glyph quad, drawn as an instance of a 4-vertex strip.
type Vertex struct {
	// Pos is the top-center of the glyph quad. +Y is up.
	Pos [2]float32

	// Size is the glyph quad size in pixels.
	Size [2]float32

	// UVStart and UVEnd are the atlas coordinates of the glyph mask.
	UVStart [2]float32
	UVEnd   [2]float32

	// Color is the packed RGBA color, see Color.Pack.
	Color uint32
}

// VertexLayout is the instance buffer layout of Vertex at locations 0 to 4.
var VertexLayout = gpucore.VertexBufferLayout{
	ArrayStride: VertexSize,
	StepMode:    gpucore.VertexStepModeInstance,
	Attributes: gpucore.VertexAttributes(0,
		gpucore.VertexFormatFloat32x2,
		gpucore.VertexFormatFloat32x2,
		gpucore.VertexFormatFloat32x2,
		gpucore.VertexFormatFloat32x2,
		gpucore.VertexFormatUint32,
	),
}

var vertexSpec = batch.Spec[Vertex]{
	Label:  "text_vertices",
	Stride: VertexSize,
	Usage:  gpucore.BufferUsageVertex,
	Encode: func(dst []byte, v Vertex) []byte {
		dst = batch.AppendFloat32s(dst,
			v.Pos[0], v.Pos[1], v.Size[0], v.Size[1],
			v.UVStart[0], v.UVStart[1], v.UVEnd[0], v.UVEnd[1])
		return batch.AppendUint32s(dst, v.Color)
	},
}

// Span is a run of text with an optional color override.
type Span struct {
	Text string

	// Color overrides the buffer color when not nil.
	Color *Color
}

type colorRun struct {
	start, end int
	color      Color
}

// glyphRecord is a glyph resolved against the atlas during Prep.
type glyphRecord struct {
	x, y  float32
	data  atlas.GlyphData
	color Color
}

// Buffer is a block of laid out text and the vertex buffer drawing it.
//
// Buffer is not safe for concurrent use.
type Buffer struct {
	shaper  *Shaper
	font    FontID
	metrics Metrics
	wrap    Wrap
	width   float32
	color   Color

	text  string
	runs  []colorRun
	lines []Line
	dirty bool

	hashes   []uint64
	stale    bool
	hasher   hash.Hash64
	scratch  []byte
	glyphs   []glyphRecord
	vertices []Vertex
	buffer   *batch.InstanceBuffer[Vertex]
}

// NewBuffer creates an empty buffer with DefaultMetrics, WrapWordOrGlyph,
// a width of 800 pixels and black text.
func NewBuffer(adapter gpucore.Adapter, shaper *Shaper, font FontID) (*Buffer, error) {
	vb, err := batch.NewInstanceBuffer(adapter, vertexSpec, nil)
	if err != nil {
		return nil, err
	}
	return &Buffer{
		shaper:  shaper,
		font:    font,
		metrics: DefaultMetrics(),
		wrap:    WrapWordOrGlyph,
		width:   800,
		color:   Black,
		hasher:  fnv.New64a(),
		buffer:  vb,
	}, nil
}

// Set replaces the text. Every glyph uses the buffer color.
func (b *Buffer) Set(text string) {
	text = norm.NFC.String(text)
	if text == b.text && len(b.runs) == 0 {
		return
	}
	b.text = text
	b.runs = b.runs[:0]
	b.dirty = true
}

// SetSpans replaces the text with the concatenation of spans.
func (b *Buffer) SetSpans(spans ...Span) {
	var sb strings.Builder
	b.runs = b.runs[:0]
	for _, s := range spans {
		t := norm.NFC.String(s.Text)
		start := sb.Len()
		sb.WriteString(t)
		if s.Color != nil && t != "" {
			b.runs = append(b.runs, colorRun{start: start, end: sb.Len(), color: *s.Color})
		}
	}
	b.text = sb.String()
	b.dirty = true
}

// Text returns the normalized text.
func (b *Buffer) Text() string {
	return b.text
}

// SetColor sets the color of glyphs without an override.
func (b *Buffer) SetColor(c Color) {
	b.color = c
}

// Color returns the default glyph color.
func (b *Buffer) Color() Color {
	return b.color
}

// SetMetrics sets the font size and line height.
func (b *Buffer) SetMetrics(m Metrics) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m != b.metrics {
		b.metrics = m
		b.dirty = true
	}
	return nil
}

// Metrics returns the font size and line height.
func (b *Buffer) Metrics() Metrics {
	return b.metrics
}

// SetWrap sets the wrap mode.
func (b *Buffer) SetWrap(w Wrap) {
	if w != b.wrap {
		b.wrap = w
		b.dirty = true
	}
}

// SetWidth sets the layout width in pixels.
func (b *Buffer) SetWidth(width float32) {
	if width != b.width {
		b.width = width
		b.dirty = true
	}
}

// SetFont sets the font.
func (b *Buffer) SetFont(id FontID) {
	if id != b.font {
		b.font = id
		b.dirty = true
	}
}

// Layout lays the text out if it changed and returns the lines.
func (b *Buffer) Layout() ([]Line, error) {
	if !b.dirty {
		return b.lines, nil
	}
	lines, err := b.shaper.Layout(b.font, b.text, b.metrics, b.wrap, b.width)
	if err != nil {
		return nil, err
	}
	b.lines = lines
	b.dirty = false
	return lines, nil
}

// Prep makes every glyph resident in a and rebuilds the vertices when a
// line changed. It reports whether the vertex buffer was rebuilt.
//
// Each line is hashed over its glyph keys, positions, colors and atlas
// placements. When all hashes match the previous Prep nothing is uploaded;
// otherwise the whole buffer is rebuilt.
//
// Glyphs without an image are skipped and keep their advance. Any other
// atlas error aborts Prep and is returned.
func (b *Buffer) Prep(a *Atlas) (bool, error) {
	lines, err := b.Layout()
	if err != nil {
		return false, err
	}

	rebuild := b.stale || len(lines) != len(b.hashes)
	if len(lines) != len(b.hashes) {
		b.hashes = make([]uint64, len(lines))
	}

	b.glyphs = b.glyphs[:0]
	for i, line := range lines {
		b.hasher.Reset()
		b.writeHash(math.Float32bits(line.Y))
		for _, g := range line.Glyphs {
			phys := g.Physical(0, 0)
			if err := a.UseGlyph(phys.Key); err != nil {
				if errors.Is(err, atlas.ErrNoGlyphImage) {
					g3d.Logger().Debug("text: glyph skipped", "glyph", phys.Key.Glyph, "font", phys.Key.Font)
					continue
				}
				b.stale = true
				return false, fmt.Errorf("text: prep line %d: %w", i, err)
			}
			data, _ := a.GlyphData(phys.Key)
			color := b.colorAt(g.Start)

			b.writeHash(
				uint32(phys.Key.Font), phys.Key.Glyph, uint32(phys.Key.Size), uint32(phys.Key.SubpixelX),
				uint32(int32(phys.X)), uint32(int32(phys.Y)), color.Pack(),
				math.Float32bits(data.UVStart[0]), math.Float32bits(data.UVStart[1]),
			)
			b.glyphs = append(b.glyphs, glyphRecord{
				x:     float32(phys.X),
				y:     float32(phys.Y) - line.Y,
				data:  data,
				color: color,
			})
		}
		if sum := b.hasher.Sum64(); sum != b.hashes[i] {
			b.hashes[i] = sum
			rebuild = true
		}
	}

	if !rebuild {
		return false, nil
	}

	b.vertices = b.vertices[:0]
	for _, g := range b.glyphs {
		d := g.data
		if d.Width == 0 || d.Height == 0 {
			continue
		}
		b.vertices = append(b.vertices, Vertex{
			Pos:     [2]float32{g.x + float32(d.Left) + float32(d.Width)/2, g.y + float32(d.Top)},
			Size:    [2]float32{float32(d.Width), float32(d.Height)},
			UVStart: d.UVStart,
			UVEnd:   d.UVEnd,
			Color:   g.color.Pack(),
		})
	}
	if err := b.buffer.Update(b.vertices); err != nil {
		b.stale = true
		return false, err
	}
	b.stale = false
	g3d.Logger().Debug("text: buffer rebuilt", "lines", len(lines), "vertices", len(b.vertices))
	return true, nil
}

func (b *Buffer) writeHash(words ...uint32) {
	b.scratch = b.scratch[:0]
	for _, w := range words {
		b.scratch = binary.LittleEndian.AppendUint32(b.scratch, w)
	}
	_, _ = b.hasher.Write(b.scratch)
}

// colorAt returns the color of the glyph whose cluster starts at byte i.
func (b *Buffer) colorAt(i int) Color {
	n := sort.Search(len(b.runs), func(k int) bool { return b.runs[k].end > i })
	if n < len(b.runs) && b.runs[n].start <= i {
		return b.runs[n].color
	}
	return b.color
}

// Lines returns the lines of the last layout.
func (b *Buffer) Lines() []Line {
	return b.lines
}

// Size returns the width of the widest line and the total line height.
func (b *Buffer) Size() (width, height float32) {
	for _, l := range b.lines {
		width = max(width, l.Width)
	}
	return width, float32(len(b.lines)) * b.metrics.LineHeight
}

// VertexBuffer returns the vertex buffer, or gpucore.InvalidID when the
// buffer has no visible glyphs.
func (b *Buffer) VertexBuffer() gpucore.BufferID {
	return b.buffer.Buffer()
}

// VertexCount returns the number of glyph quads.
func (b *Buffer) VertexCount() uint32 {
	return b.buffer.Count()
}

// Release destroys the vertex buffer. The next Prep rebuilds it.
func (b *Buffer) Release() {
	b.buffer.Release()
	b.stale = true
}
