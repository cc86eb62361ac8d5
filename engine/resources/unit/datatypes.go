package unit

import (
	"github.com/spaghettifunk/stingray-assets/engine/containers"
	"github.com/spaghettifunk/stingray-assets/engine/core"
)

// DatatypeSize is the byte size of one vertex stream description.
const DatatypeSize = 448

const (
	MaxVertexElements = 16

	vertexElementSize = 20

	offDatatypeMagic    = 0x000
	offDatatypeElements = 0x008
	offDatatypeCount    = 0x148
	offVertexBlock      = 0x150
	offIndexBlock       = 0x178
)

// Offsets inside the vertex and index blocks.
const (
	offVertexBlockCount  = 16
	offVertexBlockStride = 20

	offIndexBlockCount        = 16
	offIndexBlockVertexOffset = 40
	offIndexBlockVertexSize   = 44
	offIndexBlockIndexOffset  = 48
	offIndexBlockIndexSize    = 52
)

// ElementType is the semantic slot of a vertex element.
type ElementType uint32

const (
	ElementPosition ElementType = 0
	ElementTexcoord ElementType = 4
)

// ElementFormat is the storage format of a vertex element.
type ElementFormat uint32

const (
	FormatF32Vec2 ElementFormat = 1
	FormatF32Vec3 ElementFormat = 2
	FormatF16Vec2 ElementFormat = 29
)

// VertexElement describes one attribute in a vertex stream. Two trailing words are reserved.
type VertexElement struct {
	Type   ElementType
	Format ElementFormat
	Layer  uint32
}

// Datatype describes the vertex and index buffers a mesh draws from.
// Unknown words stay in the raw bytes returned by Raw.
type Datatype struct {
	raw containers.BufferView

	Magic    uint32
	Elements []VertexElement

	VertexCount  uint32
	VertexStride uint32

	IndexCount   uint32
	VertexOffset uint32
	VertexSize   uint32
	IndexOffset  uint32
	IndexSize    uint32
}

func (d *Datatype) Raw() []byte {
	return d.raw.Bytes()
}

func decodeDatatype(v containers.BufferView) (*Datatype, error) {
	raw, err := v.Slice("datatype", 0, DatatypeSize)
	if err != nil {
		return nil, err
	}
	d := &Datatype{raw: raw}

	// raw is exactly DatatypeSize long, so fixed reads cannot fail.
	d.Magic, _ = raw.U32("datatype magic", offDatatypeMagic)
	count, _ := raw.U32("datatype element count", offDatatypeCount)
	if count > MaxVertexElements {
		return nil, core.Malformed("datatype element count", "%d elements, at most %d fit", count, MaxVertexElements)
	}
	d.Elements = make([]VertexElement, count)
	for i := range d.Elements {
		base := offDatatypeElements + i*vertexElementSize
		typ, _ := raw.U32("vertex element type", base)
		format, _ := raw.U32("vertex element format", base+4)
		layer, _ := raw.U32("vertex element layer", base+8)
		d.Elements[i] = VertexElement{Type: ElementType(typ), Format: ElementFormat(format), Layer: layer}
	}

	d.VertexCount, _ = raw.U32("vertex count", offVertexBlock+offVertexBlockCount)
	d.VertexStride, _ = raw.U32("vertex stride", offVertexBlock+offVertexBlockStride)
	d.IndexCount, _ = raw.U32("index count", offIndexBlock+offIndexBlockCount)
	d.VertexOffset, _ = raw.U32("vertex offset", offIndexBlock+offIndexBlockVertexOffset)
	d.VertexSize, _ = raw.U32("vertex size", offIndexBlock+offIndexBlockVertexSize)
	d.IndexOffset, _ = raw.U32("index offset", offIndexBlock+offIndexBlockIndexOffset)
	d.IndexSize, _ = raw.U32("index size", offIndexBlock+offIndexBlockIndexSize)
	return d, nil
}

// DatatypeTable lists the vertex stream descriptions of a unit.
//
// Layout: count u32, then count offsets u32 relative to the table start.
type DatatypeTable struct {
	entries []*Datatype
}

func emptyDatatypeTable() *DatatypeTable {
	return &DatatypeTable{}
}

func NewDatatypeTable(v containers.BufferView, limits core.LimitsConfig) (*DatatypeTable, error) {
	count, err := v.U32("datatype count", 0)
	if err != nil {
		return nil, err
	}
	if err := core.CheckCount("datatype count", count, limits.MaxDatatypes); err != nil {
		return nil, err
	}
	offsets, err := v.Array("datatype offsets", containers.SizeUint32, count, containers.SizeUint32)
	if err != nil {
		return nil, err
	}

	t := &DatatypeTable{entries: make([]*Datatype, count)}
	for i := range t.entries {
		rec, err := v.Tail("datatype", int(offsets.U32At(i)))
		if err != nil {
			return nil, err
		}
		if t.entries[i], err = decodeDatatype(rec); err != nil {
			return nil, err
		}
	}

	core.LogDebug("decoded datatype table: %d entries", len(t.entries))
	return t, nil
}

func (t *DatatypeTable) Size() int {
	return len(t.entries)
}

func (t *DatatypeTable) At(i int) (*Datatype, error) {
	if i < 0 || i >= len(t.entries) {
		return nil, core.IndexOutOfRange("datatype", i, len(t.entries))
	}
	return t.entries[i], nil
}
