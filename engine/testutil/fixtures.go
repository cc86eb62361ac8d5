// Package testutil builds little-endian unit and bank buffers for tests.
//
// The builders write the layouts field by field and record where every table starts, so
// tests can corrupt or truncate a specific region. They have no dependency on the decoders.
package testutil

import (
	"encoding/binary"
	"math"
)

// NoParent mirrors the decoder's root marker.
const NoParent uint16 = 0xFFFF

const (
	unitHeaderSize = 0x74
	meshHeaderSize = 0x7C
	groupSize      = 24
	datatypeSize   = 448
)

type Node struct {
	Name        uint32
	Parent      uint16
	Translation [3]float32
}

type Material struct {
	Slot uint32
	Hash uint64
}

type Group struct {
	VertexOffset, VertexCount, IndexOffset, IndexCount, Flags uint32
}

type Mesh struct {
	Name      uint32
	Node      uint32
	Datatype  uint32
	Materials []uint32
	Groups    []Group
}

type Datatype struct {
	Magic        uint32
	Elements     uint32
	VertexCount  uint32
	VertexStride uint32
	IndexCount   uint32
}

// Unit describes a unit buffer. Nil slices leave the corresponding header offset at zero.
type Unit struct {
	Bones        uint64
	StateMachine uint64
	Nodes        []Node
	Materials    []Material
	Meshes       []Mesh
	Datatypes    []Datatype
}

// BuiltUnit is an encoded unit plus the offsets of its tables (zero when absent).
type BuiltUnit struct {
	Data            []byte
	NodesOffset     int
	MaterialsOffset int
	MeshesOffset    int
	DatatypesOffset int
}

func u32(b []byte, v uint32) []byte { return binary.LittleEndian.AppendUint32(b, v) }
func u16(b []byte, v uint16) []byte { return binary.LittleEndian.AppendUint16(b, v) }
func u64(b []byte, v uint64) []byte { return binary.LittleEndian.AppendUint64(b, v) }
func f32(b []byte, v float32) []byte {
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
}

// Build encodes the unit. Tables follow the header in the order nodes, materials, meshes,
// datatypes, with no gaps, so every byte after the header belongs to some table.
func (u Unit) Build() BuiltUnit {
	out := BuiltUnit{}
	data := make([]byte, unitHeaderSize)
	// Fill reserved header words with a pattern so they are distinguishable from zero.
	for i := range data {
		data[i] = 0xA5
	}

	if u.Nodes != nil {
		out.NodesOffset = len(data)
		data = appendNodes(data, u.Nodes)
	}
	if u.Materials != nil {
		out.MaterialsOffset = len(data)
		data = appendMaterials(data, u.Materials)
	}
	if u.Meshes != nil {
		out.MeshesOffset = len(data)
		data = appendMeshes(data, u.Meshes)
	}
	if u.Datatypes != nil {
		out.DatatypesOffset = len(data)
		data = appendDatatypes(data, u.Datatypes)
	}

	binary.LittleEndian.PutUint64(data[0x08:], u.Bones)
	binary.LittleEndian.PutUint64(data[0x20:], u.StateMachine)
	binary.LittleEndian.PutUint32(data[0x34:], uint32(out.NodesOffset))
	binary.LittleEndian.PutUint32(data[0x5C:], uint32(out.DatatypesOffset))
	binary.LittleEndian.PutUint32(data[0x60:], 0)
	binary.LittleEndian.PutUint32(data[0x64:], uint32(out.MeshesOffset))
	binary.LittleEndian.PutUint32(data[0x70:], uint32(out.MaterialsOffset))
	out.Data = data
	return out
}

func appendNodes(b []byte, nodes []Node) []byte {
	b = u32(b, uint32(len(nodes)))
	b = u32(b, 0x11111111)
	b = u32(b, 0x22222222)
	b = u32(b, 0x33333333)
	for _, n := range nodes {
		// Identity rotation.
		for i := 0; i < 9; i++ {
			if i%4 == 0 {
				b = f32(b, 1)
			} else {
				b = f32(b, 0)
			}
		}
		b = f32(b, n.Translation[0])
		b = f32(b, n.Translation[1])
		b = f32(b, n.Translation[2])
		b = f32(b, 1)
		b = f32(b, 1)
		b = f32(b, 1)
		b = f32(b, 0)
	}
	for i := range nodes {
		for j := 0; j < 64; j++ {
			b = append(b, byte(i+j))
		}
	}
	for _, n := range nodes {
		b = u16(b, 0xBEEF)
		b = u16(b, n.Parent)
	}
	for _, n := range nodes {
		b = u32(b, n.Name)
	}
	return b
}

func appendMaterials(b []byte, materials []Material) []byte {
	b = u32(b, uint32(len(materials)))
	for _, m := range materials {
		b = u32(b, m.Slot)
	}
	for _, m := range materials {
		b = u64(b, m.Hash)
	}
	return b
}

// MeshRecordSize returns the encoded size of m.
func MeshRecordSize(m Mesh) int {
	return meshHeaderSize + 4*len(m.Materials) + groupSize*len(m.Groups)
}

func appendMeshes(b []byte, meshes []Mesh) []byte {
	b = u32(b, uint32(len(meshes)))
	offset := 4 + 8*len(meshes)
	for _, m := range meshes {
		b = u32(b, uint32(offset))
		offset += MeshRecordSize(m)
	}
	for _, m := range meshes {
		b = u32(b, m.Name)
	}
	for _, m := range meshes {
		b = AppendMeshRecord(b, m, meshHeaderSize, meshHeaderSize+4*len(m.Materials))
	}
	return b
}

// AppendMeshRecord encodes a mesh header followed by its materials and groups. The offsets
// written in the header are the ones given, so tests can point them elsewhere.
func AppendMeshRecord(b []byte, m Mesh, materialOffset, groupOffset int) []byte {
	header := make([]byte, meshHeaderSize)
	for i := 0; i < meshHeaderSize; i += 4 {
		binary.LittleEndian.PutUint32(header[i:], 0xC0DE0000|uint32(i))
	}
	binary.LittleEndian.PutUint32(header[0x24:], m.Node)
	binary.LittleEndian.PutUint32(header[0x38:], m.Datatype)
	binary.LittleEndian.PutUint32(header[0x64:], uint32(len(m.Materials)))
	binary.LittleEndian.PutUint32(header[0x68:], uint32(materialOffset))
	binary.LittleEndian.PutUint32(header[0x74:], uint32(len(m.Groups)))
	binary.LittleEndian.PutUint32(header[0x78:], uint32(groupOffset))
	b = append(b, header...)
	for _, mat := range m.Materials {
		b = u32(b, mat)
	}
	for _, g := range m.Groups {
		b = u32(b, 0x0F0F0F0F)
		b = u32(b, g.VertexOffset)
		b = u32(b, g.VertexCount)
		b = u32(b, g.IndexOffset)
		b = u32(b, g.IndexCount)
		b = u32(b, g.Flags)
	}
	return b
}

func appendDatatypes(b []byte, datatypes []Datatype) []byte {
	b = u32(b, uint32(len(datatypes)))
	offset := 4 + 4*len(datatypes)
	for range datatypes {
		b = u32(b, uint32(offset))
		offset += datatypeSize
	}
	for _, d := range datatypes {
		rec := make([]byte, datatypeSize)
		binary.LittleEndian.PutUint32(rec[0x000:], d.Magic)
		for i := 0; i < int(d.Elements) && i < 16; i++ {
			base := 0x008 + i*20
			binary.LittleEndian.PutUint32(rec[base:], uint32(i))
			binary.LittleEndian.PutUint32(rec[base+4:], 2)
			binary.LittleEndian.PutUint32(rec[base+8:], 0)
		}
		binary.LittleEndian.PutUint32(rec[0x148:], d.Elements)
		binary.LittleEndian.PutUint32(rec[0x150+16:], d.VertexCount)
		binary.LittleEndian.PutUint32(rec[0x150+20:], d.VertexStride)
		binary.LittleEndian.PutUint32(rec[0x178+16:], d.IndexCount)
		b = append(b, rec...)
	}
	return b
}

// Chunk is one bank chunk.
type Chunk struct {
	Tag     string
	Payload []byte
}

// Bank describes a bank buffer. DeclaredSize overrides the computed size when non-nil.
type Bank struct {
	Reserved     uint32
	NameHash     uint64
	Chunks       []Chunk
	DeclaredSize *uint32
	Trailing     []byte
}

func (bk Bank) Build() []byte {
	var body []byte
	for _, c := range bk.Chunks {
		tag := []byte(c.Tag + "    ")[:4]
		body = append(body, tag...)
		body = u32(body, uint32(len(c.Payload)))
		body = append(body, c.Payload...)
	}
	size := uint32(len(body))
	if bk.DeclaredSize != nil {
		size = *bk.DeclaredSize
	}
	out := u32(nil, bk.Reserved)
	out = u32(out, size)
	out = u64(out, bk.NameHash)
	out = append(out, body...)
	return append(out, bk.Trailing...)
}

// BankHeaderChunk encodes a BKHD payload.
func BankHeaderChunk(version, bankID uint32) Chunk {
	p := u32(nil, version)
	p = u32(p, bankID)
	return Chunk{Tag: "BKHD", Payload: append(p, 0, 0, 0, 0)}
}

// MediaIndexChunk encodes a DIDX payload from (id, offset, size) triples.
func MediaIndexChunk(entries ...[3]uint32) Chunk {
	var p []byte
	for _, e := range entries {
		p = u32(p, e[0])
		p = u32(p, e[1])
		p = u32(p, e[2])
	}
	return Chunk{Tag: "DIDX", Payload: p}
}
