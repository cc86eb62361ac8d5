package unit

import (
	"github.com/spaghettifunk/stingray-assets/engine/containers"
	"github.com/spaghettifunk/stingray-assets/engine/core"
)

// HeaderSize is the byte size of the fixed unit header.
const HeaderSize = 0x74

// Byte offsets of the header fields that are understood. Everything else is reserved.
const (
	offBones        = 0x08
	offStateMachine = 0x20
	offNodes        = 0x34
	offDatatypes    = 0x5C
	offMeshData     = 0x60
	offMeshInfo     = 0x64
	offMaterials    = 0x70
)

// Header is the fixed unit header. Offsets are relative to the unit start; zero means absent.
type Header struct {
	raw containers.BufferView

	Bones        core.Hash
	StateMachine core.Hash

	NodesOffset     uint32
	DatatypesOffset uint32
	MeshDataOffset  uint32
	MeshInfoOffset  uint32
	MaterialsOffset uint32
}

// Raw returns the verbatim header bytes, reserved fields included.
func (h Header) Raw() []byte {
	return h.raw.Bytes()
}

func decodeHeader(v containers.BufferView) (Header, error) {
	raw, err := v.Slice("unit header", 0, HeaderSize)
	if err != nil {
		return Header{}, core.Malformed("unit header", "%d bytes is shorter than the %d byte header", v.Len(), HeaderSize)
	}

	h := Header{raw: raw}
	// The raw view is exactly HeaderSize long, every read below is in range.
	bones, _ := raw.U64("bones", offBones)
	stateMachine, _ := raw.U64("state machine", offStateMachine)
	h.Bones = core.Hash(bones)
	h.StateMachine = core.Hash(stateMachine)
	h.NodesOffset, _ = raw.U32("nodes offset", offNodes)
	h.DatatypesOffset, _ = raw.U32("datatypes offset", offDatatypes)
	h.MeshDataOffset, _ = raw.U32("mesh data offset", offMeshData)
	h.MeshInfoOffset, _ = raw.U32("mesh info offset", offMeshInfo)
	h.MaterialsOffset, _ = raw.U32("materials offset", offMaterials)
	return h, nil
}
