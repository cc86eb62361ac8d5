package unit

import (
	"github.com/spaghettifunk/stingray-assets/engine/containers"
	"github.com/spaghettifunk/stingray-assets/engine/core"
	"golang.org/x/exp/maps"
)

// MeshHeaderSize is the byte size of the fixed mesh header (31 u32).
const MeshHeaderSize = 0x7C

const (
	offMeshNode           = 0x24
	offMeshDatatype       = 0x38
	offMeshMaterialCount  = 0x64
	offMeshMaterialOffset = 0x68
	offMeshGroupCount     = 0x74
	offMeshGroupOffset    = 0x78

	groupSize = 24
)

// PrimitiveGroup locates one draw range inside the mesh's vertex and index buffers.
// The leading word is not understood and is kept verbatim.
type PrimitiveGroup struct {
	Reserved     [4]byte
	VertexOffset uint32
	VertexCount  uint32
	IndexOffset  uint32
	IndexCount   uint32
	Flags        uint32
}

// MeshRecord is one decoded mesh. It borrows from the unit's bytes.
type MeshRecord struct {
	name      core.ThinHash
	header    containers.BufferView
	node      core.ThinHash
	datatype  uint32
	materials containers.BufferView
	groups    containers.BufferView
}

// newMeshRecord decodes the mesh that starts at the beginning of v. Material and group
// offsets are relative to the mesh start and are checked against v.
func newMeshRecord(name core.ThinHash, v containers.BufferView, limits core.LimitsConfig) (*MeshRecord, error) {
	header, err := v.Slice("mesh header", 0, MeshHeaderSize)
	if err != nil {
		return nil, err
	}
	m := &MeshRecord{name: name, header: header}

	node, _ := header.U32("mesh node", offMeshNode)
	m.node = core.ThinHash(node)
	m.datatype, _ = header.U32("mesh datatype", offMeshDatatype)
	materialCount, _ := header.U32("mesh material count", offMeshMaterialCount)
	materialOffset, _ := header.U32("mesh material offset", offMeshMaterialOffset)
	groupCount, _ := header.U32("mesh group count", offMeshGroupCount)
	groupOffset, _ := header.U32("mesh group offset", offMeshGroupOffset)

	if err := core.CheckCount("mesh material count", materialCount, limits.MaxMaterials); err != nil {
		return nil, err
	}
	if err := core.CheckCount("mesh group count", groupCount, limits.MaxGroups); err != nil {
		return nil, err
	}

	if m.materials, err = v.Array("mesh materials", int(materialOffset), materialCount, containers.SizeUint32); err != nil {
		return nil, err
	}
	if m.groups, err = v.Array("mesh groups", int(groupOffset), groupCount, groupSize); err != nil {
		return nil, err
	}
	return m, nil
}

// Name returns the name the mesh table lists for this mesh.
func (m *MeshRecord) Name() core.ThinHash {
	return m.name
}

// Node returns the name of the node the mesh is attached to.
func (m *MeshRecord) Node() core.ThinHash {
	return m.node
}

func (m *MeshRecord) DatatypeIndex() uint32 {
	return m.datatype
}

func (m *MeshRecord) MaterialCount() int {
	return m.materials.Len() / containers.SizeUint32
}

// Material returns the material slot referenced at position i.
func (m *MeshRecord) Material(i int) (core.ThinHash, error) {
	if i < 0 || i >= m.MaterialCount() {
		return 0, core.IndexOutOfRange("mesh material", i, m.MaterialCount())
	}
	return core.ThinHash(m.materials.U32At(i)), nil
}

// Materials returns every material slot in order.
func (m *MeshRecord) Materials() []core.ThinHash {
	return containers.ReadArray[core.ThinHash](m.materials)
}

func (m *MeshRecord) GroupCount() int {
	return m.groups.Len() / groupSize
}

func (m *MeshRecord) Group(i int) (PrimitiveGroup, error) {
	if i < 0 || i >= m.GroupCount() {
		return PrimitiveGroup{}, core.IndexOutOfRange("mesh group", i, m.GroupCount())
	}
	rec, err := m.groups.Slice("mesh group", i*groupSize, groupSize)
	if err != nil {
		return PrimitiveGroup{}, err
	}
	words := containers.ReadArray[uint32](rec)
	g := PrimitiveGroup{
		VertexOffset: words[1],
		VertexCount:  words[2],
		IndexOffset:  words[3],
		IndexCount:   words[4],
		Flags:        words[5],
	}
	copy(g.Reserved[:], rec.Bytes()[:4])
	return g, nil
}

// Header returns the verbatim mesh header.
func (m *MeshRecord) Header() []byte {
	return m.header.Bytes()
}

// MeshTable is the decoded list of meshes of a unit.
//
// Layout: count u32, count offsets u32 (relative to the table start), count name ThinHashes.
type MeshTable struct {
	meshes []*MeshRecord
	lookup map[core.ThinHash]*MeshRecord
}

func emptyMeshTable() *MeshTable {
	return &MeshTable{lookup: map[core.ThinHash]*MeshRecord{}}
}

// NewMeshTable decodes the mesh table at the start of v together with every mesh it lists.
func NewMeshTable(v containers.BufferView, limits core.LimitsConfig) (*MeshTable, error) {
	count, err := v.U32("mesh count", 0)
	if err != nil {
		return nil, err
	}
	if err := core.CheckCount("mesh count", count, limits.MaxMeshes); err != nil {
		return nil, err
	}
	offsets, err := v.Array("mesh offsets", containers.SizeUint32, count, containers.SizeUint32)
	if err != nil {
		return nil, err
	}
	names, err := v.Array("mesh names", containers.SizeUint32+offsets.Len(), count, containers.SizeUint32)
	if err != nil {
		return nil, err
	}

	t := &MeshTable{
		meshes: make([]*MeshRecord, count),
		lookup: make(map[core.ThinHash]*MeshRecord, count),
	}
	for i := range t.meshes {
		rec, err := v.Tail("mesh record", int(offsets.U32At(i)))
		if err != nil {
			return nil, err
		}
		name := core.ThinHash(names.U32At(i))
		m, err := newMeshRecord(name, rec, limits)
		if err != nil {
			return nil, err
		}
		t.meshes[i] = m
		// Later duplicates overwrite earlier ones.
		t.lookup[name] = m
	}

	core.LogDebug("decoded mesh table: %d meshes", len(t.meshes))
	return t, nil
}

func (t *MeshTable) Size() int {
	return len(t.meshes)
}

// At returns mesh i in table order.
func (t *MeshTable) At(i int) (*MeshRecord, error) {
	if i < 0 || i >= len(t.meshes) {
		return nil, core.IndexOutOfRange("mesh", i, len(t.meshes))
	}
	return t.meshes[i], nil
}

// Get returns a copy of the name to mesh mapping.
func (t *MeshTable) Get() map[core.ThinHash]*MeshRecord {
	return maps.Clone(t.lookup)
}

func (t *MeshTable) Find(name core.ThinHash) (*MeshRecord, bool) {
	m, ok := t.lookup[name]
	return m, ok
}
