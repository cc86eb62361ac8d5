package unit

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/spaghettifunk/stingray-assets/engine/core"
	"github.com/spaghettifunk/stingray-assets/engine/resources"
	"github.com/spaghettifunk/stingray-assets/engine/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullUnit() testutil.Unit {
	return testutil.Unit{
		Bones:        0xB0B0B0B0B0B0B0B0,
		StateMachine: 0x5151515151515151,
		Nodes: []testutil.Node{
			{Name: 0xAA, Parent: testutil.NoParent, Translation: [3]float32{1, 0, 0}},
			{Name: 0xBB, Parent: 0, Translation: [3]float32{0, 1, 0}},
		},
		Materials: []testutil.Material{
			{Slot: 0xA1, Hash: 0x1000},
			{Slot: 0xA2, Hash: 0x2000},
		},
		Meshes: []testutil.Mesh{
			{
				Name:      0x77,
				Node:      0xBB,
				Datatype:  0,
				Materials: []uint32{0xA1, 0xA2},
				Groups:    []testutil.Group{{VertexCount: 4, IndexCount: 6}},
			},
		},
		Datatypes: []testutil.Datatype{{Magic: 0xD1, Elements: 1, VertexCount: 4, VertexStride: 12, IndexCount: 6}},
	}
}

func descriptor(data []byte) resources.AssetDescriptor {
	return resources.AssetDescriptor{Type: resources.ResourceTypeUnit, ID: 0x0123456789ABCDEF, Data: data}
}

func TestNewUnit(t *testing.T) {
	built := fullUnit().Build()

	u, err := New(descriptor(built.Data), core.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, core.Hash(0x0123456789ABCDEF), u.ID())
	assert.Equal(t, len(built.Data), u.Size())
	assert.Equal(t, Extension, u.Extension())

	h := u.Header()
	assert.Equal(t, core.Hash(0xB0B0B0B0B0B0B0B0), h.Bones)
	assert.Equal(t, core.Hash(0x5151515151515151), h.StateMachine)
	assert.Equal(t, uint32(built.NodesOffset), h.NodesOffset)
	assert.Equal(t, uint32(built.MeshesOffset), h.MeshInfoOffset)
	assert.Equal(t, uint32(0), h.MeshDataOffset)
	require.Len(t, h.Raw(), HeaderSize)
	assert.Equal(t, byte(0xA5), h.Raw()[0])

	assert.Equal(t, 2, u.Nodes().Size())
	child, ok := u.Nodes().Find(0xBB)
	require.True(t, ok)
	assert.Equal(t, uint16(0), child.Parent)

	mat, ok := u.Materials().Lookup(0xA2)
	require.True(t, ok)
	assert.Equal(t, core.Hash(0x2000), mat)

	mesh, ok := u.Meshes().Find(0x77)
	require.True(t, ok)
	node, ok := u.Nodes().Find(mesh.Node())
	require.True(t, ok)
	assert.Equal(t, 1, node.Index)

	d, err := u.Datatypes().At(int(mesh.DatatypeIndex()))
	require.NoError(t, err)
	assert.Equal(t, uint32(0xD1), d.Magic)

	sections := u.Sections()
	require.Len(t, sections, 1)
	assert.Equal(t, Extension, sections[0].Name)
	assert.NoError(t, resources.ValidateSections(u.Size(), sections))
}

func TestNewUnitAbsentTables(t *testing.T) {
	built := testutil.Unit{}.Build()
	require.Len(t, built.Data, HeaderSize)

	u, err := New(descriptor(built.Data), core.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 0, u.Nodes().Size())
	assert.Equal(t, 0, u.Materials().Size())
	assert.Equal(t, 0, u.Meshes().Size())
	assert.Equal(t, 0, u.Datatypes().Size())

	_, err = u.Nodes().At(0)
	assert.ErrorIs(t, err, core.ErrIndexOutOfRange)
	_, err = u.Materials().At(0)
	assert.ErrorIs(t, err, core.ErrIndexOutOfRange)
	_, err = u.Meshes().At(0)
	assert.ErrorIs(t, err, core.ErrIndexOutOfRange)
	_, err = u.Datatypes().At(0)
	assert.ErrorIs(t, err, core.ErrIndexOutOfRange)
	_, ok := u.Meshes().Find(0x77)
	assert.False(t, ok)
}

func TestNewUnitShortHeader(t *testing.T) {
	for _, size := range []int{0, 1, HeaderSize - 1} {
		_, err := New(descriptor(make([]byte, size)), core.DefaultConfig())
		assert.ErrorIs(t, err, core.ErrMalformedHeader, "size %d", size)
	}
}

func TestNewUnitOffsetInsideHeader(t *testing.T) {
	for _, field := range []int{offNodes, offMaterials, offMeshInfo, offDatatypes} {
		built := fullUnit().Build()
		binary.LittleEndian.PutUint32(built.Data[field:], HeaderSize-4)

		_, err := New(descriptor(built.Data), core.DefaultConfig())
		assert.ErrorIs(t, err, core.ErrMalformedHeader, "field 0x%x", field)
	}
}

func TestNewUnitOffsetPastEnd(t *testing.T) {
	built := fullUnit().Build()
	binary.LittleEndian.PutUint32(built.Data[offMaterials:], uint32(len(built.Data)+16))

	_, err := New(descriptor(built.Data), core.DefaultConfig())
	require.ErrorIs(t, err, core.ErrOutOfBounds)
	assert.Contains(t, err.Error(), "0123456789abcdef")
}

func TestNewUnitDatatypeIndexOutOfRange(t *testing.T) {
	u := fullUnit()
	u.Meshes[0].Datatype = 1

	_, err := New(descriptor(u.Build().Data), core.DefaultConfig())
	assert.ErrorIs(t, err, core.ErrMalformedHeader)
}

func TestNewUnitTruncated(t *testing.T) {
	built := fullUnit().Build()

	for cut := HeaderSize; cut < len(built.Data); cut++ {
		_, err := New(descriptor(built.Data[:cut]), core.DefaultConfig())
		require.ErrorIs(t, err, core.ErrOutOfBounds, "cut at %d", cut)
	}
}

func TestNewUnitDeterministic(t *testing.T) {
	built := fullUnit().Build()

	a, err := New(descriptor(built.Data), core.DefaultConfig())
	require.NoError(t, err)
	b, err := New(descriptor(built.Data), core.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNewUnitDoesNotModifyInput(t *testing.T) {
	built := fullUnit().Build()
	before := append([]byte(nil), built.Data...)

	_, err := New(descriptor(built.Data), core.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, before, built.Data)
}

func FuzzNewUnit(f *testing.F) {
	f.Add(fullUnit().Build().Data)
	f.Add(testutil.Unit{}.Build().Data)
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		u, err := New(descriptor(data), core.DefaultConfig())
		if err != nil {
			if !errors.Is(err, core.ErrOutOfBounds) && !errors.Is(err, core.ErrMalformedHeader) {
				t.Fatalf("unexpected error kind: %v", err)
			}
			return
		}
		for i := 0; i < u.Meshes().Size(); i++ {
			m, err := u.Meshes().At(i)
			require.NoError(t, err)
			for j := 0; j < m.GroupCount(); j++ {
				_, err := m.Group(j)
				require.NoError(t, err)
			}
			_ = m.Materials()
		}
	})
}
