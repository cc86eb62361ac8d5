package unit

import (
	"testing"

	"github.com/spaghettifunk/stingray-assets/engine/containers"
	"github.com/spaghettifunk/stingray-assets/engine/core"
	"github.com/spaghettifunk/stingray-assets/engine/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func materialsView(t *testing.T, materials []testutil.Material) containers.BufferView {
	t.Helper()
	built := testutil.Unit{Materials: materials}.Build()
	v, err := containers.NewBufferView(built.Data).Tail("materials", built.MaterialsOffset)
	require.NoError(t, err)
	return v
}

func TestMaterialTable(t *testing.T) {
	v := materialsView(t, []testutil.Material{
		{Slot: 0x1, Hash: 0x1111111111111111},
		{Slot: 0x2, Hash: 0x2222222222222222},
		{Slot: 0x1, Hash: 0x3333333333333333},
	})

	table, err := NewMaterialTable(v, core.DefaultConfig().Limits)
	require.NoError(t, err)
	require.Equal(t, 3, table.Size())

	first, err := table.At(0)
	require.NoError(t, err)
	assert.Equal(t, MaterialEntry{Slot: 0x1, Material: 0x1111111111111111}, first)

	// Last write wins in the mapping, the ordered view keeps every entry.
	got := table.Get()
	assert.Equal(t, map[core.ThinHash]core.Hash{
		0x1: 0x3333333333333333,
		0x2: 0x2222222222222222,
	}, got)

	h, ok := table.Lookup(0x1)
	require.True(t, ok)
	assert.Equal(t, core.Hash(0x3333333333333333), h)
	_, ok = table.Lookup(0x9)
	assert.False(t, ok)

	_, err = table.At(3)
	assert.ErrorIs(t, err, core.ErrIndexOutOfRange)
	_, err = table.At(-1)
	assert.ErrorIs(t, err, core.ErrIndexOutOfRange)
}

func TestMaterialTableGetReturnsCopy(t *testing.T) {
	v := materialsView(t, []testutil.Material{{Slot: 0x1, Hash: 0x10}})
	table, err := NewMaterialTable(v, core.DefaultConfig().Limits)
	require.NoError(t, err)

	got := table.Get()
	got[0x1] = 0xFF
	delete(got, 0x1)

	h, ok := table.Lookup(0x1)
	require.True(t, ok)
	assert.Equal(t, core.Hash(0x10), h)
}

func TestMaterialTableEmpty(t *testing.T) {
	v := materialsView(t, []testutil.Material{})
	table, err := NewMaterialTable(v, core.DefaultConfig().Limits)
	require.NoError(t, err)
	assert.Equal(t, 0, table.Size())
	assert.Empty(t, table.Get())
}

func TestMaterialTableTruncated(t *testing.T) {
	v := materialsView(t, []testutil.Material{
		{Slot: 0x1, Hash: 0x10},
		{Slot: 0x2, Hash: 0x20},
	})

	for cut := 0; cut < v.Len(); cut++ {
		short, err := v.Slice("materials", 0, cut)
		require.NoError(t, err)
		_, err = NewMaterialTable(short, core.DefaultConfig().Limits)
		require.ErrorIs(t, err, core.ErrOutOfBounds, "cut at %d", cut)
	}
}

func TestMaterialTableLimit(t *testing.T) {
	v := materialsView(t, []testutil.Material{{Slot: 0x1}, {Slot: 0x2}})
	limits := core.DefaultConfig().Limits
	limits.MaxMaterials = 1

	_, err := NewMaterialTable(v, limits)
	var decodeErr *core.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "material count", decodeErr.Field)
	assert.ErrorIs(t, err, core.ErrMalformedHeader)
}
