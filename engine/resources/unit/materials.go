package unit

import (
	"github.com/spaghettifunk/stingray-assets/engine/containers"
	"github.com/spaghettifunk/stingray-assets/engine/core"
	"golang.org/x/exp/maps"
)

// MaterialEntry is one (slot, material) pair in table order.
type MaterialEntry struct {
	Slot     core.ThinHash
	Material core.Hash
}

// MaterialTable maps material slot ids to material content hashes.
//
// Layout: count u32, count slot ThinHashes, count material Hashes.
type MaterialTable struct {
	keys   containers.BufferView
	values containers.BufferView
	count  int
	lookup map[core.ThinHash]core.Hash
}

func emptyMaterialTable() *MaterialTable {
	return &MaterialTable{lookup: map[core.ThinHash]core.Hash{}}
}

// NewMaterialTable decodes a material table from the start of v.
func NewMaterialTable(v containers.BufferView, limits core.LimitsConfig) (*MaterialTable, error) {
	count, err := v.U32("material count", 0)
	if err != nil {
		return nil, err
	}
	if err := core.CheckCount("material count", count, limits.MaxMaterials); err != nil {
		return nil, err
	}

	keysOffset := containers.SizeUint32
	keys, err := v.Array("material slots", keysOffset, count, containers.SizeUint32)
	if err != nil {
		return nil, err
	}
	values, err := v.Array("material hashes", keysOffset+keys.Len(), count, containers.SizeUint64)
	if err != nil {
		return nil, err
	}

	t := &MaterialTable{
		keys:   keys,
		values: values,
		count:  int(count),
		lookup: make(map[core.ThinHash]core.Hash, count),
	}
	// Later duplicates overwrite earlier ones.
	for i := 0; i < t.count; i++ {
		t.lookup[core.ThinHash(keys.U32At(i))] = core.Hash(values.U64At(i))
	}

	core.LogDebug("decoded material table: %d entries, %d unique slots", t.count, len(t.lookup))
	return t, nil
}

// Size returns the number of entries in the table, duplicates included.
func (t *MaterialTable) Size() int {
	return t.count
}

// At returns entry i in table order.
func (t *MaterialTable) At(i int) (MaterialEntry, error) {
	if i < 0 || i >= t.count {
		return MaterialEntry{}, core.IndexOutOfRange("material", i, t.count)
	}
	return MaterialEntry{
		Slot:     core.ThinHash(t.keys.U32At(i)),
		Material: core.Hash(t.values.U64At(i)),
	}, nil
}

// Get returns a copy of the slot to material mapping.
func (t *MaterialTable) Get() map[core.ThinHash]core.Hash {
	return maps.Clone(t.lookup)
}

// Lookup returns the material bound to slot.
func (t *MaterialTable) Lookup(slot core.ThinHash) (core.Hash, bool) {
	h, ok := t.lookup[slot]
	return h, ok
}
