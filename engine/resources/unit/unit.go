package unit

import (
	"fmt"

	"github.com/spaghettifunk/stingray-assets/engine/containers"
	"github.com/spaghettifunk/stingray-assets/engine/core"
	"github.com/spaghettifunk/stingray-assets/engine/resources"
)

// Extension is the file suffix used for extracted units.
const Extension = "unit"

// Unit is a decoded unit asset. See the package documentation for lifetime rules.
type Unit struct {
	id     core.Hash
	view   containers.BufferView
	header Header

	nodes     *NodeHierarchy
	materials *MaterialTable
	meshes    *MeshTable
	datatypes *DatatypeTable
}

// New decodes the unit held in desc.Data. All tables are decoded before New returns.
func New(desc resources.AssetDescriptor, cfg core.DecoderConfig) (*Unit, error) {
	view := containers.NewBufferView(desc.Data)
	header, err := decodeHeader(view)
	if err != nil {
		return nil, err
	}

	u := &Unit{
		id:        desc.ID,
		view:      view,
		header:    header,
		nodes:     emptyNodeHierarchy(),
		materials: emptyMaterialTable(),
		meshes:    emptyMeshTable(),
		datatypes: emptyDatatypeTable(),
	}

	limits := cfg.Limits
	if v, ok, err := u.region("nodes", header.NodesOffset); err != nil {
		return nil, fmt.Errorf("unit %s: %w", desc.ID, err)
	} else if ok {
		if u.nodes, err = NewNodeHierarchy(v, limits); err != nil {
			return nil, fmt.Errorf("unit %s: %w", desc.ID, err)
		}
	}
	if v, ok, err := u.region("materials", header.MaterialsOffset); err != nil {
		return nil, fmt.Errorf("unit %s: %w", desc.ID, err)
	} else if ok {
		if u.materials, err = NewMaterialTable(v, limits); err != nil {
			return nil, fmt.Errorf("unit %s: %w", desc.ID, err)
		}
	}
	if v, ok, err := u.region("mesh info", header.MeshInfoOffset); err != nil {
		return nil, fmt.Errorf("unit %s: %w", desc.ID, err)
	} else if ok {
		if u.meshes, err = NewMeshTable(v, limits); err != nil {
			return nil, fmt.Errorf("unit %s: %w", desc.ID, err)
		}
	}
	if v, ok, err := u.region("datatypes", header.DatatypesOffset); err != nil {
		return nil, fmt.Errorf("unit %s: %w", desc.ID, err)
	} else if ok {
		if u.datatypes, err = NewDatatypeTable(v, limits); err != nil {
			return nil, fmt.Errorf("unit %s: %w", desc.ID, err)
		}
		if err := u.checkDatatypeIndices(); err != nil {
			return nil, fmt.Errorf("unit %s: %w", desc.ID, err)
		}
	}

	core.LogDebug("decoded unit %s: %d nodes, %d meshes, %d materials", desc.ID, u.nodes.Size(), u.meshes.Size(), u.materials.Size())
	return u, nil
}

// region returns the view from offset to the end of the unit. A zero offset means the
// table is absent.
func (u *Unit) region(field string, offset uint32) (containers.BufferView, bool, error) {
	if offset == 0 {
		return containers.BufferView{}, false, nil
	}
	if offset < HeaderSize {
		return containers.BufferView{}, false, core.Malformed(field+" offset", "offset %d points inside the %d byte header", offset, HeaderSize)
	}
	v, err := u.view.Tail(field, int(offset))
	if err != nil {
		return containers.BufferView{}, false, err
	}
	return v, true, nil
}

func (u *Unit) checkDatatypeIndices() error {
	for i := 0; i < u.meshes.Size(); i++ {
		m, _ := u.meshes.At(i)
		if int64(m.DatatypeIndex()) >= int64(u.datatypes.Size()) {
			return core.Malformed("mesh datatype", "mesh %d uses datatype %d of %d", i, m.DatatypeIndex(), u.datatypes.Size())
		}
	}
	return nil
}

// ID returns the content hash the unit was handed over with.
func (u *Unit) ID() core.Hash {
	return u.id
}

func (u *Unit) Header() Header {
	return u.header
}

func (u *Unit) Nodes() *NodeHierarchy {
	return u.nodes
}

func (u *Unit) Materials() *MaterialTable {
	return u.materials
}

func (u *Unit) Meshes() *MeshTable {
	return u.meshes
}

func (u *Unit) Datatypes() *DatatypeTable {
	return u.datatypes
}

// Size returns the byte length of the unit data.
func (u *Unit) Size() int {
	return u.view.Len()
}

func (u *Unit) Extension() string {
	return Extension
}

// Sections returns the whole unit as one section.
func (u *Unit) Sections() []resources.Section {
	return []resources.Section{{Name: Extension, Offset: 0, Data: u.view.Bytes()}}
}

var _ resources.Asset = (*Unit)(nil)
