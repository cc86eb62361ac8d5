package unit

import (
	"github.com/spaghettifunk/stingray-assets/engine/containers"
	"github.com/spaghettifunk/stingray-assets/engine/core"
	"github.com/spaghettifunk/stingray-assets/engine/math"
)

// NoParent marks a root node in a parent link.
const NoParent uint16 = 0xFFFF

const (
	nodeHeaderSize  = 16
	nodeTrssSize    = 64
	nodeMatrixSize  = 64
	nodeLinkSize    = 4
	nodeNameSize    = 4
	linkParentShift = 2
)

/**
 * @brief One node of a unit hierarchy, in table order.
 */
type NodeEntry struct {
	/** @brief Position of the node in the table. */
	Index int
	/** @brief The node name hash. */
	Name core.ThinHash
	/** @brief The local transform relative to the parent. */
	Transform math.Transform
	/** @brief Index of the parent node, or NoParent. */
	Parent uint16
}

func (n NodeEntry) HasParent() bool {
	return n.Parent != NoParent
}

// NodeHierarchy is the decoded node table of a unit.
//
// Layout: count u32 and three reserved u32, then four parallel arrays of count records:
// transforms (64 bytes), precomputed matrices (64 bytes, kept opaque), links
// (reserved u16, parent u16) and name ThinHashes.
type NodeHierarchy struct {
	reserved containers.BufferView
	matrices containers.BufferView

	nodes    []NodeEntry
	index    map[core.ThinHash]int
	roots    []int
	children [][]int
	order    []int
	world    []math.Mat4
}

func emptyNodeHierarchy() *NodeHierarchy {
	return &NodeHierarchy{index: map[core.ThinHash]int{}}
}

// NewNodeHierarchy decodes a node table from the start of v and validates its parent links.
// A link to a missing node, a self link or a cycle is reported as core.ErrMalformedHeader.
func NewNodeHierarchy(v containers.BufferView, limits core.LimitsConfig) (*NodeHierarchy, error) {
	count, err := v.U32("node count", 0)
	if err != nil {
		return nil, err
	}
	if err := core.CheckCount("node count", count, limits.MaxNodes); err != nil {
		return nil, err
	}
	reserved, err := v.Slice("node header", containers.SizeUint32, nodeHeaderSize-containers.SizeUint32)
	if err != nil {
		return nil, err
	}

	offset := nodeHeaderSize
	trss, err := v.Array("node transforms", offset, count, nodeTrssSize)
	if err != nil {
		return nil, err
	}
	offset += trss.Len()
	matrices, err := v.Array("node matrices", offset, count, nodeMatrixSize)
	if err != nil {
		return nil, err
	}
	offset += matrices.Len()
	links, err := v.Array("node links", offset, count, nodeLinkSize)
	if err != nil {
		return nil, err
	}
	offset += links.Len()
	names, err := v.Array("node names", offset, count, nodeNameSize)
	if err != nil {
		return nil, err
	}

	h := &NodeHierarchy{
		reserved: reserved,
		matrices: matrices,
		nodes:    make([]NodeEntry, count),
		index:    make(map[core.ThinHash]int, count),
	}
	for i := range h.nodes {
		transform, err := decodeTrss(trss, i*nodeTrssSize)
		if err != nil {
			return nil, err
		}
		parent, err := links.U16("node parent", i*nodeLinkSize+linkParentShift)
		if err != nil {
			return nil, err
		}
		h.nodes[i] = NodeEntry{
			Index:     i,
			Name:      core.ThinHash(names.U32At(i)),
			Transform: transform,
			Parent:    parent,
		}
		// Later duplicates overwrite earlier ones.
		h.index[h.nodes[i].Name] = i
	}

	if err := h.link(); err != nil {
		return nil, err
	}
	h.resolveWorld()

	core.LogDebug("decoded node hierarchy: %d nodes, %d roots", len(h.nodes), len(h.roots))
	return h, nil
}

func decodeTrss(v containers.BufferView, offset int) (math.Transform, error) {
	var floats [16]float32
	for i := range floats {
		f, err := v.F32("node transform", offset+i*containers.SizeFloat32)
		if err != nil {
			return math.Transform{}, err
		}
		floats[i] = f
	}

	t := math.Transform{}
	copy(t.Rotation.Data[:], floats[0:9])
	t.Position = math.NewVec3(floats[9], floats[10], floats[11])
	t.Scale = math.NewVec3(floats[12], floats[13], floats[14])
	t.Skew = floats[15]
	return t, nil
}

// link builds the child lists and a parents-first order. Nodes that cannot be reached from
// a root sit on a cycle.
func (h *NodeHierarchy) link() error {
	count := len(h.nodes)
	h.children = make([][]int, count)
	for i, n := range h.nodes {
		if !n.HasParent() {
			h.roots = append(h.roots, i)
			continue
		}
		p := int(n.Parent)
		if p >= count {
			return core.Malformed("node parent", "node %d links to missing parent %d of %d", i, p, count)
		}
		if p == i {
			return core.Malformed("node parent", "node %d is its own parent", i)
		}
		h.children[p] = append(h.children[p], i)
	}

	h.order = make([]int, 0, count)
	if count == 0 {
		return nil
	}
	queue := containers.NewRingQueue[int](count)
	for _, r := range h.roots {
		_ = queue.Enqueue(r)
	}
	for !queue.IsEmpty() {
		i, _ := queue.Dequeue()
		h.order = append(h.order, i)
		for _, c := range h.children[i] {
			// Every node has at most one parent, so it is enqueued at most once.
			_ = queue.Enqueue(c)
		}
	}
	if len(h.order) != count {
		return core.Malformed("node parent", "%d of %d nodes are part of a parent cycle", count-len(h.order), count)
	}
	return nil
}

func (h *NodeHierarchy) resolveWorld() {
	h.world = make([]math.Mat4, len(h.nodes))
	for _, i := range h.order {
		n := h.nodes[i]
		if n.HasParent() {
			h.world[i] = n.Transform.GetWorld(h.world[n.Parent])
		} else {
			h.world[i] = n.Transform.GetLocal()
		}
	}
}

// Size returns the number of nodes, duplicates included.
func (h *NodeHierarchy) Size() int {
	return len(h.nodes)
}

// At returns node i in table order.
func (h *NodeHierarchy) At(i int) (NodeEntry, error) {
	if i < 0 || i >= len(h.nodes) {
		return NodeEntry{}, core.IndexOutOfRange("node", i, len(h.nodes))
	}
	return h.nodes[i], nil
}

// Find returns the last node named name.
func (h *NodeHierarchy) Find(name core.ThinHash) (NodeEntry, bool) {
	i, ok := h.index[name]
	if !ok {
		return NodeEntry{}, false
	}
	return h.nodes[i], true
}

// Roots returns the indices of nodes without a parent.
func (h *NodeHierarchy) Roots() []int {
	return append([]int(nil), h.roots...)
}

// Children returns the direct children of node i in table order.
func (h *NodeHierarchy) Children(i int) ([]int, error) {
	if i < 0 || i >= len(h.nodes) {
		return nil, core.IndexOutOfRange("node", i, len(h.nodes))
	}
	return append([]int(nil), h.children[i]...), nil
}

// Order returns every node index with each parent placed before its children.
func (h *NodeHierarchy) Order() []int {
	return append([]int(nil), h.order...)
}

// World returns the absolute transform of node i.
func (h *NodeHierarchy) World(i int) (math.Mat4, error) {
	if i < 0 || i >= len(h.nodes) {
		return math.Mat4{}, core.IndexOutOfRange("node", i, len(h.nodes))
	}
	return h.world[i], nil
}

// Matrix returns the opaque 64-byte precomputed block stored for node i.
func (h *NodeHierarchy) Matrix(i int) ([]byte, error) {
	if i < 0 || i >= len(h.nodes) {
		return nil, core.IndexOutOfRange("node", i, len(h.nodes))
	}
	m, err := h.matrices.Slice("node matrix", i*nodeMatrixSize, nodeMatrixSize)
	if err != nil {
		return nil, err
	}
	return m.Bytes(), nil
}

// Reserved returns the three reserved header words verbatim.
func (h *NodeHierarchy) Reserved() []byte {
	return h.reserved.Bytes()
}
