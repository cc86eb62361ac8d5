package resources

import (
	"fmt"
	"sort"

	"github.com/spaghettifunk/stingray-assets/engine/core"
)

// ResourceType is the 64-bit type hash the archive stores next to every asset.
type ResourceType core.Hash

/** @brief Resource types this module can decode. */
const (
	/** @brief An engine unit: node hierarchy, meshes, materials. */
	ResourceTypeUnit ResourceType = 0xe0a48d0be9a7453f
	/** @brief A Wwise sound bank wrapped in a small engine header. */
	ResourceTypeWwiseBank ResourceType = 0x535a7bd3e650d799
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeUnit:
		return "unit"
	case ResourceTypeWwiseBank:
		return "wwise_bank"
	default:
		return core.Hash(t).String()
	}
}

/**
 * @brief The unit of input handed over by the archive. Data is borrowed:
 * it must outlive every asset decoded from it and must not be modified
 * while those assets are in use.
 */
type AssetDescriptor struct {
	/** @brief The asset type hash. */
	Type ResourceType
	/** @brief The content hash of the asset. Opaque here. */
	ID core.Hash
	/** @brief The contiguous bytes of the asset. */
	Data []byte
}

// Section is a contiguous byte range of an asset's backing buffer.
// Data aliases the backing buffer; Offset is relative to its start.
type Section struct {
	Name   string
	Offset int
	Data   []byte
}

func (s Section) End() int {
	return s.Offset + len(s.Data)
}

// Asset is implemented by every top-level decoded asset.
type Asset interface {
	// Size is the byte length of the backing data.
	Size() int
	// Extension is the fixed file suffix for this asset type.
	Extension() string
	// Sections lists the asset's byte ranges in physical order.
	Sections() []Section
}

// ValidateSections checks that sections lie within [0, size) and do not overlap.
func ValidateSections(size int, sections []Section) error {
	sorted := make([]Section, len(sections))
	copy(sorted, sections)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	prevEnd := 0
	for _, s := range sorted {
		if s.Offset < 0 || s.End() > size {
			return core.OutOfBounds("section "+s.Name, s.Offset, len(s.Data), size)
		}
		if s.Offset < prevEnd {
			return core.Malformed("section "+s.Name, "overlaps previous section ending at %d", prevEnd)
		}
		prevEnd = s.End()
	}
	return nil
}

// SectionNames is a debugging helper used in log lines.
func SectionNames(sections []Section) string {
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.Name
	}
	return fmt.Sprint(names)
}
