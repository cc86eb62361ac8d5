package systems

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// SectionManifest describes one section by position only; no asset bytes are written.
type SectionManifest struct {
	Name   string `yaml:"name"`
	Offset int    `yaml:"offset"`
	Length int    `yaml:"length"`
}

// Manifest describes how a loaded asset splits into sections, for a packaging tool.
type Manifest struct {
	Load        string            `yaml:"load"`
	Type        string            `yaml:"type"`
	ContentHash string            `yaml:"content_hash"`
	Extension   string            `yaml:"extension"`
	Size        int               `yaml:"size"`
	Sections    []SectionManifest `yaml:"sections"`
}

func NewManifest(res *Resource) Manifest {
	m := Manifest{
		Load:        res.ID.String(),
		Type:        res.Descriptor.Type.String(),
		ContentHash: res.Descriptor.ID.String(),
		Extension:   res.Asset.Extension(),
		Size:        res.Asset.Size(),
	}
	for _, s := range res.Asset.Sections() {
		m.Sections = append(m.Sections, SectionManifest{Name: s.Name, Offset: s.Offset, Length: len(s.Data)})
	}
	return m
}

// Marshal renders the manifest as YAML.
func (m Manifest) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest for %s: %w", m.ContentHash, err)
	}
	return out, nil
}

// ParseManifest reads back a manifest produced by Marshal.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return m, nil
}
