package core

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/stingray-assets/engine/math"
)

// LimitsConfig bounds the counts a decoder accepts before slicing any array.
type LimitsConfig struct {
	MaxNodes     uint32 `toml:"max_nodes"`
	MaxMeshes    uint32 `toml:"max_meshes"`
	MaxMaterials uint32 `toml:"max_materials"`
	MaxGroups    uint32 `toml:"max_groups"`
	MaxDatatypes uint32 `toml:"max_datatypes"`
	MaxChunks    uint32 `toml:"max_chunks"`
	MaxMedia     uint32 `toml:"max_media"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

/** @brief The configuration shared by every decoder. */
type DecoderConfig struct {
	Limits LimitsConfig `toml:"limits"`
	Log    LogConfig    `toml:"log"`
}

// Node parents are u16 with 0xFFFF reserved for "no parent".
const maxNodeCount uint32 = 0xFFFF

// DefaultConfig returns the limits used when the caller provides none.
func DefaultConfig() DecoderConfig {
	return DecoderConfig{
		Limits: LimitsConfig{
			MaxNodes:     maxNodeCount,
			MaxMeshes:    1 << 16,
			MaxMaterials: 1 << 16,
			MaxGroups:    1 << 16,
			MaxDatatypes: 1 << 12,
			MaxChunks:    1 << 12,
			MaxMedia:     1 << 16,
		},
		Log: LogConfig{Level: "info"},
	}
}

// ParseConfig decodes a TOML document on top of DefaultConfig. Missing keys keep their defaults.
func ParseConfig(data []byte) (DecoderConfig, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DecoderConfig{}, fmt.Errorf("failed to parse decoder config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *DecoderConfig) normalize() {
	c.Limits.MaxNodes = math.Clamp(c.Limits.MaxNodes, 0, maxNodeCount)
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// CheckCount returns ErrMalformedHeader when count exceeds limit.
func CheckCount(field string, count, limit uint32) error {
	if count > limit {
		return Malformed(field, "count %d exceeds limit %d", count, limit)
	}
	return nil
}
