package loaders

import (
	"github.com/spaghettifunk/stingray-assets/engine/core"
	"github.com/spaghettifunk/stingray-assets/engine/resources"
	"github.com/spaghettifunk/stingray-assets/engine/resources/bank"
	"github.com/spaghettifunk/stingray-assets/engine/resources/unit"
)

const InvalidID uint32 = 4294967295

/** @brief A registered decoder for one resource type. */
type ResourceLoader struct {
	/** @brief The loader identifier, assigned on registration. */
	ID uint32
	/** @brief The resource type this loader decodes. */
	ResourceType resources.ResourceType
	/** @brief The extension of the assets this loader produces. */
	Extension string

	ResourceLoaderInterface
}

type ResourceLoaderInterface interface {
	Load(desc resources.AssetDescriptor, cfg core.DecoderConfig) (resources.Asset, error)
}

type UnitLoader struct{}

func (UnitLoader) Load(desc resources.AssetDescriptor, cfg core.DecoderConfig) (resources.Asset, error) {
	u, err := unit.New(desc, cfg)
	if err != nil {
		return nil, err
	}
	return u, nil
}

type BankLoader struct{}

func (BankLoader) Load(desc resources.AssetDescriptor, cfg core.DecoderConfig) (resources.Asset, error) {
	b, err := bank.New(desc, cfg)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func NewUnitLoader() ResourceLoader {
	return ResourceLoader{
		ID:                      InvalidID,
		ResourceType:            resources.ResourceTypeUnit,
		Extension:               unit.Extension,
		ResourceLoaderInterface: UnitLoader{},
	}
}

func NewBankLoader() ResourceLoader {
	return ResourceLoader{
		ID:                      InvalidID,
		ResourceType:            resources.ResourceTypeWwiseBank,
		Extension:               bank.Extension,
		ResourceLoaderInterface: BankLoader{},
	}
}
