package systems

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/spaghettifunk/stingray-assets/engine/core"
	"github.com/spaghettifunk/stingray-assets/engine/resources"
	"github.com/spaghettifunk/stingray-assets/engine/resources/loaders"
)

/** @brief The configuration for the resource system */
type ResourceSystemConfig struct {
	/** @brief The maximum number of loaders that can be registered with this system. */
	MaxLoaderCount uint32
	/** @brief Limits and log level handed to every decoder. */
	Decoder core.DecoderConfig
}

// Resource is the result of one successful load.
type Resource struct {
	// ID identifies this load in logs and manifests.
	ID         uuid.UUID
	LoaderID   uint32
	Descriptor resources.AssetDescriptor
	Asset      resources.Asset
}

// ResourceSystem dispatches asset descriptors to the loader registered for their type.
// Load may be called from several goroutines.
type ResourceSystem struct {
	config ResourceSystemConfig

	mu                sync.RWMutex
	registeredLoaders []loaders.ResourceLoader

	metrics *core.Metrics
}

// NewResourceSystem creates a system with the unit and bank loaders registered.
func NewResourceSystem(config ResourceSystemConfig) (*ResourceSystem, error) {
	if config.MaxLoaderCount == 0 {
		err := fmt.Errorf("failed to run NewResourceSystem because config.MaxLoaderCount==0")
		core.LogError("%v", err)
		return nil, err
	}
	core.SetLogLevel(config.Decoder.Log.Level)

	rs := &ResourceSystem{
		config:            config,
		registeredLoaders: make([]loaders.ResourceLoader, 0, config.MaxLoaderCount),
		metrics:           core.NewMetrics(),
	}

	// Auto-register known loader types here.
	for _, l := range []loaders.ResourceLoader{loaders.NewUnitLoader(), loaders.NewBankLoader()} {
		if err := rs.RegisterLoader(l); err != nil {
			return nil, err
		}
	}

	core.LogInfo("Resource system initialized with %d loaders.", len(rs.registeredLoaders))
	return rs, nil
}

// RegisterLoader adds loader unless one already exists for its resource type.
func (rs *ResourceSystem) RegisterLoader(loader loaders.ResourceLoader) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	for _, l := range rs.registeredLoaders {
		if l.ResourceType == loader.ResourceType {
			core.LogError("Loader of type %s already exists and will not be registered.", loader.ResourceType)
			return fmt.Errorf("%w: %s", core.ErrLoaderExists, loader.ResourceType)
		}
	}
	if uint32(len(rs.registeredLoaders)) >= rs.config.MaxLoaderCount {
		return fmt.Errorf("cannot register loader for %s: all %d slots in use", loader.ResourceType, rs.config.MaxLoaderCount)
	}

	loader.ID = uint32(len(rs.registeredLoaders))
	rs.registeredLoaders = append(rs.registeredLoaders, loader)
	core.LogDebug("Loader registered for %s.", loader.ResourceType)
	return nil
}

func (rs *ResourceSystem) loader(resourceType resources.ResourceType) (loaders.ResourceLoader, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	for _, l := range rs.registeredLoaders {
		if l.ResourceType == resourceType {
			return l, true
		}
	}
	return loaders.ResourceLoader{ID: loaders.InvalidID}, false
}

// Load decodes desc with the loader for desc.Type and checks the resulting sections.
// desc.Data is borrowed for the lifetime of the returned Resource.
func (rs *ResourceSystem) Load(desc resources.AssetDescriptor) (*Resource, error) {
	l, ok := rs.loader(desc.Type)
	if !ok {
		core.LogError("No loader for type %s was found.", desc.Type)
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownResourceType, desc.Type)
	}

	id := uuid.New()
	clock := core.NewClock()
	clock.Start()
	asset, err := l.Load(desc, rs.config.Decoder)
	if err == nil {
		err = resources.ValidateSections(asset.Size(), asset.Sections())
	}
	clock.Update()
	clock.Stop()
	rs.metrics.Update(clock.Elapsed(), len(desc.Data), err)

	if err != nil {
		core.LogError("load %s: failed to decode %s %s: %v", id, desc.Type, desc.ID, err)
		return nil, err
	}
	core.LogInfo("load %s: decoded %s %s (%d bytes, %d sections) in %s", id, desc.Type, desc.ID, asset.Size(), len(asset.Sections()), clock.Elapsed())

	return &Resource{
		ID:         id,
		LoaderID:   l.ID,
		Descriptor: desc,
		Asset:      asset,
	}, nil
}

// Extension returns the extension registered for resourceType.
func (rs *ResourceSystem) Extension(resourceType resources.ResourceType) (string, error) {
	l, ok := rs.loader(resourceType)
	if !ok {
		return "", fmt.Errorf("%w: %s", core.ErrUnknownResourceType, resourceType)
	}
	return l.Extension, nil
}

func (rs *ResourceSystem) Metrics() core.MetricsSnapshot {
	return rs.metrics.Snapshot()
}

// IsDecodeError reports whether err came from the bytes of an asset rather than from the system.
func IsDecodeError(err error) bool {
	return errors.Is(err, core.ErrOutOfBounds) ||
		errors.Is(err, core.ErrMalformedHeader) ||
		errors.Is(err, core.ErrIndexOutOfRange)
}

// LoadAll decodes every descriptor on the workers of js and returns the results in input order.
// A failed load leaves a nil entry; the failures are joined into the returned error.
func (rs *ResourceSystem) LoadAll(js *JobSystem, descs []resources.AssetDescriptor) ([]*Resource, error) {
	results := make([]*Resource, len(descs))
	errs := make([]error, len(descs))

	var done sync.WaitGroup
	done.Add(len(descs))
	for i := range descs {
		js.Submit(JobTask{
			OnStart: func() error {
				res, err := rs.Load(descs[i])
				if err != nil {
					return fmt.Errorf("descriptor %d: %w", i, err)
				}
				results[i] = res
				return nil
			},
			OnFailure: func(err error) {
				errs[i] = err
			},
			OnCompletionCallback: done.Done,
		})
	}
	done.Wait()

	return results, errors.Join(errs...)
}
