package platforms

import (
	"fmt"
	"sync"

	"token-vault/internal/credentials"
)

type Registry struct {
	factories map[credentials.Platform]Factory
	mu        sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[credentials.Platform]Factory),
	}
}

func (r *Registry) Register(platform credentials.Platform, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[platform] = factory
}

func (r *Registry) Create(platform credentials.Platform, config Config) (Adapter, error) {
	r.mu.RLock()
	factory, exists := r.factories[platform]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("platform %s not registered", platform)
	}

	return factory.Create(config)
}

func (r *Registry) GetAvailablePlatforms() []credentials.Platform {
	r.mu.RLock()
	defer r.mu.RUnlock()

	platforms := make([]credentials.Platform, 0, len(r.factories))
	for platform := range r.factories {
		platforms = append(platforms, platform)
	}
	return platforms
}

func (r *Registry) IsRegistered(platform credentials.Platform) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.factories[platform]
	return exists
}

var DefaultRegistry = NewRegistry()

func Register(platform credentials.Platform, factory Factory) {
	DefaultRegistry.Register(platform, factory)
}

func Create(platform credentials.Platform, config Config) (Adapter, error) {
	return DefaultRegistry.Create(platform, config)
}

func GetAvailablePlatforms() []credentials.Platform {
	return DefaultRegistry.GetAvailablePlatforms()
}

func IsRegistered(platform credentials.Platform) bool {
	return DefaultRegistry.IsRegistered(platform)
}
