package facebook

import (
	"fmt"

	"token-vault/internal/credentials"
	"token-vault/internal/platforms"
)

type Factory struct{}

func (f *Factory) Create(config platforms.Config) (platforms.Adapter, error) {
	fbConfig, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("invalid config type for Facebook adapter")
	}

	return NewAdapter(fbConfig)
}

func (f *Factory) Platform() credentials.Platform {
	return credentials.PlatformFacebook
}

func init() {
	platforms.Register(credentials.PlatformFacebook, &Factory{})
}
