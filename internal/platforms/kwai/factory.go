package kwai

import (
	"fmt"

	"token-vault/internal/credentials"
	"token-vault/internal/platforms"
)

type Factory struct{}

func (f *Factory) Create(config platforms.Config) (platforms.Adapter, error) {
	kwaiConfig, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("invalid config type for Kwai adapter")
	}

	return NewAdapter(kwaiConfig)
}

func (f *Factory) Platform() credentials.Platform {
	return credentials.PlatformKwai
}

func init() {
	platforms.Register(credentials.PlatformKwai, &Factory{})
}
