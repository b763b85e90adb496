package tiktok

import (
	"fmt"

	"token-vault/internal/credentials"
	"token-vault/internal/platforms"
)

type Factory struct{}

func (f *Factory) Create(config platforms.Config) (platforms.Adapter, error) {
	tiktokConfig, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("invalid config type for TikTok adapter")
	}

	return NewAdapter(tiktokConfig)
}

func (f *Factory) Platform() credentials.Platform {
	return credentials.PlatformTikTok
}

func init() {
	platforms.Register(credentials.PlatformTikTok, &Factory{})
}
