package google

import (
	"fmt"

	"token-vault/internal/credentials"
	"token-vault/internal/platforms"
)

// Factory builds adapters for one of the Google platforms. A separate
// instance is registered per platform so the registry stays uniform.
type Factory struct {
	platform credentials.Platform
}

func (f *Factory) Create(config platforms.Config) (platforms.Adapter, error) {
	googleConfig, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("invalid config type for Google adapter")
	}
	if googleConfig.TargetPlatform == "" {
		googleConfig.TargetPlatform = f.platform
	}

	return NewAdapter(googleConfig)
}

func (f *Factory) Platform() credentials.Platform {
	return f.platform
}

func init() {
	for _, platform := range []credentials.Platform{
		credentials.PlatformGoogleAds,
		credentials.PlatformGoogleAnalytics,
		credentials.PlatformGoogleAdSense,
	} {
		platforms.Register(platform, &Factory{platform: platform})
	}
}
