package app

import (
	"token-vault/internal/common/logging"
	"token-vault/internal/config"
	"token-vault/internal/credentials"
	"token-vault/internal/platforms"
	"token-vault/internal/platforms/facebook"
	"token-vault/internal/platforms/google"
	"token-vault/internal/platforms/kwai"
	"token-vault/internal/platforms/tiktok"
)

// buildAdapters constructs an adapter per configured provider. A provider
// without client credentials is skipped with a warning; its credentials can
// still be stored, just never refreshed or validated.
func buildAdapters(cfg *config.Config) ([]platforms.Adapter, error) {
	var adapters []platforms.Adapter

	timeout := cfg.ProviderTimeoutDuration()

	if cfg.Facebook.Configured() {
		fbConfig := facebook.NewConfig(cfg.Facebook.ClientID, cfg.Facebook.ClientSecret)
		fbConfig.Timeout = timeout
		adapter, err := platforms.Create(credentials.PlatformFacebook, fbConfig)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, adapter)
	} else {
		logging.Warn("Facebook client credentials not configured, adapter disabled")
	}

	if cfg.Google.Configured() {
		for _, platform := range []credentials.Platform{
			credentials.PlatformGoogleAds,
			credentials.PlatformGoogleAnalytics,
			credentials.PlatformGoogleAdSense,
		} {
			googleConfig := google.NewConfig(platform, cfg.Google.ClientID, cfg.Google.ClientSecret)
			googleConfig.Timeout = timeout
			adapter, err := platforms.Create(platform, googleConfig)
			if err != nil {
				return nil, err
			}
			adapters = append(adapters, adapter)
		}
	} else {
		logging.Warn("Google client credentials not configured, adapters disabled")
	}

	if cfg.TikTok.Configured() {
		tiktokConfig := tiktok.NewConfig(cfg.TikTok.ClientID, cfg.TikTok.ClientSecret)
		tiktokConfig.Timeout = timeout
		adapter, err := platforms.Create(credentials.PlatformTikTok, tiktokConfig)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, adapter)
	} else {
		logging.Warn("TikTok app credentials not configured, adapter disabled")
	}

	if cfg.Kwai.Configured() {
		kwaiConfig := kwai.NewConfig(cfg.Kwai.ClientID, cfg.Kwai.ClientSecret)
		kwaiConfig.Timeout = timeout
		adapter, err := platforms.Create(credentials.PlatformKwai, kwaiConfig)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, adapter)
	} else {
		logging.Warn("Kwai client credentials not configured, adapter disabled")
	}

	logging.Info("Platform adapters wired", logging.Int("count", len(adapters)))
	return adapters, nil
}
