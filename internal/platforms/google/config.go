package google

import (
	"fmt"
	"time"

	"token-vault/internal/common/errors"
	"token-vault/internal/credentials"
)

const (
	// DefaultTokenURL is Google's shared OAuth token endpoint. Ads,
	// Analytics, and AdSense all refresh against the same endpoint with
	// scope-specific grants.
	DefaultTokenURL = "https://oauth2.googleapis.com/token"

	// DefaultTimeout bounds every Google API call.
	DefaultTimeout = 30 * time.Second

	// fallbackTokenLifetime applies when the refresh response carries no
	// expires_in. Google access tokens last an hour.
	fallbackTokenLifetime = time.Hour
)

type Config struct {
	// TargetPlatform selects which Google product this adapter instance
	// serves: google_ads, google_analytics, or google_adsense.
	TargetPlatform credentials.Platform

	ClientID     string
	ClientSecret string
	TokenURL     string

	// TokenInfoEndpoint overrides the tokeninfo service endpoint used by
	// Validate. Empty means the production Google API endpoint.
	TokenInfoEndpoint string

	Timeout time.Duration
}

func NewConfig(platform credentials.Platform, clientID, clientSecret string) *Config {
	return &Config{
		TargetPlatform: platform,
		ClientID:       clientID,
		ClientSecret:   clientSecret,
		TokenURL:       DefaultTokenURL,
		Timeout:        DefaultTimeout,
	}
}

func (c *Config) Validate() error {
	switch c.TargetPlatform {
	case credentials.PlatformGoogleAds, credentials.PlatformGoogleAnalytics, credentials.PlatformGoogleAdSense:
	default:
		return errors.ConfigError(fmt.Sprintf("%s is not a Google platform", c.TargetPlatform))
	}

	if c.ClientID == "" {
		return errors.ConfigError("Google client ID is required")
	}
	if c.ClientSecret == "" {
		return errors.ConfigError("Google client secret is required")
	}
	if c.TokenURL == "" {
		c.TokenURL = DefaultTokenURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return nil
}

func (c *Config) Platform() credentials.Platform {
	return c.TargetPlatform
}
