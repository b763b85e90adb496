package tiktok

import (
	"time"

	"token-vault/internal/common/errors"
	"token-vault/internal/credentials"
)

const (
	// DefaultBaseURL is the TikTok Business API root.
	DefaultBaseURL = "https://business-api.tiktok.com/open_api/v1.3"

	// DefaultTimeout bounds every TikTok API call.
	DefaultTimeout = 30 * time.Second

	// fallbackTokenLifetime applies when the refresh response carries no
	// expires_in. TikTok access tokens are short-lived.
	fallbackTokenLifetime = 2 * time.Hour
)

type Config struct {
	// AppID and AppSecret identify the TikTok developer application.
	AppID     string
	AppSecret string

	BaseURL string
	Timeout time.Duration
}

func NewConfig(appID, appSecret string) *Config {
	return &Config{
		AppID:     appID,
		AppSecret: appSecret,
		BaseURL:   DefaultBaseURL,
		Timeout:   DefaultTimeout,
	}
}

func (c *Config) Validate() error {
	if c.AppID == "" {
		return errors.ConfigError("TikTok app ID is required")
	}
	if c.AppSecret == "" {
		return errors.ConfigError("TikTok app secret is required")
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return nil
}

func (c *Config) Platform() credentials.Platform {
	return credentials.PlatformTikTok
}
