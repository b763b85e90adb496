package facebook

import (
	"time"

	"token-vault/internal/common/errors"
	"token-vault/internal/credentials"
)

const (
	// DefaultBaseURL is the Graph API root used for token exchange.
	DefaultBaseURL = "https://graph.facebook.com/v18.0"

	// DefaultTimeout bounds every Graph API call.
	DefaultTimeout = 30 * time.Second

	// fallbackTokenLifetime applies when the exchange response carries no
	// expires_in. Long-lived Facebook tokens last about 60 days.
	fallbackTokenLifetime = 60 * 24 * time.Hour
)

type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	Timeout      time.Duration
}

func NewConfig(clientID, clientSecret string) *Config {
	return &Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		BaseURL:      DefaultBaseURL,
		Timeout:      DefaultTimeout,
	}
}

func (c *Config) Validate() error {
	if c.ClientID == "" {
		return errors.ConfigError("Facebook client ID is required")
	}
	if c.ClientSecret == "" {
		return errors.ConfigError("Facebook client secret is required")
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
	return credentials.PlatformFacebook
}
