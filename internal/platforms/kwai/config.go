package kwai

import (
	"time"

	"token-vault/internal/common/errors"
	"token-vault/internal/credentials"
)

const (
	// DefaultBaseURL is the Kwai open platform root.
	DefaultBaseURL = "https://open.kwai.com"

	// DefaultTimeout bounds every Kwai API call.
	DefaultTimeout = 30 * time.Second

	// fallbackTokenLifetime applies when the refresh response carries no
	// expires_in.
	fallbackTokenLifetime = 2 * time.Hour
)

type Config struct {
	ClientID     string
	ClientSecret string

	BaseURL string
	Timeout time.Duration
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
		return errors.ConfigError("Kwai client ID is required")
	}
	if c.ClientSecret == "" {
		return errors.ConfigError("Kwai client secret is required")
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
	return credentials.PlatformKwai
}
