package sqlite

import (
	"fmt"

	"token-vault/internal/store"
)

type Config struct {
	DatabasePath string
	Cipher       *store.TokenCipher
}

func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is required")
	}
	return nil
}

func (c *Config) GetType() string {
	return "sqlite"
}

func DefaultConfig() *Config {
	return &Config{
		DatabasePath: "./token_vault.db",
	}
}
