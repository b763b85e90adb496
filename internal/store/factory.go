package store

import (
	"fmt"

	"token-vault/internal/common/errors"
	"token-vault/internal/config"
)

// GenericConfig is a simple map-based implementation of Config used when
// building a backend from application configuration.
type GenericConfig map[string]interface{}

func (gc GenericConfig) Validate() error {
	return nil // Backend factories validate their typed configs
}

func (gc GenericConfig) GetType() string {
	if t, ok := gc["type"].(string); ok {
		return t
	}
	return "unknown"
}

// Cipher extracts the token cipher carried in a generic config, if any.
func (gc GenericConfig) Cipher() *TokenCipher {
	if c, ok := gc["cipher"].(*TokenCipher); ok {
		return c
	}
	return nil
}

// NewStore creates a credential store backend based on application
// configuration. Backends must have been registered (imported) by the caller.
func NewStore(cfg *config.Config) (Store, error) {
	cipher, err := NewTokenCipher(cfg.EncryptionKey)
	if err != nil {
		return nil, err
	}

	var storeType string
	var storeConfig Config

	switch cfg.DatabaseType {
	case "sqlite":
		storeType = "sqlite"
		storeConfig = GenericConfig{
			"type":   "sqlite",
			"path":   cfg.DatabasePath,
			"cipher": cipher,
		}

	case "postgres", "postgresql":
		storeType = "postgres"
		storeConfig = GenericConfig{
			"type":     "postgres",
			"host":     cfg.PostgresHost,
			"port":     cfg.PostgresPort,
			"database": cfg.PostgresDB,
			"username": cfg.PostgresUser,
			"password": cfg.PostgresPassword,
			"sslmode":  cfg.PostgresSSLMode,
			"cipher":   cipher,
		}

	default:
		return nil, errors.ConfigError(fmt.Sprintf("unsupported database type: %s", cfg.DatabaseType))
	}

	return Create(storeType, storeConfig)
}
