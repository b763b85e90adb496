package postgres

import (
	"fmt"
	"strconv"

	"token-vault/internal/store"
)

type Factory struct{}

func (f *Factory) Create(config store.Config) (store.Store, error) {
	switch cfg := config.(type) {
	case *Config:
		return NewAdapter(cfg)
	case store.GenericConfig:
		port := 5432
		if p, ok := cfg["port"].(string); ok && p != "" {
			if parsed, err := strconv.Atoi(p); err == nil {
				port = parsed
			}
		}
		host, _ := cfg["host"].(string)
		database, _ := cfg["database"].(string)
		username, _ := cfg["username"].(string)
		password, _ := cfg["password"].(string)
		sslMode, _ := cfg["sslmode"].(string)

		return NewAdapter(&Config{
			Host:     host,
			Port:     port,
			Database: database,
			Username: username,
			Password: password,
			SSLMode:  sslMode,
			Cipher:   cfg.Cipher(),
		})
	default:
		return nil, fmt.Errorf("invalid config type for PostgreSQL store")
	}
}

func (f *Factory) GetType() string {
	return "postgres"
}

func init() {
	store.Register("postgres", &Factory{})
}
