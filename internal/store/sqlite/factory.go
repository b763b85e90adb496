package sqlite

import (
	"fmt"

	"token-vault/internal/store"
)

type Factory struct{}

func (f *Factory) Create(config store.Config) (store.Store, error) {
	switch cfg := config.(type) {
	case *Config:
		return NewAdapter(cfg)
	case store.GenericConfig:
		path, _ := cfg["path"].(string)
		return NewAdapter(&Config{
			DatabasePath: path,
			Cipher:       cfg.Cipher(),
		})
	default:
		return nil, fmt.Errorf("invalid config type for SQLite store")
	}
}

func (f *Factory) GetType() string {
	return "sqlite"
}

func init() {
	store.Register("sqlite", &Factory{})
}
