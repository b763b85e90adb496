package memory

import (
	"token-vault/internal/store"
)

type Factory struct{}

func (f *Factory) Create(config store.Config) (store.Store, error) {
	return NewStore(), nil
}

func (f *Factory) GetType() string {
	return "memory"
}

func init() {
	store.Register("memory", &Factory{})
}
