// Package store defines the credential store contract and the registry of
// storage backends. Backends live in subpackages and register themselves in
// init().
package store

import (
	"context"
	"time"

	"token-vault/internal/credentials"
)

// Store persists user platform credentials. At most one row exists per
// (user, platform) pair; Upsert replaces in place.
type Store interface {
	// Get returns the credential for the pair, or nil with a nil error
	// when none is stored.
	Get(ctx context.Context, userID string, platform credentials.Platform) (*credentials.Credential, error)

	// Upsert inserts or replaces the credential for its (user, platform)
	// pair. CreatedAt is preserved on replace; UpdatedAt is set by the store.
	Upsert(ctx context.Context, cred *credentials.Credential) error

	// Delete removes the credential for the pair. Deleting an absent row
	// is not an error.
	Delete(ctx context.Context, userID string, platform credentials.Platform) error

	// ListForUser returns every credential stored for a user.
	ListForUser(ctx context.Context, userID string) ([]*credentials.Credential, error)

	// ListExpiring returns credentials whose expiry is known and falls at
	// or before the given instant.
	ListExpiring(ctx context.Context, before time.Time) ([]*credentials.Credential, error)

	Health() error
	Close() error
}

// Config is the backend-specific configuration handed to a Factory.
type Config interface {
	Validate() error
	GetType() string
}

// Factory creates a Store from its backend-specific configuration.
type Factory interface {
	Create(config Config) (Store, error)
	GetType() string
}
