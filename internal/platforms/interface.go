// Package platforms defines the provider adapter contract and the registry
// adapters self-register into. Each provider lives in its own subpackage with
// its config, factory, and wire handling; adding a platform means adding a
// subpackage, not editing a dispatch switch.
package platforms

import (
	"context"
	"time"

	"token-vault/internal/credentials"
)

// Token is the result of a successful provider refresh. RefreshToken is set
// only when the provider rotated it; callers keep the previous one otherwise.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Adapter wraps one provider's token endpoints. Implementations trap their
// own transport and parse errors: Refresh returns (nil, error) and Validate
// returns false, and provider quirks never leak past this boundary.
type Adapter interface {
	// Platform identifies the platform this adapter serves.
	Platform() credentials.Platform

	// Refresh exchanges a refresh token for a fresh access token.
	Refresh(ctx context.Context, refreshToken string) (*Token, error)

	// Validate reports whether the access token is currently usable.
	Validate(ctx context.Context, accessToken string) bool
}

// Config is the provider-specific configuration handed to a Factory.
type Config interface {
	Validate() error
	Platform() credentials.Platform
}

// Factory creates an Adapter from its provider-specific configuration.
type Factory interface {
	Create(config Config) (Adapter, error)
	Platform() credentials.Platform
}
