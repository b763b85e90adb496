// Package manager implements the token lifecycle: serving valid access
// tokens, refreshing credentials that approach expiry, and persisting what
// the providers hand back.
//
// The read paths use a comma-ok shape rather than errors: a user who never
// connected a platform is a normal state, and callers only care whether a
// usable token exists. Failures are logged here, where the context lives.
package manager

import (
	"context"
	"time"

	"token-vault/internal/common/errors"
	"token-vault/internal/common/logging"
	"token-vault/internal/credentials"
	"token-vault/internal/platforms"
	"token-vault/internal/store"
)

// DefaultRefreshHorizon is how far ahead of expiry a credential is treated
// as needing refresh.
const DefaultRefreshHorizon = 7 * 24 * time.Hour

type Manager struct {
	store    store.Store
	adapters map[credentials.Platform]platforms.Adapter
	horizon  time.Duration
	group    *refreshGroup
}

// New builds a Manager over the given store and adapter set. A non-positive
// horizon falls back to DefaultRefreshHorizon.
func New(st store.Store, adapters []platforms.Adapter, horizon time.Duration) *Manager {
	if horizon <= 0 {
		horizon = DefaultRefreshHorizon
	}

	byPlatform := make(map[credentials.Platform]platforms.Adapter, len(adapters))
	for _, adapter := range adapters {
		byPlatform[adapter.Platform()] = adapter
	}

	return &Manager{
		store:    st,
		adapters: byPlatform,
		horizon:  horizon,
		group:    newRefreshGroup(),
	}
}

// Horizon returns the refresh horizon the manager operates with.
func (m *Manager) Horizon() time.Duration {
	return m.horizon
}

// GetValidToken returns an access token believed valid for the pair, or
// ("", false) when the platform is not connected or no valid token can be
// produced. A token inside the refresh horizon is refreshed before being
// returned; if that refresh fails the stale token is withheld.
func (m *Manager) GetValidToken(ctx context.Context, userID string, platform credentials.Platform) (string, bool) {
	cred, err := m.store.Get(ctx, userID, platform)
	if err != nil {
		logging.Error("Failed to load credential", err,
			logging.String("user_id", userID),
			logging.String("platform", string(platform)))
		return "", false
	}
	if cred == nil || cred.AccessToken == "" {
		return "", false
	}

	// Unknown lifetime: serve what is stored, nothing to refresh against.
	if cred.ExpiresAt == nil {
		return cred.AccessToken, true
	}

	if cred.ExpiresWithin(m.horizon) {
		return m.RefreshCredential(ctx, userID, platform)
	}

	return cred.AccessToken, true
}

// RefreshCredential exchanges the stored refresh token for a fresh access
// token, persists the result, and returns the new token. Concurrent calls
// for the same pair share one provider round trip.
func (m *Manager) RefreshCredential(ctx context.Context, userID string, platform credentials.Platform) (string, bool) {
	key := userID + "|" + string(platform)
	return m.group.Do(key, func() (string, bool) {
		return m.refresh(ctx, userID, platform)
	})
}

func (m *Manager) refresh(ctx context.Context, userID string, platform credentials.Platform) (string, bool) {
	adapter, wired := m.adapters[platform]
	if !wired {
		logging.Warn("No adapter wired for platform, cannot refresh",
			logging.String("platform", string(platform)))
		return "", false
	}

	cred, err := m.store.Get(ctx, userID, platform)
	if err != nil {
		logging.Error("Failed to load credential for refresh", err,
			logging.String("user_id", userID),
			logging.String("platform", string(platform)))
		return "", false
	}
	if cred == nil {
		return "", false
	}
	if !cred.Refreshable() {
		logging.Debug("Credential has no refresh token, skipping refresh",
			logging.String("user_id", userID),
			logging.String("platform", string(platform)))
		return "", false
	}

	token, err := adapter.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		logging.Warn("Provider refresh failed",
			logging.String("user_id", userID),
			logging.String("platform", string(platform)),
			logging.Err(err))
		return "", false
	}

	cred.AccessToken = token.AccessToken
	expiresAt := token.ExpiresAt
	cred.ExpiresAt = &expiresAt
	if token.RefreshToken != "" {
		cred.RefreshToken = token.RefreshToken
	}

	if err := m.store.Upsert(ctx, cred); err != nil {
		// A refreshed token that did not reach storage is not served:
		// the store must stay the source of truth.
		logging.Error("Refreshed token could not be persisted", err,
			logging.String("user_id", userID),
			logging.String("platform", string(platform)))
		return "", false
	}

	logging.Info("Credential refreshed",
		logging.String("user_id", userID),
		logging.String("platform", string(platform)),
		logging.Time("expires_at", expiresAt))

	return token.AccessToken, true
}

// ValidateToken asks the platform whether the access token is currently
// usable. Unknown platforms report false.
func (m *Manager) ValidateToken(ctx context.Context, platform credentials.Platform, accessToken string) bool {
	adapter, wired := m.adapters[platform]
	if !wired {
		return false
	}
	return adapter.Validate(ctx, accessToken)
}

// SaveConfig merge-upserts the credential for the pair. Fields absent from
// the input keep their stored values; in particular a re-authorization that
// omits the refresh token does not drop the one on file. Enum-valid
// platforms without a wired adapter may still be stored.
func (m *Manager) SaveConfig(ctx context.Context, userID string, platform credentials.Platform, input *credentials.SaveInput) error {
	if !platform.Valid() {
		return errors.ValidationError("unknown platform " + string(platform))
	}
	if input == nil || input.AccessToken == "" {
		return errors.ValidationError("access token is required")
	}

	existing, err := m.store.Get(ctx, userID, platform)
	if err != nil {
		return errors.PersistenceError("failed to load existing credential", err)
	}

	now := time.Now().UTC()
	cred := &credentials.Credential{
		UserID:         userID,
		Platform:       platform,
		AccessToken:    input.AccessToken,
		RefreshToken:   input.RefreshToken,
		ExpiresAt:      input.Expiry(now),
		PlatformUserID: input.PlatformUserID,
		Scopes:         input.Scopes,
		Metadata:       input.Metadata,
	}

	if existing != nil {
		cred.CreatedAt = existing.CreatedAt
		if cred.RefreshToken == "" {
			cred.RefreshToken = existing.RefreshToken
		}
		if cred.ExpiresAt == nil {
			cred.ExpiresAt = existing.ExpiresAt
		}
		if cred.PlatformUserID == "" {
			cred.PlatformUserID = existing.PlatformUserID
		}
		if len(cred.Scopes) == 0 {
			cred.Scopes = existing.Scopes
		}
		if len(cred.Metadata) == 0 {
			cred.Metadata = existing.Metadata
		}
	}

	if err := m.store.Upsert(ctx, cred); err != nil {
		return errors.PersistenceError("failed to save credential", err)
	}

	logging.Info("Credential saved",
		logging.String("user_id", userID),
		logging.String("platform", string(platform)))

	return nil
}

// RemoveConfig deletes the credential for the pair. Removing an absent
// credential is not an error.
func (m *Manager) RemoveConfig(ctx context.Context, userID string, platform credentials.Platform) error {
	if err := m.store.Delete(ctx, userID, platform); err != nil {
		return errors.PersistenceError("failed to delete credential", err)
	}
	return nil
}

// GetConfigInfo returns the connection snapshot for the pair, or (nil, nil)
// when the platform is not connected. Validity is checked live against the
// provider when an adapter is wired.
func (m *Manager) GetConfigInfo(ctx context.Context, userID string, platform credentials.Platform) (*credentials.ConfigInfo, error) {
	cred, err := m.store.Get(ctx, userID, platform)
	if err != nil {
		return nil, errors.PersistenceError("failed to load credential", err)
	}
	if cred == nil {
		return nil, nil
	}
	return m.configInfo(ctx, cred), nil
}

// ListConfigInfo returns the connection snapshot for every platform the
// user has connected.
func (m *Manager) ListConfigInfo(ctx context.Context, userID string) ([]*credentials.ConfigInfo, error) {
	creds, err := m.store.ListForUser(ctx, userID)
	if err != nil {
		return nil, errors.PersistenceError("failed to list credentials", err)
	}

	infos := make([]*credentials.ConfigInfo, 0, len(creds))
	for _, cred := range creds {
		infos = append(infos, m.configInfo(ctx, cred))
	}
	return infos, nil
}

// ExpiringCredentials returns every stored credential whose expiry falls
// inside the refresh horizon.
func (m *Manager) ExpiringCredentials(ctx context.Context) ([]*credentials.Credential, error) {
	return m.store.ListExpiring(ctx, time.Now().Add(m.horizon))
}

func (m *Manager) configInfo(ctx context.Context, cred *credentials.Credential) *credentials.ConfigInfo {
	info := &credentials.ConfigInfo{
		Platform:        cred.Platform,
		ExpiresAt:       cred.ExpiresAt,
		DaysUntilExpiry: cred.DaysUntilExpiry(),
		PlatformUserID:  cred.PlatformUserID,
		Scopes:          cred.Scopes,
		UpdatedAt:       cred.UpdatedAt,
	}

	if adapter, wired := m.adapters[cred.Platform]; wired {
		info.IsValid = adapter.Validate(ctx, cred.AccessToken)
	}

	return info
}
