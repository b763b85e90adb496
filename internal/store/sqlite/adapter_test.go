package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-vault/internal/credentials"
	"token-vault/internal/store"
)

func newTestAdapter(t *testing.T, cipher *store.TokenCipher) *Adapter {
	t.Helper()

	adapter, err := NewAdapter(&Config{
		DatabasePath: ":memory:",
		Cipher:       cipher,
	})
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })

	return adapter
}

func testCredential(userID string, platform credentials.Platform, expiresAt *time.Time) *credentials.Credential {
	return &credentials.Credential{
		UserID:       userID,
		Platform:     platform,
		AccessToken:  "access-token-value",
		RefreshToken: "refresh-token-value",
		ExpiresAt:    expiresAt,
		Scopes:       []string{"ads_read", "ads_management"},
		Metadata:     map[string]string{"ad_account": "act_42"},
	}
}

func TestAdapter_GetAbsentReturnsNil(t *testing.T) {
	adapter := newTestAdapter(t, nil)

	cred, err := adapter.Get(context.Background(), "user-1", credentials.PlatformFacebook)
	require.NoError(t, err)
	assert.Nil(t, cred)
}

func TestAdapter_UpsertAndGet(t *testing.T) {
	adapter := newTestAdapter(t, nil)
	ctx := context.Background()

	expiresAt := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, adapter.Upsert(ctx, testCredential("user-1", credentials.PlatformFacebook, &expiresAt)))

	got, err := adapter.Get(ctx, "user-1", credentials.PlatformFacebook)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, credentials.PlatformFacebook, got.Platform)
	assert.Equal(t, "access-token-value", got.AccessToken)
	assert.Equal(t, "refresh-token-value", got.RefreshToken)
	require.NotNil(t, got.ExpiresAt)
	assert.WithinDuration(t, expiresAt, *got.ExpiresAt, time.Second)
	assert.Equal(t, []string{"ads_read", "ads_management"}, got.Scopes)
	assert.Equal(t, "act_42", got.Metadata["ad_account"])
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestAdapter_UpsertNilExpiry(t *testing.T) {
	adapter := newTestAdapter(t, nil)
	ctx := context.Background()

	require.NoError(t, adapter.Upsert(ctx, testCredential("user-1", credentials.PlatformKwai, nil)))

	got, err := adapter.Get(ctx, "user-1", credentials.PlatformKwai)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.ExpiresAt)
}

func TestAdapter_UpsertReplacesInPlace(t *testing.T) {
	adapter := newTestAdapter(t, nil)
	ctx := context.Background()

	require.NoError(t, adapter.Upsert(ctx, testCredential("user-1", credentials.PlatformTikTok, nil)))

	updated := testCredential("user-1", credentials.PlatformTikTok, nil)
	updated.AccessToken = "rotated-access-token"
	require.NoError(t, adapter.Upsert(ctx, updated))

	got, err := adapter.Get(ctx, "user-1", credentials.PlatformTikTok)
	require.NoError(t, err)
	assert.Equal(t, "rotated-access-token", got.AccessToken)

	list, err := adapter.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 1, "upsert must not create a second row for the pair")
}

func TestAdapter_DeleteIdempotent(t *testing.T) {
	adapter := newTestAdapter(t, nil)
	ctx := context.Background()

	require.NoError(t, adapter.Upsert(ctx, testCredential("user-1", credentials.PlatformFacebook, nil)))
	require.NoError(t, adapter.Delete(ctx, "user-1", credentials.PlatformFacebook))

	cred, err := adapter.Get(ctx, "user-1", credentials.PlatformFacebook)
	require.NoError(t, err)
	assert.Nil(t, cred)

	require.NoError(t, adapter.Delete(ctx, "user-1", credentials.PlatformFacebook))
	require.NoError(t, adapter.Delete(ctx, "no-such-user", credentials.PlatformTikTok))
}

func TestAdapter_ListForUser(t *testing.T) {
	adapter := newTestAdapter(t, nil)
	ctx := context.Background()

	require.NoError(t, adapter.Upsert(ctx, testCredential("user-1", credentials.PlatformFacebook, nil)))
	require.NoError(t, adapter.Upsert(ctx, testCredential("user-1", credentials.PlatformGoogleAds, nil)))
	require.NoError(t, adapter.Upsert(ctx, testCredential("user-2", credentials.PlatformFacebook, nil)))

	list, err := adapter.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = adapter.ListForUser(ctx, "user-3")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAdapter_ListExpiring(t *testing.T) {
	adapter := newTestAdapter(t, nil)
	ctx := context.Background()
	now := time.Now().UTC()

	expSoon := now.Add(24 * time.Hour)
	require.NoError(t, adapter.Upsert(ctx, testCredential("user-1", credentials.PlatformFacebook, &expSoon)))

	expLater := now.Add(60 * 24 * time.Hour)
	require.NoError(t, adapter.Upsert(ctx, testCredential("user-1", credentials.PlatformGoogleAds, &expLater)))

	require.NoError(t, adapter.Upsert(ctx, testCredential("user-2", credentials.PlatformKwai, nil)))

	expiring, err := adapter.ListExpiring(ctx, now.Add(7*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, credentials.PlatformFacebook, expiring[0].Platform)
}

func TestAdapter_TokenEncryptionAtRest(t *testing.T) {
	cipher, err := store.NewTokenCipher("test-encryption-key-32-bytes!!")
	require.NoError(t, err)

	adapter := newTestAdapter(t, cipher)
	ctx := context.Background()

	require.NoError(t, adapter.Upsert(ctx, testCredential("user-1", credentials.PlatformFacebook, nil)))

	// raw column must not hold the plaintext token
	var rawAccess string
	err = adapter.db.QueryRow(
		`SELECT access_token FROM user_platform_configs WHERE user_id = ? AND platform = ?`,
		"user-1", "facebook").Scan(&rawAccess)
	require.NoError(t, err)
	assert.NotEqual(t, "access-token-value", rawAccess)

	// reads decrypt transparently
	got, err := adapter.Get(ctx, "user-1", credentials.PlatformFacebook)
	require.NoError(t, err)
	assert.Equal(t, "access-token-value", got.AccessToken)
	assert.Equal(t, "refresh-token-value", got.RefreshToken)
}

func TestAdapter_Health(t *testing.T) {
	adapter := newTestAdapter(t, nil)
	assert.NoError(t, adapter.Health())
}

func TestFactory_CreateFromGenericConfig(t *testing.T) {
	s, err := (&Factory{}).Create(store.GenericConfig{
		"type": "sqlite",
		"path": ":memory:",
	})
	require.NoError(t, err)
	defer s.Close()
	assert.NoError(t, s.Health())
}

func TestFactory_RejectsUnknownConfig(t *testing.T) {
	_, err := (&Factory{}).Create(nil)
	assert.Error(t, err)
}
