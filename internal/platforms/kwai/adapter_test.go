package kwai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-vault/internal/common/errors"
	"token-vault/internal/credentials"
)

func newTestAdapter(t *testing.T, serverURL string) *Adapter {
	t.Helper()

	config := NewConfig("client-id", "client-secret")
	config.BaseURL = serverURL

	adapter, err := NewAdapter(config)
	require.NoError(t, err)
	return adapter
}

func TestNewAdapter_MissingCredentials(t *testing.T) {
	_, err := NewAdapter(NewConfig("", "secret"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))

	_, err = NewAdapter(NewConfig("id", ""))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}

func TestAdapter_Refresh_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/oauth2/refresh_token", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "client-id", body["client_id"])
		assert.Equal(t, "client-secret", body["client_secret"])
		assert.Equal(t, "old-refresh-token", body["refresh_token"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"result":        1,
			"access_token":  "new-access-token",
			"refresh_token": "new-refresh-token",
			"expires_in":    172800,
		})
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)

	token, err := adapter.Refresh(context.Background(), "old-refresh-token")
	require.NoError(t, err)
	assert.Equal(t, "new-access-token", token.AccessToken)
	assert.Equal(t, "new-refresh-token", token.RefreshToken, "Kwai rotates refresh tokens")
	assert.WithinDuration(t, time.Now().Add(172800*time.Second), token.ExpiresAt, 5*time.Second)
}

func TestAdapter_Refresh_ErrorInOKResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"result":    100200100,
			"error":     "invalid_grant",
			"error_msg": "refresh token expired",
		})
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)

	token, err := adapter.Refresh(context.Background(), "expired-refresh-token")
	require.Error(t, err)
	assert.Nil(t, token)
	assert.True(t, errors.IsType(err, errors.ErrTypeProvider))
	assert.Contains(t, err.Error(), "refresh token expired")
}

func TestAdapter_Refresh_UnexpectedResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"result": 0,
		})
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)

	_, err := adapter.Refresh(context.Background(), "refresh-token")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeProvider))
}

func TestAdapter_Refresh_FallbackLifetime(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"result":       1,
			"access_token": "token-without-expiry",
		})
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)

	token, err := adapter.Refresh(context.Background(), "refresh-token")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), token.ExpiresAt, 5*time.Second)
}

func TestAdapter_Refresh_ServerUnreachable(t *testing.T) {
	adapter := newTestAdapter(t, "http://127.0.0.1:1")

	_, err := adapter.Refresh(context.Background(), "token")
	assert.Error(t, err)
}

func TestAdapter_Validate(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    bool
	}{
		{
			name: "valid token",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/openapi/user_info", r.URL.Path)
				assert.Equal(t, "the-token", r.URL.Query().Get("access_token"))
				json.NewEncoder(w).Encode(map[string]interface{}{
					"result":    1,
					"user_name": "someone",
				})
			},
			want: true,
		},
		{
			name: "invalid token",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]interface{}{
					"result": 100200101,
					"error":  "invalid_token",
				})
			},
			want: false,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			adapter := newTestAdapter(t, server.URL)
			assert.Equal(t, tt.want, adapter.Validate(context.Background(), "the-token"))
		})
	}
}

func TestAdapter_Platform(t *testing.T) {
	adapter := newTestAdapter(t, "http://example.invalid")
	assert.Equal(t, credentials.PlatformKwai, adapter.Platform())
}
