// Package tiktok implements the platform adapter for the TikTok Business API.
//
// TikTok wraps every response in a code/message envelope and reports errors
// through the code field, not the HTTP status. Success means code == 0.
// Refresh rotates the refresh token, so the new one must be persisted.
package tiktok

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"token-vault/internal/common/errors"
	"token-vault/internal/common/logging"
	"token-vault/internal/credentials"
	"token-vault/internal/platforms"
)

type Adapter struct {
	config *Config
	client *http.Client
}

func NewAdapter(config *Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Adapter{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}, nil
}

func (a *Adapter) Platform() credentials.Platform {
	return credentials.PlatformTikTok
}

type refreshResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		AccessToken           string `json:"access_token"`
		RefreshToken          string `json:"refresh_token"`
		ExpiresIn             int64  `json:"expires_in"`
		RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in"`
	} `json:"data"`
}

func (a *Adapter) Refresh(ctx context.Context, refreshToken string) (*platforms.Token, error) {
	payload, err := json.Marshal(map[string]string{
		"app_id":        a.config.AppID,
		"secret":        a.config.AppSecret,
		"refresh_token": refreshToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.config.BaseURL+"/oauth2/refresh_token/", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	var body refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	// TikTok signals failure through the envelope code, usually with a
	// 200 status attached.
	if body.Code != 0 {
		return nil, errors.ProviderError("tiktok", body.Message, nil).
			WithContext("error_code", body.Code)
	}
	if body.Data.AccessToken == "" {
		return nil, errors.ProviderError("tiktok", "token refresh returned no access token", nil)
	}

	lifetime := fallbackTokenLifetime
	if body.Data.ExpiresIn > 0 {
		lifetime = time.Duration(body.Data.ExpiresIn) * time.Second
	} else {
		logging.Debug("TikTok refresh returned no expiry, using fallback lifetime",
			logging.Duration("fallback", fallbackTokenLifetime))
	}

	return &platforms.Token{
		AccessToken:  body.Data.AccessToken,
		RefreshToken: body.Data.RefreshToken,
		ExpiresAt:    time.Now().Add(lifetime),
	}, nil
}

type userInfoResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (a *Adapter) Validate(ctx context.Context, accessToken string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.config.BaseURL+"/user/info/", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Access-Token", accessToken)

	resp, err := a.client.Do(req)
	if err != nil {
		logging.Debug("TikTok token validation request failed", logging.Err(err))
		return false
	}
	defer resp.Body.Close()

	var body userInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false
	}

	return body.Code == 0
}
