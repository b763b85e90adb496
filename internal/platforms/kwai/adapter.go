// Package kwai implements the platform adapter for the Kwai open platform.
//
// Kwai reports failures through an error field in the body, typically with a
// 200 status; successful responses carry result == 1 and no error. Refresh
// rotates the refresh token.
package kwai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
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
	return credentials.PlatformKwai
}

type refreshResponse struct {
	Result       int    `json:"result"`
	Error        string `json:"error,omitempty"`
	ErrorMsg     string `json:"error_msg,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (a *Adapter) Refresh(ctx context.Context, refreshToken string) (*platforms.Token, error) {
	payload, err := json.Marshal(map[string]string{
		"client_id":     a.config.ClientID,
		"client_secret": a.config.ClientSecret,
		"refresh_token": refreshToken,
		"grant_type":    "refresh_token",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.config.BaseURL+"/oauth2/refresh_token", bytes.NewReader(payload))
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

	// Failures carry an error field, often alongside a 200 status.
	// Successful responses have result == 1.
	if body.Error != "" {
		msg := body.Error
		if body.ErrorMsg != "" {
			msg = fmt.Sprintf("%s: %s", body.Error, body.ErrorMsg)
		}
		return nil, errors.ProviderError("kwai", msg, nil)
	}
	if body.Result != 1 {
		return nil, errors.ProviderError("kwai",
			fmt.Sprintf("token refresh returned result %d", body.Result), nil)
	}
	if body.AccessToken == "" {
		return nil, errors.ProviderError("kwai", "token refresh returned no access token", nil)
	}

	lifetime := fallbackTokenLifetime
	if body.ExpiresIn > 0 {
		lifetime = time.Duration(body.ExpiresIn) * time.Second
	} else {
		logging.Debug("Kwai refresh returned no expiry, using fallback lifetime",
			logging.Duration("fallback", fallbackTokenLifetime))
	}

	return &platforms.Token{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		ExpiresAt:    time.Now().Add(lifetime),
	}, nil
}

type userInfoResponse struct {
	Result int    `json:"result"`
	Error  string `json:"error,omitempty"`
}

func (a *Adapter) Validate(ctx context.Context, accessToken string) bool {
	endpoint := a.config.BaseURL + "/openapi/user_info?access_token=" + url.QueryEscape(accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}

	resp, err := a.client.Do(req)
	if err != nil {
		logging.Debug("Kwai token validation request failed", logging.Err(err))
		return false
	}
	defer resp.Body.Close()

	var body userInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false
	}

	return body.Error == "" && body.Result == 1
}
