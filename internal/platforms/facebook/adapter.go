// Package facebook implements the platform adapter for Meta's Graph API.
//
// Facebook has no classic refresh token: a long-lived token is exchanged for
// a new long-lived token via grant_type=fb_exchange_token. The Graph API can
// answer 200 with an embedded error object, so success is decided by the
// body, not the status code alone.
package facebook

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
	return credentials.PlatformFacebook
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	Error       *apiError `json:"error,omitempty"`
}

func (a *Adapter) Refresh(ctx context.Context, refreshToken string) (*platforms.Token, error) {
	payload, err := json.Marshal(map[string]string{
		"grant_type":        "fb_exchange_token",
		"client_id":         a.config.ClientID,
		"client_secret":     a.config.ClientSecret,
		"fb_exchange_token": refreshToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.config.BaseURL+"/oauth/access_token", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	// The Graph API reports failures both via status codes and via an
	// error object embedded in otherwise successful responses.
	if body.Error != nil {
		return nil, errors.ProviderError("facebook", body.Error.Message, nil).
			WithContext("error_type", body.Error.Type).
			WithContext("error_code", body.Error.Code)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.ProviderError("facebook",
			fmt.Sprintf("token exchange returned status %d", resp.StatusCode), nil)
	}
	if body.AccessToken == "" {
		return nil, errors.ProviderError("facebook", "token exchange returned no access token", nil)
	}

	lifetime := fallbackTokenLifetime
	if body.ExpiresIn > 0 {
		lifetime = time.Duration(body.ExpiresIn) * time.Second
	} else {
		logging.Debug("Facebook exchange returned no expiry, using fallback lifetime",
			logging.Duration("fallback", fallbackTokenLifetime))
	}

	return &platforms.Token{
		AccessToken: body.AccessToken,
		ExpiresAt:   time.Now().Add(lifetime),
	}, nil
}

type meResponse struct {
	ID    string    `json:"id"`
	Error *apiError `json:"error,omitempty"`
}

func (a *Adapter) Validate(ctx context.Context, accessToken string) bool {
	endpoint := a.config.BaseURL + "/me?access_token=" + url.QueryEscape(accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}

	resp, err := a.client.Do(req)
	if err != nil {
		logging.Debug("Facebook token validation request failed", logging.Err(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var body meResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false
	}

	return body.Error == nil && body.ID != ""
}
