// Package google implements the platform adapter for Google's OAuth2 token
// endpoint, shared by the Ads, Analytics, and AdSense platforms.
//
// Google's endpoint can embed an error field in a 200 response, so the body
// is checked before the status code. Refresh tokens are long-lived and never
// rotated on refresh.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	oauth2v2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"token-vault/internal/common/errors"
	"token-vault/internal/common/logging"
	"token-vault/internal/credentials"
	"token-vault/internal/platforms"
)

type Adapter struct {
	config  *Config
	client  *http.Client
	oauthv2 *oauth2v2.Service
}

func NewAdapter(config *Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: config.Timeout}

	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if config.TokenInfoEndpoint != "" {
		opts = append(opts, option.WithEndpoint(config.TokenInfoEndpoint))
	}

	svc, err := oauth2v2.NewService(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth2 service: %w", err)
	}

	return &Adapter{
		config:  config,
		client:  client,
		oauthv2: svc,
	}, nil
}

func (a *Adapter) Platform() credentials.Platform {
	return a.config.TargetPlatform
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int64  `json:"expires_in"`
	Scope            string `json:"scope"`
	TokenType        string `json:"token_type"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func (a *Adapter) Refresh(ctx context.Context, refreshToken string) (*platforms.Token, error) {
	form := url.Values{
		"client_id":     {a.config.ClientID},
		"client_secret": {a.config.ClientSecret},
		"refresh_token": {refreshToken},
		"grant_type":    {"refresh_token"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	// Check the embedded error field before the status code.
	if body.Error != "" {
		msg := body.Error
		if body.ErrorDescription != "" {
			msg = fmt.Sprintf("%s: %s", body.Error, body.ErrorDescription)
		}
		return nil, errors.ProviderError(string(a.config.TargetPlatform), msg, nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.ProviderError(string(a.config.TargetPlatform),
			fmt.Sprintf("token refresh returned status %d", resp.StatusCode), nil)
	}
	if body.AccessToken == "" {
		return nil, errors.ProviderError(string(a.config.TargetPlatform),
			"token refresh returned no access token", nil)
	}

	lifetime := fallbackTokenLifetime
	if body.ExpiresIn > 0 {
		lifetime = time.Duration(body.ExpiresIn) * time.Second
	} else {
		logging.Debug("Google refresh returned no expiry, using fallback lifetime",
			logging.String("platform", string(a.config.TargetPlatform)),
			logging.Duration("fallback", fallbackTokenLifetime))
	}

	// Google does not rotate refresh tokens on refresh.
	return &platforms.Token{
		AccessToken: body.AccessToken,
		ExpiresAt:   time.Now().Add(lifetime),
	}, nil
}

func (a *Adapter) Validate(ctx context.Context, accessToken string) bool {
	info, err := a.oauthv2.Tokeninfo().AccessToken(accessToken).Context(ctx).Do()
	if err != nil {
		logging.Debug("Google token validation failed",
			logging.String("platform", string(a.config.TargetPlatform)),
			logging.Err(err))
		return false
	}
	return info.ExpiresIn > 0
}
