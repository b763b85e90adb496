// Package credentials defines the persisted credential model shared by the
// store, the platform adapters, and the token lifecycle manager.
package credentials

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Platform identifies a connected advertising platform.
type Platform string

const (
	PlatformFacebook        Platform = "facebook"
	PlatformGoogleAds       Platform = "google_ads"
	PlatformGoogleAnalytics Platform = "google_analytics"
	PlatformGoogleAdSense   Platform = "google_adsense"
	PlatformTikTok          Platform = "tiktok"
	PlatformKwai            Platform = "kwai"

	// Reserved platforms: storable, but no adapter is wired for them yet.
	PlatformLinkedIn  Platform = "linkedin"
	PlatformPinterest Platform = "pinterest"
	PlatformSnapchat  Platform = "snapchat"
)

// Platforms returns every known platform, adapters or not.
func Platforms() []Platform {
	return []Platform{
		PlatformFacebook,
		PlatformGoogleAds,
		PlatformGoogleAnalytics,
		PlatformGoogleAdSense,
		PlatformTikTok,
		PlatformKwai,
		PlatformLinkedIn,
		PlatformPinterest,
		PlatformSnapchat,
	}
}

// Valid reports whether p is a member of the known platform set.
func (p Platform) Valid() bool {
	for _, known := range Platforms() {
		if p == known {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (p Platform) String() string {
	return string(p)
}

// ParsePlatform converts a wire/user string into a Platform.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown platform %q", s)
	}
	return p, nil
}

// Credential is one row of user_platform_configs: the tokens and expiry a
// user holds for a single platform. Exactly zero or one row exists per
// (UserID, Platform) pair.
type Credential struct {
	UserID         string            `json:"user_id"`
	Platform       Platform          `json:"platform"`
	AccessToken    string            `json:"-"`
	RefreshToken   string            `json:"-"`
	ExpiresAt      *time.Time        `json:"expires_at,omitempty"`
	PlatformUserID string            `json:"platform_user_id,omitempty"`
	Scopes         []string          `json:"scopes,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// ExpiresWithin reports whether the credential expires inside the given
// horizon. A credential without a stored expiry never reports true: its
// lifetime is unknown and no proactive refresh is attempted for it.
func (c *Credential) ExpiresWithin(horizon time.Duration) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !c.ExpiresAt.After(time.Now().Add(horizon))
}

// Refreshable reports whether the credential carries a refresh token.
func (c *Credential) Refreshable() bool {
	return c.RefreshToken != ""
}

// DaysUntilExpiry returns the ceiling-rounded number of days until the
// credential expires, or nil when no expiry is stored. Already-expired
// credentials report zero or negative days.
func (c *Credential) DaysUntilExpiry() *int {
	if c.ExpiresAt == nil {
		return nil
	}
	days := int(math.Ceil(time.Until(*c.ExpiresAt).Hours() / 24))
	return &days
}

// SaveInput carries the fields an OAuth callback (or a manual connect flow)
// supplies when persisting a credential. Absent fields must not clobber
// values already in storage: a provider's re-authorization response may omit
// the refresh token it issued on the first grant.
type SaveInput struct {
	AccessToken    string            `json:"access_token"`
	RefreshToken   string            `json:"refresh_token,omitempty"`
	ExpiresIn      int               `json:"expires_in,omitempty"`
	ExpiresAt      *time.Time        `json:"expires_at,omitempty"`
	PlatformUserID string            `json:"platform_user_id,omitempty"`
	Scopes         []string          `json:"scopes,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// Expiry resolves the input's expiry relative to now: an absolute ExpiresAt
// wins, otherwise ExpiresIn seconds, otherwise nil (unknown lifetime).
func (in *SaveInput) Expiry(now time.Time) *time.Time {
	if in.ExpiresAt != nil {
		return in.ExpiresAt
	}
	if in.ExpiresIn > 0 {
		t := now.Add(time.Duration(in.ExpiresIn) * time.Second)
		return &t
	}
	return nil
}

// ConfigInfo is the connection-status snapshot returned to callers that
// render a platform's state (connected, valid, days remaining).
type ConfigInfo struct {
	Platform        Platform   `json:"platform"`
	IsValid         bool       `json:"is_valid"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	DaysUntilExpiry *int       `json:"days_until_expiry,omitempty"`
	PlatformUserID  string     `json:"platform_user_id,omitempty"`
	Scopes          []string   `json:"scopes,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
