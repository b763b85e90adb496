package manager

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"token-vault/internal/credentials"
	"token-vault/internal/platforms"
	"token-vault/internal/store"
	"token-vault/internal/store/memory"
)

type fakeAdapter struct {
	platform   credentials.Platform
	token      *platforms.Token
	refreshErr error
	valid      bool
	delay      time.Duration
	refreshes  int32
}

func (a *fakeAdapter) Platform() credentials.Platform { return a.platform }

func (a *fakeAdapter) Refresh(ctx context.Context, refreshToken string) (*platforms.Token, error) {
	atomic.AddInt32(&a.refreshes, 1)
	if a.delay > 0 {
		time.Sleep(a.delay)
	}
	if a.refreshErr != nil {
		return nil, a.refreshErr
	}
	return a.token, nil
}

func (a *fakeAdapter) Validate(ctx context.Context, accessToken string) bool { return a.valid }

// failingStore wraps a real store and fails selected operations.
type failingStore struct {
	store.Store
	upsertErr error
	getErr    error
}

func (s *failingStore) Upsert(ctx context.Context, cred *credentials.Credential) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	return s.Store.Upsert(ctx, cred)
}

func (s *failingStore) Get(ctx context.Context, userID string, platform credentials.Platform) (*credentials.Credential, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.Store.Get(ctx, userID, platform)
}

func ptrTime(t time.Time) *time.Time { return &t }

func seed(t *testing.T, st store.Store, cred *credentials.Credential) {
	t.Helper()
	if err := st.Upsert(context.Background(), cred); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func TestGetValidToken(t *testing.T) {
	freshToken := &platforms.Token{
		AccessToken: "refreshed-token",
		ExpiresAt:   time.Now().Add(60 * 24 * time.Hour),
	}

	tests := []struct {
		name          string
		stored        *credentials.Credential
		adapter       *fakeAdapter
		wantToken     string
		wantOK        bool
		wantRefreshes int32
	}{
		{
			name:      "not connected",
			stored:    nil,
			adapter:   &fakeAdapter{platform: credentials.PlatformFacebook},
			wantToken: "",
			wantOK:    false,
		},
		{
			name: "empty access token",
			stored: &credentials.Credential{
				UserID:       "user-1",
				Platform:     credentials.PlatformFacebook,
				RefreshToken: "refresh",
			},
			adapter:   &fakeAdapter{platform: credentials.PlatformFacebook},
			wantToken: "",
			wantOK:    false,
		},
		{
			name: "no expiry returns stored token",
			stored: &credentials.Credential{
				UserID:      "user-1",
				Platform:    credentials.PlatformFacebook,
				AccessToken: "stored-token",
			},
			adapter:   &fakeAdapter{platform: credentials.PlatformFacebook},
			wantToken: "stored-token",
			wantOK:    true,
		},
		{
			name: "beyond horizon returns stored token without refresh",
			stored: &credentials.Credential{
				UserID:       "user-1",
				Platform:     credentials.PlatformFacebook,
				AccessToken:  "stored-token",
				RefreshToken: "refresh",
				ExpiresAt:    ptrTime(time.Now().Add(30 * 24 * time.Hour)),
			},
			adapter:       &fakeAdapter{platform: credentials.PlatformFacebook, token: freshToken},
			wantToken:     "stored-token",
			wantOK:        true,
			wantRefreshes: 0,
		},
		{
			name: "within horizon refreshes first",
			stored: &credentials.Credential{
				UserID:       "user-1",
				Platform:     credentials.PlatformFacebook,
				AccessToken:  "stale-token",
				RefreshToken: "refresh",
				ExpiresAt:    ptrTime(time.Now().Add(24 * time.Hour)),
			},
			adapter:       &fakeAdapter{platform: credentials.PlatformFacebook, token: freshToken},
			wantToken:     "refreshed-token",
			wantOK:        true,
			wantRefreshes: 1,
		},
		{
			name: "within horizon and refresh fails withholds stale token",
			stored: &credentials.Credential{
				UserID:       "user-1",
				Platform:     credentials.PlatformFacebook,
				AccessToken:  "stale-token",
				RefreshToken: "refresh",
				ExpiresAt:    ptrTime(time.Now().Add(24 * time.Hour)),
			},
			adapter: &fakeAdapter{
				platform:   credentials.PlatformFacebook,
				refreshErr: fmt.Errorf("provider said no"),
			},
			wantToken:     "",
			wantOK:        false,
			wantRefreshes: 1,
		},
		{
			name: "within horizon without refresh token fails cleanly",
			stored: &credentials.Credential{
				UserID:      "user-1",
				Platform:    credentials.PlatformFacebook,
				AccessToken: "stale-token",
				ExpiresAt:   ptrTime(time.Now().Add(24 * time.Hour)),
			},
			adapter:       &fakeAdapter{platform: credentials.PlatformFacebook, token: freshToken},
			wantToken:     "",
			wantOK:        false,
			wantRefreshes: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := memory.NewStore()
			if tt.stored != nil {
				seed(t, st, tt.stored)
			}

			m := New(st, []platforms.Adapter{tt.adapter}, DefaultRefreshHorizon)

			token, ok := m.GetValidToken(context.Background(), "user-1", credentials.PlatformFacebook)
			if token != tt.wantToken || ok != tt.wantOK {
				t.Errorf("GetValidToken() = (%q, %v), want (%q, %v)", token, ok, tt.wantToken, tt.wantOK)
			}
			if got := atomic.LoadInt32(&tt.adapter.refreshes); got != tt.wantRefreshes {
				t.Errorf("adapter refreshed %d times, want %d", got, tt.wantRefreshes)
			}
		})
	}
}

func TestRefreshCredential_UnknownPlatform(t *testing.T) {
	m := New(memory.NewStore(), nil, 0)

	token, ok := m.RefreshCredential(context.Background(), "user-1", credentials.PlatformKwai)
	if token != "" || ok {
		t.Errorf("RefreshCredential() = (%q, %v), want empty failure", token, ok)
	}
}

func TestRefreshCredential_NotConnected(t *testing.T) {
	adapter := &fakeAdapter{platform: credentials.PlatformTikTok}
	m := New(memory.NewStore(), []platforms.Adapter{adapter}, 0)

	token, ok := m.RefreshCredential(context.Background(), "user-1", credentials.PlatformTikTok)
	if token != "" || ok {
		t.Errorf("RefreshCredential() = (%q, %v), want empty failure", token, ok)
	}
	if adapter.refreshes != 0 {
		t.Errorf("adapter was called %d times for an unconnected platform", adapter.refreshes)
	}
}

func TestRefreshCredential_RotatedRefreshTokenPersisted(t *testing.T) {
	st := memory.NewStore()
	seed(t, st, &credentials.Credential{
		UserID:       "user-1",
		Platform:     credentials.PlatformTikTok,
		AccessToken:  "old-access",
		RefreshToken: "old-refresh",
		ExpiresAt:    ptrTime(time.Now().Add(time.Hour)),
	})

	adapter := &fakeAdapter{
		platform: credentials.PlatformTikTok,
		token: &platforms.Token{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
			ExpiresAt:    time.Now().Add(2 * time.Hour),
		},
	}
	m := New(st, []platforms.Adapter{adapter}, 0)

	token, ok := m.RefreshCredential(context.Background(), "user-1", credentials.PlatformTikTok)
	if !ok || token != "new-access" {
		t.Fatalf("RefreshCredential() = (%q, %v), want (new-access, true)", token, ok)
	}

	cred, err := st.Get(context.Background(), "user-1", credentials.PlatformTikTok)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if cred.AccessToken != "new-access" {
		t.Errorf("stored access token = %q, want new-access", cred.AccessToken)
	}
	if cred.RefreshToken != "new-refresh" {
		t.Errorf("stored refresh token = %q, want the rotated one", cred.RefreshToken)
	}
}

func TestRefreshCredential_KeepsRefreshTokenWhenNotRotated(t *testing.T) {
	st := memory.NewStore()
	seed(t, st, &credentials.Credential{
		UserID:       "user-1",
		Platform:     credentials.PlatformGoogleAds,
		AccessToken:  "old-access",
		RefreshToken: "long-lived-refresh",
		ExpiresAt:    ptrTime(time.Now().Add(time.Minute)),
	})

	adapter := &fakeAdapter{
		platform: credentials.PlatformGoogleAds,
		token: &platforms.Token{
			AccessToken: "new-access",
			ExpiresAt:   time.Now().Add(time.Hour),
		},
	}
	m := New(st, []platforms.Adapter{adapter}, 0)

	if _, ok := m.RefreshCredential(context.Background(), "user-1", credentials.PlatformGoogleAds); !ok {
		t.Fatal("RefreshCredential() failed")
	}

	cred, _ := st.Get(context.Background(), "user-1", credentials.PlatformGoogleAds)
	if cred.RefreshToken != "long-lived-refresh" {
		t.Errorf("stored refresh token = %q, want the original kept", cred.RefreshToken)
	}
}

func TestRefreshCredential_PersistenceFailure(t *testing.T) {
	backing := memory.NewStore()
	seed(t, backing, &credentials.Credential{
		UserID:       "user-1",
		Platform:     credentials.PlatformFacebook,
		AccessToken:  "old-access",
		RefreshToken: "refresh",
		ExpiresAt:    ptrTime(time.Now().Add(time.Hour)),
	})
	st := &failingStore{Store: backing, upsertErr: fmt.Errorf("disk full")}

	adapter := &fakeAdapter{
		platform: credentials.PlatformFacebook,
		token: &platforms.Token{
			AccessToken: "new-access",
			ExpiresAt:   time.Now().Add(time.Hour),
		},
	}
	m := New(st, []platforms.Adapter{adapter}, 0)

	token, ok := m.RefreshCredential(context.Background(), "user-1", credentials.PlatformFacebook)
	if token != "" || ok {
		t.Errorf("RefreshCredential() = (%q, %v), want failure when persistence fails", token, ok)
	}
}

func TestRefreshCredential_ConcurrentCallersShareOneRefresh(t *testing.T) {
	st := memory.NewStore()
	seed(t, st, &credentials.Credential{
		UserID:       "user-1",
		Platform:     credentials.PlatformFacebook,
		AccessToken:  "old-access",
		RefreshToken: "refresh",
		ExpiresAt:    ptrTime(time.Now().Add(time.Hour)),
	})

	adapter := &fakeAdapter{
		platform: credentials.PlatformFacebook,
		delay:    50 * time.Millisecond,
		token: &platforms.Token{
			AccessToken: "new-access",
			ExpiresAt:   time.Now().Add(time.Hour),
		},
	}
	m := New(st, []platforms.Adapter{adapter}, 0)

	const callers = 10
	var wg sync.WaitGroup
	results := make([]string, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token, ok := m.RefreshCredential(context.Background(), "user-1", credentials.PlatformFacebook)
			if !ok {
				t.Errorf("caller %d: refresh failed", i)
			}
			results[i] = token
		}(i)
	}
	wg.Wait()

	if got := atomic.LoadInt32(&adapter.refreshes); got != 1 {
		t.Errorf("provider was called %d times, want 1", got)
	}
	for i, token := range results {
		if token != "new-access" {
			t.Errorf("caller %d got %q, want new-access", i, token)
		}
	}
}

func TestValidateToken(t *testing.T) {
	adapter := &fakeAdapter{platform: credentials.PlatformFacebook, valid: true}
	m := New(memory.NewStore(), []platforms.Adapter{adapter}, 0)

	if !m.ValidateToken(context.Background(), credentials.PlatformFacebook, "token") {
		t.Error("ValidateToken() = false for a wired platform reporting valid")
	}
	if m.ValidateToken(context.Background(), credentials.PlatformKwai, "token") {
		t.Error("ValidateToken() = true for an unwired platform")
	}
}

func TestSaveConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("new credential with expires_in", func(t *testing.T) {
		st := memory.NewStore()
		m := New(st, nil, 0)

		err := m.SaveConfig(ctx, "user-1", credentials.PlatformFacebook, &credentials.SaveInput{
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresIn:    3600,
			Scopes:       []string{"ads_read"},
		})
		if err != nil {
			t.Fatalf("SaveConfig() error: %v", err)
		}

		cred, _ := st.Get(ctx, "user-1", credentials.PlatformFacebook)
		if cred == nil {
			t.Fatal("credential was not stored")
		}
		if cred.ExpiresAt == nil {
			t.Fatal("expires_in was not converted to an absolute expiry")
		}
		want := time.Now().Add(3600 * time.Second)
		if d := cred.ExpiresAt.Sub(want); d > 5*time.Second || d < -5*time.Second {
			t.Errorf("stored expiry %v not near %v", cred.ExpiresAt, want)
		}
	})

	t.Run("absent refresh token keeps stored one", func(t *testing.T) {
		st := memory.NewStore()
		m := New(st, nil, 0)

		seed(t, st, &credentials.Credential{
			UserID:       "user-1",
			Platform:     credentials.PlatformGoogleAds,
			AccessToken:  "old-access",
			RefreshToken: "original-refresh",
		})

		err := m.SaveConfig(ctx, "user-1", credentials.PlatformGoogleAds, &credentials.SaveInput{
			AccessToken: "new-access",
		})
		if err != nil {
			t.Fatalf("SaveConfig() error: %v", err)
		}

		cred, _ := st.Get(ctx, "user-1", credentials.PlatformGoogleAds)
		if cred.AccessToken != "new-access" {
			t.Errorf("access token = %q, want new-access", cred.AccessToken)
		}
		if cred.RefreshToken != "original-refresh" {
			t.Errorf("refresh token = %q, want the stored one kept", cred.RefreshToken)
		}
	})

	t.Run("adapterless platform may be stored", func(t *testing.T) {
		st := memory.NewStore()
		m := New(st, nil, 0)

		err := m.SaveConfig(ctx, "user-1", credentials.PlatformLinkedIn, &credentials.SaveInput{
			AccessToken: "access",
		})
		if err != nil {
			t.Fatalf("SaveConfig() error: %v", err)
		}
	})

	t.Run("unknown platform rejected", func(t *testing.T) {
		m := New(memory.NewStore(), nil, 0)

		err := m.SaveConfig(ctx, "user-1", credentials.Platform("myspace"), &credentials.SaveInput{
			AccessToken: "access",
		})
		if err == nil {
			t.Fatal("SaveConfig() accepted an unknown platform")
		}
	})

	t.Run("missing access token rejected", func(t *testing.T) {
		m := New(memory.NewStore(), nil, 0)

		err := m.SaveConfig(ctx, "user-1", credentials.PlatformFacebook, &credentials.SaveInput{})
		if err == nil {
			t.Fatal("SaveConfig() accepted an empty access token")
		}
	})
}

func TestRemoveConfig_Idempotent(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	m := New(st, nil, 0)

	seed(t, st, &credentials.Credential{
		UserID:      "user-1",
		Platform:    credentials.PlatformFacebook,
		AccessToken: "access",
	})

	if err := m.RemoveConfig(ctx, "user-1", credentials.PlatformFacebook); err != nil {
		t.Fatalf("RemoveConfig() error: %v", err)
	}
	if err := m.RemoveConfig(ctx, "user-1", credentials.PlatformFacebook); err != nil {
		t.Fatalf("RemoveConfig() second call error: %v", err)
	}

	cred, _ := st.Get(ctx, "user-1", credentials.PlatformFacebook)
	if cred != nil {
		t.Error("credential still present after RemoveConfig")
	}
}

func TestGetConfigInfo(t *testing.T) {
	ctx := context.Background()

	t.Run("not connected", func(t *testing.T) {
		m := New(memory.NewStore(), nil, 0)

		info, err := m.GetConfigInfo(ctx, "user-1", credentials.PlatformFacebook)
		if err != nil {
			t.Fatalf("GetConfigInfo() error: %v", err)
		}
		if info != nil {
			t.Errorf("GetConfigInfo() = %+v, want nil for an unconnected platform", info)
		}
	})

	t.Run("connected snapshot", func(t *testing.T) {
		st := memory.NewStore()
		seed(t, st, &credentials.Credential{
			UserID:         "user-1",
			Platform:       credentials.PlatformFacebook,
			AccessToken:    "access",
			PlatformUserID: "fb-123",
			Scopes:         []string{"ads_read"},
			ExpiresAt:      ptrTime(time.Now().Add(72 * time.Hour)),
		})

		adapter := &fakeAdapter{platform: credentials.PlatformFacebook, valid: true}
		m := New(st, []platforms.Adapter{adapter}, 0)

		info, err := m.GetConfigInfo(ctx, "user-1", credentials.PlatformFacebook)
		if err != nil {
			t.Fatalf("GetConfigInfo() error: %v", err)
		}
		if info == nil {
			t.Fatal("GetConfigInfo() = nil for a connected platform")
		}
		if !info.IsValid {
			t.Error("IsValid = false, want live validation result")
		}
		if info.PlatformUserID != "fb-123" {
			t.Errorf("PlatformUserID = %q, want fb-123", info.PlatformUserID)
		}
		if info.DaysUntilExpiry == nil || *info.DaysUntilExpiry != 3 {
			t.Errorf("DaysUntilExpiry = %v, want 3", info.DaysUntilExpiry)
		}
	})
}

func TestExpiringCredentials(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	m := New(st, nil, DefaultRefreshHorizon)

	seed(t, st, &credentials.Credential{
		UserID:      "user-1",
		Platform:    credentials.PlatformFacebook,
		AccessToken: "soon",
		ExpiresAt:   ptrTime(time.Now().Add(24 * time.Hour)),
	})
	seed(t, st, &credentials.Credential{
		UserID:      "user-1",
		Platform:    credentials.PlatformTikTok,
		AccessToken: "later",
		ExpiresAt:   ptrTime(time.Now().Add(30 * 24 * time.Hour)),
	})
	seed(t, st, &credentials.Credential{
		UserID:      "user-2",
		Platform:    credentials.PlatformKwai,
		AccessToken: "unknown-lifetime",
	})

	expiring, err := m.ExpiringCredentials(ctx)
	if err != nil {
		t.Fatalf("ExpiringCredentials() error: %v", err)
	}
	if len(expiring) != 1 {
		t.Fatalf("got %d expiring credentials, want 1", len(expiring))
	}
	if expiring[0].Platform != credentials.PlatformFacebook {
		t.Errorf("expiring platform = %s, want facebook", expiring[0].Platform)
	}
}
