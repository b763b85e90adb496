// Package testutil holds hand-written mocks shared by the HTTP and wiring
// tests. Each mock supports per-method error injection so failure paths can
// be driven without a real backend.
package testutil

import (
	"context"
	"sync"

	"token-vault/internal/credentials"
)

// MockTokenManager implements the handlers.TokenManager surface backed by
// maps, with injectable errors and call counters.
type MockTokenManager struct {
	mu sync.Mutex

	// Tokens, Infos, and Saved are keyed by userID|platform.
	Tokens  map[string]string
	Infos   map[string]*credentials.ConfigInfo
	Saved   map[string]*credentials.SaveInput
	Removed []string

	SaveErr   error
	RemoveErr error
	InfoErr   error
	ListErr   error

	GetValidTokenCalls int
}

func NewMockTokenManager() *MockTokenManager {
	return &MockTokenManager{
		Tokens: make(map[string]string),
		Infos:  make(map[string]*credentials.ConfigInfo),
		Saved:  make(map[string]*credentials.SaveInput),
	}
}

func key(userID string, platform credentials.Platform) string {
	return userID + "|" + string(platform)
}

func (m *MockTokenManager) GetValidToken(ctx context.Context, userID string, platform credentials.Platform) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetValidTokenCalls++

	token, ok := m.Tokens[key(userID, platform)]
	return token, ok
}

func (m *MockTokenManager) SaveConfig(ctx context.Context, userID string, platform credentials.Platform, input *credentials.SaveInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saved[key(userID, platform)] = input
	return nil
}

func (m *MockTokenManager) RemoveConfig(ctx context.Context, userID string, platform credentials.Platform) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	m.Removed = append(m.Removed, key(userID, platform))
	return nil
}

func (m *MockTokenManager) GetConfigInfo(ctx context.Context, userID string, platform credentials.Platform) (*credentials.ConfigInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.InfoErr != nil {
		return nil, m.InfoErr
	}
	return m.Infos[key(userID, platform)], nil
}

func (m *MockTokenManager) ListConfigInfo(ctx context.Context, userID string) ([]*credentials.ConfigInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}

	var infos []*credentials.ConfigInfo
	for k, info := range m.Infos {
		if len(k) > len(userID) && k[:len(userID)] == userID && k[len(userID)] == '|' {
			infos = append(infos, info)
		}
	}
	return infos, nil
}

// MockHealthChecker reports the injected error.
type MockHealthChecker struct {
	Err error
}

func (m *MockHealthChecker) Health() error {
	return m.Err
}
