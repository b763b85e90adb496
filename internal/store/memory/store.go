// Package memory provides an in-memory credential store used in tests and
// single-process development setups. Contents are lost on restart.
package memory

import (
	"context"
	"sync"
	"time"

	"token-vault/internal/credentials"
)

type Store struct {
	mu    sync.RWMutex
	creds map[string]*credentials.Credential
}

func NewStore() *Store {
	return &Store{
		creds: make(map[string]*credentials.Credential),
	}
}

func key(userID string, platform credentials.Platform) string {
	return userID + "|" + string(platform)
}

// clone copies a credential so callers never share the stored instance.
func clone(c *credentials.Credential) *credentials.Credential {
	cp := *c
	if c.Scopes != nil {
		cp.Scopes = append([]string(nil), c.Scopes...)
	}
	if c.Metadata != nil {
		cp.Metadata = make(map[string]string, len(c.Metadata))
		for k, v := range c.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

func (s *Store) Get(ctx context.Context, userID string, platform credentials.Platform) (*credentials.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.creds[key(userID, platform)]
	if !ok {
		return nil, nil
	}
	return clone(cred), nil
}

func (s *Store) Upsert(ctx context.Context, cred *credentials.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	stored := clone(cred)
	stored.UpdatedAt = now

	if existing, ok := s.creds[key(cred.UserID, cred.Platform)]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}

	s.creds[key(cred.UserID, cred.Platform)] = stored
	return nil
}

func (s *Store) Delete(ctx context.Context, userID string, platform credentials.Platform) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.creds, key(userID, platform))
	return nil
}

func (s *Store) ListForUser(ctx context.Context, userID string) ([]*credentials.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*credentials.Credential
	for _, cred := range s.creds {
		if cred.UserID == userID {
			result = append(result, clone(cred))
		}
	}
	return result, nil
}

func (s *Store) ListExpiring(ctx context.Context, before time.Time) ([]*credentials.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*credentials.Credential
	for _, cred := range s.creds {
		if cred.ExpiresAt != nil && !cred.ExpiresAt.After(before) {
			result = append(result, clone(cred))
		}
	}
	return result, nil
}

func (s *Store) Health() error {
	return nil
}

func (s *Store) Close() error {
	return nil
}
