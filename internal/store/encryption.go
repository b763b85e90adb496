package store

import (
	"fmt"

	"token-vault/internal/crypto"
)

// TokenCipher handles optional encryption of tokens at rest. With no
// encryption key configured it passes values through unchanged, which keeps
// development setups simple.
type TokenCipher struct {
	encryptor *crypto.TokenEncryptor
}

// NewTokenCipher creates a token cipher. An empty key disables encryption.
func NewTokenCipher(encryptionKey string) (*TokenCipher, error) {
	if encryptionKey == "" {
		return &TokenCipher{}, nil
	}

	encryptor, err := crypto.NewTokenEncryptor(encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create encryptor: %w", err)
	}

	return &TokenCipher{encryptor: encryptor}, nil
}

// Enabled reports whether tokens are actually encrypted.
func (tc *TokenCipher) Enabled() bool {
	return tc != nil && tc.encryptor != nil
}

// EncryptToken encrypts a token value for storage.
func (tc *TokenCipher) EncryptToken(token string) (string, error) {
	if !tc.Enabled() {
		return token, nil
	}
	return tc.encryptor.Encrypt(token)
}

// DecryptToken decrypts a stored token value.
func (tc *TokenCipher) DecryptToken(stored string) (string, error) {
	if !tc.Enabled() {
		return stored, nil
	}
	return tc.encryptor.Decrypt(stored)
}
