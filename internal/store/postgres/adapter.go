// Package postgres implements the credential store on PostgreSQL, the
// backend for multi-instance deployments.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"token-vault/internal/credentials"
	"token-vault/internal/store"
)

type Adapter struct {
	db     *sql.DB
	config *Config
	cipher *store.TokenCipher
}

func NewAdapter(config *Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid PostgreSQL config: %w", err)
	}

	db, err := sql.Open("pgx", config.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	adapter := &Adapter{
		db:     db,
		config: config,
		cipher: config.Cipher,
	}

	if err := adapter.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return adapter, nil
}

func (a *Adapter) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS user_platform_configs (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			platform TEXT NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL DEFAULT '',
			expires_at TIMESTAMPTZ,
			platform_user_id TEXT NOT NULL DEFAULT '',
			scopes JSONB NOT NULL DEFAULT '[]',
			metadata JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE(user_id, platform)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_user_platform_configs_expires_at
			ON user_platform_configs(expires_at)`,
	}

	for _, query := range queries {
		if _, err := a.db.Exec(query); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

const credentialColumns = `user_id, platform, access_token, refresh_token, expires_at,
	platform_user_id, scopes, metadata, created_at, updated_at`

func (a *Adapter) scanCredential(scanner interface {
	Scan(dest ...interface{}) error
}) (*credentials.Credential, error) {
	var cred credentials.Credential
	var platform string
	var expiresAt sql.NullTime
	var scopesJSON, metadataJSON []byte

	err := scanner.Scan(
		&cred.UserID, &platform, &cred.AccessToken, &cred.RefreshToken, &expiresAt,
		&cred.PlatformUserID, &scopesJSON, &metadataJSON, &cred.CreatedAt, &cred.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	cred.Platform = credentials.Platform(platform)
	if expiresAt.Valid {
		t := expiresAt.Time
		cred.ExpiresAt = &t
	}

	if len(scopesJSON) > 0 {
		if err := json.Unmarshal(scopesJSON, &cred.Scopes); err != nil {
			return nil, fmt.Errorf("failed to decode scopes: %w", err)
		}
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &cred.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata: %w", err)
		}
	}

	if cred.AccessToken, err = a.cipher.DecryptToken(cred.AccessToken); err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}
	if cred.RefreshToken, err = a.cipher.DecryptToken(cred.RefreshToken); err != nil {
		return nil, fmt.Errorf("failed to decrypt refresh token: %w", err)
	}

	return &cred, nil
}

func (a *Adapter) Get(ctx context.Context, userID string, platform credentials.Platform) (*credentials.Credential, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT `+credentialColumns+` FROM user_platform_configs WHERE user_id = $1 AND platform = $2`,
		userID, string(platform))

	cred, err := a.scanCredential(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return cred, nil
}

func (a *Adapter) Upsert(ctx context.Context, cred *credentials.Credential) error {
	accessToken, err := a.cipher.EncryptToken(cred.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	refreshToken, err := a.cipher.EncryptToken(cred.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	scopesJSON, err := json.Marshal(cred.Scopes)
	if err != nil {
		return fmt.Errorf("failed to encode scopes: %w", err)
	}
	metadataJSON, err := json.Marshal(cred.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	var expiresAt interface{}
	if cred.ExpiresAt != nil {
		expiresAt = cred.ExpiresAt.UTC()
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO user_platform_configs
			(user_id, platform, access_token, refresh_token, expires_at, platform_user_id, scopes, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, platform) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			platform_user_id = EXCLUDED.platform_user_id,
			scopes = EXCLUDED.scopes,
			metadata = EXCLUDED.metadata,
			updated_at = NOW()`,
		cred.UserID, string(cred.Platform), accessToken, refreshToken, expiresAt,
		cred.PlatformUserID, scopesJSON, metadataJSON)
	if err != nil {
		return fmt.Errorf("failed to upsert credential: %w", err)
	}
	return nil
}

func (a *Adapter) Delete(ctx context.Context, userID string, platform credentials.Platform) error {
	_, err := a.db.ExecContext(ctx,
		`DELETE FROM user_platform_configs WHERE user_id = $1 AND platform = $2`,
		userID, string(platform))
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

func (a *Adapter) ListForUser(ctx context.Context, userID string) ([]*credentials.Credential, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT `+credentialColumns+` FROM user_platform_configs WHERE user_id = $1 ORDER BY platform`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	defer rows.Close()

	return a.collectRows(rows)
}

func (a *Adapter) ListExpiring(ctx context.Context, before time.Time) ([]*credentials.Credential, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT `+credentialColumns+` FROM user_platform_configs
		WHERE expires_at IS NOT NULL AND expires_at <= $1
		ORDER BY expires_at`,
		before.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring credentials: %w", err)
	}
	defer rows.Close()

	return a.collectRows(rows)
}

func (a *Adapter) collectRows(rows *sql.Rows) ([]*credentials.Credential, error) {
	var result []*credentials.Credential
	for rows.Next() {
		cred, err := a.scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		result = append(result, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate credentials: %w", err)
	}
	return result, nil
}

func (a *Adapter) Health() error {
	return a.db.Ping()
}

func (a *Adapter) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
