// Package config provides configuration management for the token vault
// service. It loads configuration from environment variables with sensible
// defaults and validates it so the service fails fast on bad settings.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 8080)
//   - LOG_LEVEL: Logging level (default: info)
//
// Database Configuration:
//   - DATABASE_TYPE: Database type - "sqlite" or "postgres" (default: sqlite)
//   - DATABASE_PATH: SQLite database file path (default: ./token_vault.db)
//   - POSTGRES_HOST: PostgreSQL host (required if using PostgreSQL)
//   - POSTGRES_PORT: PostgreSQL port (default: 5432)
//   - POSTGRES_DB: PostgreSQL database name (required if using PostgreSQL)
//   - POSTGRES_USER: PostgreSQL username (required if using PostgreSQL)
//   - POSTGRES_PASSWORD: PostgreSQL password
//   - POSTGRES_SSL_MODE: PostgreSQL SSL mode (default: disable)
//
// Redis Configuration (optional, enables the distributed sweep lock):
//   - REDIS_ADDRESS: Redis server address (empty disables Redis)
//   - REDIS_PASSWORD: Redis password
//   - REDIS_DB: Redis database number 0-15 (default: 0)
//   - REDIS_POOL_SIZE: Redis connection pool size (default: 10)
//
// Security Configuration:
//   - JWT_SECRET: JWT signing secret (required, minimum 32 characters)
//   - TOKEN_ENCRYPTION_KEY: Key for encrypting tokens at rest (optional)
//
// Token Lifecycle:
//   - REFRESH_HORIZON: Proactive refresh window (default: 168h, i.e. 7 days)
//   - PROVIDER_TIMEOUT: Per-call timeout for provider requests (default: 30s)
//   - SWEEP_SCHEDULE: Cron schedule for the refresh sweep (default: */15 * * * *)
//   - SWEEP_ENABLED: Whether the background sweep runs (default: true)
//
// Platform Credentials:
//   - FACEBOOK_CLIENT_ID / FACEBOOK_CLIENT_SECRET
//   - GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET (shared by the Google platforms)
//   - TIKTOK_APP_ID / TIKTOK_APP_SECRET
//   - KWAI_CLIENT_ID / KWAI_CLIENT_SECRET
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// PlatformCredentials holds the OAuth client credentials for one provider.
type PlatformCredentials struct {
	ClientID     string
	ClientSecret string
}

// Configured reports whether both halves of the credential pair are set.
func (pc PlatformCredentials) Configured() bool {
	return pc.ClientID != "" && pc.ClientSecret != ""
}

// Config holds all configuration values for the token vault service.
// All fields correspond to environment variables. Load configuration with
// Load() and call Validate() before use.
type Config struct {
	// Application settings
	Port     string // Server port number
	LogLevel string // Logging level (debug, info, warn, error)

	// Database configuration
	DatabaseType     string // Database type: "sqlite" or "postgres"
	DatabasePath     string // Path to SQLite database file
	PostgresHost     string // PostgreSQL host address
	PostgresPort     string // PostgreSQL port number
	PostgresDB       string // PostgreSQL database name
	PostgresUser     string // PostgreSQL username
	PostgresPassword string // PostgreSQL password
	PostgresSSLMode  string // PostgreSQL SSL mode (disable, require, etc.)

	// Redis configuration; empty RedisAddress disables Redis
	RedisAddress  string // Redis server address (host:port)
	RedisPassword string // Redis authentication password
	RedisDB       string // Redis database number (0-15)
	RedisPoolSize string // Redis connection pool size

	// Security configuration
	JWTSecret     string // Secret key for JWT token signing (required)
	EncryptionKey string // Key for encrypting tokens at rest

	// Token lifecycle configuration
	RefreshHorizon  string // Proactive refresh window (duration string)
	ProviderTimeout string // Per-call provider request timeout
	SweepSchedule   string // Cron schedule for the refresh sweep
	SweepEnabled    bool   // Whether the background sweep runs

	// Platform OAuth client credentials
	Facebook PlatformCredentials
	Google   PlatformCredentials
	TikTok   PlatformCredentials
	Kwai     PlatformCredentials
}

// Load creates a new Config with values loaded from environment variables.
// It does not validate; call Validate() on the result.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseType:     getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:     getEnv("DATABASE_PATH", "./token_vault.db"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresDB:       getEnv("POSTGRES_DB", "token_vault"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresSSLMode:  getEnv("POSTGRES_SSL_MODE", "disable"),

		RedisAddress:  getEnv("REDIS_ADDRESS", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),
		RedisPoolSize: getEnv("REDIS_POOL_SIZE", "10"),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		EncryptionKey: getEnv("TOKEN_ENCRYPTION_KEY", ""),

		RefreshHorizon:  getEnv("REFRESH_HORIZON", "168h"),
		ProviderTimeout: getEnv("PROVIDER_TIMEOUT", "30s"),
		SweepSchedule:   getEnv("SWEEP_SCHEDULE", "*/15 * * * *"),
		SweepEnabled:    getBoolEnv("SWEEP_ENABLED", true),

		Facebook: PlatformCredentials{
			ClientID:     getEnv("FACEBOOK_CLIENT_ID", ""),
			ClientSecret: getEnv("FACEBOOK_CLIENT_SECRET", ""),
		},
		Google: PlatformCredentials{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		},
		TikTok: PlatformCredentials{
			ClientID:     getEnv("TIKTOK_APP_ID", ""),
			ClientSecret: getEnv("TIKTOK_APP_SECRET", ""),
		},
		Kwai: PlatformCredentials{
			ClientID:     getEnv("KWAI_CLIENT_ID", ""),
			ClientSecret: getEnv("KWAI_CLIENT_SECRET", ""),
		},
	}
}

// getEnv retrieves an environment variable value or returns a default value if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv retrieves a boolean environment variable value or returns a default value.
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// RefreshHorizonDuration returns the parsed refresh horizon. Call only after
// Validate has succeeded.
func (c *Config) RefreshHorizonDuration() time.Duration {
	d, _ := time.ParseDuration(c.RefreshHorizon)
	return d
}

// ProviderTimeoutDuration returns the parsed provider timeout. Call only
// after Validate has succeeded.
func (c *Config) ProviderTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ProviderTimeout)
	return d
}

// RedisEnabled reports whether a Redis address is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddress != ""
}

// Validate checks required fields, field formats, and cross-field
// dependencies so the service refuses to start on a bad configuration.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long for security")
	}

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a valid port number between 1 and 65535")
	}

	switch c.DatabaseType {
	case "sqlite", "postgres", "postgresql":
	default:
		return fmt.Errorf("DATABASE_TYPE must be 'sqlite' or 'postgres'")
	}

	if c.DatabaseType == "postgres" || c.DatabaseType == "postgresql" {
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required when using PostgreSQL")
		}
		if c.PostgresDB == "" {
			return fmt.Errorf("POSTGRES_DB is required when using PostgreSQL")
		}
		if c.PostgresUser == "" {
			return fmt.Errorf("POSTGRES_USER is required when using PostgreSQL")
		}
		if port, err := strconv.Atoi(c.PostgresPort); err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("POSTGRES_PORT must be a valid port number")
		}
	}

	if c.RedisAddress != "" {
		if db, err := strconv.Atoi(c.RedisDB); err != nil || db < 0 || db > 15 {
			return fmt.Errorf("REDIS_DB must be a number between 0 and 15")
		}
		if poolSize, err := strconv.Atoi(c.RedisPoolSize); err != nil || poolSize < 1 {
			return fmt.Errorf("REDIS_POOL_SIZE must be a positive number")
		}
	}

	if horizon, err := time.ParseDuration(c.RefreshHorizon); err != nil || horizon <= 0 {
		return fmt.Errorf("REFRESH_HORIZON must be a positive duration (e.g., '168h')")
	}

	if timeout, err := time.ParseDuration(c.ProviderTimeout); err != nil || timeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be a positive duration (e.g., '30s')")
	}

	if c.SweepEnabled && c.SweepSchedule == "" {
		return fmt.Errorf("SWEEP_SCHEDULE is required when the sweep is enabled")
	}

	return nil
}
