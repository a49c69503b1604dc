// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

// Package config loads and validates Filmopine configuration from layered
// sources: built-in defaults, an optional YAML file, and environment
// variables (highest priority).
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config is the root configuration for the Filmopine server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	OMDb     OMDbConfig     `koanf:"omdb"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // "development" or "production"
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file. ":memory:" gives an in-memory
	// database, used by tests.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = use runtime.NumCPU()
}

// OMDbConfig holds settings for the upstream OMDb catalog API.
//
// Environment Variables:
//   - OMDB_API_KEY: API key (required for catalog search)
//   - OMDB_BASE_URL: Override the API endpoint (default: https://www.omdbapi.com/)
//   - OMDB_TIMEOUT: Per-request timeout (default: 10s)
//   - OMDB_RETRY_ATTEMPTS: Retry count for transient failures (default: 3)
type OMDbConfig struct {
	APIKey        string        `koanf:"api_key"`
	BaseURL       string        `koanf:"base_url"`
	Timeout       time.Duration `koanf:"timeout"`
	RetryAttempts int           `koanf:"retry_attempts"`
	RetryDelay    time.Duration `koanf:"retry_delay"`
}

// APIConfig holds pagination settings for list endpoints.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
	// ReviewPageSize caps review listings independently of other resources.
	ReviewPageSize int `koanf:"review_page_size"`
}

// SecurityConfig holds authentication settings.
type SecurityConfig struct {
	// JWTSecret signs access tokens. Required in production.
	JWTSecret string `koanf:"jwt_secret"`
	// TokenTTL is the access token lifetime.
	TokenTTL time.Duration `koanf:"token_ttl"`
	// BcryptCost is the bcrypt work factor for password hashing.
	BcryptCost int `koanf:"bcrypt_cost"`
	// CORSOrigins lists allowed CORS origins. Empty means same-origin only.
	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values applied.
// Defaults load first, then the config file, then environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8000,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:      "/data/filmopine.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		OMDb: OMDbConfig{
			APIKey:        "",
			BaseURL:       "https://www.omdbapi.com/",
			Timeout:       10 * time.Second,
			RetryAttempts: 3,
			RetryDelay:    500 * time.Millisecond,
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
			ReviewPageSize:  10,
		},
		Security: SecurityConfig{
			JWTSecret:   "",
			TokenTTL:    24 * time.Hour,
			BcryptCost:  12,
			CORSOrigins: nil,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for invalid or inconsistent values.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateOMDb(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("server.environment must be development, staging, or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateOMDb() error {
	if c.OMDb.BaseURL == "" {
		return fmt.Errorf("omdb.base_url must not be empty")
	}
	if _, err := url.Parse(c.OMDb.BaseURL); err != nil {
		return fmt.Errorf("omdb.base_url is not a valid URL: %w", err)
	}
	if c.OMDb.Timeout <= 0 {
		return fmt.Errorf("omdb.timeout must be positive, got %s", c.OMDb.Timeout)
	}
	if c.OMDb.RetryAttempts < 0 {
		return fmt.Errorf("omdb.retry_attempts must not be negative, got %d", c.OMDb.RetryAttempts)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("api.default_page_size must be at least 1, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api.max_page_size (%d) must not be less than api.default_page_size (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	if c.API.ReviewPageSize < 1 {
		return fmt.Errorf("api.review_page_size must be at least 1, got %d", c.API.ReviewPageSize)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Server.Environment == "production" && c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret is required in production")
	}
	if c.Security.JWTSecret != "" && len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("security.jwt_secret must be at least 32 characters, got %d", len(c.Security.JWTSecret))
	}
	if c.Security.TokenTTL <= 0 {
		return fmt.Errorf("security.token_ttl must be positive, got %s", c.Security.TokenTTL)
	}
	if c.Security.BcryptCost < 10 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("security.bcrypt_cost must be between 10 and 31, got %d", c.Security.BcryptCost)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("logging.level must be a valid level, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// Addr returns the host:port address for the HTTP listener.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
