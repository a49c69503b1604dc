// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
}

func TestValidateServer(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "invalid port zero",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "invalid port too large",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Server.Timeout = 0 },
			wantErr: "server.timeout",
		},
		{
			name:    "bad environment",
			mutate:  func(c *Config) { c.Server.Environment = "qa" },
			wantErr: "server.environment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSecurity(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Environment = "production"
	if err := cfg.Validate(); err == nil {
		t.Error("production without jwt_secret should fail validation")
	}

	cfg.Security.JWTSecret = "short"
	if err := cfg.Validate(); err == nil {
		t.Error("short jwt_secret should fail validation")
	}

	cfg.Security.JWTSecret = strings.Repeat("s", 32)
	if err := cfg.Validate(); err != nil {
		t.Errorf("32-char jwt_secret should pass, got: %v", err)
	}

	cfg.Security.BcryptCost = 5
	if err := cfg.Validate(); err == nil {
		t.Error("bcrypt cost below 10 should fail validation")
	}
}

func TestValidateAPI(t *testing.T) {
	cfg := defaultConfig()
	cfg.API.MaxPageSize = cfg.API.DefaultPageSize - 1
	if err := cfg.Validate(); err == nil {
		t.Error("max_page_size below default_page_size should fail validation")
	}

	cfg = defaultConfig()
	cfg.API.ReviewPageSize = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero review_page_size should fail validation")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"OMDB_API_KEY", "omdb.api_key"},
		{"OMDB_BASE_URL", "omdb.base_url"},
		{"HTTP_PORT", "server.port"},
		{"DUCKDB_PATH", "database.path"},
		{"JWT_SECRET", "security.jwt_secret"},
		{"LOG_LEVEL", "logging.level"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"PATH", ""},
		{"RANDOM_UNRELATED_VAR", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9001")
	t.Setenv("OMDB_API_KEY", "test-key")
	t.Setenv("OMDB_TIMEOUT", "5s")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, http://localhost:5173")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9001 {
		t.Errorf("Server.Port = %d, want 9001", cfg.Server.Port)
	}
	if cfg.OMDb.APIKey != "test-key" {
		t.Errorf("OMDb.APIKey = %q, want test-key", cfg.OMDb.APIKey)
	}
	if cfg.OMDb.Timeout != 5*time.Second {
		t.Errorf("OMDb.Timeout = %s, want 5s", cfg.OMDb.Timeout)
	}
	if len(cfg.Security.CORSOrigins) != 2 {
		t.Fatalf("CORSOrigins = %v, want 2 entries", cfg.Security.CORSOrigins)
	}
	if cfg.Security.CORSOrigins[1] != "http://localhost:5173" {
		t.Errorf("CORSOrigins[1] = %q", cfg.Security.CORSOrigins[1])
	}
}

func TestAddr(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 8000
	if got := cfg.Addr(); got != "127.0.0.1:8000" {
		t.Errorf("Addr() = %q, want 127.0.0.1:8000", got)
	}
}
