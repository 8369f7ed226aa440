package config

import (
	"testing"

	env "github.com/caarlos0/env/v11"
)

func TestDefaultsParse(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse defaults: %v", err)
	}
	cfg.Sanitize()

	if cfg.Auth.Mode != AuthModeHosted {
		t.Errorf("default auth mode = %q, want %q", cfg.Auth.Mode, AuthModeHosted)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("default http addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Postgres.Port != 5432 {
		t.Errorf("default db port = %d", cfg.Postgres.Port)
	}
	if cfg.Auth.SSO.Enabled {
		t.Error("SSO should be disabled by default")
	}
	if cfg.Quiz.Model != "gpt-4o-mini" {
		t.Errorf("default quiz model = %q", cfg.Quiz.Model)
	}
}

func TestAuthModeUnmarshal(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    AuthMode
		expectError bool
	}{
		{name: "hosted", input: "hosted", expected: AuthModeHosted},
		{name: "local", input: "local", expected: AuthModeLocal},
		{name: "uppercase", input: "LOCAL", expected: AuthModeLocal},
		{name: "invalid", input: "oauth2", expectError: true},
		{name: "empty", input: "", expectError: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m AuthMode
			err := m.UnmarshalText([]byte(tt.input))
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m != tt.expected {
				t.Errorf("mode = %q, want %q", m, tt.expected)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AUTH_MODE", "local")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("SSO_ENABLED", "true")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example;https://b.example")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Auth.Mode != AuthModeLocal {
		t.Errorf("auth mode = %q", cfg.Auth.Mode)
	}
	if cfg.Postgres.Host != "db.internal" {
		t.Errorf("db host = %q", cfg.Postgres.Host)
	}
	if !cfg.Auth.SSO.Enabled {
		t.Error("SSO should be enabled")
	}
	if len(cfg.HTTP.AllowedOrigins) != 2 {
		t.Errorf("allowed origins = %v", cfg.HTTP.AllowedOrigins)
	}
}

func TestHTTPSanitizeClampsGrace(t *testing.T) {
	h := HTTPConfig{ShutdownGraceSeconds: 0}
	h.Sanitize()
	if h.ShutdownGraceSeconds != 1 {
		t.Errorf("grace = %d, want 1", h.ShutdownGraceSeconds)
	}
	h = HTTPConfig{ShutdownGraceSeconds: 600}
	h.Sanitize()
	if h.ShutdownGraceSeconds != 120 {
		t.Errorf("grace = %d, want 120", h.ShutdownGraceSeconds)
	}
}

func TestDetectDevModeFromNodeEnv(t *testing.T) {
	t.Setenv("NODE_ENV", "development")
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg.Sanitize()
	if !cfg.IsDev {
		t.Error("NODE_ENV=development should enable dev mode")
	}
}
