package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		APIBaseURL:     "http://localhost:8000",
		HTTPTimeout:    15 * time.Second,
		MaxRetries:     2,
		InitialBackoff: 200 * time.Millisecond,
		MirrorBackend:  "memory",
		MirrorDBPath:   "./data/happymoney.db",
		CacheTTL:       30 * time.Second,
		CacheSize:      128,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid memory backend config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:        "empty API base URL",
			mutate:      func(c *Config) { c.APIBaseURL = "" },
			wantErr:     true,
			errorString: "API base URL cannot be empty",
		},
		{
			name:        "bad API URL scheme",
			mutate:      func(c *Config) { c.APIBaseURL = "ftp://example.com" },
			wantErr:     true,
			errorString: "invalid API base URL scheme 'ftp'",
		},
		{
			name:        "unknown mirror backend",
			mutate:      func(c *Config) { c.MirrorBackend = "redis" },
			wantErr:     true,
			errorString: "invalid mirror backend 'redis'",
		},
		{
			name: "sqlite backend requires a path",
			mutate: func(c *Config) {
				c.MirrorBackend = "sqlite"
				c.MirrorDBPath = ""
			},
			wantErr:     true,
			errorString: "mirror database path cannot be empty",
		},
		{
			name:        "timeout too small",
			mutate:      func(c *Config) { c.HTTPTimeout = 100 * time.Millisecond },
			wantErr:     true,
			errorString: "must be at least 1 second",
		},
		{
			name:        "negative retries",
			mutate:      func(c *Config) { c.MaxRetries = -1 },
			wantErr:     true,
			errorString: "cannot be negative",
		},
		{
			name:        "zero cache size",
			mutate:      func(c *Config) { c.CacheSize = 0 },
			wantErr:     true,
			errorString: "invalid cache size 0",
		},
		{
			name: "multiple errors are combined",
			mutate: func(c *Config) {
				c.APIBaseURL = ""
				c.MirrorBackend = "redis"
			},
			wantErr:     true,
			errorString: "API base URL cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.APIBaseURL != "http://localhost:8000" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.MirrorBackend != "sqlite" {
		t.Errorf("MirrorBackend = %q", cfg.MirrorBackend)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d", cfg.MaxRetries)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HAPPYMONEY_API_URL", "https://api.example.com")
	t.Setenv("HAPPYMONEY_HTTP_TIMEOUT", "30s")
	t.Setenv("HAPPYMONEY_MAX_RETRIES", "5")
	t.Setenv("MIRROR_BACKEND", "memory")

	cfg := Load()

	if cfg.APIBaseURL != "https://api.example.com" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d", cfg.MaxRetries)
	}
	if cfg.MirrorBackend != "memory" {
		t.Errorf("MirrorBackend = %q", cfg.MirrorBackend)
	}
}

func TestLoad_MalformedEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("HAPPYMONEY_MAX_RETRIES", "many")
	t.Setenv("HAPPYMONEY_HTTP_TIMEOUT", "soon")

	cfg := Load()

	if cfg.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d, want default 2", cfg.MaxRetries)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("HTTPTimeout = %v, want default 15s", cfg.HTTPTimeout)
	}
}
