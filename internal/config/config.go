package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Remote API
	APIBaseURL     string
	HTTPTimeout    time.Duration
	MaxRetries     int
	InitialBackoff time.Duration

	// Identity
	UserID string

	// Conversation mirror
	MirrorBackend string
	MirrorDBPath  string

	// Transaction cache
	CacheTTL  time.Duration
	CacheSize int
}

func Load() *Config {
	cfg := &Config{
		APIBaseURL:     getEnv("HAPPYMONEY_API_URL", "http://localhost:8000"),
		HTTPTimeout:    getEnvDuration("HAPPYMONEY_HTTP_TIMEOUT", 15*time.Second),
		MaxRetries:     getEnvInt("HAPPYMONEY_MAX_RETRIES", 2),
		InitialBackoff: getEnvDuration("HAPPYMONEY_INITIAL_BACKOFF", 200*time.Millisecond),

		UserID: getEnv("HAPPYMONEY_USER_ID", ""),

		MirrorBackend: getEnv("MIRROR_BACKEND", "sqlite"),
		MirrorDBPath:  getEnv("MIRROR_DB_PATH", "./data/happymoney.db"),

		CacheTTL:  getEnvDuration("HAPPYMONEY_CACHE_TTL", 30*time.Second),
		CacheSize: getEnvInt("HAPPYMONEY_CACHE_SIZE", 128),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate API base URL
	if c.APIBaseURL == "" {
		errors = append(errors, "API base URL cannot be empty")
	} else if parsedURL, err := url.Parse(c.APIBaseURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid API base URL '%s': %v", c.APIBaseURL, err))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid API base URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	}

	// Validate mirror backend
	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.MirrorBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid mirror backend '%s': must be one of %v", c.MirrorBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.MirrorBackend == "sqlite" {
		if c.MirrorDBPath == "" {
			errors = append(errors, "mirror database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.MirrorDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create mirror database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate HTTP client settings
	if c.HTTPTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid HTTP timeout %v: must be at least 1 second", c.HTTPTimeout))
	} else if c.HTTPTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid HTTP timeout %v: must be at most 5 minutes", c.HTTPTimeout))
	}

	if c.MaxRetries < 0 {
		errors = append(errors, fmt.Sprintf("invalid max retries %d: cannot be negative", c.MaxRetries))
	} else if c.MaxRetries > 10 {
		errors = append(errors, fmt.Sprintf("invalid max retries %d: must be at most 10", c.MaxRetries))
	}

	if c.InitialBackoff < time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid initial backoff %v: must be at least 1ms", c.InitialBackoff))
	}

	// Validate cache settings
	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
