// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// S3-compatible object storage
	S3Endpoint        string
	S3Region          string
	S3AccessKey       string
	S3SecretKey       string
	S3ArtifactsBucket string
	S3PreviewsBucket  string
	S3PublicURL       string // optional CDN/direct URL for previews

	// Theme pipeline settings
	MaxThemeSizeMB int // accepted artifact size cap
	BrowsePageSize int // themes per public catalog page
	ShareBaseURL   string

	// Trusted caller tokens
	AdminToken   string
	BillingToken string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "themehub"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "themehub"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3Region:          envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey:       os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:       os.Getenv("S3_SECRET_KEY"),
		S3ArtifactsBucket: envOrDefault("S3_ARTIFACTS_BUCKET", "themehub-artifacts"),
		S3PreviewsBucket:  envOrDefault("S3_PREVIEWS_BUCKET", "themehub-previews"),
		S3PublicURL:       os.Getenv("S3_PUBLIC_URL"),

		MaxThemeSizeMB: envOrDefaultInt("MAX_THEME_SIZE_MB", 5),
		BrowsePageSize: envOrDefaultInt("BROWSE_PAGE_SIZE", 5),
		ShareBaseURL:   envOrDefault("SHARE_BASE_URL", "http://localhost:8080"),

		AdminToken:   os.Getenv("ADMIN_TOKEN"),
		BillingToken: os.Getenv("BILLING_TOKEN"),
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.AdminToken == "" {
			return nil, fmt.Errorf("ADMIN_TOKEN must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// MaxThemeSizeBytes returns the artifact size cap in bytes.
func (c *Config) MaxThemeSizeBytes() int64 {
	return int64(c.MaxThemeSizeMB) << 20
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envOrDefaultInt reads an integer environment variable, returning a
// fallback if unset, empty, or not a positive integer.
func envOrDefaultInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
