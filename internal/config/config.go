// Package config provides configuration management for taskflow.
// It loads settings from environment variables with the TASKFLOW_ prefix
// and provides sensible defaults for all configuration options.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration settings for the taskflow application.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Security SecurityConfig
	Seed     SeedConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port        int      // Server port (default: 8080)
	Host        string   // Server host (default: 127.0.0.1)
	CORSOrigins []string // Allowed CORS origins (default: http://localhost:5173)
	RateLimit   int      // Requests per second per server (default: 50)
	RateBurst   int      // Burst size for the rate limiter (default: 100)
}

// StorageConfig contains database and storage configuration.
type StorageConfig struct {
	StorageEngine string // Storage engine type: sqlite, postgres (default: sqlite)
	DataPath      string // Path to data directory (default: ./data)
	PostgresDSN   string // Postgres connection string, used when StorageEngine is postgres
}

// SecurityConfig contains security and authentication settings.
type SecurityConfig struct {
	SecurityMode string // Security mode: development, production (default: development)
	APIToken     string // API authentication token, required in production mode
}

// SeedConfig controls demo data seeding.
type SeedConfig struct {
	Enabled bool   // Apply seed data on startup (default: true)
	File    string // Optional YAML seed file; empty uses built-in defaults
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. All environment variables use the TASKFLOW_ prefix.
func LoadConfig() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port:        getEnvInt("TASKFLOW_PORT", 8080),
			Host:        getEnv("TASKFLOW_HOST", "127.0.0.1"),
			CORSOrigins: getEnvList("TASKFLOW_CORS_ORIGINS", []string{"http://localhost:5173"}),
			RateLimit:   getEnvInt("TASKFLOW_RATE_LIMIT", 50),
			RateBurst:   getEnvInt("TASKFLOW_RATE_BURST", 100),
		},
		Storage: StorageConfig{
			StorageEngine: getEnv("TASKFLOW_STORAGE_ENGINE", "sqlite"),
			DataPath:      getEnv("TASKFLOW_DATA_PATH", "./data"),
			PostgresDSN:   getEnv("TASKFLOW_POSTGRES_DSN", ""),
		},
		Security: SecurityConfig{
			SecurityMode: getEnv("TASKFLOW_SECURITY_MODE", "development"),
			APIToken:     getEnv("TASKFLOW_API_TOKEN", ""),
		},
		Seed: SeedConfig{
			Enabled: getEnvBool("TASKFLOW_SEED", true),
			File:    getEnv("TASKFLOW_SEED_FILE", ""),
		},
	}, nil
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
// If the environment variable exists but cannot be parsed as an integer,
// it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value.
// It recognizes "true", "1", "yes" as true and "false", "0", "no" as false (case-insensitive).
// If the environment variable exists but cannot be parsed as a boolean,
// it returns the default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch value {
		case "true", "1", "yes", "True", "TRUE", "Yes", "YES":
			return true
		case "false", "0", "no", "False", "FALSE", "No", "NO":
			return false
		}
	}
	return defaultValue
}

// getEnvList retrieves a comma-separated environment variable as a slice,
// trimming whitespace around each entry. Empty entries are dropped.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
