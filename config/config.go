// Package config loads runtime settings for cmd/server from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Payroll   PayrollConfig
	CORS      CORSConfig
	EnvLoaded bool
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

type DatabaseConfig struct {
	Path string
}

// PayrollConfig controls the calculation endpoints.
type PayrollConfig struct {
	// ProvisionsFile is a YAML document replacing the embedded defaults.
	ProvisionsFile   string
	BatchConcurrency int
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	cfg := &Config{EnvLoaded: godotenv.Load() == nil}

	port, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	concurrency, err := strconv.Atoi(getEnv("BATCH_CONCURRENCY", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid BATCH_CONCURRENCY: %w", err)
	}
	if concurrency < 1 {
		return nil, fmt.Errorf("invalid BATCH_CONCURRENCY: must be at least 1, got %d", concurrency)
	}

	cfg.App = AppConfig{
		Port:     port,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
	cfg.Database = DatabaseConfig{
		Path: getEnv("DB_PATH", "./payroll.db"),
	}
	cfg.Payroll = PayrollConfig{
		ProvisionsFile:   getEnv("PROVISIONS_FILE", ""),
		BatchConcurrency: concurrency,
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	return cfg, nil
}

// SlogLevel maps LOG_LEVEL to a slog level; unknown values fall back to info.
func (c AppConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c AppConfig) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
