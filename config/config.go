/*
Package config loads server configuration from the environment.

PURPOSE:
  Reads an optional .env file, then environment variables with fallbacks.
  Command-line flags in cmd/server override Port and DBPath.

VARIABLES:
  APP_PORT           HTTP port (default 8080)
  APP_ENV            development | production (default development)
  LOG_LEVEL          debug | info | warn | error (default info)
  DB_PATH            SQLite path, ":memory:" allowed (default attendance.db)
  TIMEZONE           IANA zone punches are read in (default Asia/Shanghai)
  CORS_ORIGINS       Comma-separated allowed origins
  BATCH_WORKERS      Parallel evaluations per batch, 0 = GOMAXPROCS
  SNAPSHOT_INTERVAL  Stats snapshot period, 0 disables (default 1h)
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Engine   EngineConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	CORSOrigins []string
}

type DatabaseConfig struct {
	Path string
}

// EngineConfig holds attendance computation settings
type EngineConfig struct {
	Location         *time.Location
	BatchWorkers     int
	SnapshotInterval time.Duration
}

// Load reads .env from the working directory when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	config := &Config{}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:8080"}),
	}

	config.Database = DatabaseConfig{
		Path: getEnv("DB_PATH", "attendance.db"),
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "Asia/Shanghai"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	workers, err := strconv.Atoi(getEnv("BATCH_WORKERS", "0"))
	if err != nil || workers < 0 {
		return nil, fmt.Errorf("invalid BATCH_WORKERS: %q", os.Getenv("BATCH_WORKERS"))
	}
	interval, err := time.ParseDuration(getEnv("SNAPSHOT_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SNAPSHOT_INTERVAL: %w", err)
	}
	config.Engine = EngineConfig{
		Location:         loc,
		BatchWorkers:     workers,
		SnapshotInterval: interval,
	}

	return config, nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// SlogLevel maps LOG_LEVEL onto a slog level; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
