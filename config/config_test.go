package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"APP_PORT", "APP_ENV", "LOG_LEVEL", "DB_PATH", "TIMEZONE",
		"CORS_ORIGINS", "BATCH_WORKERS", "SNAPSHOT_INTERVAL",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "development", cfg.App.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.Equal(t, "attendance.db", cfg.Database.Path)
	assert.Equal(t, "Asia/Shanghai", cfg.Engine.Location.String())
	assert.Equal(t, 0, cfg.Engine.BatchWorkers)
	assert.Equal(t, time.Hour, cfg.Engine.SnapshotInterval)
	assert.Len(t, cfg.App.CORSOrigins, 2)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_PORT", "3000")
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("CORS_ORIGINS", "https://hr.example.com, https://admin.example.com,")
	t.Setenv("BATCH_WORKERS", "4")
	t.Setenv("SNAPSHOT_INTERVAL", "0s")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.App.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, time.UTC, cfg.Engine.Location)
	assert.Equal(t, []string{"https://hr.example.com", "https://admin.example.com"}, cfg.App.CORSOrigins)
	assert.Equal(t, 4, cfg.Engine.BatchWorkers)
	assert.Zero(t, cfg.Engine.SnapshotInterval)
}

func TestFromEnv_Rejects(t *testing.T) {
	cases := map[string]string{
		"APP_PORT":          "eighty",
		"TIMEZONE":          "Mars/Olympus_Mons",
		"BATCH_WORKERS":     "-1",
		"SNAPSHOT_INTERVAL": "hourly",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := FromEnv()
			assert.ErrorContains(t, err, key)
		})
	}
}
