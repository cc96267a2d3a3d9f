package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Config_DefaultsFromFile(t *testing.T) {
	cfg, err := loadConfig("../../configs/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 1000, cfg.Upstream.BatchSize)
	assert.Equal(t, 50000, cfg.Upstream.MaxRecords)
	assert.Equal(t, 1000, cfg.Upstream.FilteredRowCap)
	assert.Equal(t, 3, cfg.Upstream.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Upstream.BackoffBase)
	assert.Equal(t, 30*time.Second, cfg.Upstream.BatchTimeout)
	assert.Equal(t, 10*time.Second, cfg.Upstream.RecordTimeout)
	assert.Equal(t, 60*time.Minute, cfg.Cache.DatasetTTL)
	assert.Equal(t, 5*time.Minute, cfg.Cache.QueryTTL)
	assert.Equal(t, "@every 55m", cfg.Cache.WarmSchedule)
	assert.Equal(t, LevelInfo, cfg.Logger.LogLevel)
}

func Test_Config_EnvironmentOverrideWorksCorrect(t *testing.T) {
	t.Setenv("CONFIG_PATH", "../../configs/config.yaml")
	t.Setenv("PORT", "9090")
	t.Setenv("NYC_JOBS_API_URL", "https://example.org/jobs.json")
	t.Setenv("DB_CONNECTION_STRING", "newConnectionString")
	t.Setenv("DATASET_CACHE_TTL", "15m")
	t.Setenv("QUERY_CACHE_TTL", "30s")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := Get()

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://example.org/jobs.json", cfg.Upstream.BaseURL)
	assert.Equal(t, "newConnectionString", cfg.DB.ConnectionString)
	assert.Equal(t, 15*time.Minute, cfg.Cache.DatasetTTL)
	assert.Equal(t, 30*time.Second, cfg.Cache.QueryTTL)
	assert.Equal(t, LevelDebug, cfg.Logger.LogLevel)
}

func Test_Config_ValidationErrors(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	content := "upstream:\n  batch_size: 0\nlogger:\n  log_level: LOUD\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))

	_, err := loadConfig(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing variable: base_url")
	assert.Contains(t, err.Error(), "batch_size must be positive")
	assert.Contains(t, err.Error(), "missing variable: db connection string")
	assert.Contains(t, err.Error(), `unknown log_level: "LOUD"`)
}
