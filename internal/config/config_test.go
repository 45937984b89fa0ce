package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logbull/internal/models"
	"logbull/internal/utils"
	"logbull/internal/validation"
)

const testProjectID = "12345678-1234-1234-1234-123456789abc"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logbull.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("LOGBULL_PROJECT_ID", testProjectID)
	t.Setenv("LOGBULL_HOST", "http://localhost:4005")
	t.Setenv("LOGBULL_API_KEY", "lb_test_key_123")
	t.Setenv("LOGBULL_LOG_LEVEL", "debug")
	t.Setenv("LOGBULL_BATCH_INTERVAL", "250ms")
	t.Setenv("LOGBULL_MAX_WORKERS", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsEnabled())
	assert.Equal(t, 250*time.Millisecond, cfg.Sender.BatchInterval)
	assert.Equal(t, 4, cfg.Sender.MaxWorkers)
	assert.Equal(t, 1000, cfg.Sender.BatchSize)
	assert.Equal(t, 10000, cfg.Sender.QueueCapacity)
	assert.Equal(t, 30*time.Second, cfg.Sender.HTTPTimeout)

	mc, err := cfg.ModelConfig()
	require.NoError(t, err)
	assert.Equal(t, testProjectID, mc.ProjectID)
	assert.Equal(t, "lb_test_key_123", mc.APIKey)
	assert.Equal(t, models.LevelDebug, mc.MinLevel)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("LOGBULL_PROJECT_ID", "not-a-uuid")
	t.Setenv("LOGBULL_HOST", "http://localhost:4005")

	_, err := Load()
	assert.ErrorIs(t, err, validation.ErrInvalidInput)
}

func TestLoad_DisabledSkipsEndpointValidation(t *testing.T) {
	t.Setenv("LOGBULL_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.IsEnabled())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
project_id: "`+testProjectID+`"
host: "https://logbull.example.com"
log_level: warning
console: true
sender:
  batch_size: 200
  batch_interval: 2s
  shutdown_timeout: 5s
diagnostics:
  log_level: debug
  redis:
    enabled: true
    address: "redis:6379"
    max_len: 50
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsEnabled())
	assert.True(t, cfg.Console)
	assert.Equal(t, 200, cfg.Sender.BatchSize)
	assert.Equal(t, 2*time.Second, cfg.Sender.BatchInterval)
	assert.Equal(t, 5*time.Second, cfg.Sender.ShutdownTimeout)
	assert.Equal(t, 10, cfg.Sender.MaxWorkers)

	assert.Equal(t, utils.Debug, cfg.Diagnostics.DiagnosticsLevel())
	assert.True(t, cfg.Diagnostics.Redis.Enabled)
	rc := cfg.Diagnostics.Redis.RedisReporterConfig()
	assert.Equal(t, "redis:6379", rc.Address)
	assert.Equal(t, int64(50), rc.MaxLen)
	assert.Equal(t, "logbull:diagnostics", rc.Key)

	opts := cfg.Sender.SenderOptions()
	assert.Equal(t, 200, opts.BatchSize)
	assert.Equal(t, 2*time.Second, opts.BatchInterval)

	mc, err := cfg.ModelConfig()
	require.NoError(t, err)
	assert.Equal(t, models.LevelWarning, mc.MinLevel)
	assert.Empty(t, mc.APIKey)
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
project_id: "`+testProjectID+`"
host: "https://logbull.example.com"
`)
	t.Setenv("LOGBULL_HOST", "http://override:4005")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://override:4005", cfg.Host)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadFile(writeConfig(t, "project_id: [unclosed"))
	assert.Error(t, err)

	_, err = LoadFile(writeConfig(t, `
project_id: "`+testProjectID+`"
host: "http://localhost"
log_level: loud
`))
	assert.ErrorIs(t, err, validation.ErrInvalidInput)

	_, err = LoadFile(writeConfig(t, `
project_id: "`+testProjectID+`"
host: "http://localhost"
sender:
  batch_size: 500
  queue_capacity: 100
`))
	assert.ErrorIs(t, err, validation.ErrInvalidInput)
}

func TestConfig_StringHidesSecrets(t *testing.T) {
	cfg := &Config{ProjectID: testProjectID, Host: "http://localhost", APIKey: "lb_secret_key_1"}
	cfg.SetDefaults()
	s := cfg.String()
	assert.NotContains(t, s, "lb_secret_key_1")
	assert.Contains(t, s, "sha256:")
}
