package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "POSTGRES_DSN", "LOG_LEVEL", "APP_NAME", "APP_HOST", "APP_PORT", "CACHE_REFERENCE_TTL", "POSTGRES_MAX_CONNS")

	cfg, err := Load(writeEnvFile(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "helpdesk-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, 5*time.Minute, cfg.Cache.ReferenceTTL)
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
	assert.False(t, cfg.Postgres.UsePostgres())
}

func TestLoad_EnvFileAndOverrides(t *testing.T) {
	unsetEnv(t, "POSTGRES_DSN", "CACHE_REFERENCE_TTL", "LOG_LEVEL")
	t.Setenv("APP_PORT", "9090")
	path := writeEnvFile(t, "POSTGRES_DSN=postgres://helpdesk@localhost/helpdesk\nCACHE_REFERENCE_TTL=90s\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.True(t, cfg.Postgres.UsePostgres())
	assert.Equal(t, 90*time.Second, cfg.Cache.ReferenceTTL)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		App:    AppConfig{Port: "8080"},
		Logger: LoggerConfig{Level: "debug"},
		Auth:   AuthConfig{AccessTokenTTLMinutes: 60},
		Cache:  CacheConfig{ReferenceTTL: time.Minute},
	}
	require.NoError(t, valid.Validate())

	bad := valid
	bad.Logger.Level = "verbose"
	bad.Cache.ReferenceTTL = 0
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
	assert.Contains(t, err.Error(), "CACHE_REFERENCE_TTL")
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// unsetEnv removes keys for the duration of the test; t.Setenv restores the originals.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}
