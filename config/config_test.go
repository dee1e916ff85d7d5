package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	names := []string{"JOBLY_CONFIG"}
	for name := range envKeys {
		names = append(names, name)
	}
	for _, name := range names {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func noDotenv(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(noDotenv(t))
	require.NoError(t, err)
	assert.Equal(t, 3001, cfg.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres:///jobly?sslmode=disable", cfg.Database.URL)
	assert.Equal(t, DevSecret, cfg.SecretKey)
	assert.Zero(t, cfg.TokenTTL)
	assert.Equal(t, ":3001", cfg.Addr())
}

func TestLoad_TestDatabase(t *testing.T) {
	clearEnv(t)
	t.Setenv("GO_ENV", "test")

	cfg, err := Load(noDotenv(t))
	require.NoError(t, err)
	assert.Equal(t, "postgres:///jobly_test?sslmode=disable", cfg.Database.URL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_URL", "file:jobly.db")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("DB_LOG_ARGS", "true")

	cfg, err := Load(noDotenv(t))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "file:jobly.db", cfg.Database.URL)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "s3cret", cfg.SecretKey)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Database.LogArgs)
	// Untouched nested fields keep their defaults.
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
}

func TestLoad_TOMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "jobly.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
port = 4000
token_ttl = "1h"

[database]
driver = "pgx"
max_open_conns = 5
`), 0o600))
	t.Setenv("JOBLY_CONFIG", path)
	t.Setenv("PORT", "5000")

	cfg, err := Load(noDotenv(t))
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, 5, cfg.Database.MaxOpenConns)
}

func TestLoad_MissingTOML(t *testing.T) {
	clearEnv(t)
	t.Setenv("JOBLY_CONFIG", filepath.Join(t.TempDir(), "nope.toml"))

	_, err := Load(noDotenv(t))
	assert.Error(t, err)
}

func TestLoad_Dotenv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=7000\nLOG_LEVEL=warn\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("GO_ENV", "production")

	_, err := Load(noDotenv(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SECRET_KEY")

	t.Setenv("SECRET_KEY", "prod-secret")
	cfg, err := Load(noDotenv(t))
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_BadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-port")
	_, err := Load(noDotenv(t))
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("LOG_LEVEL", "loud")
	_, err = Load(noDotenv(t))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.Env = EnvProduction
	cfg.LogLevel = "warn"

	logger := cfg.NewLogger(&buf)
	logger.Info("dropped")
	logger.Warn("kept", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"msg":"kept"`)
	assert.Contains(t, out, `"k":"v"`)

	buf.Reset()
	cfg.Env = EnvDevelopment
	cfg.NewLogger(&buf).Warn("coloured")
	assert.Contains(t, buf.String(), "coloured")
}
