package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigFrom_ReadsDotenv(t *testing.T) {
	path := writeEnvFile(t, `APP_PORT=9000
APP_CLIENT_ID=ward-7
DB_HOST=db.internal
DB_NAME=coverage
REDIS_DB=2
JWT_SECRET=shh
JWT_SESSION_EXPIRY=12h
IDENTITY_MIN_PASSWORD_LENGTH=8
`)

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "ward-7", cfg.App.ClientID)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, "coverage", cfg.DB.Name)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "shh", cfg.JWT.Secret)
	assert.Equal(t, 12*time.Hour, cfg.JWT.SessionExpiry)
	assert.Equal(t, 8, cfg.Identity.MinPasswordLength)
}

func TestLoadConfigFrom_EnvOverridesFile(t *testing.T) {
	path := writeEnvFile(t, "APP_PORT=9000\n")
	t.Setenv("APP_PORT", "7070")

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.App.Port)
}

func TestLoadConfigFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "default", cfg.App.ClientID)
	assert.Equal(t, 6, cfg.Identity.MinPasswordLength)
	assert.Equal(t, 30*24*time.Hour, cfg.JWT.SessionExpiry)
}
