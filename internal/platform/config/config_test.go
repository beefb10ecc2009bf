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
	c, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "postgres", c.Store)
	assert.Equal(t, 3, c.RetryMaxAttempts)
	assert.Equal(t, 50*time.Millisecond, c.RetryBaseDelay)
	assert.Equal(t, 15*time.Minute, c.CleanupInterval)
	assert.Equal(t, 30, c.CleanupTimeoutMinutes)
	assert.Equal(t, "MXN", c.DefaultCurrency)
	assert.Equal(t, []string{"localhost:9092"}, c.KafkaBrokers)
	assert.Equal(t, "localhost:6379", c.RedisAddr())
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CLEANUP_TIMEOUT_MINUTES=45\nDB_NAME=fromfile\n"), 0o600))
	t.Setenv("DB_NAME", "fromenv")
	t.Setenv("CLEANUP_TIMEOUT_MINUTES", "")
	os.Unsetenv("CLEANUP_TIMEOUT_MINUTES")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 45, c.CleanupTimeoutMinutes)
	assert.Equal(t, "fromenv", c.DBName)
	assert.Equal(t, "postgres://postgres:@localhost:5432/fromenv?sslmode=disable", c.DatabaseURL())
}

func TestLoad_RejectsUnknownSink(t *testing.T) {
	t.Setenv("EVENT_SINK", "carrier-pigeon")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "EVENT_SINK")
}
