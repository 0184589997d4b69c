package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/config"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

func writeEnvFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// unsetEnv clears keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

type FileConfig struct {
	Name     string        `env:"FILE_TEST_NAME"`
	Secrets  []string      `env:"FILE_TEST_SECRETS" envSeparator:","`
	MaxAge   time.Duration `env:"FILE_TEST_MAX_AGE"`
	Priority string        `env:"FILE_TEST_PRIORITY"`
}

func TestLoadEnv_LaterFileWins(t *testing.T) {
	unsetEnv(t, "FILE_TEST_NAME", "FILE_TEST_SECRETS", "FILE_TEST_MAX_AGE", "FILE_TEST_PRIORITY")
	config.ResetCache()
	t.Cleanup(config.ResetCache)

	base := writeEnvFile(t, ".env", "FILE_TEST_NAME=app.sid\nFILE_TEST_SECRETS=a,b\nFILE_TEST_MAX_AGE=1h\nFILE_TEST_PRIORITY=base\n")
	override := writeEnvFile(t, ".env.local", "FILE_TEST_PRIORITY=\"override value\"\n")

	require.NoError(t, config.LoadEnv(base, override))

	var cfg FileConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "app.sid", cfg.Name)
	assert.Equal(t, []string{"a", "b"}, cfg.Secrets)
	assert.Equal(t, time.Hour, cfg.MaxAge)
	assert.Equal(t, "override value", cfg.Priority)
}

type PrecedenceConfig struct {
	Value string `env:"FILE_TEST_PRECEDENCE"`
}

func TestLoadEnv_ProcessEnvWins(t *testing.T) {
	t.Setenv("FILE_TEST_PRECEDENCE", "from-env")
	config.ResetCache()
	t.Cleanup(config.ResetCache)

	path := writeEnvFile(t, ".env", "FILE_TEST_PRECEDENCE=from-file\n")
	require.NoError(t, config.LoadEnv(path))

	var cfg PrecedenceConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "from-env", cfg.Value)
}

func TestLoadEnv_MissingFile(t *testing.T) {
	err := config.LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrLoadingEnvFile)

	assert.Panics(t, func() {
		config.MustLoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	})
}

func TestLoad_SessionConfigFromFile(t *testing.T) {
	unsetEnv(t, "SESSION_NAME", "SESSION_SECRETS", "SESSION_ROLLING", "SESSION_UNSET", "SESSION_COOKIE_SECURE")
	config.ResetCache()
	t.Cleanup(config.ResetCache)

	path := writeEnvFile(t, ".env", `SESSION_NAME=demo.sid
SESSION_SECRETS=this-is-a-very-long-secret-key-32-chars-long
SESSION_ROLLING=true
SESSION_UNSET=destroy
SESSION_COOKIE_SECURE=auto
`)
	config.MustLoadEnv(path)

	var cfg session.Config
	config.MustLoad(&cfg)

	assert.Equal(t, "demo.sid", cfg.Name)
	assert.Len(t, cfg.Secrets, 1)
	assert.True(t, cfg.Rolling)
	assert.Equal(t, session.UnsetDestroy, cfg.Unset)
	assert.Equal(t, "auto", cfg.CookieSecure)
	assert.True(t, cfg.SaveUninitialized)
	require.NoError(t, cfg.Validate())
}
