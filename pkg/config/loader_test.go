package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/config"
	"github.com/dmitrymomot/sessionkit/pkg/cookie"
	"github.com/dmitrymomot/sessionkit/pkg/httpserver"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/redis"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

func TestLoad_CookieConfig(t *testing.T) {
	t.Setenv("COOKIE_SECRETS", "new-secret-new-secret-new-secret, old-secret-old-secret-old-secret")
	t.Setenv("COOKIE_SECURE", "auto")
	t.Setenv("COOKIE_SAME_SITE", "strict")
	config.ResetCache()
	t.Cleanup(config.ResetCache)

	var cfg cookie.Config
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, []string{"new-secret-new-secret-new-secret", "old-secret-old-secret-old-secret"}, cookie.SplitSecrets(cfg.Secrets))

	m, err := cookie.NewFromConfig(cfg)
	require.NoError(t, err)
	assert.Len(t, m.Secrets(), 2)
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "HTTP_ADDR", "HTTP_READ_TIMEOUT", "HTTP_READ_HEADER_TIMEOUT", "HTTP_MAX_HEADER_BYTES",
		"APP_ENV", "APP_SERVICE", "LOG_LEVEL", "LOG_FORMAT")
	config.ResetCache()
	t.Cleanup(config.ResetCache)

	var srv httpserver.Config
	require.NoError(t, config.Load(&srv))
	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, 30*time.Second, srv.ReadTimeout)
	assert.Equal(t, 10*time.Second, srv.ReadHeaderTimeout)
	assert.Equal(t, 1<<20, srv.MaxHeaderBytes)

	var logCfg logger.Config
	require.NoError(t, config.Load(&logCfg))
	assert.Equal(t, "development", logCfg.Env)
	assert.Equal(t, "sessionkit", logCfg.Service)
	assert.Empty(t, logCfg.Level)
}

func TestLoad_CachedPerType(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://first:6379/0")
	t.Setenv("REDIS_SESSION_PREFIX", "app:")
	config.ResetCache()
	t.Cleanup(config.ResetCache)

	var first redis.Config
	require.NoError(t, config.Load(&first))
	assert.Equal(t, "app:", first.SessionPrefix)

	t.Setenv("REDIS_URL", "redis://second:6379/0")

	var cached redis.Config
	require.NoError(t, config.Load(&cached))
	assert.Equal(t, "redis://first:6379/0", cached.ConnectionURL)

	// a different type is parsed on its own
	t.Setenv("SESSION_NAME", "shop.sid")
	var sess session.Config
	require.NoError(t, config.Load(&sess))
	assert.Equal(t, "shop.sid", sess.Name)

	config.ResetCache()
	var fresh redis.Config
	require.NoError(t, config.Load(&fresh))
	assert.Equal(t, "redis://second:6379/0", fresh.ConnectionURL)
}

type storeDSN struct {
	DSN string `env:"SESSIONKIT_TEST_STORE_DSN,required"`
}

func TestLoad_MissingRequired(t *testing.T) {
	unsetEnv(t, "SESSIONKIT_TEST_STORE_DSN")
	config.ResetCache()
	t.Cleanup(config.ResetCache)

	var cfg storeDSN
	err := config.Load(&cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrParsingConfig)

	assert.Panics(t, func() {
		config.ResetCache()
		config.MustLoad(&cfg)
	})
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("SESSION_ROLLING", "sometimes")
	config.ResetCache()
	t.Cleanup(config.ResetCache)

	var cfg session.Config
	err := config.Load(&cfg)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoad_NilPointer(t *testing.T) {
	var cfg *session.Config
	assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
}
