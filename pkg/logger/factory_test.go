package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		out = append(out, entry)
	}
	return out
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithOutput(nil))
	log.Debug("hidden")
	log.Info("shown", logger.Store("memory"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "memory", lines[0]["store"])
}

func TestWithEnvironment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env       string
		json      bool
		debugSeen bool
	}{
		{env: "production", json: true},
		{env: "prod", json: true},
		{env: "Staging", json: true},
		{env: "development", debugSeen: true},
		{env: "", debugSeen: true},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			log := logger.New(logger.WithEnvironment(tt.env, "sessiondemo"), logger.WithOutput(&buf))
			log.Debug("debug line")
			log.Info("info line")

			out := buf.String()
			assert.Equal(t, tt.debugSeen, strings.Contains(out, "debug line"))
			assert.Contains(t, out, "info line")
			if tt.json {
				lines := decodeLines(t, &buf)
				require.Len(t, lines, 1)
				assert.Equal(t, "sessiondemo", lines[0]["service"])
				assert.Equal(t, tt.env, lines[0]["env"])
			} else {
				assert.Contains(t, out, "service=sessiondemo")
			}
		})
	}
}

func TestWithLevelOverridesEnvironment(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithEnvironment("development", "svc"),
		logger.WithLevel(slog.LevelWarn),
		logger.WithFormat(logger.FormatJSON),
		logger.WithOutput(&buf),
	)
	log.Info("dropped")
	log.Warn("kept")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "kept", lines[0]["msg"])
}

func TestWithFormatPanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { logger.WithFormat("xml") })
}

func TestNewFromConfig(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_SERVICE", "sessions")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "")

	cfg, err := env.ParseAs[logger.Config]()
	require.NoError(t, err)

	var buf bytes.Buffer
	log, err := logger.NewFromConfig(cfg, logger.WithOutput(&buf))
	require.NoError(t, err)
	log.Debug("verbose")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "DEBUG", lines[0]["level"])
	assert.Equal(t, "sessions", lines[0]["service"])

	_, err = logger.NewFromConfig(logger.Config{Level: "loud"})
	assert.Error(t, err)
	_, err = logger.NewFromConfig(logger.Config{Format: "xml"})
	assert.Error(t, err)
}

func TestNew_SessionIDFromRequest(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithFormat(logger.FormatJSON),
		logger.WithOutput(&buf),
		logger.WithContextExtractors(session.LoggerExtractor()),
	)

	m, err := session.New(session.WithSecrets("keyboard-cat-keyboard-cat-keyboard-cat"), session.WithLogger(log))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	var id string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id = session.MustFromContext(r.Context()).ID()
		log.InfoContext(r.Context(), "handled", logger.Path(r.URL.Path))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cart", nil))

	var handled map[string]any
	for _, line := range decodeLines(t, &buf) {
		if line["msg"] == "handled" {
			handled = line
		}
	}
	require.NotNil(t, handled)
	assert.Equal(t, "/cart", handled["path"])
	assert.Equal(t, logger.SessionID(id).Value.String(), handled["session_id"])
}

func TestSetAsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger.SetAsDefault(logger.New(logger.WithOutput(&buf)))
	slog.Info("via default")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "via default", lines[0]["msg"])
}
