package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactsSensitiveAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug", true)

	log.Info("login", "email", "a@x.com", "password", "hunter22", slog.Group("auth", slog.String("token", "abc.def")))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "a@x.com", entry["email"])
	assert.Equal(t, "[REDACTED]", entry["password"])
	auth, ok := entry["auth"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "[REDACTED]", auth["token"])
}

func TestRedactsWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", false).With("Authorization", "Bearer xyz")

	log.Info("request")

	assert.NotContains(t, buf.String(), "xyz")
	assert.Contains(t, buf.String(), "[REDACTED]")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", false)

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestInitWithRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	require.NoError(t, Init(Options{Level: "info", File: path}))
	t.Cleanup(func() { defaultLogger = nil })

	Info("written to file", "secret", "nope")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.NotContains(t, string(data), "nope")
}

func TestWithContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	defaultLogger = New(&buf, "info", false)
	t.Cleanup(func() { defaultLogger = nil })

	ctx := context.WithValue(context.Background(), RequestIDKey{}, "req-1")
	WithContext(ctx).Info("hello")

	assert.Contains(t, buf.String(), "request_id=req-1")
}
