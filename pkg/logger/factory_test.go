package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/dmitrymomot/fieldrules/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	t.Run("creates JSON logger", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		require.NotNil(t, log)
		log.Info("rule registered", logger.Rule("min"))
		entry := decodeEntry(t, buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "rule registered", entry["msg"])
		assert.Equal(t, "min", entry["rule"])
	})

	t.Run("text formatter option", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithFormat(logger.FormatText),
		)
		log.Info("hello", logger.Field("email"))
		out := buf.String()
		assert.Contains(t, out, "INFO")
		assert.Contains(t, out, "field=email")
	})

	t.Run("json formatter option", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithFormat(logger.FormatText),
			logger.WithFormat(logger.FormatJSON),
		)
		log.Info("hello")
		assert.Equal(t, "hello", decodeEntry(t, buf)["msg"])
	})

	t.Run("level filters records", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithLevel(slog.LevelWarn))
		log.Info("dropped")
		assert.Empty(t, buf.String())
	})

	t.Run("includes default attributes", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithAttr(logger.Component("validator")),
		)
		log.Info("msg")
		assert.Equal(t, "validator", decodeEntry(t, buf)["component"])
	})

	t.Run("extracts from context", func(t *testing.T) {
		buf := &bytes.Buffer{}
		type key string
		ctxKey := key("form")
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithContextValue("form", ctxKey),
		)
		ctx := context.WithValue(context.Background(), ctxKey, "signup")
		log.InfoContext(ctx, "context msg")
		assert.Equal(t, "signup", decodeEntry(t, buf)["form"])
	})

	t.Run("extractors survive With", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithContextExtractors(nil, func(ctx context.Context) (slog.Attr, bool) {
				return slog.String("trace", "t-1"), true
			}),
		)
		log.With(logger.Field("age")).WithGroup("g").InfoContext(context.Background(), "msg", slog.Int("n", 1))
		entry := decodeEntry(t, buf)
		assert.Equal(t, "age", entry["field"])
		assert.Contains(t, entry, "g")
	})
}

func TestWithEnvironment(t *testing.T) {
	t.Run("development", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithEnvironment(logger.EnvDevelopment, "fieldrules"))
		log.Debug("msg")
		out := buf.String()
		assert.Contains(t, out, "DEBUG")
		assert.Contains(t, out, "service=fieldrules")
		assert.Contains(t, out, "env=development")
	})

	t.Run("production", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithEnvironment("prod", "fieldrules"))
		log.Debug("dropped")
		log.Info("msg")
		entry := decodeEntry(t, buf)
		assert.Equal(t, "fieldrules", entry["service"])
		assert.Equal(t, logger.EnvProduction, entry["env"])
	})

	t.Run("staging", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithEnvironment("stage", ""))
		log.Info("msg")
		entry := decodeEntry(t, buf)
		assert.Equal(t, logger.EnvStaging, entry["env"])
		assert.NotContains(t, entry, "service")
	})

	t.Run("unknown name falls back to development", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithEnvironment("qa", "fieldrules"))
		log.Debug("msg")
		assert.Contains(t, buf.String(), "env=development")
	})

	t.Run("later options override the preset", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithEnvironment(logger.EnvProduction, "fieldrules"),
			logger.WithLevel(slog.LevelError),
			logger.WithFormat(logger.FormatText),
		)
		log.Warn("dropped")
		log.Error("kept")
		out := buf.String()
		assert.NotContains(t, out, "dropped")
		assert.Contains(t, out, "env=production")
	})
}

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"development", logger.EnvDevelopment},
		{"dev", logger.EnvDevelopment},
		{" Staging ", logger.EnvStaging},
		{"stage", logger.EnvStaging},
		{"PROD", logger.EnvProduction},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := logger.ParseEnvironment(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := logger.ParseEnvironment("qa")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := logger.ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := logger.ParseLevel("loud")
	assert.Error(t, err)
}

func TestWithFormatPanics(t *testing.T) {
	assert.Panics(t, func() {
		logger.New(logger.WithFormat(logger.Format("xml")))
	})
}
