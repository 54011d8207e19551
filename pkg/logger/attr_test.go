package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fieldrules/pkg/logger"
)

func TestGroup(t *testing.T) {
	attr := logger.Group("rule", slog.String("name", "min"), slog.Int("args", 1))
	require.Equal(t, "rule", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "name", g[0].Key)
	assert.Equal(t, "args", g[1].Key)
}

func TestError(t *testing.T) {
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	empty := logger.Error(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestRule(t *testing.T) {
	attr := logger.Rule("min")
	require.Equal(t, "rule", attr.Key)
	assert.Equal(t, "min", attr.Value.String())
}

func TestRules(t *testing.T) {
	attr := logger.Rules([]string{"required", "min"})
	require.Equal(t, "rules", attr.Key)
	assert.Equal(t, []string{"required", "min"}, attr.Value.Any())

	assert.True(t, logger.Rules(nil).Equal(slog.Attr{}))
}

func TestField(t *testing.T) {
	attr := logger.Field("email")
	require.Equal(t, "field", attr.Key)
	assert.Equal(t, "email", attr.Value.String())

	assert.True(t, logger.Field("").Equal(slog.Attr{}))
}

func TestLocale(t *testing.T) {
	attr := logger.Locale("en")
	require.Equal(t, "locale", attr.Key)
	assert.Equal(t, "en", attr.Value.String())
}

func TestScalarAttrs(t *testing.T) {
	assert.True(t, logger.Valid(true).Value.Bool())
	assert.Equal(t, int64(3), logger.Count(3).Value.Int64())
	assert.Equal(t, time.Second, logger.Duration(time.Second).Value.Duration())
	assert.Equal(t, "validator", logger.Component("validator").Value.String())
}
