package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/qextract/internal/model"
)

func TestConfig(t *testing.T) {
	cfg, err := Config("", "")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, cfg.Level.Level())
	assert.Equal(t, "console", cfg.Encoding)

	cfg, err = Config("DEBUG", "json")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, cfg.Level.Level())
	assert.Equal(t, "json", cfg.Encoding)
	assert.False(t, cfg.DisableStacktrace)

	_, err = Config("loud", "console")
	assert.Error(t, err)
	_, err = Config("info", "xml")
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	logger, err := FromConfig(model.LoggingConfig{Level: "warn", Format: "console"}, false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = FromConfig(model.LoggingConfig{Level: "warn"}, true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}
