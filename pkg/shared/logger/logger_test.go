package logger

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"

	"github.com/zengent/codelens/pkg/shared/config"
)

func TestLoggerOptionsLevelFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Logger.Level = "debug"

	options := loggerOptions(cfg, "core")
	assert.Equal(t, "core", options.Name)
	assert.Equal(t, hclog.Debug, options.Level)
	assert.False(t, options.JSONFormat)
}

func TestLoggerOptionsLevelFromEnv(t *testing.T) {
	t.Setenv("CODELENS_LOG_LEVEL", "warn")

	options := loggerOptions(&config.Config{}, "core")
	assert.Equal(t, hclog.Warn, options.Level)
}

func TestLoggerOptionsDefaultLevel(t *testing.T) {
	t.Setenv("CODELENS_LOG_LEVEL", "")

	options := loggerOptions(&config.Config{}, "core")
	assert.Equal(t, hclog.Info, options.Level)
}

func TestLoggerOptionsCIModeUsesJSON(t *testing.T) {
	cfg := &config.Config{}
	cfg.Codelens.Mode = "CI"

	options := loggerOptions(cfg, "core")
	assert.True(t, options.JSONFormat)
}
