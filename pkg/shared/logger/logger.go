package logger

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/zengent/codelens/pkg/shared/config"
)

// NewLogger builds an hclog.Logger from the application configuration. The
// config level wins; the CODELENS_LOG_LEVEL environment variable is the
// fallback. CI mode switches to JSON lines for log collectors.
func NewLogger(cfg *config.Config, name string) hclog.Logger {
	return hclog.New(loggerOptions(cfg, name))
}

func loggerOptions(cfg *config.Config, name string) *hclog.LoggerOptions {
	var logLevel hclog.Level

	if cfg != nil && cfg.Logger.Level != "" {
		logLevel = getLogLevel(strings.ToUpper(cfg.Logger.Level))
	} else {
		// env variables has the second priority
		logLevelEnv := os.Getenv("CODELENS_LOG_LEVEL")
		logLevel = getLogLevel(strings.ToUpper(logLevelEnv))
	}

	return &hclog.LoggerOptions{
		Name:        name,
		DisableTime: true,
		Output:      os.Stdout,
		Level:       logLevel,
		JSONFormat:  config.IsCI(cfg),
	}
}

// GetLoggerOutput returns an io.Writer that forwards progress output from
// long-running library calls into the logger at debug level.
func GetLoggerOutput(logger hclog.Logger) io.Writer {
	return logger.StandardWriter(&hclog.StandardLoggerOptions{
		InferLevels: true,
		ForceLevel:  hclog.Debug,
	})
}

func getLogLevel(levelStr string) hclog.Level {
	switch levelStr {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO":
		return hclog.Info
	case "WARN":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	default:
		return hclog.Info
	}
}
