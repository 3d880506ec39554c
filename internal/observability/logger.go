// Package observability holds the process-wide loggers. CLI commands use a
// console logger; serve mode uses structured JSON on stderr.
package observability

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// CLILogger is used by CLI commands (console output).
	CLILogger = zap.NewNop()

	// ServerLogger is used by the HTTP server (JSON output).
	ServerLogger = zap.NewNop()
)

// InitCLILogger initializes the console logger for CLI commands.
func InitCLILogger(verbose bool) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	CLILogger = logger
}

// InitServerLogger initializes the structured server logger at the given
// level, writing JSON to stderr.
func InitServerLogger(service, level string) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	ServerLogger = logger.With(zap.String("service", service))
}

// ParseLevel maps a config level string to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info", "":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
