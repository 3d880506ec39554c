package observability_test

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/formsink/formsink/internal/observability"
)

func TestLoggerInitialization(t *testing.T) {
	t.Run("CLI logger creation", func(t *testing.T) {
		observability.InitCLILogger(false)

		if observability.CLILogger == nil {
			t.Fatal("CLI logger should not be nil after initialization")
		}

		observability.CLILogger.Info("cli logger smoke test",
			zap.String("test", "value"))
	})

	t.Run("Server logger creation", func(t *testing.T) {
		observability.InitServerLogger("formsink-test", "info")

		if observability.ServerLogger == nil {
			t.Fatal("Server logger should not be nil after initialization")
		}

		observability.ServerLogger.Info("server logger smoke test",
			zap.String("component", "test"))
	})
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}

	for input, want := range cases {
		if got := observability.ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
