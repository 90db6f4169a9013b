// Package logger builds the application's zap loggers.
package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// New builds a zap logger for the given level and format. Format "json"
// uses the production encoder, anything else the console encoder.
func New(levelStr, format string) *zap.Logger {
	level := zapcore.InfoLevel
	switch levelStr {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, _ := cfg.Build()
	return logger
}

// NewTest creates a logger that writes through testing.T.
func NewTest(t testing.TB) *zap.Logger {
	return zaptest.NewLogger(t)
}

// NewNop creates a logger that discards everything.
func NewNop() *zap.Logger {
	return zap.NewNop()
}
