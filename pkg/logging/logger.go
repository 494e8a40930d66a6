// Package logging holds the zap logger shared by goshark and its drivers.
//
// The logger is silent until Initialize or SetLogger is called, so importing
// the library never produces output on its own.
package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevelEnvVar controls verbosity when Initialize is called with an empty level.
const LogLevelEnvVar = "GOSHARK_LOG_LEVEL"

var (
	logger *zap.Logger
	mu     sync.RWMutex
)

// Initialize builds a logger for the given level ("debug", "info", "warn",
// "error") and format ("console" or "json"). An empty level falls back to
// GOSHARK_LOG_LEVEL, and if that is unset too logging stays silent.
func Initialize(level, format string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	if level == "" {
		SetLogger(zap.NewNop())
		return nil
	}

	zapLevel, err := ParseLevel(level)
	if err != nil {
		return err
	}

	var config zap.Config
	switch strings.ToLower(format) {
	case "json":
		config = zap.NewProductionConfig()
	case "", "console":
		config = zap.Config{
			Encoding:         "console",
			EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
			OutputPaths:      []string{"stderr"},
			ErrorOutputPaths: []string{"stderr"},
		}
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	default:
		return fmt.Errorf("log format must be 'console' or 'json', got '%s'", format)
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	SetLogger(l)
	return nil
}

// ParseLevel maps a level name onto a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("log level must be one of: debug, info, warn, error, got '%s'", level)
	}
}

// SetLogger replaces the shared logger. A nil logger silences output.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	logger = l
	mu.Unlock()
}

// GetLogger returns the shared logger instance.
func GetLogger() *zap.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// Named returns a child logger, e.g. logging.Named("blackshark").
func Named(name string) *zap.Logger {
	return GetLogger().Named(name)
}

// Sync flushes any buffered entries.
func Sync() {
	_ = GetLogger().Sync()
}
