// Package logging builds roost's zap logger.
//
// The terminal belongs to the UI, so logs go to a file as JSON lines.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON logger writing to path at level. An empty path logs to
// stderr, which is only useful when the UI is not running.
func New(level, path string) (*zap.Logger, error) {
	atomic, err := zap.ParseAtomicLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	output := "stderr"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		output = path
	}

	encoder := zap.NewProductionEncoderConfig()
	encoder.EncodeTime = zapcore.ISO8601TimeEncoder

	cfg := zap.Config{
		Level:             atomic,
		Development:       false,
		Encoding:          "json",
		EncoderConfig:     encoder,
		OutputPaths:       []string{output},
		ErrorOutputPaths:  []string{output},
		DisableCaller:     true,
		DisableStacktrace: true,
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}
