package utils

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger wraps a zap logger writing JSON lines to a file or stderr.
type Logger struct {
	z *zap.Logger
}

// NewLogger creates a logger at the given level ("debug", "info", "warn",
// "error"). An empty filePath logs to stderr.
func NewLogger(filePath, level string) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = lvl
	}
	if filePath != "" {
		cfg.OutputPaths = []string{filePath}
		cfg.ErrorOutputPaths = []string{filePath}
	}
	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to open log output: %w", err)
	}
	return &Logger{z: z}, nil
}

// NewNopLogger discards everything. Used by tests and library callers
// that do not care about logs.
func NewNopLogger() *Logger {
	return &Logger{z: zap.NewNop()}
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }

// With returns a child logger that adds fields to every entry.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{z: l.z.With(fields...)}
}

// Close flushes buffered entries.
func (l *Logger) Close() {
	_ = l.z.Sync()
}
