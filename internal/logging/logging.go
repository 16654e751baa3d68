package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Level string
	// File is an output path. Empty means stderr, unless Quiet is set.
	File string
	// Quiet discards logs when no File is set (the TUI owns the terminal).
	Quiet bool
}

// New builds a console logger with ISO8601 timestamps. An unknown level falls back to info.
func New(opts Options) (*zap.Logger, error) {
	file := strings.TrimSpace(opts.File)
	if file == "" && opts.Quiet {
		return zap.NewNop(), nil
	}

	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	out := []string{"stderr"}
	if file != "" {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		out = []string{file}
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       level == zapcore.DebugLevel,
		DisableStacktrace: true,
		Encoding:          "console",
		EncoderConfig:     encoderConfig,
		OutputPaths:       out,
		ErrorOutputPaths:  []string{"stderr"},
	}
	return config.Build()
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
