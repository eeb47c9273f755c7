// Package logger builds the zap logger shared by the CLI and its packages.
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config configures the logger. Console output always goes to Writer (stderr when nil);
// File, when set, adds a rotated plain-text log.
type Config struct {
	Level  string
	Format string
	File   string
	Writer io.Writer
}

// Rotation limits for the log file.
const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 28
)

// New creates a zap logger from config.
func New(config Config) *zap.Logger {
	level := zap.NewAtomicLevelAt(ParseLevel(config.Level))

	writer := config.Writer
	if writer == nil {
		writer = os.Stderr
	}
	cores := []zapcore.Core{
		zapcore.NewCore(encoder(config.Format, writer == os.Stderr), zapcore.AddSync(writer), level),
	}

	if config.File != "" {
		file := &lumberjack.Logger{
			Filename:   config.File,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(encoder(FormatJSON, false), zapcore.AddSync(file), level))
	}

	if len(cores) == 1 {
		return zap.New(cores[0])
	}
	return zap.New(zapcore.NewTee(cores...))
}

// ParseLevel converts a level name to a zapcore.Level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func encoder(format string, color bool) zapcore.Encoder {
	if format == FormatJSON {
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	if color {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return zapcore.NewConsoleEncoder(encoderConfig)
}
