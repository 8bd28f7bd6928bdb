// Package logger builds the zap loggers used by the example programs and by
// applications embedding the client.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options tunes logger construction.
type Options struct {
	// FilePath enables JSON file logging with rotation when set.
	FilePath string
	// Production switches the console output to JSON.
	Production bool
	// Level is the minimum console level. Defaults to Debug in development
	// and Info in production.
	Level zapcore.LevelEnabler
}

// New builds a logger writing to the console and, when a file path is given,
// to a rotated JSON log file.
func New(opts Options) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "message"
	encoderConfig.LevelKey = "level"
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	jsonEncoder := zapcore.NewJSONEncoder(encoderConfig)

	level := opts.Level
	if level == nil {
		if opts.Production {
			level = zap.InfoLevel
		} else {
			level = zap.DebugLevel
		}
	}

	var consoleEncoder zapcore.Encoder
	if opts.Production {
		consoleEncoder = jsonEncoder
	} else {
		consoleEncoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	consoleCore := zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), level)

	core := consoleCore
	if opts.FilePath != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    10, // Megabytes
			MaxBackups: 5,  // Files
			MaxAge:     30, // Days
			Compress:   true,
		}
		fileCore := zapcore.NewCore(jsonEncoder, zapcore.AddSync(rotator), zap.InfoLevel)
		core = zapcore.NewTee(fileCore, consoleCore)
	}

	return zap.New(core, zap.AddCaller())
}

// NewDevelopment builds a console-only debug logger.
func NewDevelopment() *zap.Logger {
	return New(Options{})
}
