package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/genarabia-ai/dialect-tts/internal/env"
)

// Option configures the logger.
type Option func(*options)

type options struct {
	logToFile bool
	logFile   string
}

// WithLogToFile enables mirroring log output to a rotated file.
func WithLogToFile(enabled bool) Option {
	return func(o *options) {
		o.logToFile = enabled
	}
}

// WithLogFile sets the log file path used when file logging is enabled.
func WithLogFile(path string) Option {
	return func(o *options) {
		o.logFile = path
	}
}

// New builds the process logger. Development gets a colorized tint handler
// on stderr; production gets JSON. When file logging is enabled, output is
// also written to a size-rotated file via lumberjack.
func New(environment env.Environment, opts ...Option) *slog.Logger {
	o := &options{logFile: "logs/dialect-tts.log"}
	for _, opt := range opts {
		opt(o)
	}

	level := slog.LevelDebug
	if environment.IsProduction() {
		level = slog.LevelInfo
	}

	out := io.Writer(os.Stderr)
	if o.logToFile {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   o.logFile,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		})
	}

	if environment.IsProduction() {
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
	}

	return slog.New(tint.NewHandler(out, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}
