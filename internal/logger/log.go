// Package logger installs the process-wide slog handler. Event names are
// dotted, e.g. "login.ok" or "upload.rejected".
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"ifrs-console/internal/config"

	"gopkg.in/lumberjack.v2"
)

const service = "ifrs-console"

// Init writes JSON records to stdout and, when a file is configured, to a
// rotating log file. Every record carries the service name.
func Init(cfg config.LogConfig) {
	slog.SetDefault(slog.New(newHandler(cfg, writers(cfg))).With("service", service))
	Info("logger.init", "level", cfg.Level, "file", cfg.File)
}

func writers(cfg config.LogConfig) io.Writer {
	var out []io.Writer
	if cfg.Console || cfg.File == "" {
		out = append(out, os.Stdout)
	}
	if cfg.File != "" {
		out = append(out, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			LocalTime:  true,
		})
	}
	return io.MultiWriter(out...)
}

// newHandler adds source positions at debug level only.
func newHandler(cfg config.LogConfig, w io.Writer) slog.Handler {
	level := parseLevel(cfg.Level)
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, AddSource: level == slog.LevelDebug})
}

func Info(msg string, args ...any)  { slog.Info(msg, args...) }
func Warn(msg string, args ...any)  { slog.Warn(msg, args...) }
func Error(msg string, args ...any) { slog.Error(msg, args...) }
func Debug(msg string, args ...any) { slog.Debug(msg, args...) }

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
