// Package logger sets up the process wide slog logger.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// New builds a logger writing to out. Level is one of debug, info, warn or
// error, an empty level means info.
func New(out io.Writer, level, format string) (*slog.Logger, error) {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "", "info":
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("Unknown log level: %s", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	switch strings.ToLower(format) {
	case "", FormatText:
		h = slog.NewTextHandler(out, opts)
	case FormatJSON:
		h = slog.NewJSONHandler(out, opts)
	default:
		return nil, fmt.Errorf("Unknown log format: %s", format)
	}
	return slog.New(h), nil
}

// Setup installs a new logger as the slog default.
func Setup(out io.Writer, level, format string) (*slog.Logger, error) {
	l, err := New(out, level, format)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(l)
	return l, nil
}
