// Package logger builds the structured logger used by the leaveoff binary.
//
// Everything is written to stderr by default: on the stdio transport stdout
// carries the MCP protocol stream and must stay clean.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelDisabled silences all output when used as a handler level.
const LevelDisabled = slog.Level(100)

// LogFormat defines how log messages are formatted
type LogFormat int

// Log format constants
const (
	TEXT LogFormat = iota
	JSON
)

// Config holds configuration options for the logger
type Config struct {
	Level       slog.Level
	Format      LogFormat
	Output      io.Writer
	DefaultTags map[string]interface{}
}

// DefaultConfig returns a default logger configuration
func DefaultConfig() *Config {
	return &Config{
		Level:       slog.LevelInfo,
		Format:      TEXT,
		Output:      os.Stderr,
		DefaultTags: map[string]interface{}{"service": "leaveoff"},
	}
}

// New creates a new logger with the given configuration
func New(config *Config) *slog.Logger {
	if config == nil {
		config = DefaultConfig()
	}

	out := config.Output
	if out == nil {
		out = os.Stderr
	}
	if config.Level >= LevelDisabled {
		out = io.Discard
	}

	opts := &slog.HandlerOptions{Level: config.Level}
	var handler slog.Handler
	if config.Format == JSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	attrs := make([]any, 0, len(config.DefaultTags)*2)
	for k, v := range config.DefaultTags {
		attrs = append(attrs, k, v)
	}
	return slog.New(handler).With(attrs...)
}

// ParseLevel converts a string level to a slog.Level. Unknown values map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	case "DISABLED", "OFF", "NONE":
		return LevelDisabled
	default:
		return slog.LevelInfo
	}
}

// ParseFormat converts "json" (any case) to JSON; everything else is TEXT.
func ParseFormat(format string) LogFormat {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return JSON
	}
	return TEXT
}

// Setup creates a logger from config and installs it as the slog default.
func Setup(config *Config) *slog.Logger {
	l := New(config)
	slog.SetDefault(l)
	return l
}

// WithComponent returns a child logger tagged with the component name.
func WithComponent(l *slog.Logger, component string) *slog.Logger {
	if l == nil {
		l = slog.Default()
	}
	return l.With("component", component)
}
