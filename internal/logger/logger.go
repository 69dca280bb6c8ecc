package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New builds a text logger on stdout. debug forces the debug level.
func New(level string, debug bool) *slog.Logger {
	return newWithWriter(os.Stdout, level, debug)
}

// Init builds the logger and installs it as the slog default.
func Init(level string, debug bool) *slog.Logger {
	l := New(level, debug)
	slog.SetDefault(l)
	return l
}

func newWithWriter(w io.Writer, level string, debug bool) *slog.Logger {
	lvl := ParseLevel(level)
	if debug {
		lvl = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: lvl,
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps debug/info/warn/error to a slog level. Unknown values are info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
