// Package logging builds the application's structured logger.
//
// Output goes to stdout and, when a path is given, to a size-rotated file.
// LOG_LEVEL names (DEBUG, INFO, WARNING, ERROR, CRITICAL) are mapped onto slog
// levels; CRITICAL sits above slog.LevelError and is printed by name.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelCritical is one step above slog.LevelError.
const LevelCritical = slog.LevelError + 4

const (
	maxFileSizeMB  = 10
	maxFileBackups = 5
)

// Level converts a LOG_LEVEL name to a slog.Level. Unknown names map to Info.
func Level(name string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARNING", "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	case "CRITICAL":
		return LevelCritical
	default:
		return slog.LevelInfo
	}
}

// New creates a text logger writing to stdout and, if file is non-empty,
// to a rotating log file. The returned closer flushes and closes the file.
func New(level, file string) (*slog.Logger, io.Closer) {
	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}

	if file != "" {
		rotating := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    maxFileSizeMB,
			MaxBackups: maxFileBackups,
		}
		out = io.MultiWriter(os.Stdout, rotating)
		closer = rotating
	}

	logger := slog.New(newHandler(out, Level(level)))
	logger.Info("logging configured",
		slog.String("level", strings.ToUpper(level)),
		slog.String("file", file),
	)
	return logger, closer
}

func newHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: renameLevels,
	})
}

// renameLevels prints LevelCritical as "CRITICAL" instead of "ERROR+4".
func renameLevels(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey || len(groups) != 0 {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl >= LevelCritical {
		a.Value = slog.StringValue("CRITICAL")
	}
	return a
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
