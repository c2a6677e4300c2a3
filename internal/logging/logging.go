// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// New returns a logger writing to stderr. With format "auto" the handler is text when
// stderr is a terminal and JSON when it is piped or redirected.
func New(level string, format string) (*slog.Logger, error) {
	return NewWithWriter(os.Stderr, level, format, term.IsTerminal(int(os.Stderr.Fd())))
}

func NewWithWriter(writer io.Writer, level string, format string, interactive bool) (*slog.Logger, error) {
	parsedLevel, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	options := &slog.HandlerOptions{Level: parsedLevel}
	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text":
		handler = slog.NewTextHandler(writer, options)
	case "json":
		handler = slog.NewJSONHandler(writer, options)
	case "", "auto":
		if interactive {
			handler = slog.NewTextHandler(writer, options)
		} else {
			handler = slog.NewJSONHandler(writer, options)
		}
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return slog.New(handler), nil
}

func ParseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(trimmed)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", raw)
	}
	return level, nil
}
