package logger

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns the process logger writing JSON lines to w.
func New(w io.Writer, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(ParseLevel(level))

	return zerolog.New(w).With().Timestamp().Str("service", "maprender").Logger()
}

// ParseLevel parses a log level name, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}
