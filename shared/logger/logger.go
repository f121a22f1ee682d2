package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates a zerolog logger. Development environments get a human readable
// console writer, everything else writes JSON to stdout.
func New(environment, level string) *zerolog.Logger {
	var out io.Writer = os.Stdout
	if environment == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	return NewWithWriter(out, level)
}

// NewWithWriter creates a logger writing to out at the given level.
// Unknown levels fall back to info.
func NewWithWriter(out io.Writer, level string) *zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	logger := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	return &logger
}
