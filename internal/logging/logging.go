// Package logging builds the process logger from configuration.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"rdioactivity/internal/config"
)

// New returns a zerolog.Logger honoring the configured level and
// format. Unknown levels fall back to info; the default format is JSON,
// "console" opts into human-readable output.
func New(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
