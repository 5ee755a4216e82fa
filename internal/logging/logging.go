// Package logging configures the application-wide zerolog logger.
package logging

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jessejferrell/Events-Hub-sub001/internal/config"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// New returns the process logger, configured once from LogConfig. The
// console format is meant for development; production deployments log
// JSON lines to stdout.
func New(cfg config.LogConfig) zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339
		zerolog.ErrorFieldName = "error"
		zerolog.MessageFieldName = "message"

		level := parseLevel(cfg.Level)

		var out = zerolog.New(os.Stdout)
		if cfg.Format == "console" {
			out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"})
		}

		logger = out.
			Level(level).
			With().
			Timestamp().
			Int("pid", os.Getpid()).
			Logger()
	})
	return logger
}

// Component returns a child logger tagged with a component name
func Component(base zerolog.Logger, name string) zerolog.Logger {
	return base.With().Str("component", name).Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
